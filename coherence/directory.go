// Package coherence implements the directory-based cache coherence
// subsystem the pipeline's memory uops synchronize against (spec.md §3
// "Directory entry", attached to each cache block of each module).
package coherence

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

const NoOwner = -1

// entry is the per-block coherence state: owner plus a sharer bitset
// (spec.md §3 "Directory entry: {owner: sharer-id | NONE, num_sharers,
// sharers: bitset}"), grounded on original_source/src/libmemsystem/
// directory.c's dir_entry_t (owner, num_sharers, sharer bitmap).
type entry struct {
	owner      int
	sharers    uint64 // supports up to 64 sharer ids; spec has no stated upper bound
	numSharers int
}

// Config sizes a directory, following the teacher's cache.Config
// field-naming convention (Sets/Associativity/BlockSize).
type Config struct {
	Sets          int
	Associativity int
	BlockSize     int
}

// Directory is a set-associative, LRU-replaced array of coherence entries,
// one per cache block, reusing the teacher's akita-backed directory/data
// store split (timing/cache/cache.go) for tag and LRU management.
type Directory struct {
	cfg       Config
	directory *akitacache.DirectoryImpl
	entries   []entry
	locks     []lock
}

// New builds an empty directory.
func New(cfg Config) *Directory {
	if cfg.Sets <= 0 {
		cfg.Sets = 1
	}
	if cfg.Associativity <= 0 {
		cfg.Associativity = 1
	}
	if cfg.BlockSize <= 0 {
		cfg.BlockSize = 64
	}
	total := cfg.Sets * cfg.Associativity
	entries := make([]entry, total)
	for i := range entries {
		entries[i].owner = NoOwner
	}
	return &Directory{
		cfg: cfg,
		directory: akitacache.NewDirectory(
			cfg.Sets,
			cfg.Associativity,
			cfg.BlockSize,
			akitacache.NewLRUVictimFinder(),
		),
		entries: entries,
		locks:   make([]lock, total),
	}
}

func (d *Directory) blockIndex(b *akitacache.Block) int {
	return b.SetID*d.cfg.Associativity + b.WayID
}

func (d *Directory) blockAddr(addr uint64) uint64 {
	return (addr / uint64(d.cfg.BlockSize)) * uint64(d.cfg.BlockSize)
}

// Lookup returns the coherence entry index for addr on a hit, refreshing
// its LRU position. On a miss it returns -1, false and allocates nothing;
// Acquire is the call that installs a block.
func (d *Directory) Lookup(addr uint64) (idx int, hit bool) {
	blockAddr := d.blockAddr(addr)
	block := d.directory.Lookup(0, blockAddr)
	if block != nil && block.IsValid {
		d.directory.Visit(block)
		return d.blockIndex(block), true
	}
	return -1, false
}

// Acquire finds or installs the block for addr, evicting and resetting its
// coherence entry if a new block must be brought in.
func (d *Directory) Acquire(addr uint64) (idx int, evicted bool) {
	blockAddr := d.blockAddr(addr)
	if idx, hit := d.Lookup(addr); hit {
		return idx, false
	}

	victim := d.directory.FindVictim(blockAddr)
	wasValid := victim.IsValid
	idx = d.blockIndex(victim)

	victim.Tag = blockAddr
	victim.IsValid = true
	d.directory.Visit(victim)

	d.entries[idx] = entry{owner: NoOwner}
	return idx, wasValid
}

// Owner returns the current owner of the block at idx, or NoOwner.
func (d *Directory) Owner(idx int) int { return d.entries[idx].owner }

// SetOwner assigns exclusive ownership (original_source dir_entry_set_owner).
func (d *Directory) SetOwner(idx, node int) { d.entries[idx].owner = node }

// NumSharers reports the sharer count of the block at idx.
func (d *Directory) NumSharers(idx int) int { return d.entries[idx].numSharers }

// IsSharer reports whether node shares the block at idx.
func (d *Directory) IsSharer(idx, node int) bool {
	return d.entries[idx].sharers&(uint64(1)<<uint(node)) != 0
}

// SetSharer marks node as a sharer of the block at idx, a no-op if already
// set (original_source dir_entry_set_sharer).
func (d *Directory) SetSharer(idx, node int) {
	bit := uint64(1) << uint(node)
	e := &d.entries[idx]
	if e.sharers&bit != 0 {
		return
	}
	e.sharers |= bit
	e.numSharers++
}

// ClearSharer removes node from the sharer set of the block at idx, a
// no-op if not set (original_source dir_entry_clear_sharer).
func (d *Directory) ClearSharer(idx, node int) {
	bit := uint64(1) << uint(node)
	e := &d.entries[idx]
	if e.sharers&bit == 0 {
		return
	}
	e.sharers &^= bit
	e.numSharers--
}

// ClearAllSharers resets the sharer set, used when invalidating a block.
func (d *Directory) ClearAllSharers(idx int) {
	d.entries[idx].sharers = 0
	d.entries[idx].numSharers = 0
}
