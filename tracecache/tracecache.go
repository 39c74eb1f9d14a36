// Package tracecache implements the trace cache (component C8): a
// set-associative store of dynamic instruction traces, built opportunistically
// at commit and consulted on the fetch path (spec.md §4.10).
package tracecache

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// Config sizes the trace cache (spec.md §6 "BranchPredictor" sibling
// config; trace cache sizing mirrors the teacher's cache.Config shape).
type Config struct {
	Sets          int
	Associativity int

	// TraceSize is the max number of uops a single trace may hold.
	TraceSize int
	// BranchMax is the max number of embedded branches a trace may hold.
	BranchMax int
}

// DefaultConfig mirrors the teacher's Default*Config constructor
// convention (timing/cache.DefaultL1IConfig).
func DefaultConfig() Config {
	return Config{
		Sets:          64,
		Associativity: 4,
		TraceSize:     16,
		BranchMax:     3,
	}
}

// Trace is one entry: a run of uops starting at StartEIP, ending either at
// a trace-size/branch-count limit or an indirect branch/return (spec.md
// §4.10).
type Trace struct {
	StartEIP      uint64
	MopEIP        []uint64
	UopCount      int
	MopCount      int
	BranchMask    uint32 // bit i set => the i-th branch in the trace is taken
	BranchFlags   uint32 // committed direction bits (bit i set => taken), matched against the fetch path's predicted flags
	BranchCount   int
	FallThroughEIP uint64
	TargetEIP     uint64
}

// Stats holds trace-cache statistics.
type Stats struct {
	Lookups    uint64
	Hits       uint64
	Misses     uint64
	Installs   uint64
	Evictions  uint64
}

// HitRate returns the fraction of lookups that hit, as a percentage.
func (s Stats) HitRate() float64 {
	if s.Lookups == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Lookups) * 100
}

// Cache is the trace cache proper.
type Cache struct {
	cfg       Config
	directory *akitacache.DirectoryImpl
	store     []Trace
	stats     Stats
}

// New builds an empty trace cache.
func New(cfg Config) *Cache {
	if cfg.Sets <= 0 {
		cfg.Sets = 1
	}
	if cfg.Associativity <= 0 {
		cfg.Associativity = 1
	}
	total := cfg.Sets * cfg.Associativity
	return &Cache{
		cfg: cfg,
		directory: akitacache.NewDirectory(
			cfg.Sets,
			cfg.Associativity,
			1, // block size is irrelevant; trace identity is the EIP tag
			akitacache.NewLRUVictimFinder(),
		),
		store: make([]Trace, total),
	}
}

func (c *Cache) blockIndex(b *akitacache.Block) int {
	return b.SetID*c.cfg.Associativity + b.WayID
}

// Lookup probes the trace cache by the fetch path's (eip, predicted
// branchFlags) pair (spec.md §4.10 "Hits on fetch path require matching the
// start eip and a prediction that follows the recorded branch_flags").
func (c *Cache) Lookup(eip uint64, predictedBranchFlags uint32) (Trace, bool) {
	c.stats.Lookups++
	block := c.directory.Lookup(0, eip)
	if block == nil || !block.IsValid {
		c.stats.Misses++
		return Trace{}, false
	}
	tr := c.store[c.blockIndex(block)]
	if tr.BranchFlags != predictedBranchFlags {
		c.stats.Misses++
		return Trace{}, false
	}
	c.directory.Visit(block)
	c.stats.Hits++
	return tr, true
}

// Install stores a completed trace, evicting the LRU way of its set if
// necessary (spec.md §4.10 "On termination, install into the set indexed by
// the start eip, choose victim by LRU").
func (c *Cache) Install(tr Trace) {
	victim := c.directory.FindVictim(tr.StartEIP)
	if victim == nil {
		return
	}
	if victim.IsValid {
		c.stats.Evictions++
	}
	victim.Tag = tr.StartEIP
	victim.IsValid = true
	c.store[c.blockIndex(victim)] = tr
	c.directory.Visit(victim)
	c.stats.Installs++
}

// Stats returns trace-cache statistics.
func (c *Cache) Stats() Stats { return c.stats }

// Reset clears all installed traces and statistics.
func (c *Cache) Reset() {
	c.directory.Reset()
	for i := range c.store {
		c.store[i] = Trace{}
	}
	c.stats = Stats{}
}
