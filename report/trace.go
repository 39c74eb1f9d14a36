package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/rs/xid"
)

// Action classifies one trace-file event (spec.md §6 "Persisted state":
// "(cycle, uop_id, action in {fetch, decode, dispatch, issue, execute,
// memory, writeback, commit, squash})").
type Action string

const (
	ActionFetch     Action = "fetch"
	ActionDecode    Action = "decode"
	ActionDispatch  Action = "dispatch"
	ActionIssue     Action = "issue"
	ActionExecute   Action = "execute"
	ActionMemory    Action = "memory"
	ActionWriteback Action = "writeback"
	ActionCommit    Action = "commit"
	ActionSquash    Action = "squash"
)

// TraceWriter emits the optional per-cycle event stream. A nil *TraceWriter
// is a valid no-op receiver (every method checks for it), so stages can
// unconditionally call w.Emit(...) without a presence check — matching
// SPEC_FULL.md's "off by default; nil writer costs nothing when unused".
type TraceWriter struct {
	csv *csv.Writer
}

// NewTraceWriter wraps w (typically an os.File) to emit trace rows as
// CSV. Each row gets an xid-generated identifier so offline tooling can
// correlate rows across a run without relying on insertion order
// (spec.md §6 trace file is for "offline visualization"; the integer
// cycle/uop_id pair alone remains authoritative for pipeline ordering —
// xid only labels rows, per DOMAIN STACK in SPEC_FULL.md).
func NewTraceWriter(w io.Writer) *TraceWriter {
	cw := csv.NewWriter(w)
	cw.Write([]string{"row_id", "cycle", "uop_id", "action"})
	return &TraceWriter{csv: cw}
}

// Emit records one event. Safe to call on a nil *TraceWriter.
func (t *TraceWriter) Emit(cycle, uopID uint64, action Action) {
	if t == nil {
		return
	}
	t.csv.Write([]string{
		xid.New().String(),
		strconv.FormatUint(cycle, 10),
		strconv.FormatUint(uopID, 10),
		string(action),
	})
}

// Flush flushes any buffered CSV output. Safe to call on a nil *TraceWriter.
func (t *TraceWriter) Flush() error {
	if t == nil {
		return nil
	}
	t.csv.Flush()
	return t.csv.Error()
}
