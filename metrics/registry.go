// Package metrics tracks live Reader/Writer instances and exposes their
// counters through Prometheus, the same way the teacher's toytlv.Transport
// kept a concurrent map of live peer connections alongside its own
// single-owner per-connection state.
package metrics

import (
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/lutraconsulting/geodiff/wire"
)

// Kind distinguishes a Reader instance from a Writer instance in the
// registry and in the exported gauges.
type Kind int

const (
	KindReader Kind = iota
	KindWriter
)

// instanceStats is the per-open-instance counter block. Each field is an
// atomic so that a Prometheus scrape (running on its own goroutine) can
// read them while the owning Reader/Writer keeps mutating them from its
// own goroutine — the registry is the only thing shared; the instance
// itself remains single-owner per §5 of the spec.
type instanceStats struct {
	kind         Kind
	bytes        atomic.Int64
	entries      [3]atomic.Int64 // indexed by Op: Insert, Update, Delete
	parseErrors  atomic.Int64
}

// Registry is a concurrency-safe set of currently open codec instances,
// keyed by session id. A nil *Registry is valid and a no-op, so
// WithMetricsRegistry is optional.
type Registry struct {
	instances *xsync.MapOf[uuid.UUID, *instanceStats]
}

// NewRegistry creates an empty, ready-to-use Registry.
func NewRegistry() *Registry {
	return &Registry{instances: xsync.NewMapOf[uuid.UUID, *instanceStats]()}
}

// Register adds a new open instance under id. Calling Register on a nil
// *Registry is a safe no-op, so metrics are always optional.
func (r *Registry) Register(id uuid.UUID, kind Kind) {
	if r == nil {
		return
	}
	r.instances.Store(id, &instanceStats{kind: kind})
}

// Unregister removes id, typically on Close.
func (r *Registry) Unregister(id uuid.UUID) {
	if r == nil {
		return
	}
	r.instances.Delete(id)
}

func (r *Registry) stats(id uuid.UUID) *instanceStats {
	if r == nil {
		return nil
	}
	s, ok := r.instances.Load(id)
	if !ok {
		return nil
	}
	return s
}

// AddBytes accumulates bytes read (for a KindReader) or written (for a
// KindWriter) under id.
func (r *Registry) AddBytes(id uuid.UUID, n int) {
	if s := r.stats(id); s != nil {
		s.bytes.Add(int64(n))
	}
}

// opIndex maps a row record operation byte to a dense [0,3) index for the
// per-instance entries counters.
func opIndex(op byte) int {
	switch op {
	case wire.TagInsert:
		return 0
	case wire.TagUpdate:
		return 1
	case wire.TagDelete:
		return 2
	default:
		return -1
	}
}

// AddEntry records one produced/consumed row record of the given
// operation byte (wire.TagInsert/TagUpdate/TagDelete) under id.
func (r *Registry) AddEntry(id uuid.UUID, op byte) {
	idx := opIndex(op)
	if s := r.stats(id); s != nil && idx >= 0 {
		s.entries[idx].Add(1)
	}
}

// AddParseError increments id's parse error counter.
func (r *Registry) AddParseError(id uuid.UUID) {
	if s := r.stats(id); s != nil {
		s.parseErrors.Add(1)
	}
}

// snapshot totals everything currently registered, split by Kind. Used by
// Collector.Collect.
func (r *Registry) snapshot() (totals snapshotTotals) {
	if r == nil {
		return
	}
	r.instances.Range(func(_ uuid.UUID, s *instanceStats) bool {
		switch s.kind {
		case KindReader:
			totals.readersOpen++
			totals.bytesRead += s.bytes.Load()
		case KindWriter:
			totals.writersOpen++
			totals.bytesWritten += s.bytes.Load()
		}
		for i := range s.entries {
			totals.entries[i] += s.entries[i].Load()
		}
		totals.parseErrors += s.parseErrors.Load()
		return true
	})
	return
}

type snapshotTotals struct {
	readersOpen  int64
	writersOpen  int64
	bytesRead    int64
	bytesWritten int64
	entries      [3]int64
	parseErrors  int64
}
