package geodiff

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultTableHistorySize is how many distinct table names Reader
// remembers in RecentTables when WithTableHistorySize is not given.
const DefaultTableHistorySize = 32

// tableHistory is a bounded, diagnostic-only record of table records a
// Reader has seen, keyed by table name. It never influences how entries
// are interpreted — that is always governed by the single sticky
// "current table" of §3.2 — it exists purely so a caller debugging a
// multi-table stream (§8 scenario S5) can inspect table metadata seen
// earlier in the stream without re-parsing from the start.
type tableHistory struct {
	cache *lru.Cache[string, ChangesetTable]
	order []string // insertion order, for RecentTables' "most-recent last" contract
	size  int
}

func newTableHistory(size int) *tableHistory {
	if size <= 0 {
		size = DefaultTableHistorySize
	}
	c, _ := lru.New[string, ChangesetTable](size)
	return &tableHistory{cache: c, size: size}
}

func (h *tableHistory) record(t ChangesetTable) {
	if h == nil {
		return
	}
	h.cache.Add(t.Name, t.Clone())
	for i, name := range h.order {
		if name == t.Name {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
	h.order = append(h.order, t.Name)
	if len(h.order) > h.cache.Len()*4 {
		// order can only grow past the cache when many distinct table
		// names cycle through; trim stale names the cache has evicted.
		fresh := h.order[:0]
		for _, name := range h.order {
			if h.cache.Contains(name) {
				fresh = append(fresh, name)
			}
		}
		h.order = fresh
	}
}

// snapshot returns the remembered tables, most-recently-recorded last.
func (h *tableHistory) snapshot() []ChangesetTable {
	if h == nil {
		return nil
	}
	out := make([]ChangesetTable, 0, len(h.order))
	for _, name := range h.order {
		if t, ok := h.cache.Peek(name); ok {
			out = append(out, t)
		}
	}
	return out
}
