package geodiff

// OpCounts tallies how many inserts, updates, and deletes a table saw in a
// changeset.
type OpCounts struct {
	Inserts int
	Updates int
	Deletes int
}

// Summarize opens path with a Reader and counts inserts/updates/deletes
// per table. Each entry is decoded in full through NextEntry; only the
// per-table counts are kept. This mirrors the
// original geodiff library's listChanges/listChangesSummary surface: a
// read-only report of what changed, not a diff computation or
// application (§1's in-scope/out-of-scope line).
func Summarize(path string) (map[string]OpCounts, error) {
	r := NewReader()
	if err := r.Open(path); err != nil {
		return nil, err
	}
	defer r.Close()

	counts := make(map[string]OpCounts)
	var entry ChangesetEntry
	for {
		ok, err := r.NextEntry(&entry)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		c := counts[entry.Table.Name]
		switch entry.Op {
		case Insert:
			c.Inserts++
		case Update:
			c.Updates++
		case Delete:
			c.Deletes++
		}
		counts[entry.Table.Name] = c
	}
	return counts, nil
}
