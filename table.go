package geodiff

import (
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
)

// ChangesetTable is the metadata announced once per table and kept as the
// "current table" on both Reader and Writer until superseded by another
// table record (§3.2). Its column count pins the length of every
// ChangesetEntry's OldValues/NewValues until a new ChangesetTable replaces
// it.
type ChangesetTable struct {
	Name        string
	PrimaryKeys []bool
}

// Columns reports the table's column count, i.e. len(PrimaryKeys).
func (t ChangesetTable) Columns() int { return len(t.PrimaryKeys) }

// Validate checks the two invariants of §3.2: a non-empty name with no
// embedded NUL, and at least one primary key column.
func (t ChangesetTable) Validate() error {
	if t.Name == "" {
		return errors.New("geodiff: table name must not be empty")
	}
	if strings.IndexByte(t.Name, 0) >= 0 {
		return errors.New("geodiff: table name must not contain NUL")
	}
	if len(t.PrimaryKeys) == 0 {
		return errors.New("geodiff: table must have at least one column")
	}
	hasPK := false
	for _, pk := range t.PrimaryKeys {
		if pk {
			hasPK = true
			break
		}
	}
	if !hasPK {
		return errors.New("geodiff: table must have at least one primary key column")
	}
	return nil
}

// Clone returns a copy of t with its own PrimaryKeys backing array. Reader
// callers that retain table metadata past the next NextEntry call must
// clone it first (§5): the Reader's current-table slot is reused in
// place on every new table record.
func (t ChangesetTable) Clone() ChangesetTable {
	pk := make([]bool, len(t.PrimaryKeys))
	copy(pk, t.PrimaryKeys)
	return ChangesetTable{Name: t.Name, PrimaryKeys: pk}
}

// Fingerprint returns a content hash of the table's name and primary key
// layout, for logs and tests. Not an equality relation.
func (t ChangesetTable) Fingerprint() uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(t.Name)
	pk := make([]byte, len(t.PrimaryKeys))
	for i, b := range t.PrimaryKeys {
		if b {
			pk[i] = 1
		}
	}
	_, _ = h.Write(pk)
	return h.Sum64()
}
