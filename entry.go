package geodiff

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"

	"github.com/lutraconsulting/geodiff/wire"
)

// Op identifies the kind of row-level change a ChangesetEntry records.
// Values are chosen for wire compatibility with the session-extension
// format of a widely deployed embedded SQL engine (§3.3).
type Op byte

const (
	Delete Op = Op(wire.TagDelete)
	Insert Op = Op(wire.TagInsert)
	Update Op = Op(wire.TagUpdate)
)

func (op Op) String() string {
	switch op {
	case Insert:
		return "insert"
	case Update:
		return "update"
	case Delete:
		return "delete"
	default:
		return "unknown"
	}
}

// ChangesetEntry is a single row-level change: an insert, update, or
// delete against Table, the current table at the point this entry was
// produced.
//
// Table is a weak reference: the entry does not own it and must not
// outlive the reader's current-table slot it points at. A caller that
// retains an entry past the next Reader.NextEntry call must first clone
// Table itself (§5, §9) — this mirrors how a systems-language
// implementation would have the reader own the current table by value and
// entries merely borrow it for one iteration, rather than modelling
// shared ownership that could invite reader/entry reference cycles.
type ChangesetEntry struct {
	Op        Op
	OldValues []Value
	NewValues []Value
	Table     *ChangesetTable
}

// Validate checks the per-operation invariants of §3.3 against table's
// column count and primary key layout. It is an opt-in helper: neither
// Writer.WriteEntry nor Reader calls it automatically — per §4.3 the
// writer's discipline is the caller's responsibility, unchecked at
// runtime. A Reader decodes rows by the current table's column count
// alone, so a value-count mismatch can surface as a ParseError or as
// misread entries on a later read, and an undefined value where a defined
// one is required reads back unchanged.
func (e ChangesetEntry) Validate(table ChangesetTable) error {
	cols := table.Columns()
	switch e.Op {
	case Insert:
		if len(e.OldValues) != 0 {
			return errors.New("geodiff: insert entry must not carry old values")
		}
		if len(e.NewValues) != cols {
			return errors.Errorf("geodiff: insert entry has %d new values, table has %d columns", len(e.NewValues), cols)
		}
		for i, v := range e.NewValues {
			if !v.IsDefined() {
				return errors.Errorf("geodiff: insert entry column %d is undefined", i)
			}
		}
	case Delete:
		if len(e.NewValues) != 0 {
			return errors.New("geodiff: delete entry must not carry new values")
		}
		if len(e.OldValues) != cols {
			return errors.Errorf("geodiff: delete entry has %d old values, table has %d columns", len(e.OldValues), cols)
		}
		for i, v := range e.OldValues {
			if !v.IsDefined() {
				return errors.Errorf("geodiff: delete entry column %d is undefined", i)
			}
		}
	case Update:
		if len(e.OldValues) != cols || len(e.NewValues) != cols {
			return errors.Errorf("geodiff: update entry has %d/%d old/new values, table has %d columns",
				len(e.OldValues), len(e.NewValues), cols)
		}
		for i := range table.PrimaryKeys {
			if !table.PrimaryKeys[i] {
				continue
			}
			if !e.OldValues[i].IsDefined() {
				return errors.Errorf("geodiff: update entry missing old value for primary key column %d", i)
			}
		}
	default:
		return errors.Errorf("geodiff: unknown operation 0x%02x", byte(e.Op))
	}
	return nil
}

// Equal reports whether e and other carry the same operation and
// byte-for-byte equal value slices. Table identity/contents are not
// compared — two entries produced against equal but distinct
// ChangesetTable instances (e.g. before/after a round-trip) still compare
// equal here, matching the round-trip property of §8.1.
func (e ChangesetEntry) Equal(other ChangesetEntry) bool {
	if e.Op != other.Op {
		return false
	}
	return valuesEqual(e.OldValues, other.OldValues) && valuesEqual(e.NewValues, other.NewValues)
}

func valuesEqual(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// Fingerprint returns a content hash of the entry's operation and values,
// for logs and tests. Not an equality relation — use Equal.
func (e ChangesetEntry) Fingerprint() uint64 {
	h := xxhash.New()
	_, _ = h.Write([]byte{byte(e.Op)})
	for _, v := range e.OldValues {
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], v.Fingerprint())
		_, _ = h.Write(b[:])
	}
	_, _ = h.Write([]byte{0xff})
	for _, v := range e.NewValues {
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], v.Fingerprint())
		_, _ = h.Write(b[:])
	}
	return h.Sum64()
}
