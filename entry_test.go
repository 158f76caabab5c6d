package geodiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleTable() ChangesetTable {
	return ChangesetTable{Name: "T", PrimaryKeys: []bool{true, false}}
}

func TestEntryValidateInsert(t *testing.T) {
	tbl := sampleTable()
	ok := ChangesetEntry{Op: Insert, NewValues: []Value{NewInt(7), NewText("alice")}}
	assert.NoError(t, ok.Validate(tbl))

	badLen := ChangesetEntry{Op: Insert, NewValues: []Value{NewInt(7)}}
	assert.Error(t, badLen.Validate(tbl))

	withUndefined := ChangesetEntry{Op: Insert, NewValues: []Value{NewInt(7), NewUndefined()}}
	assert.Error(t, withUndefined.Validate(tbl))

	withOld := ChangesetEntry{Op: Insert, OldValues: []Value{NewInt(1)}, NewValues: []Value{NewInt(7), NewText("a")}}
	assert.Error(t, withOld.Validate(tbl))
}

func TestEntryValidateDelete(t *testing.T) {
	tbl := sampleTable()
	ok := ChangesetEntry{Op: Delete, OldValues: []Value{NewInt(7), NewText("alice")}}
	assert.NoError(t, ok.Validate(tbl))

	withUndefined := ChangesetEntry{Op: Delete, OldValues: []Value{NewUndefined(), NewText("alice")}}
	assert.Error(t, withUndefined.Validate(tbl))
}

func TestEntryValidateUpdate(t *testing.T) {
	tbl := sampleTable()

	// S3: only the non-pk column changed.
	nameOnly := ChangesetEntry{
		Op:        Update,
		OldValues: []Value{NewInt(7), NewText("alice")},
		NewValues: []Value{NewUndefined(), NewText("bob")},
	}
	assert.NoError(t, nameOnly.Validate(tbl))

	// S4: the primary key itself changed.
	pkChanged := ChangesetEntry{
		Op:        Update,
		OldValues: []Value{NewInt(7), NewText("alice")},
		NewValues: []Value{NewInt(8), NewUndefined()},
	}
	assert.NoError(t, pkChanged.Validate(tbl))

	// Primary key old value must always be defined.
	missingPKOld := ChangesetEntry{
		Op:        Update,
		OldValues: []Value{NewUndefined(), NewText("alice")},
		NewValues: []Value{NewUndefined(), NewText("bob")},
	}
	assert.Error(t, missingPKOld.Validate(tbl))

	wrongLen := ChangesetEntry{
		Op:        Update,
		OldValues: []Value{NewInt(7)},
		NewValues: []Value{NewUndefined(), NewText("bob")},
	}
	assert.Error(t, wrongLen.Validate(tbl))
}

func TestEntryEqualIgnoresTableIdentity(t *testing.T) {
	t1 := sampleTable()
	t2 := sampleTable()
	a := ChangesetEntry{Op: Insert, NewValues: []Value{NewInt(7), NewText("alice")}, Table: &t1}
	b := ChangesetEntry{Op: Insert, NewValues: []Value{NewInt(7), NewText("alice")}, Table: &t2}
	assert.True(t, a.Equal(b))
}

func TestEntryFingerprintDistinguishesOldFromNew(t *testing.T) {
	a := ChangesetEntry{Op: Update, OldValues: []Value{NewInt(1)}, NewValues: []Value{NewInt(2)}}
	b := ChangesetEntry{Op: Update, OldValues: []Value{NewInt(2)}, NewValues: []Value{NewInt(1)}}
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}

func TestOpString(t *testing.T) {
	assert.Equal(t, "insert", Insert.String())
	assert.Equal(t, "update", Update.String())
	assert.Equal(t, "delete", Delete.String())
}
