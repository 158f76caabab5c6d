package geodiff

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcatMergesEntriesInOrder(t *testing.T) {
	first := tmpPath(t)
	second := tmpPath(t)
	out := tmpPath(t)

	tbl := ChangesetTable{Name: "T", PrimaryKeys: []bool{true}}
	writeFile(t, first, tbl, ChangesetEntry{Op: Insert, NewValues: []Value{NewInt(1)}})
	writeFile(t, second, tbl, ChangesetEntry{Op: Insert, NewValues: []Value{NewInt(2)}})

	require.NoError(t, Concat([]string{first, second}, out))

	entries := readAll(t, out)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(1), entries[0].NewValues[0].AsInt())
	assert.Equal(t, int64(2), entries[1].NewValues[0].AsInt())
}

func TestConcatRejectsInputNotStartingWithTableRecord(t *testing.T) {
	bad := tmpPath(t)
	require.NoError(t, os.WriteFile(bad, []byte{0x12, 0x00}, 0o644))

	err := Concat([]string{bad}, tmpPath(t))
	assert.Error(t, err)
}

func TestConcatRejectsEmptyInput(t *testing.T) {
	empty := tmpPath(t)
	require.NoError(t, os.WriteFile(empty, []byte{}, 0o644))

	err := Concat([]string{empty}, tmpPath(t))
	assert.Error(t, err)
}

func TestConcatRequiresAtLeastOnePath(t *testing.T) {
	err := Concat(nil, tmpPath(t))
	assert.Error(t, err)
}
