package geodiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableValidate(t *testing.T) {
	cases := []struct {
		name  string
		table ChangesetTable
		ok    bool
	}{
		{"valid", ChangesetTable{Name: "T", PrimaryKeys: []bool{true, false}}, true},
		{"empty name", ChangesetTable{Name: "", PrimaryKeys: []bool{true}}, false},
		{"embedded NUL", ChangesetTable{Name: "T\x00U", PrimaryKeys: []bool{true}}, false},
		{"no columns", ChangesetTable{Name: "T", PrimaryKeys: nil}, false},
		{"no primary key", ChangesetTable{Name: "T", PrimaryKeys: []bool{false, false}}, false},
	}
	for _, c := range cases {
		err := c.table.Validate()
		if c.ok {
			assert.NoError(t, err, c.name)
		} else {
			assert.Error(t, err, c.name)
		}
	}
}

func TestTableCloneIsIndependent(t *testing.T) {
	t1 := ChangesetTable{Name: "T", PrimaryKeys: []bool{true, false}}
	clone := t1.Clone()
	clone.PrimaryKeys[1] = true
	assert.False(t, t1.PrimaryKeys[1])
	assert.True(t, clone.PrimaryKeys[1])
}

func TestTableColumns(t *testing.T) {
	tbl := ChangesetTable{Name: "T", PrimaryKeys: []bool{true, false, false}}
	assert.Equal(t, 3, tbl.Columns())
}
