package geodiff

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// String renders a human-readable single-line summary of v, mirroring the
// original library's text dumps of changeset values.
func (v Value) String() string {
	switch v.Tag() {
	case Undefined:
		return "<undefined>"
	case Null:
		return "<null>"
	case Int:
		return fmt.Sprintf("%d", v.AsInt())
	case Double:
		return fmt.Sprintf("%g", v.AsDouble())
	case Text:
		return fmt.Sprintf("%q", v.AsText())
	case Blob:
		return fmt.Sprintf("<blob %d bytes>", len(v.AsBytes()))
	default:
		return "<invalid>"
	}
}

// String renders a human-readable single-line summary of e: its operation
// and old/new values, mirroring the original library's
// GEODIFF_changesetToJSON-style text dump but as plain text.
func (e ChangesetEntry) String() string {
	var b strings.Builder
	tableName := ""
	if e.Table != nil {
		tableName = e.Table.Name
	}
	fmt.Fprintf(&b, "%s %s", e.Op, tableName)
	if len(e.OldValues) > 0 {
		b.WriteString(" old=[")
		writeValues(&b, e.OldValues)
		b.WriteString("]")
	}
	if len(e.NewValues) > 0 {
		b.WriteString(" new=[")
		writeValues(&b, e.NewValues)
		b.WriteString("]")
	}
	return b.String()
}

func writeValues(b *strings.Builder, values []Value) {
	for i, v := range values {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(v.String())
	}
}

// jsonEntry is the JSON shape written by DumpJSON, one per line, mirroring
// the original library's changeset-to-JSON convenience without pulling in
// any diff-computation semantics — it is purely a rendering of entries a
// Reader already decoded.
type jsonEntry struct {
	Table     string   `json:"table"`
	Op        string   `json:"op"`
	OldValues []string `json:"oldValues,omitempty"`
	NewValues []string `json:"newValues,omitempty"`
}

// DumpJSON reads every entry from r and writes one JSON object per line to
// w (JSON Lines), until clean end-of-stream. It does not rewind r:
// entries already consumed via NextEntry are not re-emitted.
func DumpJSON(w io.Writer, r *Reader) error {
	enc := json.NewEncoder(w)
	var entry ChangesetEntry
	for {
		ok, err := r.NextEntry(&entry)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		je := jsonEntry{Op: entry.Op.String()}
		if entry.Table != nil {
			je.Table = entry.Table.Name
		}
		je.OldValues = stringifyValues(entry.OldValues)
		je.NewValues = stringifyValues(entry.NewValues)
		if err := enc.Encode(je); err != nil {
			return err
		}
	}
}

func stringifyValues(values []Value) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.String()
	}
	return out
}
