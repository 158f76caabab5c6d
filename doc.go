// Package geodiff implements the changeset codec at the heart of a
// geospatial differencing library: reading and writing the binary file
// format that captures row-level differences (inserts, updates, deletes)
// between two versions of a table-structured dataset.
//
// Use Writer to produce a changeset:
//
//	w := geodiff.NewWriter()
//	if err := w.Open("out.diff"); err != nil { ... }
//	defer w.Close()
//	if err := w.BeginTable(table); err != nil { ... }
//	if err := w.WriteEntry(entry); err != nil { ... }
//
// and Reader to consume one:
//
//	r := geodiff.NewReader()
//	if err := r.Open("out.diff"); err != nil { ... }
//	defer r.Close()
//	var entry geodiff.ChangesetEntry
//	for {
//	    ok, err := r.NextEntry(&entry)
//	    if err != nil { ... }
//	    if !ok { break }
//	}
//
// Computing a changeset by comparing two data sources, and applying a
// changeset to a live database, are out of scope for this package — it
// only reads and writes the format itself.
package geodiff
