// Package wire implements the low-level binary primitives of the changeset
// file format: the varint codec and the tag bytes that introduce table
// records, row records and per-column values.
//
// # Stream shape
//
// A changeset file is a flat concatenation of two kinds of self-delimited
// records:
//
//  1. Table record — introduces a table and becomes the "current table"
//     for every row record that follows, until superseded by another
//     table record:
//
//     [0x54] [varint nCols] [nCols x (0x00|0x01)] [name 0x00]
//
//  2. Row record — one change against the current table:
//
//     [op byte] [0x00 indirect, ignored] [row-values payload(s)]
//
//     where op is one of TagDelete, TagInsert, TagUpdate, and the number of
//     row-values payloads is 1 for insert/delete, 2 (old, then new) for
//     update.
//
// A row-values payload is exactly one tag byte per column of the current
// table, each optionally followed by a fixed or varint-prefixed body:
//
//	TagUndefined  — no body
//	TagValueNull  — no body
//	TagInt        — 8 bytes, big-endian two's complement
//	TagDouble     — 8 bytes, big-endian IEEE-754 binary64
//	TagText       — varint length, then that many UTF-8 bytes
//	TagBlob       — varint length, then that many opaque bytes
//
// This package only encodes/decodes bytes; it knows nothing about
// ChangesetTable, ChangesetEntry or Value — those live in the parent
// package and are built on top of the primitives here, the same way the
// teacher's protocol package supplied raw TLV framing underneath its
// higher-level RDX value types.
package wire

// Table record marker.
const TableMarker byte = 0x54 // 'T'

// Row record operation bytes. Values chosen for wire compatibility with the
// session-extension format of a widely deployed embedded SQL engine.
const (
	TagDelete byte = 0x09
	TagInsert byte = 0x12
	TagUpdate byte = 0x17
)

// Per-column value tags within a row-values payload.
const (
	TagUndefined byte = 0x00
	TagInt       byte = 0x01
	TagDouble    byte = 0x02
	TagText      byte = 0x03
	TagBlob      byte = 0x04
	TagValueNull byte = 0x05
)

// IndirectByte is the single reserved byte written after every row
// record's operation byte. Its meaning is undocumented upstream; this
// codec reads and discards it on decode and always writes 0x00 on encode.
const IndirectByte byte = 0x00

// IsRowOp reports whether b is one of the three valid row-record operation
// bytes.
func IsRowOp(b byte) bool {
	return b == TagDelete || b == TagInsert || b == TagUpdate
}
