package geodiff

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// ValueTag identifies which of the six states a Value currently holds.
type ValueTag byte

// Value tags. Numbers match the wire format's per-column tag bytes
// one-for-one (wire.TagUndefined, wire.TagInt, ...) so encode/decode never
// needs a translation table.
const (
	Undefined ValueTag = 0x00
	Int       ValueTag = 0x01
	Double    ValueTag = 0x02
	Text      ValueTag = 0x03
	Blob      ValueTag = 0x04
	Null      ValueTag = 0x05
)

// Value is a tagged variant describing a single column cell: exactly one
// of undefined, null, a 64-bit signed integer, a 64-bit float, UTF-8 text,
// or an opaque blob. The zero Value is Undefined.
//
// Once a Value holds Text or Blob it owns its byte buffer: SetBytes
// copies its argument, and Clone deep-copies that buffer again. Equality
// (Equal) is structural — same tag, byte-exact payload — with no
// numeric interconversion between Int and Double.
//
// Reading the wrong accessor for the current tag is a contract violation:
// AsInt/AsDouble/AsBytes panic rather than silently returning a zero
// value, matching the source's assert()-based style (§4.1, §7).
type Value struct {
	tag   ValueTag
	i     int64
	f     float64
	bytes []byte // owned, only meaningful for Text/Blob
}

// NewInt returns a Value holding n.
func NewInt(n int64) Value { return Value{tag: Int, i: n} }

// NewDouble returns a Value holding f.
func NewDouble(f float64) Value { return Value{tag: Double, f: f} }

// NewNull returns a Value in the Null state.
func NewNull() Value { return Value{tag: Null} }

// NewUndefined returns a Value in the Undefined state (the zero Value
// already is one; this constructor exists for readability at call sites).
func NewUndefined() Value { return Value{tag: Undefined} }

// NewText returns a Value holding a copy of s's bytes, tagged Text.
func NewText(s string) Value { return newBytesValue(Text, []byte(s)) }

// NewBlob returns a Value holding a copy of b, tagged Blob.
func NewBlob(b []byte) Value { return newBytesValue(Blob, b) }

func newBytesValue(tag ValueTag, payload []byte) Value {
	owned := make([]byte, len(payload))
	copy(owned, payload)
	return Value{tag: tag, bytes: owned}
}

// SetInt overwrites v in place, total and unconditional.
func (v *Value) SetInt(n int64) { *v = NewInt(n) }

// SetDouble overwrites v in place, total and unconditional.
func (v *Value) SetDouble(f float64) { *v = NewDouble(f) }

// SetNull overwrites v in place, total and unconditional.
func (v *Value) SetNull() { *v = NewNull() }

// SetUndefined overwrites v in place, total and unconditional.
func (v *Value) SetUndefined() { *v = NewUndefined() }

// SetBytes overwrites v in place with a copy of payload, tagged either
// Text or Blob. It panics if tag is anything else — SetBytes is not a
// general setter, only the two byte-bearing tags are valid here.
func (v *Value) SetBytes(tag ValueTag, payload []byte) {
	if tag != Text && tag != Blob {
		panic("geodiff: SetBytes requires Text or Blob tag")
	}
	*v = newBytesValue(tag, payload)
}

// Tag reports v's current tag.
func (v Value) Tag() ValueTag { return v.tag }

// IsDefined reports whether v holds anything other than Undefined. Note
// Null counts as defined: it is a concrete "set to NULL" value, distinct
// from "not touched" (§3.1, §9).
func (v Value) IsDefined() bool { return v.tag != Undefined }

// AsInt returns v's integer payload. Panics if v.Tag() != Int.
func (v Value) AsInt() int64 {
	if v.tag != Int {
		panic("geodiff: AsInt on non-Int Value")
	}
	return v.i
}

// AsDouble returns v's float payload. Panics if v.Tag() != Double.
func (v Value) AsDouble() float64 {
	if v.tag != Double {
		panic("geodiff: AsDouble on non-Double Value")
	}
	return v.f
}

// AsBytes returns v's byte payload. Panics unless v.Tag() is Text or
// Blob. The returned slice is v's own owned buffer — callers that need to
// mutate it should copy first.
func (v Value) AsBytes() []byte {
	if v.tag != Text && v.tag != Blob {
		panic("geodiff: AsBytes on a Value that is not Text or Blob")
	}
	return v.bytes
}

// AsText is a convenience over AsBytes for the Text tag specifically.
func (v Value) AsText() string {
	if v.tag != Text {
		panic("geodiff: AsText on non-Text Value")
	}
	return string(v.bytes)
}

// Clone returns a deep copy of v: Text/Blob payloads get their own backing
// array, so mutating the clone's bytes (via a fresh SetBytes) never
// affects v.
func (v Value) Clone() Value {
	if v.tag != Text && v.tag != Blob {
		return v
	}
	return newBytesValue(v.tag, v.bytes)
}

// Equal reports structural equality: same tag, and for Int/Double/Text/Blob
// the same payload byte-for-byte. Int and Double never compare equal to
// each other even if numerically equivalent.
func (v Value) Equal(other Value) bool {
	if v.tag != other.tag {
		return false
	}
	switch v.tag {
	case Int:
		return v.i == other.i
	case Double:
		return v.f == other.f
	case Text, Blob:
		return string(v.bytes) == string(other.bytes)
	default: // Undefined, Null
		return true
	}
}

// Fingerprint returns a content hash of v's tag and payload. It is a fast
// pre-check for equality (used in tests), never the equality
// relation itself — use Equal for that.
func (v Value) Fingerprint() uint64 {
	h := xxhash.New()
	_, _ = h.Write([]byte{byte(v.tag)})
	switch v.tag {
	case Int:
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], uint64(v.i))
		_, _ = h.Write(b[:])
	case Double:
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], math.Float64bits(v.f))
		_, _ = h.Write(b[:])
	case Text, Blob:
		_, _ = h.Write(v.bytes)
	}
	return h.Sum64()
}
