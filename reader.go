package geodiff

import (
	"context"
	"encoding/binary"
	"log/slog"
	"math"
	"os"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/lutraconsulting/geodiff/metrics"
	"github.com/lutraconsulting/geodiff/utils"
	"github.com/lutraconsulting/geodiff/wire"
)

const defaultLogLevel = slog.LevelInfo

// Reader parses a byte stream produced by a compatible Writer into a
// forward-only, one-shot sequence of ChangesetEntry (§4.2). Open loads the
// entire file into memory; there is no streaming-from-disk mode. A Reader
// is a single-owner object: the codec itself performs no synchronization
// (§5), so a Reader must not be shared across goroutines without the
// caller's own locking.
type Reader struct {
	id uuid.UUID

	buf    []byte
	offset int64

	haveTable bool
	table     ChangesetTable

	failed error

	logger   utils.Logger
	registry *metrics.Registry
	history  *tableHistory
}

// ReaderOption configures a Reader at construction time.
type ReaderOption func(*Reader)

// WithLogger overrides the Logger used for Open failures and parse
// errors. The default logs to stderr at Info level.
func WithLogger(l utils.Logger) ReaderOption {
	return func(r *Reader) { r.logger = l }
}

// WithMetricsRegistry registers this Reader with registry for the
// duration it is open, so its byte/entry/error counts appear in a
// metrics.Collector built over the same registry.
func WithMetricsRegistry(registry *metrics.Registry) ReaderOption {
	return func(r *Reader) { r.registry = registry }
}

// WithTableHistorySize overrides RecentTables' LRU capacity (default
// DefaultTableHistorySize).
func WithTableHistorySize(n int) ReaderOption {
	return func(r *Reader) { r.history = newTableHistory(n) }
}

// NewReader builds an unopened Reader. Call Open before NextEntry.
func NewReader(opts ...ReaderOption) *Reader {
	r := &Reader{
		id:     uuid.New(),
		logger: utils.NewDefaultLogger(defaultLogLevel),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.history == nil {
		r.history = newTableHistory(DefaultTableHistorySize)
	}
	return r
}

// ID returns this Reader's session id, used to correlate log lines and as
// the metrics registry key.
func (r *Reader) ID() uuid.UUID { return r.id }

// Open reads path fully into memory. It fails with an *IoError if the
// file cannot be opened or read.
func (r *Reader) Open(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		ioErr := newIoError("open", path, err)
		r.logger.ErrorCtx(context.Background(), "failed to open changeset", "id", r.id, "path", path, "err", err)
		return ioErr
	}
	r.buf = data
	r.offset = 0
	r.failed = nil
	r.haveTable = false
	r.table = ChangesetTable{}
	r.history = newTableHistory(r.history.size)
	r.registry.Register(r.id, metrics.KindReader)
	r.registry.AddBytes(r.id, len(data))
	return nil
}

// Close releases this Reader's metrics registration. A Reader holds no
// file handle after Open (the file was slurped fully, §4.2/§9), so Close
// exists for symmetry with Writer and to stop contributing to
// metrics.Collector, not to release any OS resource.
func (r *Reader) Close() error {
	r.registry.Unregister(r.id)
	return nil
}

// RecentTables returns the table records this Reader has parsed so far,
// most-recently-seen last. Purely diagnostic (§4.2 supplement) — it never
// affects how entries are interpreted, which is always governed by the
// single current table of §3.2.
func (r *Reader) RecentTables() []ChangesetTable {
	return r.history.snapshot()
}

// NextEntry populates entry with the next change in the stream and
// reports true, or reports false at clean end-of-stream. Any malformed
// record fails with a *ParseError carrying the byte offset and a short
// message; once that happens the Reader is terminally failed and every
// further NextEntry call returns the same error (§4.2 failure semantics).
func (r *Reader) NextEntry(entry *ChangesetEntry) (bool, error) {
	if r.failed != nil {
		return false, r.failed
	}
	if r.buf == nil {
		return false, ErrNotOpen
	}

	for {
		if r.offset >= int64(len(r.buf)) {
			return false, nil
		}

		marker := r.buf[r.offset]
		switch {
		case marker == wire.TableMarker:
			if err := r.readTableRecord(); err != nil {
				return false, r.fail(err)
			}
			continue
		case wire.IsRowOp(marker):
			if !r.haveTable {
				return false, r.fail(newParseErrorAt(r.offset, "row record before first table"))
			}
			if err := r.readRowRecord(entry); err != nil {
				return false, r.fail(err)
			}
			r.registry.AddEntry(r.id, marker)
			return true, nil
		default:
			return false, r.fail(newParseErrorAt(r.offset, "unexpected tag 0x%02x at offset %d", marker, r.offset))
		}
	}
}

func (r *Reader) fail(err error) error {
	r.failed = err
	if pe, ok := err.(*ParseError); ok {
		r.registry.AddParseError(r.id)
		r.logger.ErrorCtx(context.Background(), "changeset parse error", "id", r.id, "offset", pe.Offset, "msg", pe.Msg)
	}
	return err
}

func newParseErrorAt(offset int64, format string, args ...any) *ParseError {
	return newParseError(offset, format, args...)
}

// readByte reads and returns the byte at the cursor, advancing it by one.
func (r *Reader) readByte() (byte, error) {
	if r.offset >= int64(len(r.buf)) {
		return 0, newParseErrorAt(r.offset, "truncated record")
	}
	b := r.buf[r.offset]
	r.offset++
	return b, nil
}

// readN returns the next n bytes without copying, advancing the cursor.
func (r *Reader) readN(n int) ([]byte, error) {
	if r.offset+int64(n) > int64(len(r.buf)) {
		return nil, newParseErrorAt(r.offset, "truncated record, need %d bytes", n)
	}
	b := r.buf[r.offset : r.offset+int64(n)]
	r.offset += int64(n)
	return b, nil
}

// readVarint decodes a varint at the cursor per §4.2.
func (r *Reader) readVarint() (uint32, error) {
	start := r.offset
	n, consumed, ok := wire.ReadVarint(r.buf[clampOffset(r.offset, len(r.buf)):])
	if !ok {
		return 0, newParseErrorAt(start, "invalid or oversized varint")
	}
	r.offset += int64(consumed)
	return n, nil
}

func clampOffset(offset int64, bufLen int) int64 {
	if offset > int64(bufLen) {
		return int64(bufLen)
	}
	return offset
}

// readNullTerminatedString reads bytes up to and including the next NUL,
// returning the string without the terminator.
func (r *Reader) readNullTerminatedString() (string, error) {
	start := r.offset
	for i := r.offset; i < int64(len(r.buf)); i++ {
		if r.buf[i] == 0 {
			s := r.buf[start:i]
			if !utf8.Valid(s) {
				return "", newParseErrorAt(start, "table name is not valid UTF-8")
			}
			r.offset = i + 1
			return string(s), nil
		}
	}
	return "", newParseErrorAt(start, "unterminated table name")
}

func (r *Reader) readTableRecord() error {
	if _, err := r.readByte(); err != nil { // consume 0x54
		return err
	}
	nCols, err := r.readVarint()
	if err != nil {
		return err
	}
	pk := make([]bool, nCols)
	for i := range pk {
		b, err := r.readByte()
		if err != nil {
			return err
		}
		if b != 0 && b != 1 {
			return newParseErrorAt(r.offset-1, "primary key flag must be 0x00 or 0x01, got 0x%02x", b)
		}
		pk[i] = b == 1
	}
	name, err := r.readNullTerminatedString()
	if err != nil {
		return err
	}
	table := ChangesetTable{Name: name, PrimaryKeys: pk}
	if err := table.Validate(); err != nil {
		return newParseErrorAt(r.offset, "invalid table record: %v", err)
	}
	r.table = table
	r.haveTable = true
	r.history.record(table)
	return nil
}

func (r *Reader) readRowRecord(entry *ChangesetEntry) error {
	op, err := r.readByte()
	if err != nil {
		return err
	}
	if _, err := r.readByte(); err != nil { // indirect byte, ignored
		return err
	}

	cols := r.table.Columns()
	var oldValues, newValues []Value
	switch op {
	case wire.TagInsert:
		newValues, err = r.readRowValues(cols)
	case wire.TagDelete:
		oldValues, err = r.readRowValues(cols)
	case wire.TagUpdate:
		if oldValues, err = r.readRowValues(cols); err == nil {
			newValues, err = r.readRowValues(cols)
		}
	default:
		return newParseErrorAt(r.offset-2, "unknown row operation 0x%02x", op)
	}
	if err != nil {
		return err
	}

	*entry = ChangesetEntry{
		Op:        Op(op),
		OldValues: oldValues,
		NewValues: newValues,
		Table:     &r.table,
	}
	return nil
}

func (r *Reader) readRowValues(cols int) ([]Value, error) {
	values := make([]Value, cols)
	for i := 0; i < cols; i++ {
		v, err := r.readValue()
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

func (r *Reader) readValue() (Value, error) {
	tagOffset := r.offset
	tag, err := r.readByte()
	if err != nil {
		return Value{}, err
	}
	switch tag {
	case wire.TagUndefined:
		return NewUndefined(), nil
	case wire.TagValueNull:
		return NewNull(), nil
	case wire.TagInt:
		b, err := r.readN(8)
		if err != nil {
			return Value{}, err
		}
		return NewInt(int64(binary.BigEndian.Uint64(b))), nil
	case wire.TagDouble:
		b, err := r.readN(8)
		if err != nil {
			return Value{}, err
		}
		return NewDouble(math.Float64frombits(binary.BigEndian.Uint64(b))), nil
	case wire.TagText:
		n, err := r.readVarint()
		if err != nil {
			return Value{}, err
		}
		b, err := r.readN(int(n))
		if err != nil {
			return Value{}, err
		}
		if !utf8.Valid(b) {
			return Value{}, newParseErrorAt(tagOffset, "text value is not valid UTF-8")
		}
		return NewText(string(b)), nil
	case wire.TagBlob:
		n, err := r.readVarint()
		if err != nil {
			return Value{}, err
		}
		b, err := r.readN(int(n))
		if err != nil {
			return Value{}, err
		}
		return NewBlob(b), nil
	default:
		return Value{}, newParseErrorAt(tagOffset, "unknown value tag 0x%02x", tag)
	}
}

