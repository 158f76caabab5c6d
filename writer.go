package geodiff

import (
	"bufio"
	"context"
	"encoding/binary"
	"math"
	"os"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/lutraconsulting/geodiff/metrics"
	"github.com/lutraconsulting/geodiff/utils"
	"github.com/lutraconsulting/geodiff/wire"
)

// Writer emits a changeset byte stream from a disciplined caller (§4.3).
// The expected call sequence is Open, then for each table: BeginTable once
// followed by any number of WriteEntry calls against that table, repeated
// for further tables, then Close. The writer is append-only and performs
// no synchronization (§5); a Writer must not be shared across goroutines
// without the caller's own locking.
//
// The writer trusts its caller: it does not validate that an entry's
// value-array lengths match the current table's column count, or that an
// entry satisfies the per-operation invariants of §3.3; it writes the
// values it is given as they are. A Reader does not check those invariants
// either: a value-count mismatch misaligns the decoding of the bytes that
// follow, which can surface as a ParseError or as misread entries, and an
// undefined value where §3.3 requires a defined one reads back unchanged.
type Writer struct {
	id uuid.UUID

	file *os.File
	out  *bufio.Writer

	table     ChangesetTable
	haveTable bool

	written int64

	logger   utils.Logger
	registry *metrics.Registry
}

// WriterOption configures a Writer at construction time.
type WriterOption func(*Writer)

// WithWriterLogger overrides the Logger used for Open failures.
func WithWriterLogger(l utils.Logger) WriterOption {
	return func(w *Writer) { w.logger = l }
}

// WithWriterMetricsRegistry registers this Writer with registry for the
// duration it is open.
func WithWriterMetricsRegistry(registry *metrics.Registry) WriterOption {
	return func(w *Writer) { w.registry = registry }
}

// NewWriter builds an unopened Writer. Call Open before BeginTable.
func NewWriter(opts ...WriterOption) *Writer {
	w := &Writer{
		id:     uuid.New(),
		logger: utils.NewDefaultLogger(defaultLogLevel),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// ID returns this Writer's session id.
func (w *Writer) ID() uuid.UUID { return w.id }

// Open creates or truncates path for writing. It fails with an *IoError if
// the file cannot be created.
func (w *Writer) Open(path string) error {
	f, err := os.Create(path)
	if err != nil {
		w.logger.ErrorCtx(context.Background(), "failed to open changeset for writing", "id", w.id, "path", path, "err", err)
		return newIoError("open", path, err)
	}
	w.file = f
	w.out = bufio.NewWriter(f)
	w.haveTable = false
	w.written = 0
	w.registry.Register(w.id, metrics.KindWriter)
	return nil
}

// Close flushes any buffered bytes to disk and closes the underlying file.
// All bytes written must be flushed to disk on close (§4.3); in a
// language without destructors that responsibility falls on the caller,
// typically via defer immediately after a successful Open.
func (w *Writer) Close() error {
	defer w.registry.Unregister(w.id)
	if w.out == nil {
		return nil
	}
	if err := w.out.Flush(); err != nil {
		return newIoError("write", w.file.Name(), err)
	}
	err := w.file.Close()
	w.out = nil
	w.file = nil
	if err != nil {
		return newIoError("close", "", err)
	}
	return nil
}

// BeginTable emits a table record and makes table the current table for
// every WriteEntry call until the next BeginTable. It must be called at
// least once before any WriteEntry (§4.3); calling it again switches
// tables. The Writer keeps its own copy of table's metadata.
func (w *Writer) BeginTable(table ChangesetTable) error {
	if w.out == nil {
		return ErrNotOpen
	}
	if err := table.Validate(); err != nil {
		return err
	}
	if err := w.writeByte(wire.TableMarker); err != nil {
		return err
	}
	if err := w.writeVarint(uint32(len(table.PrimaryKeys))); err != nil {
		return err
	}
	for _, pk := range table.PrimaryKeys {
		b := byte(0)
		if pk {
			b = 1
		}
		if err := w.writeByte(b); err != nil {
			return err
		}
	}
	if err := w.writeNullTerminatedString(table.Name); err != nil {
		return err
	}
	w.table = table.Clone()
	w.haveTable = true
	return nil
}

// WriteEntry emits one row record for entry, using the current table's
// column count. The caller must have already called BeginTable and must
// ensure entry's value-array lengths and per-operation shape satisfy §3.3
// — WriteEntry does not check either (§4.3).
func (w *Writer) WriteEntry(entry ChangesetEntry) error {
	if w.out == nil {
		return ErrNotOpen
	}
	if !w.haveTable {
		return ErrNoTable
	}
	if err := w.writeByte(byte(entry.Op)); err != nil {
		return err
	}
	if err := w.writeByte(wire.IndirectByte); err != nil {
		return err
	}
	switch entry.Op {
	case Insert:
		if err := w.writeRowValues(entry.NewValues); err != nil {
			return err
		}
	case Delete:
		if err := w.writeRowValues(entry.OldValues); err != nil {
			return err
		}
	case Update:
		if err := w.writeRowValues(entry.OldValues); err != nil {
			return err
		}
		if err := w.writeRowValues(entry.NewValues); err != nil {
			return err
		}
	default:
		return errors.Wrapf(ErrUnknownOp, "entry op 0x%02x", byte(entry.Op))
	}
	w.registry.AddEntry(w.id, byte(entry.Op))
	return nil
}

func (w *Writer) writeByte(b byte) error {
	if err := w.out.WriteByte(b); err != nil {
		return w.ioFail(err)
	}
	w.written++
	w.registry.AddBytes(w.id, 1)
	return nil
}

func (w *Writer) writeBytes(b []byte) error {
	n, err := w.out.Write(b)
	w.written += int64(n)
	w.registry.AddBytes(w.id, n)
	if err != nil {
		return w.ioFail(err)
	}
	return nil
}

func (w *Writer) writeVarint(n uint32) error {
	buf := wire.AppendVarint(nil, n)
	return w.writeBytes(buf)
}

func (w *Writer) writeNullTerminatedString(s string) error {
	if err := w.writeBytes([]byte(s)); err != nil {
		return err
	}
	return w.writeByte(0)
}

func (w *Writer) writeRowValues(values []Value) error {
	for _, v := range values {
		if err := w.writeValue(v); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeValue(v Value) error {
	switch v.Tag() {
	case Undefined:
		return w.writeByte(wire.TagUndefined)
	case Null:
		return w.writeByte(wire.TagValueNull)
	case Int:
		if err := w.writeByte(wire.TagInt); err != nil {
			return err
		}
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], uint64(v.AsInt()))
		return w.writeBytes(b[:])
	case Double:
		if err := w.writeByte(wire.TagDouble); err != nil {
			return err
		}
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], math.Float64bits(v.AsDouble()))
		return w.writeBytes(b[:])
	case Text:
		if err := w.writeByte(wire.TagText); err != nil {
			return err
		}
		payload := v.AsBytes()
		if err := w.writeVarint(uint32(len(payload))); err != nil {
			return err
		}
		return w.writeBytes(payload)
	case Blob:
		if err := w.writeByte(wire.TagBlob); err != nil {
			return err
		}
		payload := v.AsBytes()
		if err := w.writeVarint(uint32(len(payload))); err != nil {
			return err
		}
		return w.writeBytes(payload)
	default:
		return errors.Wrapf(ErrUnknownOp, "value tag 0x%02x", byte(v.Tag()))
	}
}

func (w *Writer) ioFail(cause error) error {
	path := ""
	if w.file != nil {
		path = w.file.Name()
	}
	return newIoError("write", path, cause)
}
