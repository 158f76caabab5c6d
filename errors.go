package geodiff

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel errors for coarse-grained errors.Is matching, the same
// two-tier approach the teacher's chotki_errors package takes (sentinel
// vars, plus richer wrapped context at the call site).
var (
	// ErrMalformed is wrapped by every ParseError, so callers that don't
	// care about offset/message detail can do errors.Is(err, ErrMalformed).
	ErrMalformed = errors.New("geodiff: malformed changeset")

	// ErrNotOpen is returned when NextEntry/WriteEntry/BeginTable is
	// called on a Reader/Writer that failed to Open or was never opened.
	ErrNotOpen = errors.New("geodiff: not open")

	// ErrNoTable is returned by Writer.WriteEntry when it is called before
	// any BeginTable. (A Reader that meets a row record before any table
	// record reports a ParseError instead.)
	ErrNoTable = errors.New("geodiff: row record before first table")

	// ErrUnknownOp is returned by Writer.WriteEntry/writeValue when asked
	// to encode an Op or Value tag outside the set this format defines.
	ErrUnknownOp = errors.New("geodiff: unknown operation or value tag")
)

// IoError reports that the underlying file could not be opened, read, or
// written. It is non-recoverable at the codec layer per §7 of the spec.
type IoError struct {
	Path string
	Op   string // "open", "read", "write", "close"
	err  error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("geodiff: %s %s: %v", e.Op, e.Path, e.err)
}

func (e *IoError) Unwrap() error { return e.err }

func newIoError(op, path string, cause error) *IoError {
	return &IoError{Op: op, Path: path, err: errors.WithStack(cause)}
}

// ParseError reports that the byte stream violates the format. It carries
// the byte offset at which the violation was detected and a short
// human-readable message. Once a Reader produces a ParseError it is
// terminally failed: every subsequent NextEntry call returns the same
// error.
type ParseError struct {
	Offset int64
	Msg    string
	cause  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("geodiff: %s at offset %d", e.Msg, e.Offset)
}

func (e *ParseError) Unwrap() error {
	if e.cause != nil {
		return e.cause
	}
	return ErrMalformed
}

func newParseError(offset int64, format string, args ...any) *ParseError {
	return &ParseError{
		Offset: offset,
		Msg:    fmt.Sprintf(format, args...),
		cause:  errors.WithStack(ErrMalformed),
	}
}
