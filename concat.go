package geodiff

import (
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/lutraconsulting/geodiff/wire"
)

// Concat validates and concatenates a sequence of valid changeset files
// into out. Per §6.3, the concatenation of two valid changesets is itself
// a valid changeset if and only if the second begins with a table
// record — which every valid changeset does, since a row record may never
// be the first record in a stream (§4.2's state machine). Concat checks
// that precondition explicitly (reading only each file's first byte)
// rather than trusting callers to have produced well-formed inputs, since
// validating what "valid" means here belongs with the codec that defines
// it, not with whatever upstream tool is doing the concatenating.
func Concat(paths []string, out string) error {
	if len(paths) == 0 {
		return errors.New("geodiff: Concat requires at least one input path")
	}
	for _, p := range paths {
		if err := requireStartsWithTableRecord(p); err != nil {
			return err
		}
	}

	dst, err := os.Create(out)
	if err != nil {
		return newIoError("open", out, err)
	}
	defer dst.Close()

	for _, p := range paths {
		if err := appendFile(dst, p); err != nil {
			return err
		}
	}
	return dst.Sync()
}

func requireStartsWithTableRecord(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return newIoError("open", path, err)
	}
	defer f.Close()

	var marker [1]byte
	n, err := f.Read(marker[:])
	if n == 0 {
		if errors.Is(err, io.EOF) {
			return errors.Errorf("geodiff: %s is empty, not a valid changeset", path)
		}
		return newIoError("read", path, err)
	}
	if marker[0] != wire.TableMarker {
		return errors.Errorf("geodiff: %s does not start with a table record", path)
	}
	return nil
}

func appendFile(dst *os.File, path string) error {
	src, err := os.Open(path)
	if err != nil {
		return newIoError("open", path, err)
	}
	defer src.Close()

	buf := make([]byte, 64*1024)
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			if _, writeErr := dst.Write(buf[:n]); writeErr != nil {
				return newIoError("write", dst.Name(), writeErr)
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return nil
			}
			return newIoError("read", path, readErr)
		}
	}
}
