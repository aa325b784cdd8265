package stampfile

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/vertextoedge/pkgfetch/internal/port"
	"go.uber.org/zap"
)

const (
	// Suffix is appended to a cache file path to derive its stamp path.
	Suffix = ".@stamp"

	// blockSize bounds memory use during comparison: the persisted stamp
	// is read and compared in fixed-size blocks, never loaded whole.
	blockSize = 10
)

// Store persists identity markers in stamp files colocated with the cache
// files they describe.
type Store struct {
	logger *zap.Logger
}

// Ensure Store implements port.StampStore
var _ port.StampStore = (*Store)(nil)

// New creates a new stamp store
func New(logger *zap.Logger) *Store {
	return &Store{logger: logger}
}

// StampPath returns the stamp file path derived from cachePath.
func StampPath(cachePath string) string {
	return cachePath + Suffix
}

// Write persists stamp as the full content of the stamp file for cachePath,
// overwriting any prior content.
func (s *Store) Write(cachePath, stamp string) error {
	path := StampPath(cachePath)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to open stamp file %s: %w", path, err)
	}

	_, writeErr := f.WriteString(stamp)
	closeErr := f.Close()

	if writeErr != nil {
		return fmt.Errorf("failed to write stamp file %s: %w", path, writeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close stamp file %s: %w", path, closeErr)
	}
	return nil
}

// Matches reports whether the stamp file for cachePath exists and its
// content is byte-identical to stamp.
//
// The file is consumed in blockSize reads, each compared against the
// corresponding slice of the candidate. A block mismatches when a short
// read's length differs from the remaining candidate length, when a full
// block was read but fewer candidate bytes remain, or when the bytes
// themselves differ. A read failure counts as a mismatch.
func (s *Store) Matches(cachePath, stamp string) bool {
	path := StampPath(cachePath)

	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) && s.logger != nil {
			s.logger.Error("failed to open stamp file",
				zap.String("path", path),
				zap.Error(err))
		}
		return false
	}
	defer f.Close()

	buf := make([]byte, blockSize)
	rest := []byte(stamp)
	for len(rest) > 0 {
		n, err := readBlock(f, buf)
		if err != nil && err != io.EOF {
			if s.logger != nil {
				s.logger.Error("failed to read stamp file",
					zap.String("path", path),
					zap.Error(err))
			}
			return false
		}

		short := n < blockSize
		if short && n != len(rest) {
			return false
		}
		if !short && len(rest) < blockSize {
			return false
		}
		if !bytes.Equal(buf[:n], rest[:n]) {
			return false
		}
		rest = rest[n:]
	}
	return true
}

// readBlock fills buf up to its length, stopping early only at end of file
// or on a read error.
func readBlock(r io.Reader, buf []byte) (int, error) {
	n, err := io.ReadFull(r, buf)
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	return n, err
}
