package filesystem

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vertextoedge/pkgfetch/internal/port"
)

// Manager handles local cache file operations
type Manager struct {
	rootDir    string
	bufferSize int
}

// Ensure Manager implements port.FileSystem
var _ port.FileSystem = (*Manager)(nil)

// NewManager creates a new filesystem manager rooted at rootDir
func NewManager(rootDir string) (*Manager, error) {
	return NewManagerWithBufferSize(rootDir, 256*1024) // 256KB default
}

// NewManagerWithBufferSize creates a new filesystem manager with a custom
// transfer buffer size
func NewManagerWithBufferSize(rootDir string, bufferSize int) (*Manager, error) {
	// Ensure root directory exists
	if err := os.MkdirAll(rootDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache root dir: %w", err)
	}

	if bufferSize <= 0 {
		bufferSize = 256 * 1024
	}

	return &Manager{
		rootDir:    rootDir,
		bufferSize: bufferSize,
	}, nil
}

// RootDir returns the cache root directory
func (m *Manager) RootDir() string {
	return m.rootDir
}

// CachePath returns the local cache path for a resource name
func (m *Manager) CachePath(name string) string {
	return filepath.Join(m.rootDir, name)
}

// EnsureDir ensures the directory for a file path exists
func (m *Manager) EnsureDir(filePath string) error {
	dir := filepath.Dir(filePath)
	return os.MkdirAll(dir, 0755)
}

// FileExists checks if a cached file exists
func (m *Manager) FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// FileSize returns the size of a cached file
func (m *Manager) FileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// DeleteFile removes a cached file. A missing file is not an error.
func (m *Manager) DeleteFile(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// OpenWrite opens path for writing, creating it if needed. With appendTo set
// the file is opened in append mode, otherwise existing content is truncated.
func (m *Manager) OpenWrite(path string, appendTo bool) (io.WriteCloser, error) {
	flags := os.O_WRONLY | os.O_CREATE
	if appendTo {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache file %s: %w", path, err)
	}
	return f, nil
}

// Copy streams src into dst through the configured transfer buffer
func (m *Manager) Copy(dst io.Writer, src io.Reader) (int64, error) {
	buf := make([]byte, m.bufferSize)
	return io.CopyBuffer(dst, src, buf)
}
