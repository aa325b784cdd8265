package port

import "io"

// FileSystem defines the local file operations the fetcher relies on.
type FileSystem interface {
	// CachePath maps a resource name to its path under the cache root.
	CachePath(name string) string

	// EnsureDir creates the parent directory of filePath if needed.
	EnsureDir(filePath string) error

	// FileExists checks if a cached file exists
	FileExists(path string) bool

	// FileSize returns the byte length of the file at path.
	FileSize(path string) (int64, error)

	// DeleteFile removes the file at path. Missing files are not an error.
	DeleteFile(path string) error

	// OpenWrite opens path for writing, creating it if needed. With
	// appendTo set the file is opened in append mode, otherwise any
	// existing content is truncated.
	OpenWrite(path string, appendTo bool) (io.WriteCloser, error)

	// Copy streams src into dst through the manager's transfer buffer,
	// returning the number of bytes written.
	Copy(dst io.Writer, src io.Reader) (int64, error)
}
