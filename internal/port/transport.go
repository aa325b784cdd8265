package port

import "io"

// HeadResult holds the metadata obtained by a header-only request.
type HeadResult struct {
	// ETag is the raw ETag header value, empty when the header was absent.
	ETag string
	// ContentLength is the remote size in bytes, -1 when not reported.
	ContentLength int64
}

// Transport performs network exchanges against a remote resource.
//
// A Transport represents one in-flight exchange at a time. Callers must not
// issue concurrent requests against the same instance; concurrent downloads
// need one Transport each.
type Transport interface {
	// HeadOnly retrieves response metadata for url without the body.
	HeadOnly(url string) (HeadResult, error)

	// GetRange requests the resource body starting at fromOffset.
	// A fromOffset of 0 requests the full body. The caller owns the
	// returned reader and must close it.
	GetRange(url string, fromOffset int64) (io.ReadCloser, error)

	// LastErrorDetail returns the human-readable detail recorded by the
	// most recent exchange, or the empty string when there is none.
	LastErrorDetail() string
}
