package fetcher

import (
	"io"

	"github.com/vertextoedge/pkgfetch/internal/util/ratelimiter"
	"go.uber.org/zap"
)

// progressReader logs byte-count progress while a body streams through it,
// throttled so slow transfers don't flood the log.
type progressReader struct {
	reader  io.Reader
	logger  *zap.Logger
	limiter *ratelimiter.Limiter
	url     string
	initial int64 // offset the transfer started from
	read    int64
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.read += int64(n)

	if allowed, _ := r.limiter.Allow(); allowed {
		r.logger.Debug("transfer progress",
			zap.String("url", r.url),
			zap.Int64("bytes", r.initial+r.read))
	}

	return n, err
}
