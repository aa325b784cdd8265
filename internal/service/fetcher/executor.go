package fetcher

import (
	"fmt"
	"io"
	"time"

	"github.com/vertextoedge/pkgfetch/internal/domain"
	"github.com/vertextoedge/pkgfetch/internal/port"
	"github.com/vertextoedge/pkgfetch/internal/util/ratelimiter"
	"go.uber.org/zap"
)

// Executor carries out the body transfer a resume plan calls for, appending
// to or rewriting the local cache file.
type Executor struct {
	transport        port.Transport
	fs               port.FileSystem
	logger           *zap.Logger
	progressInterval time.Duration
}

// NewExecutor creates a new Executor. progressInterval throttles progress
// log lines during body streaming.
func NewExecutor(transport port.Transport, fs port.FileSystem, logger *zap.Logger, progressInterval time.Duration) *Executor {
	if progressInterval == 0 {
		progressInterval = 10 * time.Second
	}
	return &Executor{
		transport:        transport,
		fs:               fs,
		logger:           logger,
		progressInterval: progressInterval,
	}
}

// Fetch performs the transfer for plan, streaming the remote body at src
// into cachePath. Returns the number of bytes written.
//
// A complete plan returns immediately without touching the transport. On a
// transport failure mid-body the partially written file is left in place so
// a later call can resume from it.
func (e *Executor) Fetch(src, cachePath string, plan domain.ResumePlan) (int64, error) {
	if plan.Kind == domain.PlanComplete {
		e.logger.Debug("cache file already complete",
			zap.String("url", src),
			zap.String("path", cachePath))
		return 0, nil
	}

	if err := e.fs.EnsureDir(cachePath); err != nil {
		return 0, fmt.Errorf("failed to create parent dir for %s: %w", cachePath, err)
	}

	appendTo := plan.Kind == domain.PlanResume
	f, err := e.fs.OpenWrite(cachePath, appendTo)
	if err != nil {
		e.logger.Error("failed to open cache file",
			zap.String("path", cachePath),
			zap.Error(err))
		return 0, err
	}

	offset := int64(0)
	if appendTo {
		offset = plan.Offset
	}

	body, err := e.transport.GetRange(src, offset)
	if err != nil {
		f.Close()
		terr := domain.NewTransportError(domain.OpDownload, src, e.transport.LastErrorDetail(), err)
		e.logger.Error(terr.Error())
		return 0, terr
	}

	reader := io.Reader(body)
	if e.logger.Core().Enabled(zap.DebugLevel) {
		reader = &progressReader{
			reader:  body,
			logger:  e.logger,
			limiter: ratelimiter.New(e.progressInterval),
			url:     src,
			initial: offset,
		}
	}

	written, copyErr := e.fs.Copy(f, reader)
	body.Close()
	closeErr := f.Close()

	if copyErr != nil {
		// Body stream and cache write failures surface through the same
		// path; the bytes already appended stay on disk for a later
		// resume.
		terr := domain.NewTransportError(domain.OpDownload, src, e.transport.LastErrorDetail(), copyErr)
		e.logger.Error(terr.Error())
		return written, terr
	}
	if closeErr != nil {
		return written, fmt.Errorf("failed to close cache file %s: %w", cachePath, closeErr)
	}

	if offset > 0 {
		e.logger.Info("transfer resumed and completed",
			zap.String("url", src),
			zap.Int64("resumed_from", offset),
			zap.Int64("bytes", written))
	} else {
		e.logger.Info("transfer completed",
			zap.String("url", src),
			zap.Int64("bytes", written))
	}

	return written, nil
}
