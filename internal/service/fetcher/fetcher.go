package fetcher

import (
	"time"

	"github.com/vertextoedge/pkgfetch/internal/domain"
	"github.com/vertextoedge/pkgfetch/internal/port"
	"go.uber.org/zap"
)

// Config holds fetcher settings
type Config struct {
	// ProgressInterval throttles progress log lines during transfers.
	ProgressInterval time.Duration
}

// Service fetches remote resources into local cache files, validating the
// cache first and resuming partial transfers instead of restarting them.
type Service struct {
	validator *Validator
	executor  *Executor
	fs        port.FileSystem
	history   port.FetchLogRepository
	logger    *zap.Logger
}

// New creates a new fetch service. history may be nil, in which case no
// fetch history is recorded.
func New(cfg *Config, transport port.Transport, stamps port.StampStore, fs port.FileSystem, history port.FetchLogRepository, logger *zap.Logger) *Service {
	return &Service{
		validator: NewValidator(transport, stamps, fs, logger),
		executor:  NewExecutor(transport, fs, logger, cfg.ProgressInterval),
		fs:        fs,
		history:   history,
		logger:    logger,
	}
}

// Fetch downloads src into the cache file at cachePath. With useCache set
// the cached copy is validated first and reused or resumed when possible;
// without it any cached copy is discarded and the resource is fetched in
// full.
func (s *Service) Fetch(src, cachePath string, useCache bool) (*domain.FetchResult, error) {
	res := &domain.FetchResult{URL: src, CachePath: cachePath}

	if useCache {
		plan, meta, err := s.validator.Validate(src, cachePath)
		if err != nil {
			res.Status = domain.StatusFailed
			s.record(res, err)
			return nil, err
		}

		res.Plan = plan
		if plan.Kind == domain.PlanComplete {
			res.Status = domain.StatusCached
			s.logger.Info("cache hit, no transfer needed",
				zap.String("url", src),
				zap.String("path", cachePath),
				zap.Int64("size", meta.Size))
			s.record(res, nil)
			return res, nil
		}
		if plan.Kind == domain.PlanResume {
			res.ResumedFrom = plan.Offset
		}
	} else {
		// Cache bypass: drop whatever is on disk and start over.
		if err := s.fs.DeleteFile(cachePath); err != nil {
			s.logger.Warn("failed to remove cache file before refetch",
				zap.String("path", cachePath),
				zap.Error(err))
		}
		res.Plan = domain.ResumePlan{Kind: domain.PlanRestart}
	}

	written, err := s.executor.Fetch(src, cachePath, res.Plan)
	res.BytesWritten = written
	if err != nil {
		res.Status = domain.StatusFailed
		s.record(res, err)
		return nil, err
	}

	res.Status = domain.StatusFetched
	s.record(res, nil)
	return res, nil
}

// History returns up to limit fetch records, newest first.
func (s *Service) History(limit int) ([]domain.FetchRecord, error) {
	if s.history == nil {
		return nil, domain.ErrNoHistoryStore
	}
	return s.history.Recent(limit)
}

// record appends the outcome to the fetch history, when one is configured.
func (s *Service) record(res *domain.FetchResult, ferr error) {
	if s.history == nil {
		return
	}

	rec := &domain.FetchRecord{
		URL:          res.URL,
		CachePath:    res.CachePath,
		Status:       res.Status,
		ResumedFrom:  res.ResumedFrom,
		BytesWritten: res.BytesWritten,
	}
	if ferr != nil {
		rec.LastError = ferr.Error()
	}

	if err := s.history.Record(rec); err != nil {
		s.logger.Warn("failed to record fetch history",
			zap.String("url", res.URL),
			zap.Error(err))
	}
}
