package fetcher

import (
	"fmt"

	"github.com/vertextoedge/pkgfetch/internal/domain"
	"github.com/vertextoedge/pkgfetch/internal/port"
	"go.uber.org/zap"
)

// Validator decides, before any body bytes are pulled, whether a cached file
// is still valid and how much of it can be kept.
type Validator struct {
	transport port.Transport
	stamps    port.StampStore
	fs        port.FileSystem
	logger    *zap.Logger
}

// NewValidator creates a new Validator
func NewValidator(transport port.Transport, stamps port.StampStore, fs port.FileSystem, logger *zap.Logger) *Validator {
	return &Validator{
		transport: transport,
		stamps:    stamps,
		fs:        fs,
		logger:    logger,
	}
}

// Validate reconciles the cached file at cachePath against the remote
// resource at src and produces a resume plan.
//
// The remote is asked for metadata only. When the cached file's stamp
// matches the remote identity marker the file is kept as a valid prefix;
// otherwise it is deleted and the marker (when present) is persisted for the
// next validation. The plan then follows from plain length arithmetic: a
// known remote size already covered by the local length is complete,
// anything else resumes from the local length. An unknown remote size never
// yields a complete verdict.
func (v *Validator) Validate(src, cachePath string) (domain.ResumePlan, domain.RemoteMetadata, error) {
	head, err := v.transport.HeadOnly(src)
	if err != nil {
		terr := domain.NewTransportError(domain.OpDownloadHeaders, src, v.transport.LastErrorDetail(), err)
		v.logger.Error(terr.Error())
		return domain.ResumePlan{}, domain.RemoteMetadata{}, terr
	}

	meta := domain.RemoteMetadata{
		IdentityMarker: extractQuoted(head.ETag),
		Size:           head.ContentLength,
	}

	fresh := false
	deleted := false
	if v.fs.FileExists(cachePath) {
		if meta.IdentityMarker != "" && v.stamps.Matches(cachePath, meta.IdentityMarker) {
			fresh = true
		} else {
			if err := v.fs.DeleteFile(cachePath); err != nil {
				v.logger.Error("failed to delete stale cache file",
					zap.String("path", cachePath),
					zap.Error(err))
				return domain.ResumePlan{}, meta, fmt.Errorf("failed to delete stale cache file %s: %w", cachePath, err)
			}
			deleted = true
			v.logger.Debug("cache file is stale",
				zap.String("url", src),
				zap.String("path", cachePath))
		}
	}

	// Stamp writes are best-effort: losing one only delays staleness
	// detection until the next validation.
	if !fresh && meta.IdentityMarker != "" {
		if err := v.stamps.Write(cachePath, meta.IdentityMarker); err != nil {
			v.logger.Error(fmt.Sprintf("Failed to create stamp for %s.", cachePath),
				zap.Error(err))
		}
	}

	var local int64
	if v.fs.FileExists(cachePath) {
		local, err = v.fs.FileSize(cachePath)
		if err != nil {
			return domain.ResumePlan{}, meta, fmt.Errorf("failed to stat cache file %s: %w", cachePath, err)
		}
	}

	if meta.Size >= 0 && local >= meta.Size {
		return domain.ResumePlan{Kind: domain.PlanComplete}, meta, nil
	}
	if deleted {
		return domain.ResumePlan{Kind: domain.PlanRestart}, meta, nil
	}
	return domain.ResumePlan{Kind: domain.PlanResume, Offset: local}, meta, nil
}
