package port

import "github.com/vertextoedge/pkgfetch/internal/domain"

// FetchLogRepository persists the outcome of fetch operations.
type FetchLogRepository interface {
	// Record appends one fetch attempt to the history. The record's ID is
	// filled in on success.
	Record(rec *domain.FetchRecord) error

	// Recent returns up to limit records, newest first.
	Recent(limit int) ([]domain.FetchRecord, error)
}
