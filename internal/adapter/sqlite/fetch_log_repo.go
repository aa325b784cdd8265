package sqlite

import (
	"database/sql"

	"github.com/vertextoedge/pkgfetch/internal/domain"
)

// Record appends one fetch attempt to the history
func (s *Store) Record(rec *domain.FetchRecord) error {
	query := `
		INSERT INTO fetch_log (
			url, cache_path, status, resumed_from, bytes_written, last_error
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.Exec(query,
		rec.URL, rec.CachePath, string(rec.Status),
		rec.ResumedFrom, rec.BytesWritten, rec.LastError)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	rec.ID = id
	return nil
}

// Recent returns up to limit fetch records, newest first
func (s *Store) Recent(limit int) ([]domain.FetchRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, url, cache_path, status, resumed_from, bytes_written,
			   last_error, created_at
		FROM fetch_log
		ORDER BY id DESC
		LIMIT ?
	`

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.FetchRecord
	for rows.Next() {
		var rec domain.FetchRecord
		var status string
		var lastError sql.NullString

		err := rows.Scan(&rec.ID, &rec.URL, &rec.CachePath, &status,
			&rec.ResumedFrom, &rec.BytesWritten, &lastError, &rec.CreatedAt)
		if err != nil {
			return nil, err
		}

		rec.Status = domain.FetchStatus(status)
		if lastError.Valid {
			rec.LastError = lastError.String
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
