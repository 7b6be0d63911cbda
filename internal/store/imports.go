// ABOUTME: Import history storage operations.
// ABOUTME: Handles inserting and querying import attempts and their outcomes.

package store

import "time"

// ImportRecord is one import attempt, successful or not.
type ImportRecord struct {
	ID           int64
	Timestamp    time.Time
	TaskID       string
	RecordID     string
	FieldPath    string
	SourceAPIKey string
	Filename     string
	MimeType     string
	RowCount     int
	ColumnCount  int
	DurationMs   int
	Status       string // "succeeded" or "failed"
	Error        string
}

// LogImport inserts an import history entry
func (s *Store) LogImport(rec *ImportRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO imports (task_id, record_id, field_path, source_api_key, filename, mime_type, row_count, column_count, duration_ms, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.TaskID, rec.RecordID, rec.FieldPath, rec.SourceAPIKey, rec.Filename, rec.MimeType, rec.RowCount, rec.ColumnCount, rec.DurationMs, rec.Status, rec.Error)
	return err
}

// ImportQuery represents filters for import history
type ImportQuery struct {
	Limit    int
	Offset   int
	RecordID string
	Status   string
}

// GetImports retrieves import history with filtering, newest first
func (s *Store) GetImports(q *ImportQuery) ([]*ImportRecord, error) {
	query := `SELECT id, timestamp, task_id, COALESCE(record_id, ''), COALESCE(field_path, ''),
	          COALESCE(source_api_key, ''), COALESCE(filename, ''), COALESCE(mime_type, ''),
	          row_count, column_count, duration_ms, status, COALESCE(error, '')
	          FROM imports WHERE 1=1`
	args := []any{}

	if q.RecordID != "" {
		query += " AND record_id = ?"
		args = append(args, q.RecordID)
	}
	if q.Status != "" {
		query += " AND status = ?"
		args = append(args, q.Status)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}
	query += " ORDER BY timestamp DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, q.Offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*ImportRecord
	for rows.Next() {
		rec := &ImportRecord{}
		var timestamp string
		if err := rows.Scan(&rec.ID, &timestamp, &rec.TaskID, &rec.RecordID, &rec.FieldPath,
			&rec.SourceAPIKey, &rec.Filename, &rec.MimeType,
			&rec.RowCount, &rec.ColumnCount, &rec.DurationMs, &rec.Status, &rec.Error); err != nil {
			return nil, err
		}
		rec.Timestamp = parseTimestamp(timestamp)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ImportStats represents aggregate import statistics
type ImportStats struct {
	TotalImports  int
	FailedImports int
	TotalRows     int
}

// GetImportStats computes aggregate counts over the whole history
func (s *Store) GetImportStats() (*ImportStats, error) {
	stats := &ImportStats{}
	err := s.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(row_count), 0)
		FROM imports
	`).Scan(&stats.TotalImports, &stats.FailedImports, &stats.TotalRows)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func parseTimestamp(s string) time.Time {
	for _, layout := range []string{
		"2006-01-02 15:04:05",
		time.RFC3339,
		"2006-01-02T15:04:05Z",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
