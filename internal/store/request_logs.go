// ABOUTME: Request log storage operations.
// ABOUTME: Handles inserting and querying HTTP request logs for the bridge service.

package store

import "time"

// RequestLog represents an HTTP request log entry
type RequestLog struct {
	ID         int64
	Timestamp  time.Time
	Method     string
	Path       string
	StatusCode int
	DurationMs int
}

// LogRequest inserts a request log entry
func (s *Store) LogRequest(log *RequestLog) error {
	_, err := s.db.Exec(`
		INSERT INTO request_logs (method, path, status_code, duration_ms)
		VALUES (?, ?, ?, ?)
	`, log.Method, log.Path, log.StatusCode, log.DurationMs)
	return err
}

// GetRequestLogs retrieves the most recent request logs
func (s *Store) GetRequestLogs(limit int) ([]*RequestLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, timestamp, method, path, status_code, duration_ms
		FROM request_logs ORDER BY timestamp DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*RequestLog
	for rows.Next() {
		entry := &RequestLog{}
		var timestamp string
		if err := rows.Scan(&entry.ID, &timestamp, &entry.Method, &entry.Path, &entry.StatusCode, &entry.DurationMs); err != nil {
			return nil, err
		}
		entry.Timestamp = parseTimestamp(timestamp)
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}
