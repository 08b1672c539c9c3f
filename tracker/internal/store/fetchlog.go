package store

import "context"

// InsertFetchLog records one fetch attempt.
func (s *Store) InsertFetchLog(ctx context.Context, entry *FetchLogEntry) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO fetch_log (id, person_id, status, status_code, error_message,
		excerpt, duration_ms, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.PersonID, entry.Status, entry.StatusCode,
		entry.ErrorMessage, entry.Excerpt, entry.DurationMs, entry.FetchedAt,
	)
	return err
}

// FetchLogForPerson returns a person's fetch attempts newest-first,
// capped at limit (0 means no cap).
func (s *Store) FetchLogForPerson(ctx context.Context, personID string, limit int) ([]*FetchLogEntry, error) {
	q := `SELECT id, person_id, status, status_code, error_message, excerpt,
		duration_ms, fetched_at
		FROM fetch_log WHERE person_id = ? ORDER BY fetched_at DESC`
	args := []any{personID}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*FetchLogEntry
	for rows.Next() {
		var e FetchLogEntry
		if err := rows.Scan(&e.ID, &e.PersonID, &e.Status, &e.StatusCode,
			&e.ErrorMessage, &e.Excerpt, &e.DurationMs, &e.FetchedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
