package store

import (
	"context"
	"database/sql"
	"errors"
)

// AppendChange writes one immutable history row.
func (s *Store) AppendChange(ctx context.Context, rec *ChangeRecord) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO history (id, person_id, timestamp, old_title, new_title,
		old_company, new_company, change_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.PersonID, rec.Timestamp, rec.OldTitle, rec.NewTitle,
		rec.OldCompany, rec.NewCompany, rec.ChangeType,
	)
	return err
}

// HistoryForPerson returns a person's change history newest-first.
// Timestamps have second resolution; the UUIDv7-based id breaks ties
// between rows written within the same second.
func (s *Store) HistoryForPerson(ctx context.Context, personID string) ([]*ChangeRecord, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, person_id, timestamp, old_title, new_title, old_company,
		new_company, change_type
		FROM history WHERE person_id = ?
		ORDER BY timestamp DESC, id DESC`, personID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*ChangeRecord
	for rows.Next() {
		var rec ChangeRecord
		if err := rows.Scan(&rec.ID, &rec.PersonID, &rec.Timestamp, &rec.OldTitle,
			&rec.NewTitle, &rec.OldCompany, &rec.NewCompany, &rec.ChangeType); err != nil {
			return nil, err
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}

// LatestTitleChange returns the most recent history row in which the
// title changed (TITLE_CHANGE or TITLE_AND_COMPANY_CHANGE), or nil.
func (s *Store) LatestTitleChange(ctx context.Context, personID string) (*ChangeRecord, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT id, person_id, timestamp, old_title, new_title, old_company,
		new_company, change_type
		FROM history
		WHERE person_id = ? AND change_type IN (?, ?)
		ORDER BY timestamp DESC, id DESC LIMIT 1`,
		personID, ChangeTitle, ChangeTitleAndCompany)

	var rec ChangeRecord
	err := row.Scan(&rec.ID, &rec.PersonID, &rec.Timestamp, &rec.OldTitle,
		&rec.NewTitle, &rec.OldCompany, &rec.NewCompany, &rec.ChangeType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ExportHistory returns the full history joined with person identity,
// oldest-first, for CSV export.
func (s *Store) ExportHistory(ctx context.Context) ([]*ExportRow, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT h.timestamp, p.name, p.firm, h.old_title, h.new_title,
		h.old_company, h.new_company, h.change_type
		FROM history h
		JOIN people p ON p.id = h.person_id
		ORDER BY h.timestamp ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ExportRow
	for rows.Next() {
		var r ExportRow
		if err := rows.Scan(&r.Timestamp, &r.Name, &r.Firm, &r.OldTitle,
			&r.NewTitle, &r.OldCompany, &r.NewCompany, &r.ChangeType); err != nil {
			return nil, err
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}
