package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when a person ID matches no row.
var ErrNotFound = errors.New("store: person not found")

// InsertPerson adds a new person to the watchlist. The snapshot fields
// start out null; the first observation initializes them.
func (s *Store) InsertPerson(ctx context.Context, p *Person) error {
	now := time.Now().UnixMilli()
	if p.CreatedAt == 0 {
		p.CreatedAt = now
	}
	if p.UpdatedAt == 0 {
		p.UpdatedAt = now
	}
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO people (id, name, firm, profile_url, last_title, last_company,
		last_seen, created_at, updated_at)
		VALUES (?, ?, ?, ?, NULL, NULL, NULL, ?, ?)`,
		p.ID, p.Name, p.Firm, p.ProfileURL, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

// GetPerson retrieves a person by ID.
func (s *Store) GetPerson(ctx context.Context, id string) (*Person, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT id, name, firm, profile_url, last_title, last_company, last_seen,
		created_at, updated_at
		FROM people WHERE id = ?`, id)
	p, err := scanPerson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

// ListPeople returns all tracked people ordered by firm then name.
// A non-empty firmFilter restricts the result to that exact firm.
func (s *Store) ListPeople(ctx context.Context, firmFilter string) ([]*Person, error) {
	const cols = `id, name, firm, profile_url, last_title, last_company, last_seen,
		created_at, updated_at`

	var rows *sql.Rows
	var err error
	if firmFilter != "" {
		rows, err = s.DB.QueryContext(ctx,
			`SELECT `+cols+` FROM people WHERE firm = ? ORDER BY firm ASC, name ASC`,
			firmFilter)
	} else {
		rows, err = s.DB.QueryContext(ctx,
			`SELECT `+cols+` FROM people ORDER BY firm ASC, name ASC`)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var people []*Person
	for rows.Next() {
		p, err := scanPersonRows(rows)
		if err != nil {
			return nil, err
		}
		people = append(people, p)
	}
	return people, rows.Err()
}

// UpdateSnapshot writes the stored (title, company) pair and the last
// seen date. Callers pass the full post-transition values; a nil field
// here really means "no longer known", which the diff engine only
// produces for INIT.
func (s *Store) UpdateSnapshot(ctx context.Context, id string, title, company *string, seenDate string) error {
	now := time.Now().UnixMilli()
	_, err := s.DB.ExecContext(ctx,
		`UPDATE people SET last_title = ?, last_company = ?, last_seen = ?, updated_at = ?
		WHERE id = ?`,
		title, company, seenDate, now, id)
	return err
}

// UpdateFirmByID sets or clears the firm for one person. A nil firm
// clears it.
func (s *Store) UpdateFirmByID(ctx context.Context, id string, firm *string) error {
	now := time.Now().UnixMilli()
	res, err := s.DB.ExecContext(ctx,
		`UPDATE people SET firm = ?, updated_at = ? WHERE id = ?`, firm, now, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateFirmByURL sets or clears the firm for every person tracking the
// given profile URL, returning the number of rows updated. Duplicate
// entries for one URL are all updated.
func (s *Store) UpdateFirmByURL(ctx context.Context, profileURL string, firm *string) (int64, error) {
	now := time.Now().UnixMilli()
	res, err := s.DB.ExecContext(ctx,
		`UPDATE people SET firm = ?, updated_at = ? WHERE profile_url = ?`,
		firm, now, profileURL)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountPeople returns the total number of tracked people.
func (s *Store) CountPeople(ctx context.Context) (int, error) {
	var count int
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM people`).Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPersonInto(r rowScanner) (*Person, error) {
	var p Person
	err := r.Scan(&p.ID, &p.Name, &p.Firm, &p.ProfileURL, &p.LastTitle,
		&p.LastCompany, &p.LastSeen, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanPerson(row *sql.Row) (*Person, error)       { return scanPersonInto(row) }
func scanPersonRows(rows *sql.Rows) (*Person, error) { return scanPersonInto(rows) }
