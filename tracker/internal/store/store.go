// Package store provides the data access layer for the tracker
// database: the watchlist, the append-only change history, and the
// per-fetch log.
package store

import "database/sql"

// Store wraps the tracker database.
type Store struct {
	DB *sql.DB
}

// NewStore creates a Store from an already-opened database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}
