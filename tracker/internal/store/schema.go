package store

import "database/sql"

// Schema is the complete tracker schema.
const Schema = `
-- Tracked people and their last known snapshot
CREATE TABLE IF NOT EXISTS people (
    id           TEXT PRIMARY KEY,
    name         TEXT NOT NULL,
    firm         TEXT,
    profile_url  TEXT NOT NULL,
    last_title   TEXT,
    last_company TEXT,
    last_seen    TEXT,
    created_at   INTEGER NOT NULL,
    updated_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_people_firm ON people(firm, name);

-- Append-only change history
CREATE TABLE IF NOT EXISTS history (
    id          TEXT PRIMARY KEY,
    person_id   TEXT NOT NULL REFERENCES people(id) ON DELETE CASCADE,
    timestamp   TEXT NOT NULL,
    old_title   TEXT,
    new_title   TEXT,
    old_company TEXT,
    new_company TEXT,
    change_type TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_history_person ON history(person_id, timestamp DESC);

-- Fetch log (observability)
CREATE TABLE IF NOT EXISTS fetch_log (
    id            TEXT PRIMARY KEY,
    person_id     TEXT NOT NULL REFERENCES people(id) ON DELETE CASCADE,
    status        TEXT NOT NULL,
    status_code   INTEGER,
    error_message TEXT NOT NULL DEFAULT '',
    excerpt       TEXT NOT NULL DEFAULT '',
    duration_ms   INTEGER NOT NULL DEFAULT 0,
    fetched_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_fetch_log_person ON fetch_log(person_id, fetched_at DESC);
`

// ApplySchema creates all tables and indexes on the given database.
func ApplySchema(db *sql.DB) error {
	_, err := db.Exec(Schema)
	return err
}
