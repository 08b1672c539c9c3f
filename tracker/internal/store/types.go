package store

// ChangeType classifies the transition between two snapshots.
type ChangeType string

const (
	ChangeInit            ChangeType = "INIT"
	ChangeTitle           ChangeType = "TITLE_CHANGE"
	ChangeCompany         ChangeType = "COMPANY_CHANGE"
	ChangeTitleAndCompany ChangeType = "TITLE_AND_COMPANY_CHANGE"
)

// Person is one tracked entity and its last known snapshot.
// LastTitle and LastCompany are nil only before the first successful
// observation. LastSeen is an ISO date (YYYY-MM-DD).
type Person struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Firm        *string `json:"firm,omitempty"`
	ProfileURL  string  `json:"profile_url"`
	LastTitle   *string `json:"last_title,omitempty"`
	LastCompany *string `json:"last_company,omitempty"`
	LastSeen    *string `json:"last_seen,omitempty"`
	CreatedAt   int64   `json:"created_at"`
	UpdatedAt   int64   `json:"updated_at"`
}

// ChangeRecord is one immutable history row. Timestamp is RFC 3339 UTC.
type ChangeRecord struct {
	ID         string     `json:"id"`
	PersonID   string     `json:"person_id"`
	Timestamp  string     `json:"timestamp"`
	OldTitle   *string    `json:"old_title,omitempty"`
	NewTitle   *string    `json:"new_title,omitempty"`
	OldCompany *string    `json:"old_company,omitempty"`
	NewCompany *string    `json:"new_company,omitempty"`
	ChangeType ChangeType `json:"change_type"`
}

// FetchLogEntry is one fetch attempt record. Excerpt holds a truncated
// markdown rendition of the fetched page for audit.
type FetchLogEntry struct {
	ID           string `json:"id"`
	PersonID     string `json:"person_id"`
	Status       string `json:"status"`
	StatusCode   int    `json:"status_code"`
	ErrorMessage string `json:"error_message"`
	Excerpt      string `json:"excerpt"`
	DurationMs   int64  `json:"duration_ms"`
	FetchedAt    int64  `json:"fetched_at"`
}

// ExportRow is one row of the full history export, joined with the
// person's identity.
type ExportRow struct {
	Timestamp  string
	Name       string
	Firm       *string
	OldTitle   *string
	NewTitle   *string
	OldCompany *string
	NewCompany *string
	ChangeType ChangeType
}
