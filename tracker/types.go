package tracker

import "github.com/hazyhaar/parcours/tracker/internal/store"

// Aliases for the storage types so callers never import internal packages.
type (
	Person        = store.Person
	ChangeRecord  = store.ChangeRecord
	FetchLogEntry = store.FetchLogEntry
	ExportRow     = store.ExportRow
	ChangeType    = store.ChangeType
)

const (
	ChangeInit            = store.ChangeInit
	ChangeTitle           = store.ChangeTitle
	ChangeCompany         = store.ChangeCompany
	ChangeTitleAndCompany = store.ChangeTitleAndCompany
)
