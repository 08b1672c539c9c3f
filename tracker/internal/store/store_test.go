package store

import (
	"context"
	"errors"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/parcours/dbopen"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	db := dbopen.OpenMemory(t)
	if err := ApplySchema(db); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return NewStore(db)
}

func ptr(s string) *string { return &s }

func seedPerson(t *testing.T, s *Store, id, name string, firm *string) *Person {
	t.Helper()
	p := &Person{
		ID:         id,
		Name:       name,
		Firm:       firm,
		ProfileURL: "https://profiles.test/" + id,
		CreatedAt:  100,
		UpdatedAt:  100,
	}
	if err := s.InsertPerson(context.Background(), p); err != nil {
		t.Fatalf("insert %s: %v", id, err)
	}
	return p
}

// WHAT: a person roundtrips through insert and get, including the
// nullable columns.
func TestPersonRoundtrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	seedPerson(t, s, "per_1", "Ana", ptr("Acme"))

	got, err := s.GetPerson(ctx, "per_1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Ana" || got.Firm == nil || *got.Firm != "Acme" {
		t.Errorf("got %+v", got)
	}
	if got.LastTitle != nil || got.LastCompany != nil || got.LastSeen != nil {
		t.Error("fresh person must have an empty snapshot")
	}
}

// WHAT: an unknown ID surfaces the not-found sentinel.
func TestGetPersonNotFound(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.GetPerson(context.Background(), "per_missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

// WHAT: listing orders by firm then name, and the firm filter matches
// exactly.
func TestListPeople(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	seedPerson(t, s, "per_1", "Zoe", ptr("Acme"))
	seedPerson(t, s, "per_2", "Ana", ptr("Acme"))
	seedPerson(t, s, "per_3", "Bob", ptr("Globex"))
	seedPerson(t, s, "per_4", "Cid", nil)

	all, err := s.ListPeople(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 {
		t.Fatalf("len = %d", len(all))
	}
	// SQLite sorts NULL firms first.
	if all[0].Name != "Cid" || all[1].Name != "Ana" || all[2].Name != "Zoe" {
		t.Errorf("order = %s, %s, %s", all[0].Name, all[1].Name, all[2].Name)
	}

	acme, err := s.ListPeople(ctx, "Acme")
	if err != nil {
		t.Fatal(err)
	}
	if len(acme) != 2 {
		t.Fatalf("acme len = %d", len(acme))
	}
}

// WHAT: UpdateSnapshot writes title, company and last_seen in place.
func TestUpdateSnapshot(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedPerson(t, s, "per_1", "Ana", nil)

	if err := s.UpdateSnapshot(ctx, "per_1", ptr("VP"), nil, "2026-03-14"); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetPerson(ctx, "per_1")
	if got.LastTitle == nil || *got.LastTitle != "VP" {
		t.Errorf("title = %v", got.LastTitle)
	}
	if got.LastCompany != nil {
		t.Errorf("company = %v", got.LastCompany)
	}
	if got.LastSeen == nil || *got.LastSeen != "2026-03-14" {
		t.Errorf("last_seen = %v", got.LastSeen)
	}
}

// WHAT: firm updates by ID and by URL, including clearing with nil.
func TestUpdateFirm(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	p := seedPerson(t, s, "per_1", "Ana", ptr("Acme"))

	if err := s.UpdateFirmByID(ctx, "per_1", ptr("Globex")); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetPerson(ctx, "per_1")
	if got.Firm == nil || *got.Firm != "Globex" {
		t.Errorf("firm = %v", got.Firm)
	}

	if err := s.UpdateFirmByID(ctx, "per_missing", ptr("X")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	n, err := s.UpdateFirmByURL(ctx, p.ProfileURL, nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("updated = %d", n)
	}
	got, _ = s.GetPerson(ctx, "per_1")
	if got.Firm != nil {
		t.Errorf("firm = %v, want cleared", got.Firm)
	}
}

// WHAT: history rows come back most recent first; the export join is
// oldest first and carries the person's identity.
func TestHistoryAndExport(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedPerson(t, s, "per_1", "Ana", ptr("Acme"))

	recs := []*ChangeRecord{
		{ID: "chg_1", PersonID: "per_1", Timestamp: "2026-01-01T00:00:00Z",
			NewTitle: ptr("Analyst"), NewCompany: ptr("Acme"), ChangeType: ChangeInit},
		{ID: "chg_2", PersonID: "per_1", Timestamp: "2026-02-01T00:00:00Z",
			OldTitle: ptr("Analyst"), NewTitle: ptr("VP"),
			OldCompany: ptr("Acme"), NewCompany: ptr("Acme"), ChangeType: ChangeTitle},
	}
	for _, r := range recs {
		if err := s.AppendChange(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	hist, err := s.HistoryForPerson(ctx, "per_1")
	if err != nil {
		t.Fatal(err)
	}
	if len(hist) != 2 || hist[0].ID != "chg_2" {
		t.Fatalf("hist = %+v", hist)
	}

	rows, err := s.ExportHistory(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[0].ChangeType != ChangeInit {
		t.Fatalf("rows = %+v", rows)
	}
	if rows[0].Name != "Ana" || rows[0].Firm == nil || *rows[0].Firm != "Acme" {
		t.Errorf("join row = %+v", rows[0])
	}
}

// WHAT: two records written within the same second (identical RFC 3339
// timestamps) still come back in write order, newest first.
// WHY: timestamps have second resolution, so a fast INIT-then-change
// sequence ties on timestamp alone; the time-ordered id decides.
func TestHistorySameSecondOrdering(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedPerson(t, s, "per_1", "Ana", nil)

	ts := "2026-04-01T12:00:00Z"
	for _, r := range []*ChangeRecord{
		{ID: "chg_1", PersonID: "per_1", Timestamp: ts,
			NewTitle: ptr("Analyst"), ChangeType: ChangeInit},
		{ID: "chg_2", PersonID: "per_1", Timestamp: ts,
			OldTitle: ptr("Analyst"), NewTitle: ptr("VP"), ChangeType: ChangeTitle},
		{ID: "chg_3", PersonID: "per_1", Timestamp: ts,
			OldTitle: ptr("VP"), NewTitle: ptr("SVP"), ChangeType: ChangeTitle},
	} {
		if err := s.AppendChange(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	hist, err := s.HistoryForPerson(ctx, "per_1")
	if err != nil {
		t.Fatal(err)
	}
	if len(hist) != 3 || hist[0].ID != "chg_3" || hist[2].ID != "chg_1" {
		t.Fatalf("hist = %+v, want chg_3, chg_2, chg_1", hist)
	}

	rec, err := s.LatestTitleChange(ctx, "per_1")
	if err != nil {
		t.Fatal(err)
	}
	if rec == nil || rec.ID != "chg_3" {
		t.Fatalf("rec = %+v, want chg_3", rec)
	}
}

// WHAT: LatestTitleChange skips company-only records and returns nil
// when the title never moved.
func TestLatestTitleChange(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedPerson(t, s, "per_1", "Ana", nil)

	rec, err := s.LatestTitleChange(ctx, "per_1")
	if err != nil {
		t.Fatal(err)
	}
	if rec != nil {
		t.Fatalf("rec = %+v, want nil", rec)
	}

	for _, r := range []*ChangeRecord{
		{ID: "chg_1", PersonID: "per_1", Timestamp: "2026-01-01T00:00:00Z",
			NewCompany: ptr("Acme"), ChangeType: ChangeCompany},
		{ID: "chg_2", PersonID: "per_1", Timestamp: "2026-02-01T00:00:00Z",
			NewTitle: ptr("VP"), ChangeType: ChangeTitle},
		{ID: "chg_3", PersonID: "per_1", Timestamp: "2026-03-01T00:00:00Z",
			NewCompany: ptr("Globex"), ChangeType: ChangeCompany},
	} {
		if err := s.AppendChange(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	rec, err = s.LatestTitleChange(ctx, "per_1")
	if err != nil {
		t.Fatal(err)
	}
	if rec == nil || rec.ID != "chg_2" {
		t.Fatalf("rec = %+v, want chg_2", rec)
	}
}

// WHAT: fetch log entries roundtrip and the listing honors its limit.
func TestFetchLog(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedPerson(t, s, "per_1", "Ana", nil)

	for i, id := range []string{"fl_1", "fl_2", "fl_3"} {
		entry := &FetchLogEntry{
			ID:        id,
			PersonID:  "per_1",
			Status:    "ok",
			Excerpt:   "## Ana",
			FetchedAt: int64(i + 1),
		}
		if err := s.InsertFetchLog(ctx, entry); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := s.FetchLogForPerson(ctx, "per_1", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0].ID != "fl_3" {
		t.Fatalf("entries = %+v", entries)
	}
	if entries[0].Excerpt != "## Ana" {
		t.Errorf("excerpt = %q", entries[0].Excerpt)
	}
}

// WHAT: deleting a person cascades to history and fetch log rows.
func TestForeignKeyCascade(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedPerson(t, s, "per_1", "Ana", nil)

	if err := s.AppendChange(ctx, &ChangeRecord{
		ID: "chg_1", PersonID: "per_1",
		Timestamp: "2026-01-01T00:00:00Z", ChangeType: ChangeInit,
	}); err != nil {
		t.Fatal(err)
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM people WHERE id = ?`, "per_1"); err != nil {
		t.Fatal(err)
	}
	hist, err := s.HistoryForPerson(ctx, "per_1")
	if err != nil {
		t.Fatal(err)
	}
	if len(hist) != 0 {
		t.Fatalf("hist = %+v, want cascade delete", hist)
	}
}
