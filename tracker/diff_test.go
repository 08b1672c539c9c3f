package tracker

import (
	"context"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/parcours/dbopen"
	"github.com/hazyhaar/parcours/tracker/internal/store"
)

func strptr(s string) *string { return &s }

func testEngine() *DiffEngine {
	e := NewDiffEngine(nil)
	e.now = func() time.Time {
		return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	}
	return e
}

func testStore(t *testing.T) *store.Store {
	t.Helper()
	db := dbopen.OpenMemory(t)
	if err := store.ApplySchema(db); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return store.NewStore(db)
}

// WHAT: first observation against an empty snapshot produces INIT.
// WHY: the baseline must be recorded as history, not silently absorbed.
func TestClassify_Init(t *testing.T) {
	e := testEngine()
	p := &store.Person{ID: "per_1", Name: "Ana"}

	out := e.Classify(p, strptr("Analyst"), strptr("Acme"))
	if !out.Changed {
		t.Fatal("expected Changed")
	}
	if out.Record == nil || out.Record.ChangeType != store.ChangeInit {
		t.Fatalf("expected INIT record, got %+v", out.Record)
	}
	if out.Record.OldTitle != nil || out.Record.OldCompany != nil {
		t.Error("INIT record must have nil old values")
	}
	if !strings.Contains(out.Description, "[INIT] Ana") {
		t.Errorf("description = %q", out.Description)
	}
}

// WHAT: an empty snapshot with an all-nil observation still INITs.
// WHY: the entity was observed; the baseline is "nothing visible".
func TestClassify_InitAllNil(t *testing.T) {
	e := testEngine()
	p := &store.Person{ID: "per_1", Name: "Ana"}

	out := e.Classify(p, nil, nil)
	if out.Record == nil || out.Record.ChangeType != store.ChangeInit {
		t.Fatalf("expected INIT record, got %+v", out.Record)
	}
	if out.NewTitle != nil || out.NewCompany != nil {
		t.Error("snapshot must stay nil after all-nil INIT")
	}
}

// WHAT: an observation identical to the snapshot yields no record.
// WHY: history rows are appended only when something moved.
func TestClassify_NoChange(t *testing.T) {
	e := testEngine()
	p := &store.Person{ID: "per_1", Name: "Ana",
		LastTitle: strptr("Analyst"), LastCompany: strptr("Acme")}

	out := e.Classify(p, strptr("Analyst"), strptr("Acme"))
	if out.Changed || out.Record != nil {
		t.Fatalf("expected no change, got %+v", out)
	}
	if out.Description != "[NO CHANGE] Ana" {
		t.Errorf("description = %q", out.Description)
	}
}

// WHAT: a moved title with an unchanged company is TITLE_CHANGE.
func TestClassify_TitleChange(t *testing.T) {
	e := testEngine()
	p := &store.Person{ID: "per_1", Name: "Ana",
		LastTitle: strptr("Analyst"), LastCompany: strptr("Acme")}

	out := e.Classify(p, strptr("VP"), strptr("Acme"))
	if out.Record == nil || out.Record.ChangeType != store.ChangeTitle {
		t.Fatalf("expected TITLE_CHANGE, got %+v", out.Record)
	}
	if *out.NewTitle != "VP" || *out.NewCompany != "Acme" {
		t.Errorf("snapshot = %v/%v", display(out.NewTitle), display(out.NewCompany))
	}
	if !strings.Contains(out.Description, "'Analyst' → 'VP'") {
		t.Errorf("description = %q", out.Description)
	}
	if strings.Contains(out.Description, "Company:") {
		t.Errorf("unchanged company must not be listed: %q", out.Description)
	}
}

// WHAT: a nil observed field never counts as a change and never
// overwrites the stored value.
// WHY: a field missing from the page means "not visible today", not
// "cleared".
func TestClassify_NilPreservesStored(t *testing.T) {
	e := testEngine()
	p := &store.Person{ID: "per_1", Name: "Ana",
		LastTitle: strptr("Analyst"), LastCompany: strptr("Acme")}

	out := e.Classify(p, nil, strptr("Globex"))
	if out.Record == nil || out.Record.ChangeType != store.ChangeCompany {
		t.Fatalf("expected COMPANY_CHANGE, got %+v", out.Record)
	}
	if out.NewTitle == nil || *out.NewTitle != "Analyst" {
		t.Errorf("stored title must be preserved, got %v", out.NewTitle)
	}
	if *out.Record.NewTitle != "Analyst" {
		t.Error("record must carry the preserved title")
	}
}

// WHAT: both fields moving at once is TITLE_AND_COMPANY_CHANGE with
// both transitions in the description.
func TestClassify_BothChange(t *testing.T) {
	e := testEngine()
	p := &store.Person{ID: "per_1", Name: "Ana",
		LastTitle: strptr("Analyst"), LastCompany: strptr("Acme")}

	out := e.Classify(p, strptr("VP"), strptr("Globex"))
	if out.Record.ChangeType != store.ChangeTitleAndCompany {
		t.Fatalf("change type = %s", out.Record.ChangeType)
	}
	if !strings.Contains(out.Description, "Title:") ||
		!strings.Contains(out.Description, "Company:") {
		t.Errorf("description = %q", out.Description)
	}
}

// WHAT: empty-string observations are normalized to nil before the
// comparison.
func TestClassify_EmptyStringIsNil(t *testing.T) {
	e := testEngine()
	p := &store.Person{ID: "per_1", Name: "Ana",
		LastTitle: strptr("Analyst"), LastCompany: strptr("Acme")}

	out := e.Classify(p, strptr("  "), strptr(""))
	if out.Changed {
		t.Fatalf("blank observation must not count as change: %+v", out)
	}
}

// WHAT: Apply persists the history row and the snapshot, and stamps
// last_seen even when nothing changed.
func TestApply_PersistsRecordAndSnapshot(t *testing.T) {
	st := testStore(t)
	e := testEngine()
	ctx := context.Background()

	p := &store.Person{ID: "per_1", Name: "Ana", ProfileURL: "https://x.test/ana",
		CreatedAt: 1, UpdatedAt: 1}
	if err := st.InsertPerson(ctx, p); err != nil {
		t.Fatal(err)
	}

	out, err := e.Apply(ctx, st, p, strptr("Analyst"), strptr("Acme"))
	if err != nil {
		t.Fatal(err)
	}
	if out.Record.ChangeType != store.ChangeInit {
		t.Fatalf("change type = %s", out.Record.ChangeType)
	}

	got, err := st.GetPerson(ctx, "per_1")
	if err != nil {
		t.Fatal(err)
	}
	if got.LastTitle == nil || *got.LastTitle != "Analyst" {
		t.Errorf("snapshot title = %v", got.LastTitle)
	}
	if got.LastSeen == nil || *got.LastSeen != "2026-03-14" {
		t.Errorf("last_seen = %v", got.LastSeen)
	}

	hist, err := st.HistoryForPerson(ctx, "per_1")
	if err != nil {
		t.Fatal(err)
	}
	if len(hist) != 1 {
		t.Fatalf("history rows = %d", len(hist))
	}

	// Second identical observation: no new row, last_seen refreshed.
	refreshed, _ := st.GetPerson(ctx, "per_1")
	out, err = e.Apply(ctx, st, refreshed, strptr("Analyst"), strptr("Acme"))
	if err != nil {
		t.Fatal(err)
	}
	if out.Record != nil {
		t.Error("identical observation must not append history")
	}
	hist, _ = st.HistoryForPerson(ctx, "per_1")
	if len(hist) != 1 {
		t.Fatalf("history rows after no-change = %d", len(hist))
	}
}
