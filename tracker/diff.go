package tracker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hazyhaar/parcours/idgen"
	"github.com/hazyhaar/parcours/tracker/internal/store"
)

// Outcome is the result of classifying one observation against a
// stored snapshot. NewTitle and NewCompany are the full post-transition
// snapshot values; Record is nil when nothing changed.
type Outcome struct {
	Changed     bool
	Record      *store.ChangeRecord
	NewTitle    *string
	NewCompany  *string
	Description string
}

// DiffEngine classifies observations against stored snapshots and
// applies the resulting single write. The engine never creates or
// deletes entities and never touches the firm.
type DiffEngine struct {
	newID idgen.Generator
	now   func() time.Time
}

// NewDiffEngine creates a DiffEngine. A nil generator falls back to the
// module default.
func NewDiffEngine(gen idgen.Generator) *DiffEngine {
	if gen == nil {
		gen = idgen.Default
	}
	return &DiffEngine{
		newID: idgen.Prefixed("chg_", gen),
		now:   time.Now,
	}
}

// Classify runs the snapshot state machine without touching storage.
//
// A field counts as changed only when the observed value is non-nil and
// differs from the stored one: a nil observed field never triggers a
// change and its stored value is preserved in the new snapshot. The
// lone exception is INIT, where the snapshot becomes exactly the
// observed values, nil fields included.
func (e *DiffEngine) Classify(p *store.Person, obsTitle, obsCompany *string) *Outcome {
	obsTitle = norm(obsTitle)
	obsCompany = norm(obsCompany)
	ts := e.now().UTC().Format(time.RFC3339)

	if p.LastTitle == nil && p.LastCompany == nil {
		rec := &store.ChangeRecord{
			ID:         e.newID(),
			PersonID:   p.ID,
			Timestamp:  ts,
			NewTitle:   obsTitle,
			NewCompany: obsCompany,
			ChangeType: store.ChangeInit,
		}
		return &Outcome{
			Changed:    true,
			Record:     rec,
			NewTitle:   obsTitle,
			NewCompany: obsCompany,
			Description: fmt.Sprintf("[INIT] %s: title='%s' company='%s'",
				p.Name, display(obsTitle), display(obsCompany)),
		}
	}

	titleChanged := obsTitle != nil && !equalValue(obsTitle, p.LastTitle)
	companyChanged := obsCompany != nil && !equalValue(obsCompany, p.LastCompany)

	if !titleChanged && !companyChanged {
		return &Outcome{
			NewTitle:    p.LastTitle,
			NewCompany:  p.LastCompany,
			Description: fmt.Sprintf("[NO CHANGE] %s", p.Name),
		}
	}

	newTitle := p.LastTitle
	if titleChanged {
		newTitle = obsTitle
	}
	newCompany := p.LastCompany
	if companyChanged {
		newCompany = obsCompany
	}

	var changeType store.ChangeType
	switch {
	case titleChanged && companyChanged:
		changeType = store.ChangeTitleAndCompany
	case titleChanged:
		changeType = store.ChangeTitle
	default:
		changeType = store.ChangeCompany
	}

	rec := &store.ChangeRecord{
		ID:         e.newID(),
		PersonID:   p.ID,
		Timestamp:  ts,
		OldTitle:   p.LastTitle,
		NewTitle:   newTitle,
		OldCompany: p.LastCompany,
		NewCompany: newCompany,
		ChangeType: changeType,
	}

	lines := []string{fmt.Sprintf("[CHANGE] %s:", p.Name)}
	if titleChanged {
		lines = append(lines, fmt.Sprintf("  Title:    '%s' → '%s'",
			display(p.LastTitle), display(obsTitle)))
	}
	if companyChanged {
		lines = append(lines, fmt.Sprintf("  Company:  '%s' → '%s'",
			display(p.LastCompany), display(obsCompany)))
	}

	return &Outcome{
		Changed:     true,
		Record:      rec,
		NewTitle:    newTitle,
		NewCompany:  newCompany,
		Description: strings.Join(lines, "\n"),
	}
}

// Apply classifies and persists: the history row (when a record was
// produced) and the updated snapshot. last_seen is set to today on
// every successful observation, changed or not. The read-then-write is
// not transactional; callers serialize per-entity runs.
func (e *DiffEngine) Apply(ctx context.Context, st *store.Store, p *store.Person, obsTitle, obsCompany *string) (*Outcome, error) {
	out := e.Classify(p, obsTitle, obsCompany)

	if out.Record != nil {
		if err := st.AppendChange(ctx, out.Record); err != nil {
			return nil, fmt.Errorf("append history: %w", err)
		}
	}

	today := e.now().UTC().Format("2006-01-02")
	if err := st.UpdateSnapshot(ctx, p.ID, out.NewTitle, out.NewCompany, today); err != nil {
		return nil, fmt.Errorf("update snapshot: %w", err)
	}
	return out, nil
}

func equalValue(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// display formats a nullable value for human-readable output.
func display(p *string) string {
	if p == nil {
		return "-"
	}
	return *p
}
