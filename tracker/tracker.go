// Package tracker follows the public career trail of a set of tracked
// people. Each refresh run fetches every tracked profile page, distills
// the current (title, company) pair from its metadata and compares it
// against the stored snapshot, appending a history row whenever the
// pair moved.
package tracker

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"

	"github.com/hazyhaar/parcours/headline"
	"github.com/hazyhaar/parcours/idgen"
	"github.com/hazyhaar/parcours/kit"
	"github.com/hazyhaar/parcours/tracker/internal/fetch"
	"github.com/hazyhaar/parcours/tracker/internal/store"
)

// ErrNotFound mirrors the storage sentinel for callers that never
// import internal packages.
var ErrNotFound = store.ErrNotFound

// RunSummary aggregates one refresh run. Lines holds one entry per
// checked person, in check order.
type RunSummary struct {
	Checked   int      `json:"checked"`
	Changed   int      `json:"changed"`
	Unchanged int      `json:"unchanged"`
	Skipped   int      `json:"skipped"`
	Lines     []string `json:"lines"`
}

// String renders the trailing one-line tally of a run.
func (r *RunSummary) String() string {
	return fmt.Sprintf("Checked %d people. %d changed. %d unchanged. %d skipped.",
		r.Checked, r.Changed, r.Unchanged, r.Skipped)
}

// Service is the tracker entry point. All operations are safe for
// concurrent use; refresh runs themselves are sequential by design so
// the target site sees at most one request at a time.
type Service struct {
	store   *store.Store
	fetcher *fetch.Fetcher
	diff    *DiffEngine
	logger  *slog.Logger
	config  *Config
	newID   idgen.Generator
	newLog  idgen.Generator
	md      *converter.Converter
	now     func() time.Time
}

// New creates a Service on an open database, applying the schema if
// needed.
func New(db *sql.DB, cfg *Config, logger *slog.Logger) (*Service, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	if err := store.ApplySchema(db); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Service{
		store:   store.NewStore(db),
		fetcher: fetch.New(cfg.Fetch),
		diff:    NewDiffEngine(nil),
		logger:  logger,
		config:  cfg,
		newID:   idgen.Prefixed("per_", idgen.UUIDv7()),
		newLog:  idgen.Prefixed("fl_", idgen.UUIDv7()),
		md: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
		now: time.Now,
	}, nil
}

// Refresh checks every tracked person, or only those at the given firm
// when firmFilter is non-empty. Fetches run one at a time with the
// configured delay between them; the delay is skipped after the last
// person. A canceled context stops the run between people and returns
// the partial summary with ctx.Err().
func (s *Service) Refresh(ctx context.Context, firmFilter string) (*RunSummary, error) {
	people, err := s.store.ListPeople(ctx, firmFilter)
	if err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}

	sum := &RunSummary{}
	for i, p := range people {
		line, status := s.observe(ctx, p)
		sum.Checked++
		sum.Lines = append(sum.Lines, line)
		switch status {
		case outcomeChanged:
			sum.Changed++
		case outcomeUnchanged:
			sum.Unchanged++
		default:
			sum.Skipped++
		}
		s.logger.Info("person checked",
			"person_id", p.ID, "name", p.Name, "status", status,
			"transport", kit.GetTransport(ctx))

		if i < len(people)-1 && s.config.Delay > 0 {
			select {
			case <-ctx.Done():
				return sum, ctx.Err()
			case <-time.After(s.config.Delay):
			}
		}
	}
	return sum, nil
}

// CheckPerson runs a single observation for one person, outside any
// scheduled run. Returns the human-readable result line.
func (s *Service) CheckPerson(ctx context.Context, id string) (string, error) {
	p, err := s.store.GetPerson(ctx, id)
	if err != nil {
		return "", err
	}
	line, _ := s.observe(ctx, p)
	return line, nil
}

const (
	outcomeChanged   = "changed"
	outcomeUnchanged = "unchanged"
	outcomeSkipped   = "skipped"
)

func (s *Service) observe(ctx context.Context, p *store.Person) (string, string) {
	start := s.now()
	res, err := s.fetcher.Fetch(ctx, p.ProfileURL)
	if err != nil {
		s.logFetch(ctx, p, start, statusCodeOf(err), "error", err.Error(), nil)
		return skipLine(p, SkipReason(err)), outcomeSkipped
	}

	doc, err := headline.Parse(res.Body)
	if err != nil {
		s.logFetch(ctx, p, start, res.StatusCode, "error", err.Error(), nil)
		return skipLine(p, "parse_error"), outcomeSkipped
	}

	obs, err := headline.Extract(doc)
	if err != nil || (obs.Title == nil && obs.Company == nil) {
		s.logFetch(ctx, p, start, res.StatusCode, "no_headline", "", res.Body)
		return skipLine(p, "profile not public / no headline"), outcomeSkipped
	}

	out, err := s.diff.Apply(ctx, s.store, p, obs.Title, obs.Company)
	if err != nil {
		s.logFetch(ctx, p, start, res.StatusCode, "error", err.Error(), nil)
		return skipLine(p, "db_error"), outcomeSkipped
	}

	s.logFetch(ctx, p, start, res.StatusCode, "ok", "", res.Body)
	if out.Changed {
		return out.Description, outcomeChanged
	}
	return out.Description, outcomeUnchanged
}

// logFetch records the fetch attempt. Log failures never fail the
// observation; they are logged and dropped.
func (s *Service) logFetch(ctx context.Context, p *store.Person, start time.Time, code int, status, errMsg string, body []byte) {
	entry := &store.FetchLogEntry{
		ID:           s.newLog(),
		PersonID:     p.ID,
		Status:       status,
		StatusCode:   code,
		ErrorMessage: errMsg,
		Excerpt:      s.excerpt(p.ProfileURL, body),
		DurationMs:   s.now().Sub(start).Milliseconds(),
		FetchedAt:    s.now().UnixMilli(),
	}
	if err := s.store.InsertFetchLog(ctx, entry); err != nil {
		s.logger.Warn("fetch log write failed", "person_id", p.ID, "error", err)
	}
}

// excerpt renders the fetched page to markdown and truncates it for
// audit storage.
func (s *Service) excerpt(sourceURL string, body []byte) string {
	if len(body) == 0 || s.config.ExcerptLen <= 0 {
		return ""
	}
	md, err := s.md.ConvertString(string(body), converter.WithDomain(sourceURL))
	if err != nil {
		return ""
	}
	md = strings.TrimSpace(md)
	runes := []rune(md)
	if len(runes) > s.config.ExcerptLen {
		md = string(runes[:s.config.ExcerptLen])
	}
	return md
}

// AddPerson registers a person with an explicit name. Firm is optional.
func (s *Service) AddPerson(ctx context.Context, name, firm, rawURL string) (*store.Person, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name required", ErrInvalidInput)
	}
	profileURL, err := NormalizeProfileURL(rawURL)
	if err != nil {
		return nil, err
	}

	now := s.now().UnixMilli()
	p := &store.Person{
		ID:         s.newID(),
		Name:       name,
		Firm:       normString(firm),
		ProfileURL: profileURL,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.InsertPerson(ctx, p); err != nil {
		return nil, fmt.Errorf("insert person: %w", err)
	}
	s.logger.Info("person added", "person_id", p.ID, "name", p.Name)
	return p, nil
}

// AddFromURL fetches a profile page and registers its person under the
// detected name, with the detected company as the initial firm. The
// snapshot stays empty so the next refresh produces the INIT record.
func (s *Service) AddFromURL(ctx context.Context, rawURL string) (*store.Person, error) {
	profileURL, err := NormalizeProfileURL(rawURL)
	if err != nil {
		return nil, err
	}

	res, err := s.fetcher.Fetch(ctx, profileURL)
	if err != nil {
		return nil, err
	}
	doc, err := headline.Parse(res.Body)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	obs, err := headline.Extract(doc)
	if err != nil {
		return nil, err
	}
	if obs.Name == nil {
		return nil, ErrNoNameDetected
	}

	now := s.now().UnixMilli()
	p := &store.Person{
		ID:         s.newID(),
		Name:       *obs.Name,
		Firm:       norm(obs.Company),
		ProfileURL: profileURL,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.InsertPerson(ctx, p); err != nil {
		return nil, fmt.Errorf("insert person: %w", err)
	}
	s.logger.Info("person added from url", "person_id", p.ID, "name", p.Name)
	return p, nil
}

// People lists tracked people, optionally filtered by exact firm.
func (s *Service) People(ctx context.Context, firmFilter string) ([]*store.Person, error) {
	return s.store.ListPeople(ctx, firmFilter)
}

// Person returns one tracked person.
func (s *Service) Person(ctx context.Context, id string) (*store.Person, error) {
	return s.store.GetPerson(ctx, id)
}

// History returns a person's change records, most recent first.
func (s *Service) History(ctx context.Context, personID string) ([]*store.ChangeRecord, error) {
	if _, err := s.store.GetPerson(ctx, personID); err != nil {
		return nil, err
	}
	return s.store.HistoryForPerson(ctx, personID)
}

// LatestTitleChange returns the most recent record that moved the
// title, or nil when the title never moved.
func (s *Service) LatestTitleChange(ctx context.Context, personID string) (*store.ChangeRecord, error) {
	if _, err := s.store.GetPerson(ctx, personID); err != nil {
		return nil, err
	}
	return s.store.LatestTitleChange(ctx, personID)
}

// FetchLog returns a person's recent fetch attempts.
func (s *Service) FetchLog(ctx context.Context, personID string, limit int) ([]*store.FetchLogEntry, error) {
	if _, err := s.store.GetPerson(ctx, personID); err != nil {
		return nil, err
	}
	return s.store.FetchLogForPerson(ctx, personID, limit)
}

// SetFirmByID sets or clears (empty firm) a person's firm.
func (s *Service) SetFirmByID(ctx context.Context, id, firm string) error {
	return s.store.UpdateFirmByID(ctx, id, normString(firm))
}

// SetFirmByURL sets or clears the firm of every person tracked under
// the given profile URL. Returns the number of updated rows.
func (s *Service) SetFirmByURL(ctx context.Context, rawURL, firm string) (int64, error) {
	profileURL, err := NormalizeProfileURL(rawURL)
	if err != nil {
		return 0, err
	}
	return s.store.UpdateFirmByURL(ctx, profileURL, normString(firm))
}

// CountPeople returns the number of tracked people.
func (s *Service) CountPeople(ctx context.Context) (int, error) {
	return s.store.CountPeople(ctx)
}

var exportHeader = []string{
	"timestamp", "name", "firm",
	"old_title", "new_title", "old_company", "new_company", "change_type",
}

// ExportHistoryCSV writes the full change history as CSV, oldest first.
func (s *Service) ExportHistoryCSV(ctx context.Context, w io.Writer) error {
	rows, err := s.store.ExportHistory(ctx)
	if err != nil {
		return fmt.Errorf("export history: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.Timestamp, r.Name, orEmpty(r.Firm),
			orEmpty(r.OldTitle), orEmpty(r.NewTitle),
			orEmpty(r.OldCompany), orEmpty(r.NewCompany),
			string(r.ChangeType),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SkipReason maps an observation error to the short reason tag used in
// result lines.
func SkipReason(err error) string {
	var fe *fetch.Error
	if errors.As(err, &fe) {
		return fe.Reason()
	}
	if errors.Is(err, headline.ErrNoPublicHeadline) {
		return "profile not public / no headline"
	}
	if errors.Is(err, ErrNoNameDetected) {
		return "could_not_detect_name"
	}
	return err.Error()
}

func skipLine(p *store.Person, reason string) string {
	return fmt.Sprintf("[SKIP] %s → %s", displayPerson(p), reason)
}

func displayPerson(p *store.Person) string {
	if p.Firm != nil {
		return fmt.Sprintf("%s (%s)", p.Name, *p.Firm)
	}
	return fmt.Sprintf("%s (-)", p.Name)
}

func statusCodeOf(err error) int {
	var fe *fetch.Error
	if errors.As(err, &fe) {
		return fe.StatusCode
	}
	return 0
}

func orEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
