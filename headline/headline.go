package headline

import (
	"encoding/json"
	"errors"
	stdhtml "html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ErrNoPublicHeadline is returned when every extraction stage comes up
// empty: the profile is not publicly visible or carries no headline
// metadata at all.
var ErrNoPublicHeadline = errors.New("headline: no public headline data")

// Observation is the result of one extraction over one fetched page.
// Fields are nil when the page did not yield them; a successful
// extraction may still leave individual fields nil.
type Observation struct {
	Name    *string `json:"name_from_page"`
	Title   *string `json:"title"`
	Company *string `json:"company"`
}

// merge fills only still-nil fields. First non-nil wins, independently
// per field, so the name may come from a later stage than the title.
func (o *Observation) merge(name, title, company *string) {
	if o.Name == nil {
		o.Name = name
	}
	if o.Title == nil {
		o.Title = title
	}
	if o.Company == nil {
		o.Company = company
	}
}

func (o *Observation) saturated() bool {
	return o.Name != nil && o.Title != nil && o.Company != nil
}

// strategy inspects one metadata source and fills still-nil Observation
// fields.
type strategy func(d Document, o *Observation)

// strategies is the ordered fallback chain. Each stage only fills nil
// fields; the chain stops once the Observation is saturated. The
// description stage is guarded on the primary delimiter so free-form
// prose does not produce false-positive splits.
var strategies = []strategy{
	fromMeta(false, "og:title"),
	fromMeta(false, "twitter:title"),
	fromMeta(true, "og:description", "description"),
	fromMeta(false, "twitter:description"),
	fromPersonBlocks,
	fromDocumentTitle,
}

// Extract runs the fallback chain over a parsed document.
//
// When all stages are exhausted with nothing found it returns
// ErrNoPublicHeadline and a nil Observation; any other outcome is a
// valid (possibly partial) Observation.
func Extract(doc Document) (*Observation, error) {
	obs := &Observation{}
	for _, s := range strategies {
		if obs.saturated() {
			break
		}
		s(doc, obs)
	}
	if obs.Name == nil && obs.Title == nil && obs.Company == nil {
		return nil, ErrNoPublicHeadline
	}
	return obs, nil
}

// strictPolicy strips all markup from meta content values. Profile
// pages occasionally embed tags or entities inside meta attributes.
var strictPolicy = bluemonday.StrictPolicy()

// cleanText removes markup and resolves HTML entities before the
// splitter sees the string.
func cleanText(s string) string {
	return strings.TrimSpace(stdhtml.UnescapeString(strictPolicy.Sanitize(s)))
}

// fromMeta builds a strategy over one or more meta keys; the first key
// with non-empty content is used. With guarded set, content lacking the
// primary delimiter is ignored entirely.
func fromMeta(guarded bool, keys ...string) strategy {
	return func(d Document, o *Observation) {
		for _, key := range keys {
			content := d.MetaContent(key)
			if content == "" {
				continue
			}
			if guarded && !strings.Contains(content, primaryDelimiter) {
				return
			}
			o.merge(SplitComposite(cleanText(content)))
			return
		}
	}
}

// personBlock is the subset of a JSON-LD Person object the extractor
// reads. Structured fields are taken literally, never split.
type personBlock struct {
	Type     string `json:"@type"`
	Name     string `json:"name"`
	JobTitle string `json:"jobTitle"`
	WorksFor struct {
		Name string `json:"name"`
	} `json:"worksFor"`
}

// fromPersonBlocks scans embedded JSON-LD for Person objects. A block
// may hold a single object or a list; candidates are consumed until
// title and company are filled. Malformed payloads are skipped.
func fromPersonBlocks(d Document, o *Observation) {
	for _, raw := range d.StructuredBlocks() {
		for _, p := range decodePersons(raw) {
			if p.Type != "Person" {
				continue
			}
			o.merge(nonEmpty(p.Name), nonEmpty(p.JobTitle), nonEmpty(p.WorksFor.Name))
		}
		if o.Title != nil || o.Company != nil {
			return
		}
	}
}

// decodePersons parses a JSON-LD payload into candidate objects,
// accepting both a bare object and a list. Non-object list entries are
// skipped.
func decodePersons(raw string) []personBlock {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "[") {
		var items []json.RawMessage
		if err := json.Unmarshal([]byte(trimmed), &items); err != nil {
			return nil
		}
		var list []personBlock
		for _, item := range items {
			var p personBlock
			if err := json.Unmarshal(item, &p); err == nil {
				list = append(list, p)
			}
		}
		return list
	}
	var one personBlock
	if err := json.Unmarshal([]byte(trimmed), &one); err != nil {
		return nil
	}
	return []personBlock{one}
}

// fromDocumentTitle is the last resort: split the <title> element text.
func fromDocumentTitle(d Document, o *Observation) {
	if t := d.TitleText(); t != "" {
		o.merge(SplitComposite(cleanText(t)))
	}
}
