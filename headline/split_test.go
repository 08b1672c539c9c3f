package headline

import "testing"

func strOf(p *string) string {
	if p == nil {
		return "<nil>"
	}
	return *p
}

func TestSplitComposite_ThreeSegments(t *testing.T) {
	// WHAT: A full "Name - Title - Company" string splits into all three parts.
	// WHY: This is the canonical og:title shape on profile pages.
	name, title, company := SplitComposite("Jane Smith - VP Engineering - Acme Corp")
	if strOf(name) != "Jane Smith" || strOf(title) != "VP Engineering" || strOf(company) != "Acme Corp" {
		t.Errorf("got (%s, %s, %s)", strOf(name), strOf(title), strOf(company))
	}
}

func TestSplitComposite_TwoSegments(t *testing.T) {
	// WHAT: Two segments yield name and title, no company.
	// WHY: Many headlines omit the employer entirely.
	name, title, company := SplitComposite("Jane Smith - CEO")
	if strOf(name) != "Jane Smith" || strOf(title) != "CEO" {
		t.Errorf("got (%s, %s)", strOf(name), strOf(title))
	}
	if company != nil {
		t.Errorf("company: got %q, want nil", *company)
	}
}

func TestSplitComposite_TitleAtCompany(t *testing.T) {
	// WHAT: A second segment of the form "Title at Company" splits on the
	// first " at " occurrence.
	// WHY: "Director at Beta Inc" encodes both fields in one segment.
	name, title, company := SplitComposite("Jane Smith - Director at Beta Inc")
	if strOf(name) != "Jane Smith" || strOf(title) != "Director" || strOf(company) != "Beta Inc" {
		t.Errorf("got (%s, %s, %s)", strOf(name), strOf(title), strOf(company))
	}
}

func TestSplitComposite_FourSegments(t *testing.T) {
	// WHAT: With four or more segments the middle segments are rejoined as
	// the title and the last segment is the company.
	// WHY: Titles themselves may contain the delimiter ("VP - Platform").
	name, title, company := SplitComposite("Jane Smith - VP - Platform - Acme Corp")
	if strOf(name) != "Jane Smith" {
		t.Errorf("name: got %s", strOf(name))
	}
	if strOf(title) != "VP - Platform" {
		t.Errorf("title: got %s", strOf(title))
	}
	if strOf(company) != "Acme Corp" {
		t.Errorf("company: got %s", strOf(company))
	}
}

func TestSplitComposite_SuffixStripped(t *testing.T) {
	// WHAT: Known trailing site-name suffixes are removed before splitting.
	// WHY: Otherwise the suffix pollutes the company field.
	name, title, company := SplitComposite("Jane Smith - CEO - Acme Corp | LinkedIn")
	if strOf(company) != "Acme Corp" {
		t.Errorf("company: got %s, want Acme Corp", strOf(company))
	}
	if strOf(name) != "Jane Smith" || strOf(title) != "CEO" {
		t.Errorf("got (%s, %s)", strOf(name), strOf(title))
	}
}

func TestSplitComposite_PipeFallback(t *testing.T) {
	// WHAT: When " - " yields a single segment and the string contains a
	// pipe, the pipe becomes the delimiter.
	// WHY: Some pages use "Name | Title | Company" formatting.
	name, title, company := SplitComposite("Jane Smith | CTO | Gamma LLC")
	if strOf(name) != "Jane Smith" || strOf(title) != "CTO" || strOf(company) != "Gamma LLC" {
		t.Errorf("got (%s, %s, %s)", strOf(name), strOf(title), strOf(company))
	}
}

func TestSplitComposite_SingleSegment(t *testing.T) {
	// WHAT: A bare name yields only the name field.
	// WHY: Pages with no headline still carry the person's name in the title.
	name, title, company := SplitComposite("Jane Smith")
	if strOf(name) != "Jane Smith" {
		t.Errorf("name: got %s", strOf(name))
	}
	if title != nil || company != nil {
		t.Error("title and company should be nil")
	}
}

func TestSplitComposite_EmptyInput(t *testing.T) {
	// WHAT: Empty and whitespace-only input yields all-nil fields.
	// WHY: Empty strings must coerce to nil before any comparison.
	for _, input := range []string{"", "   ", "|"} {
		name, title, company := SplitComposite(input)
		if name != nil || title != nil || company != nil {
			t.Errorf("SplitComposite(%q): expected all nil, got (%s, %s, %s)",
				input, strOf(name), strOf(title), strOf(company))
		}
	}
}

func TestSplitComposite_BareDelimiter(t *testing.T) {
	// WHAT: A delimiter with only surrounding whitespace collapses to a
	// single "-" segment, which lands in the name field.
	// WHY: Trimming runs before splitting, so " - " is no longer a
	// delimiter by the time segments are cut.
	name, title, company := SplitComposite(" - ")
	if strOf(name) != "-" {
		t.Errorf("name: got %s, want -", strOf(name))
	}
	if title != nil || company != nil {
		t.Error("title and company should be nil")
	}
}

func TestSplitComposite_EmptySegmentsDropped(t *testing.T) {
	// WHAT: Consecutive delimiters do not produce empty segments.
	// WHY: " -  - " runs must not shift the company into the title slot.
	name, title, company := SplitComposite("Jane Smith -  - Acme Corp")
	if strOf(name) != "Jane Smith" || strOf(title) != "Acme Corp" {
		t.Errorf("got (%s, %s)", strOf(name), strOf(title))
	}
	if company != nil {
		t.Errorf("company: got %q, want nil", *company)
	}
}

func TestSplitComposite_AtWithoutSpaces(t *testing.T) {
	// WHAT: "at" embedded in a word does not split the second segment.
	// WHY: Only the literal " at " token separates title from company.
	_, title, company := SplitComposite("Jane Smith - Data Curator")
	if strOf(title) != "Data Curator" {
		t.Errorf("title: got %s", strOf(title))
	}
	if company != nil {
		t.Errorf("company: got %q, want nil", *company)
	}
}
