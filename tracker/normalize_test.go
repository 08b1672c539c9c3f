package tracker

import (
	"errors"
	"testing"
)

// WHAT: URL normalization lowercases scheme and host, drops fragments,
// strips the trailing slash and sorts query parameters.
// WHY: two spellings of the same profile must map to one stored URL.
func TestNormalizeProfileURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"HTTPS://Profiles.Test/in/ana", "https://profiles.test/in/ana"},
		{"https://profiles.test/in/ana/", "https://profiles.test/in/ana"},
		{"https://profiles.test/in/ana#section", "https://profiles.test/in/ana"},
		{"https://profiles.test/in/ana?b=2&a=1", "https://profiles.test/in/ana?a=1&b=2"},
		{"http://profiles.test/", "http://profiles.test"},
	}
	for _, c := range cases {
		got, err := NormalizeProfileURL(c.in)
		if err != nil {
			t.Errorf("%q: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("%q: got %q, want %q", c.in, got, c.want)
		}
	}
}

// WHAT: non-http schemes and unparseable input are rejected.
func TestNormalizeProfileURLRejects(t *testing.T) {
	for _, in := range []string{"", "ftp://profiles.test/in/ana", "://bad", "profiles.test/in/ana"} {
		if _, err := NormalizeProfileURL(in); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%q: err = %v, want ErrInvalidInput", in, err)
		}
	}
}

// WHAT: norm trims whitespace and folds blank values to nil.
func TestNorm(t *testing.T) {
	if norm(nil) != nil {
		t.Error("nil must stay nil")
	}
	blank := "   "
	if norm(&blank) != nil {
		t.Error("blank must fold to nil")
	}
	v := "  VP "
	got := norm(&v)
	if got == nil || *got != "VP" {
		t.Errorf("got %v", got)
	}
}
