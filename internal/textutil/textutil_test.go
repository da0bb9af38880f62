package textutil_test

import (
	"testing"

	"photomise/internal/textutil"
)

func TestSanitize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Prospect Park", "prospect_park"},
		{"  Coney Island  ", "coney_island"},
		{"Café Grumpy", "caf%C3%A9_grumpy"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := textutil.Sanitize(tc.in); got != tc.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDisplayTitle(t *testing.T) {
	if got := textutil.DisplayTitle("prospect_park"); got != "Prospect Park" {
		t.Errorf("DisplayTitle = %q, want %q", got, "Prospect Park")
	}
	if got := textutil.DisplayTitle("caf%C3%A9_grumpy"); got != "Café Grumpy" {
		t.Errorf("DisplayTitle = %q, want %q", got, "Café Grumpy")
	}
}
