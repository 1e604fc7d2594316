package textmatch_test

import (
	"testing"

	"tvmeta/internal/textmatch"
)

func TestScoreIdentityIsExact(t *testing.T) {
	for _, value := range []string{"South Park", "Doctor Who (2005)", "The Office (US)", "Amélie"} {
		if got := textmatch.Score(value, value); got != 1.0 {
			t.Fatalf("Score(%q, %q) = %v, want 1.0", value, value, got)
		}
	}
}

func TestScoreCaseInsensitiveExact(t *testing.T) {
	if got := textmatch.Score("south park", "South Park"); got != 1.0 {
		t.Fatalf("expected case-insensitive exact match, got %v", got)
	}
}

func TestScoreBlankInputIsZero(t *testing.T) {
	cases := [][2]string{{"", "South Park"}, {"South Park", ""}, {"   ", "x"}, {"", ""}}
	for _, tc := range cases {
		if got := textmatch.Score(tc[0], tc[1]); got != 0 {
			t.Fatalf("Score(%q, %q) = %v, want 0", tc[0], tc[1], got)
		}
	}
}

func TestScoreYearNormalization(t *testing.T) {
	got := textmatch.Score("Show (2020)", "Show")
	if got <= 0.85 || got > 0.95 {
		t.Fatalf("expected normalized tier score in (0.85, 0.95], got %v", got)
	}
}

func TestScoreQualifierNormalization(t *testing.T) {
	got := textmatch.Score("The Office", "The Office (UK)")
	if got <= 0.85 || got > 0.95 {
		t.Fatalf("expected normalized tier score, got %v", got)
	}
}

func TestScoreDiacriticsFold(t *testing.T) {
	got := textmatch.Score("Pokemon", "Pokémon")
	if got <= 0.85 || got > 0.95 {
		t.Fatalf("expected folded diacritics to match in normalized tier, got %v", got)
	}
}

func TestScoreTierOrdering(t *testing.T) {
	exact := textmatch.Score("Doctor Who", "Doctor Who")
	normalized := textmatch.Score("Doctor Who", "Doctor Who (2005)")
	contains := textmatch.Score("Doctor Who", "Doctor Who Confidential")
	reverse := textmatch.Score("Doctor Who Confidential", "Doctor Who")
	none := textmatch.Score("Doctor Who", "Torchwood")

	if !(exact > normalized && normalized > contains && contains > reverse && none == 0) {
		t.Fatalf("unexpected ordering: exact=%v normalized=%v contains=%v reverse=%v none=%v", exact, normalized, contains, reverse, none)
	}
	if contains <= 0.6 || contains > 0.8 {
		t.Fatalf("containment score out of range: %v", contains)
	}
	if reverse != textmatch.ReverseContainsScore {
		t.Fatalf("reverse containment = %v, want %v", reverse, textmatch.ReverseContainsScore)
	}
}

func TestScoreRange(t *testing.T) {
	pairs := [][2]string{
		{"a", "b"},
		{"Lost", "Lost in Space"},
		{"(2005)", "(1999)"},
		{"Star Trek: The Next Generation", "Star Trek"},
		{"x", "xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx"},
	}
	for _, pair := range pairs {
		got := textmatch.Score(pair[0], pair[1])
		if got < 0 || got > 1 {
			t.Fatalf("Score(%q, %q) = %v out of range", pair[0], pair[1], got)
		}
	}
}

func TestScoreRawContainmentTier(t *testing.T) {
	// Both sides normalize to nothing, so only the raw tier can match.
	got := textmatch.Score("(2005)", "(2005) ")
	if got != 1.0 {
		t.Fatalf("trimmed identical input should be exact, got %v", got)
	}
	got = textmatch.Score("(uk)", "(uk) x")
	if got <= 0.2 || got > 0.4 {
		t.Fatalf("expected raw containment tier, got %v", got)
	}
}

func TestBestPrefersFirstOnTie(t *testing.T) {
	idx, score := textmatch.Best("South Park", []string{"South Park", "south park", "Southpark"})
	if idx != 0 || score != 1.0 {
		t.Fatalf("Best = (%d, %v), want (0, 1.0)", idx, score)
	}
	if idx, _ := textmatch.Best("x", nil); idx != -1 {
		t.Fatalf("expected -1 for empty candidates, got %d", idx)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Doctor Who (2005)", "doctor who"},
		{"  The   Office (US) ", "the office"},
		{"Battlestar Galactica (Reboot)", "battlestar galactica"},
		{"Amélie", "amelie"},
		{"(2020)", ""},
	}
	for _, tc := range tests {
		if got := textmatch.Normalize(tc.input); got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestThresholdsClassify(t *testing.T) {
	th := textmatch.DefaultThresholds()
	tests := []struct {
		a, b float64
		want textmatch.GapClass
	}{
		{1.0, 0.95, textmatch.GapNone},
		{1.0, 0.85, textmatch.GapMinor},
		{0.9, 0.5, textmatch.GapSignificant},
		{1.0, 0.2, textmatch.GapMajor},
		{0.2, 1.0, textmatch.GapMajor},
	}
	for _, tc := range tests {
		if got := th.Classify(tc.a, tc.b); got != tc.want {
			t.Fatalf("Classify(%v, %v) = %s, want %s", tc.a, tc.b, got, tc.want)
		}
	}
}
