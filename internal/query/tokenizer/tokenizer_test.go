package tokenizer

import (
	"slices"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trims", "  nurse  ", "nurse"},
		{"collapses whitespace", "staff \t\n nurse   pune", "staff nurse pune"},
		{"drops controls", "nur\x00se\x07", "nurse"},
		{"keeps case", "MBBS Doctor", "MBBS Doctor"},
		{"composes", "cafe\u0301", "caf\u00e9"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeTruncates(t *testing.T) {
	in := strings.Repeat("₹ab ", 100)
	got := Normalize(in)
	if n := utf8.RuneCountInString(got); n > MaxQueryRunes {
		t.Errorf("Normalize length = %d runes, want <= %d", n, MaxQueryRunes)
	}
	if strings.HasSuffix(got, " ") {
		t.Errorf("Normalize(%q) left a trailing space", got)
	}
	if !strings.HasPrefix(in, got) {
		t.Errorf("Normalize output is not a prefix of the input")
	}
}

func TestTokenize(t *testing.T) {
	tokens := Tokenize("Staff Nurse jobs in Pune, 3+ years")
	var terms []string
	for i, tok := range tokens {
		if tok.Position != i {
			t.Errorf("token %q position = %d, want %d", tok.Term, tok.Position, i)
		}
		terms = append(terms, tok.Term)
	}
	want := []string{"staff", "nurse", "pune", "3", "years"}
	if !slices.Equal(terms, want) {
		t.Errorf("terms = %v, want %v", terms, want)
	}
}

func TestTerms(t *testing.T) {
	got := Terms("nurse Nurse NURSE icu nurse")
	want := []string{"nurse", "icu"}
	if !slices.Equal(got, want) {
		t.Errorf("Terms = %v, want %v", got, want)
	}
	if got := Terms("the jobs in"); got == nil || len(got) != 0 {
		t.Errorf("Terms of stop-words = %v, want empty", got)
	}
}
