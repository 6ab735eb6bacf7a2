package extract

import "testing"

func TestResolvePrice_PatternPriority(t *testing.T) {
	tests := []struct {
		name  string
		texts []string
		hints []string
		want  string
	}{
		{
			name:  "symbol then number",
			texts: []string{"Price: $19.99"},
			want:  "$19.99",
		},
		{
			name:  "symbol pattern wins across texts",
			texts: []string{"29.99 USD", "$19.99"},
			want:  "$19.99",
		},
		{
			name:  "number then symbol",
			texts: []string{"19,99€"},
			want:  "19,99€",
		},
		{
			name:  "code then number",
			texts: []string{"USD 49.00"},
			want:  "USD 49.00",
		},
		{
			name:  "number then code",
			texts: []string{"49.00 GBP"},
			want:  "49.00 GBP",
		},
		{
			name:  "pattern beats hint combination",
			texts: []string{"$19.99"},
			hints: []string{"EUR"},
			want:  "$19.99",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolvePrice(tt.texts, tt.hints); got != tt.want {
				t.Errorf("ResolvePrice(%v, %v) = %q, want %q", tt.texts, tt.hints, got, tt.want)
			}
		})
	}
}

func TestResolvePrice_HintCombination(t *testing.T) {
	tests := []struct {
		name  string
		texts []string
		hints []string
		want  string
	}{
		{
			name:  "code hint appended",
			texts: []string{"19.99"},
			hints: []string{"USD"},
			want:  "19.99 USD",
		},
		{
			name:  "non-code hint prepended",
			texts: []string{"19.99"},
			hints: []string{"Fr."},
			want:  "Fr.19.99",
		},
		{
			name:  "hint already contained leaves text unchanged",
			texts: []string{"about 20 dollars"},
			hints: []string{"dollars"},
			want:  "about 20 dollars",
		},
		{
			name:  "no hint returns bare numeral",
			texts: []string{"19.99"},
			want:  "19.99",
		},
		{
			name:  "blank hints skipped",
			texts: []string{"19.99"},
			hints: []string{"", "  ", "EUR"},
			want:  "19.99 EUR",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolvePrice(tt.texts, tt.hints); got != tt.want {
				t.Errorf("ResolvePrice(%v, %v) = %q, want %q", tt.texts, tt.hints, got, tt.want)
			}
		})
	}
}

func TestResolvePrice_NoNumeral(t *testing.T) {
	if got := ResolvePrice([]string{"contact us", "sold out"}, []string{"USD"}); got != "" {
		t.Errorf("expected empty price for numeral-free texts, got %q", got)
	}
	if got := ResolvePrice(nil, nil); got != "" {
		t.Errorf("expected empty price for no input, got %q", got)
	}
}

func TestFirstHint_DeduplicatesAndTrims(t *testing.T) {
	got := firstHint([]string{" ", "EUR", "EUR", "USD"})
	if got != "EUR" {
		t.Errorf("firstHint = %q, want EUR", got)
	}
}

func TestIsCurrencyCode(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"USD", true},
		{"kr", true},
		{"Fr.", false},
		{"E", false},
		{"ABCD", false},
		{"12", false},
	}
	for _, tt := range tests {
		if got := isCurrencyCode(tt.in); got != tt.want {
			t.Errorf("isCurrencyCode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
