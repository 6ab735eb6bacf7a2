package extract

import (
	"regexp"
	"strings"
	"unicode"
)

// currencySymbols are the glyphs recognized as currency markers.
const currencySymbols = "$€£¥₹₩₽"

const currencyCodes = `USD|EUR|GBP|JPY|CNY|INR|KRW|CAD|AUD|CHF|BRL|MXN|SEK|NOK|DKK|PLN|RUB`

// pricePatterns is the fixed priority order for price recognition:
// symbol-then-number, number-then-symbol, code-then-number, number-then-code.
// The first match across all candidate texts, in this order, wins.
var pricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`[` + currencySymbols + `]\s?\d[\d.,]*`),
	regexp.MustCompile(`\d[\d.,]*\s?[` + currencySymbols + `]`),
	regexp.MustCompile(`(?i)\b(?:` + currencyCodes + `)\s?\d[\d.,]*`),
	regexp.MustCompile(`(?i)\d[\d.,]*\s?(?:` + currencyCodes + `)\b`),
}

var numeralRe = regexp.MustCompile(`\d`)

// ResolvePrice merges raw price texts with currency hints into a single
// normalized price token, or "" when no candidate carries a numeral.
//
// The pattern table is tried first; only when no pattern matches anywhere is
// the first numeral-bearing text combined with the first currency hint. If
// the numeral already carries a currency symbol, or the hint already appears
// in it, it is returned unchanged; a 2-3 letter code is appended, any other
// hint is prepended.
func ResolvePrice(texts, hints []string) string {
	for _, re := range pricePatterns {
		for _, t := range texts {
			if m := re.FindString(t); m != "" {
				return strings.TrimSpace(m)
			}
		}
	}

	var numeral string
	for _, t := range texts {
		t = strings.TrimSpace(t)
		if t != "" && numeralRe.MatchString(t) {
			numeral = t
			break
		}
	}
	if numeral == "" {
		return ""
	}

	hint := firstHint(hints)
	if hint == "" {
		return numeral
	}
	if containsCurrencySymbol(numeral) ||
		strings.Contains(strings.ToLower(numeral), strings.ToLower(hint)) {
		return numeral
	}
	if isCurrencyCode(hint) {
		return numeral + " " + hint
	}
	return hint + numeral
}

// firstHint deduplicates hints by exact string equality (preserving order)
// and returns the first non-empty one.
func firstHint(hints []string) string {
	seen := make(map[string]struct{}, len(hints))
	for _, h := range hints {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		return h
	}
	return ""
}

func containsCurrencySymbol(s string) bool {
	return strings.ContainsAny(s, currencySymbols)
}

// isCurrencyCode reports whether a hint looks like an ISO-ish 2-3 letter code.
func isCurrencyCode(s string) bool {
	if n := len([]rune(s)); n < 2 || n > 3 {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
