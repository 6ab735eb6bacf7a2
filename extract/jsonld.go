package extract

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// forEachJSONLD parses every embedded JSON-LD block and hands the decoded
// value to fn. Unparseable blocks contribute nothing; they never abort the
// extraction pass.
func forEachJSONLD(doc *goquery.Document, fn func(v any)) {
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var v any
		if err := json.Unmarshal([]byte(s.Text()), &v); err != nil {
			return
		}
		fn(v)
	})
}

// walkObjects visits every JSON object reachable from v, descending through
// arrays and nested objects (which covers @graph, offers and
// priceSpecification wrappers without knowing their exact nesting).
func walkObjects(v any, visit func(m map[string]any)) {
	switch t := v.(type) {
	case map[string]any:
		visit(t)
		for _, child := range t {
			walkObjects(child, visit)
		}
	case []any:
		for _, child := range t {
			walkObjects(child, visit)
		}
	}
}

// collectJSONLDPrices appends price strings and currency hints found in any
// object to the accumulators.
func collectJSONLDPrices(v any, texts, hints *[]string) {
	walkObjects(v, func(m map[string]any) {
		for _, key := range []string{"price", "lowPrice", "highPrice"} {
			if p, ok := scalarString(m[key]); ok {
				*texts = append(*texts, p)
			}
		}
		if c, ok := m["priceCurrency"].(string); ok && strings.TrimSpace(c) != "" {
			*hints = append(*hints, strings.TrimSpace(c))
		}
	})
}

// collectJSONLDImages adds image candidates from "image" fields, which may
// be a string, a list, or an ImageObject with explicit dimensions.
func collectJSONLDImages(v any, col *collector) {
	walkObjects(v, func(m map[string]any) {
		if img, ok := m["image"]; ok {
			addJSONLDImage(img, col)
		}
	})
}

func addJSONLDImage(v any, col *collector) {
	switch t := v.(type) {
	case string:
		col.add(t, Candidate{Source: sourceJSONLD, Context: "jsonld"})
	case []any:
		for _, e := range t {
			addJSONLDImage(e, col)
		}
	case map[string]any:
		urlStr, _ := t["url"].(string)
		if urlStr == "" {
			urlStr, _ = t["contentUrl"].(string)
		}
		if urlStr == "" {
			return
		}
		col.add(urlStr, Candidate{
			Source:  sourceJSONLD,
			Context: "jsonld",
			Width:   intValue(t["width"]),
			Height:  intValue(t["height"]),
		})
	}
}

// scalarString renders a JSON string or number as a trimmed string,
// accepting only values that carry a numeral.
func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if s != "" && numeralRe.MatchString(s) {
			return s, true
		}
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	}
	return "", false
}

// intValue coerces a JSON number or digit string to an int, else 0.
func intValue(v any) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return i
		}
	}
	return 0
}
