package extract

import (
	"net/url"
	"path"
	"regexp"
	"sort"
	"strings"
)

// minPrimaryImages is the backfill floor: when the keyword-filtered pool
// dedups to fewer unique images than this, fallback candidates top it up.
const minPrimaryImages = 5

// candidateSource tags where an image candidate was discovered. Meta and
// JSON-LD sources are curated by the page author and skip the product
// keyword requirement; bare DOM attributes do not.
type candidateSource int

const (
	sourceMeta candidateSource = iota
	sourceDOM
	sourceJSONLD
)

// Candidate is one discovered image with whatever the page declared about it.
type Candidate struct {
	URL     string
	Width   int
	Height  int
	Density float64
	Order   int
	Context string // class/id/alt context for keyword matching
	Source  candidateSource
}

var (
	imageExts  = map[string]struct{}{"jpg": {}, "jpeg": {}, "png": {}, "webp": {}, "gif": {}, "avif": {}, "bmp": {}, "tif": {}, "tiff": {}, "svg": {}}
	rasterExts = map[string]struct{}{"jpg": {}, "jpeg": {}, "png": {}, "webp": {}, "gif": {}, "avif": {}, "bmp": {}}

	// placeholderKeywords mark stand-in images that never carry product signal.
	placeholderKeywords = []string{
		"placeholder", "spinner", "loading", "blank", "spacer",
		"1x1", "pixel", "transparent", "no-image", "noimage", "default_image",
	}

	// productKeywords gate DOM-attribute candidates into the primary pool.
	productKeywords = []string{
		"product", "item", "gallery", "hero", "main", "detail",
		"zoom", "large", "media", "photo",
	}

	// heroKeywordRe boosts dimensionless candidates whose URL hints at a
	// primary product shot.
	heroKeywordRe = regexp.MustCompile(`large|hero|zoom|main|product|detail`)

	goodKeywords     = []string{"meta", "og", "product", "main", "hero", "cover"}
	qualityHints     = []string{"_large", "@2x", "@3x", "1200", "1080", "1600", "2048", "_zoom", "highres", "original"}
	negativeKeywords = []string{"logo", "icon", "nav", "sprite", "thumbnail", "avatar", "small"}

	// cosmeticParams are query keys that vary per size/cache/quality variant
	// of the same logical image; they are excluded from the dedup identity.
	cosmeticParams = map[string]struct{}{
		"w": {}, "h": {}, "width": {}, "height": {}, "size": {}, "sz": {},
		"q": {}, "quality": {}, "dpr": {}, "fit": {}, "fm": {},
		"cache": {}, "v": {}, "ver": {}, "version": {}, "t": {}, "ts": {},
	}
)

// dedupKey derives the logical identity of an image URL: origin + path plus
// the sorted, lower-cased query params minus cosmetic keys. Two candidates
// with the same key are size/cache variants of the same image.
func dedupKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return strings.ToLower(rawURL)
	}
	var b strings.Builder
	b.WriteString(strings.ToLower(u.Scheme))
	b.WriteString("://")
	b.WriteString(strings.ToLower(u.Host))
	b.WriteString(strings.ToLower(u.Path))

	params := u.Query()
	keys := make([]string, 0, len(params))
	for k := range params {
		if _, cosmetic := cosmeticParams[strings.ToLower(k)]; cosmetic {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range params[k] {
			b.WriteString("&")
			b.WriteString(strings.ToLower(k))
			b.WriteString("=")
			b.WriteString(strings.ToLower(v))
		}
	}
	return b.String()
}

// selectionScore ranks candidates for dedup survivor choice and backfill
// ordering. Declared pixel area dominates; dimensionless candidates get a
// base score with a hero-keyword boost; density multiplies; earlier
// discovery wins ties via the order subtraction.
func selectionScore(c Candidate) float64 {
	var score float64
	switch {
	case c.Width > 0 && c.Height > 0:
		score = float64(c.Width) * float64(c.Height)
	case c.Width > 0:
		score = float64(c.Width) * 800
	case c.Height > 0:
		score = float64(c.Height) * 800
	default:
		n := len(c.URL)
		if n > 500 {
			n = 500
		}
		score = float64(1000 + n)
		if heroKeywordRe.MatchString(strings.ToLower(c.URL)) {
			score += 5000
		}
	}
	if c.Density > 0 {
		score *= c.Density
	}
	return score - float64(c.Order)
}

// displayScore ranks the final list for presentation, independent of pixel
// dimensions: raster formats and product-ish names up, vectors and chrome
// (logos, icons, sprites) down.
func displayScore(rawURL string) int {
	lower := strings.ToLower(rawURL)
	score := 0

	switch ext := imageExt(lower); {
	case ext == "svg":
		score -= 250
	case extIn(ext, rasterExts):
		score += 40
	case ext != "":
		score += 20
	default:
		score += 15
	}

	for _, kw := range goodKeywords {
		if strings.Contains(lower, kw) {
			score += 25
		}
	}
	for _, hint := range qualityHints {
		if strings.Contains(lower, hint) {
			score += 18
		}
	}
	for _, kw := range negativeKeywords {
		if strings.Contains(lower, kw) {
			score -= 35
		}
	}
	return score
}

func extIn(ext string, set map[string]struct{}) bool {
	_, ok := set[ext]
	return ok
}

// imageExt extracts the lower-cased extension from a URL's path, or "".
func imageExt(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	} else if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	ext := strings.TrimPrefix(path.Ext(p), ".")
	return strings.ToLower(ext)
}

func hasImageExtension(rawURL string) bool {
	return extIn(imageExt(rawURL), imageExts)
}

func isPlaceholder(lowerURL string) bool {
	for _, kw := range placeholderKeywords {
		if strings.Contains(lowerURL, kw) {
			return true
		}
	}
	return false
}

func hasProductKeyword(lowerURL, lowerContext string) bool {
	for _, kw := range productKeywords {
		if strings.Contains(lowerURL, kw) || strings.Contains(lowerContext, kw) {
			return true
		}
	}
	return false
}

// dedupe collapses candidates sharing a DedupKey, keeping per key the one
// with the higher selection score. Output preserves first-seen key order.
// It is idempotent.
func dedupe(cands []Candidate) []Candidate {
	byKey := make(map[string]int, len(cands))
	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		key := dedupKey(c.URL)
		if i, seen := byKey[key]; seen {
			if selectionScore(c) > selectionScore(out[i]) {
				out[i] = c
			}
			continue
		}
		byKey[key] = len(out)
		out = append(out, c)
	}
	return out
}

// collector accumulates image candidates from one extraction pass.
type collector struct {
	base     *url.URL
	order    int
	primary  []Candidate // keyword-gated pool
	fallback []Candidate // extension + placeholder filtering only
	raw      []Candidate // every DOM img/srcset URL, no filtering at all
}

func newCollector(base *url.URL) *collector {
	return &collector{base: base}
}

// add resolves a raw URL against the base and routes the candidate into the
// pools it qualifies for. Unresolvable and non-http(s) URLs are dropped.
func (c *collector) add(rawURL string, cand Candidate) {
	abs := c.resolve(rawURL)
	if abs == "" {
		return
	}
	cand.URL = abs
	cand.Order = c.order
	c.order++

	if cand.Source == sourceDOM {
		c.raw = append(c.raw, cand)
	}

	lower := strings.ToLower(abs)
	if !hasImageExtension(lower) || isPlaceholder(lower) {
		return
	}
	c.fallback = append(c.fallback, cand)

	if cand.Source == sourceDOM && !hasProductKeyword(lower, strings.ToLower(cand.Context)) {
		return
	}
	c.primary = append(c.primary, cand)
}

func (c *collector) resolve(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ""
	}
	var u *url.URL
	var err error
	if c.base != nil {
		u, err = c.base.Parse(rawURL)
	} else {
		u, err = url.Parse(rawURL)
	}
	if err != nil {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}

// finalizeImages runs the pool pipeline: dedup the primary pool, backfill
// from the fallback pool up to the floor, fall back to the raw pool when
// still empty, cap, then display-rank and truncate to the best limit.
func finalizeImages(c *collector, opts Options) []string {
	primary := dedupe(c.primary)

	if len(primary) < minPrimaryImages {
		taken := make(map[string]struct{}, len(primary))
		for _, cand := range primary {
			taken[dedupKey(cand.URL)] = struct{}{}
		}
		fb := append([]Candidate(nil), c.fallback...)
		sort.SliceStable(fb, func(i, j int) bool {
			return selectionScore(fb[i]) > selectionScore(fb[j])
		})
		for _, cand := range fb {
			if len(primary) >= minPrimaryImages || len(primary) >= opts.MaxImages {
				break
			}
			key := dedupKey(cand.URL)
			if _, dup := taken[key]; dup {
				continue
			}
			taken[key] = struct{}{}
			primary = append(primary, cand)
		}
	}

	if len(primary) == 0 {
		primary = dedupe(c.raw)
	}

	if len(primary) > opts.MaxImages {
		primary = primary[:opts.MaxImages]
	}

	// Display-ranking pass, independent of the selection scores above.
	type ranked struct {
		url   string
		score int
	}
	best := make([]ranked, 0, len(primary))
	for _, cand := range primary {
		if score := displayScore(cand.URL); score > 0 {
			best = append(best, ranked{url: cand.URL, score: score})
		}
	}
	sort.SliceStable(best, func(i, j int) bool { return best[i].score > best[j].score })
	if len(best) > opts.BestImages {
		best = best[:opts.BestImages]
	}

	urls := make([]string, len(best))
	for i, r := range best {
		urls[i] = r.url
	}
	return urls
}
