// Package extract turns raw rendered HTML into structured product content:
// title, description, a normalized price token, and a ranked, deduplicated
// list of image URLs. Extraction never fails; adversarial or malformed
// markup degrades to empty fields.
package extract

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/prodsnap/prodsnap/models"
)

// Options bounds the image pipeline.
type Options struct {
	// MaxImages caps the candidate list after dedup and backfill.
	MaxImages int

	// BestImages is the size of the final display-ranked list.
	BestImages int
}

func (o *Options) defaults() {
	if o.MaxImages <= 0 {
		o.MaxImages = 12
	}
	if o.BestImages <= 0 {
		o.BestImages = 6
	}
}

// titleSelectors in fixed priority order: social/meta tags beat headings
// beat the document title.
var titleSelectors = []string{
	`meta[property="og:title"]`,
	`meta[name="twitter:title"]`,
	`meta[property="twitter:title"]`,
	`meta[name="title"]`,
}

var descriptionSelectors = []string{
	`meta[property="og:description"]`,
	`meta[name="twitter:description"]`,
	`meta[name="description"]`,
}

var priceMetaSelectors = []string{
	`meta[property="product:price:amount"]`,
	`meta[property="og:price:amount"]`,
	`meta[itemprop="price"]`,
	`meta[name="price"]`,
}

var currencyMetaSelectors = []string{
	`meta[property="product:price:currency"]`,
	`meta[property="og:price:currency"]`,
	`meta[itemprop="priceCurrency"]`,
}

var imageMetaSelectors = []string{
	`meta[property="og:image:secure_url"]`,
	`meta[property="og:image"]`,
	`meta[name="twitter:image"]`,
	`meta[name="twitter:image:src"]`,
}

// Extract parses rendered HTML into structured content. Empty or unparseable
// input yields an all-empty result, never an error.
func Extract(rawHTML, baseURL string, opts Options) *models.ExtractedContent {
	opts.defaults()
	content := &models.ExtractedContent{Images: []string{}}

	if strings.TrimSpace(rawHTML) == "" {
		return content
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return content
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		base = nil
	}

	content.Title = extractTitle(doc)
	content.Description = extractDescription(doc, rawHTML, baseURL)

	texts, hints := collectPriceSignals(doc)
	col := newCollector(base)
	collectMetaImages(doc, col)
	collectDOMImages(doc, col)
	forEachJSONLD(doc, func(v any) {
		collectJSONLDPrices(v, &texts, &hints)
		collectJSONLDImages(v, col)
	})

	content.Price = ResolvePrice(texts, hints)
	content.Images = finalizeImages(col, opts)
	return content
}

func extractTitle(doc *goquery.Document) string {
	if t := firstMetaContent(doc, titleSelectors); t != "" {
		return t
	}
	if t := strings.TrimSpace(doc.Find("h1").First().Text()); t != "" {
		return t
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// minParagraphLength is the threshold below which a paragraph is assumed to
// be navigation or boilerplate rather than a product description.
const minParagraphLength = 60

func extractDescription(doc *goquery.Document, rawHTML, baseURL string) string {
	if d := firstMetaContent(doc, descriptionSelectors); d != "" {
		return d
	}
	var firstLong string
	doc.Find("p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		if len(text) > minParagraphLength {
			firstLong = text
			return false
		}
		return true
	})
	if firstLong != "" {
		return firstLong
	}
	return readabilityExcerpt(rawHTML, baseURL)
}

// readabilityExcerpt is the last-resort description source: the Mozilla
// Readability excerpt of the page. Best-effort; any failure yields "".
func readabilityExcerpt(rawHTML, baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	article, err := readability.FromReader(strings.NewReader(rawHTML), u)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(article.Excerpt)
}

func firstMetaContent(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		if c, ok := doc.Find(sel).First().Attr("content"); ok {
			if c = strings.TrimSpace(c); c != "" {
				return c
			}
		}
	}
	return ""
}

// maxPriceTextLength skips container elements whose text blob is too long to
// be a single price.
const maxPriceTextLength = 64

// collectPriceSignals gathers raw price texts and currency hints from meta
// tags, microdata and price-suggesting class/id attributes.
func collectPriceSignals(doc *goquery.Document) (texts, hints []string) {
	for _, sel := range priceMetaSelectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			if c, ok := s.Attr("content"); ok && strings.TrimSpace(c) != "" {
				texts = append(texts, strings.TrimSpace(c))
			}
		})
	}
	for _, sel := range currencyMetaSelectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			if c, ok := s.Attr("content"); ok && strings.TrimSpace(c) != "" {
				hints = append(hints, strings.TrimSpace(c))
			}
		})
	}

	doc.Find(`[itemprop="price"]`).Each(func(_ int, s *goquery.Selection) {
		if c, ok := s.Attr("content"); ok && strings.TrimSpace(c) != "" {
			texts = append(texts, strings.TrimSpace(c))
			return
		}
		if t := strings.TrimSpace(s.Text()); t != "" && len(t) <= maxPriceTextLength {
			texts = append(texts, t)
		}
	})

	doc.Find(`[class*="price"], [class*="Price"], [id*="price"], [id*="Price"], [data-price]`).
		Each(func(_ int, s *goquery.Selection) {
			if v, ok := s.Attr("data-price"); ok && strings.TrimSpace(v) != "" {
				texts = append(texts, strings.TrimSpace(v))
			}
			if t := strings.TrimSpace(s.Text()); t != "" && len(t) <= maxPriceTextLength {
				texts = append(texts, t)
			}
		})
	return texts, hints
}

func collectMetaImages(doc *goquery.Document, col *collector) {
	for _, sel := range imageMetaSelectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			if c, ok := s.Attr("content"); ok {
				col.add(c, Candidate{Source: sourceMeta, Context: "og:image"})
			}
		})
	}
	doc.Find(`link[rel="image_src"]`).Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			col.add(href, Candidate{Source: sourceMeta, Context: "image_src"})
		}
	})
}

// lazySrcAttrs are the src variants emitted by common lazy-loading schemes.
var lazySrcAttrs = []string{"src", "data-src", "data-lazy-src", "data-original"}

func collectDOMImages(doc *goquery.Document, col *collector) {
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		ctx := attrContext(s)
		w := intAttr(s, "width")
		h := intAttr(s, "height")
		for _, attr := range lazySrcAttrs {
			if v, ok := s.Attr(attr); ok && strings.TrimSpace(v) != "" {
				col.add(v, Candidate{Width: w, Height: h, Context: ctx, Source: sourceDOM})
			}
		}
		for _, attr := range []string{"srcset", "data-srcset"} {
			if v, ok := s.Attr(attr); ok {
				addSrcset(v, ctx, col)
			}
		}
	})
	doc.Find("source").Each(func(_ int, s *goquery.Selection) {
		ctx := attrContext(s) + " " + attrContext(s.Parent())
		if v, ok := s.Attr("srcset"); ok {
			addSrcset(v, ctx, col)
		}
	})
}

// addSrcset splits a srcset attribute into candidates, mapping "640w"
// descriptors to widths and "2x" descriptors to densities.
func addSrcset(srcset, ctx string, col *collector) {
	for _, part := range strings.Split(srcset, ",") {
		fields := strings.Fields(strings.TrimSpace(part))
		if len(fields) == 0 {
			continue
		}
		cand := Candidate{Context: ctx, Source: sourceDOM}
		if len(fields) > 1 {
			desc := fields[1]
			switch {
			case strings.HasSuffix(desc, "w"):
				if w, err := strconv.Atoi(strings.TrimSuffix(desc, "w")); err == nil {
					cand.Width = w
				}
			case strings.HasSuffix(desc, "x"):
				if d, err := strconv.ParseFloat(strings.TrimSuffix(desc, "x"), 64); err == nil {
					cand.Density = d
				}
			}
		}
		col.add(fields[0], cand)
	}
}

// attrContext concatenates the attributes used for keyword classification.
func attrContext(s *goquery.Selection) string {
	class, _ := s.Attr("class")
	id, _ := s.Attr("id")
	alt, _ := s.Attr("alt")
	return strings.TrimSpace(class + " " + id + " " + alt)
}

func intAttr(s *goquery.Selection, name string) int {
	v, ok := s.Attr(name)
	if !ok {
		return 0
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || i <= 0 {
		return 0
	}
	return i
}
