package extract

import (
	"reflect"
	"testing"
)

func TestDedupKey_CosmeticParams(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		same bool
	}{
		{
			name: "size params are cosmetic",
			a:    "https://cdn.example.com/img.jpg?w=100&h=100",
			b:    "https://cdn.example.com/img.jpg?w=500",
			same: true,
		},
		{
			name: "case of host and params ignored",
			a:    "https://CDN.Example.com/img.jpg?ID=7",
			b:    "https://cdn.example.com/img.jpg?id=7",
			same: true,
		},
		{
			name: "semantic param distinguishes",
			a:    "https://cdn.example.com/img.jpg?id=1",
			b:    "https://cdn.example.com/img.jpg?id=2",
			same: false,
		},
		{
			name: "different paths distinguish",
			a:    "https://cdn.example.com/a.jpg",
			b:    "https://cdn.example.com/b.jpg",
			same: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ka, kb := dedupKey(tt.a), dedupKey(tt.b)
			if (ka == kb) != tt.same {
				t.Errorf("dedupKey(%q)=%q vs dedupKey(%q)=%q, same=%v want %v",
					tt.a, ka, tt.b, kb, ka == kb, tt.same)
			}
		})
	}
}

func TestDedupe_HigherScoreSurvives(t *testing.T) {
	cands := []Candidate{
		{URL: "https://cdn.example.com/img.jpg?w=100", Width: 100, Height: 100},
		{URL: "https://cdn.example.com/img.jpg?w=500", Width: 500, Height: 500},
		{URL: "https://cdn.example.com/other.jpg", Width: 50},
	}
	got := dedupe(cands)
	if len(got) != 2 {
		t.Fatalf("dedupe returned %d candidates, want 2", len(got))
	}
	if got[0].URL != "https://cdn.example.com/img.jpg?w=500" {
		t.Errorf("survivor = %q, want the w=500 variant", got[0].URL)
	}
	// First-seen key order is preserved even when a later variant survives.
	if got[1].URL != "https://cdn.example.com/other.jpg" {
		t.Errorf("second entry = %q, want other.jpg", got[1].URL)
	}
}

func TestDedupe_Idempotent(t *testing.T) {
	cands := []Candidate{
		{URL: "https://cdn.example.com/a.jpg?w=100", Width: 100},
		{URL: "https://cdn.example.com/a.jpg?w=500", Width: 500},
		{URL: "https://cdn.example.com/b.jpg"},
	}
	once := dedupe(cands)
	twice := dedupe(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("dedupe not idempotent: %v vs %v", once, twice)
	}
}

func TestSelectionScore(t *testing.T) {
	big := Candidate{URL: "https://x.com/a.jpg", Width: 800, Height: 600}
	small := Candidate{URL: "https://x.com/a.jpg", Width: 100, Height: 100}
	if selectionScore(big) <= selectionScore(small) {
		t.Error("larger declared area must outscore smaller")
	}

	hero := Candidate{URL: "https://x.com/product-hero-shot"}
	plain := Candidate{URL: "https://x.com/banner-ad-thing"}
	if selectionScore(hero) <= selectionScore(plain) {
		t.Error("hero keyword must boost dimensionless candidates")
	}

	dense := Candidate{URL: "https://x.com/a.jpg", Width: 400, Height: 400, Density: 2}
	sparse := Candidate{URL: "https://x.com/a.jpg", Width: 400, Height: 400}
	if selectionScore(dense) <= selectionScore(sparse) {
		t.Error("density must multiply the score")
	}
}

func TestDisplayScore(t *testing.T) {
	if s := displayScore("https://cdn.example.com/brand-logo.svg"); s > 0 {
		t.Errorf("svg logo should score non-positive, got %d", s)
	}
	raster := displayScore("https://cdn.example.com/product-main.jpg")
	chrome := displayScore("https://cdn.example.com/nav-icon.png")
	if raster <= chrome {
		t.Errorf("product raster (%d) should outscore nav icon (%d)", raster, chrome)
	}
	if displayScore("https://cdn.example.com/shot_large.jpg") <= displayScore("https://cdn.example.com/shot.jpg") {
		t.Error("quality hint should add to the score")
	}
}

func TestCollector_KeywordGate(t *testing.T) {
	col := newCollector(nil)

	// DOM candidate with no product signal lands in fallback only.
	col.add("https://cdn.example.com/banner.jpg", Candidate{Source: sourceDOM, Context: "sidebar"})
	// DOM candidate with product context qualifies for the primary pool.
	col.add("https://cdn.example.com/shot.jpg", Candidate{Source: sourceDOM, Context: "product-gallery"})
	// Meta candidates skip the gate entirely.
	col.add("https://cdn.example.com/og.jpg", Candidate{Source: sourceMeta})

	if len(col.primary) != 2 {
		t.Errorf("primary pool has %d entries, want 2", len(col.primary))
	}
	if len(col.fallback) != 3 {
		t.Errorf("fallback pool has %d entries, want 3", len(col.fallback))
	}
}

func TestCollector_DropsPlaceholdersAndBadURLs(t *testing.T) {
	col := newCollector(nil)
	col.add("https://cdn.example.com/placeholder.jpg", Candidate{Source: sourceMeta})
	col.add("data:image/gif;base64,R0lGOD", Candidate{Source: sourceMeta})
	col.add("   ", Candidate{Source: sourceMeta})
	col.add("https://cdn.example.com/page.html", Candidate{Source: sourceMeta})

	if len(col.primary) != 0 || len(col.fallback) != 0 {
		t.Errorf("pools should be empty, got primary=%d fallback=%d", len(col.primary), len(col.fallback))
	}
}

func TestFinalizeImages_BackfillFloor(t *testing.T) {
	col := newCollector(nil)
	col.add("https://cdn.example.com/product-1.jpg", Candidate{Source: sourceDOM, Context: "product"})
	col.add("https://cdn.example.com/product-2.jpg", Candidate{Source: sourceDOM, Context: "product"})
	for _, u := range []string{
		"https://cdn.example.com/extra-1.jpg",
		"https://cdn.example.com/extra-2.jpg",
		"https://cdn.example.com/extra-3.jpg",
		"https://cdn.example.com/extra-4.jpg",
	} {
		col.add(u, Candidate{Source: sourceDOM, Context: "footer"})
	}

	got := finalizeImages(col, Options{MaxImages: 12, BestImages: 6})
	if len(got) != 5 {
		t.Fatalf("got %d images, want backfill floor of 5: %v", len(got), got)
	}
	found := map[string]bool{}
	for _, u := range got {
		found[u] = true
	}
	if !found["https://cdn.example.com/product-1.jpg"] || !found["https://cdn.example.com/product-2.jpg"] {
		t.Errorf("primary images missing from %v", got)
	}
}

func TestFinalizeImages_RawPoolWhenNothingQualifies(t *testing.T) {
	col := newCollector(nil)
	// No extension, so neither primary nor fallback takes it.
	col.add("https://cdn.example.com/asset/55012", Candidate{Source: sourceDOM})

	got := finalizeImages(col, Options{MaxImages: 12, BestImages: 6})
	if len(got) != 1 || got[0] != "https://cdn.example.com/asset/55012" {
		t.Errorf("expected raw pool fallback, got %v", got)
	}
}

func TestFinalizeImages_BestImagesCap(t *testing.T) {
	col := newCollector(nil)
	urls := []string{
		"https://cdn.example.com/product-1.jpg",
		"https://cdn.example.com/product-2.jpg",
		"https://cdn.example.com/product-3.jpg",
		"https://cdn.example.com/product-4.jpg",
	}
	for _, u := range urls {
		col.add(u, Candidate{Source: sourceDOM, Context: "product"})
	}

	got := finalizeImages(col, Options{MaxImages: 12, BestImages: 2})
	if len(got) != 2 {
		t.Errorf("got %d images, want cap of 2: %v", len(got), got)
	}
}

func TestImageExt(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://cdn.example.com/a.JPG", "jpg"},
		{"https://cdn.example.com/a.webp?w=100", "webp"},
		{"https://cdn.example.com/asset/55012", ""},
		{"https://cdn.example.com", ""},
	}
	for _, tt := range tests {
		if got := imageExt(tt.in); got != tt.want {
			t.Errorf("imageExt(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
