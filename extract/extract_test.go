package extract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func openFixture(t *testing.T, name string) *os.File {
	t.Helper()
	f, err := os.Open(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("open fixture %s: %v", name, err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func wantNum(t *testing.T, field string, got *float64, want float64) {
	t.Helper()
	if got == nil {
		t.Fatalf("%s = nil, want %v", field, want)
	}
	if *got != want {
		t.Errorf("%s = %v, want %v", field, *got, want)
	}
}

func TestFromHTMLLinkedData(t *testing.T) {
	res := FromHTML(openFixture(t, "jsonld_page.html"), "https://example.com/listing/1")

	if res.Address != "60-8220 King George Blvd, Surrey, BC" {
		t.Errorf("address = %q", res.Address)
	}
	wantNum(t, "price", res.Price, 589000)
	wantNum(t, "beds", res.Beds, 3)
	wantNum(t, "baths", res.Baths, 2)
	wantNum(t, "sqft", res.SqFt, 1240)

	for _, field := range []string{"address", "price", "beds", "baths", "sqft"} {
		if src := res.Debug.Sources[field]; src != "linked-data" {
			t.Errorf("source for %s = %q, want linked-data", field, src)
		}
	}
	if res.Debug.RequestID == "" {
		t.Error("expected a request id")
	}
	if res.Debug.URL != "https://example.com/listing/1" {
		t.Errorf("debug url = %q", res.Debug.URL)
	}
}

func TestFromHTMLHydrationBlob(t *testing.T) {
	res := FromHTML(openFixture(t, "hydration_page.html"), "https://example.com/listing/2")

	if res.Address != "12 Maple Crescent, Burnaby, BC" {
		t.Errorf("address = %q", res.Address)
	}
	wantNum(t, "price", res.Price, 742500)
	wantNum(t, "beds", res.Beds, 4)
	wantNum(t, "baths", res.Baths, 2.5)
	wantNum(t, "sqft", res.SqFt, 1870)

	if src := res.Debug.Sources["price"]; src != "hydration" {
		t.Errorf("source for price = %q, want hydration", src)
	}
}

func TestFromHTMLMetaFallback(t *testing.T) {
	res := FromHTML(openFixture(t, "meta_page.html"), "https://example.com/listing/3")

	if res.Address != "48 Birch Street, Moncton, NB" {
		t.Errorf("address = %q", res.Address)
	}
	wantNum(t, "price", res.Price, 315000)

	// Free-text guessing only covers price and address.
	if res.Beds != nil || res.Baths != nil || res.SqFt != nil {
		t.Errorf("beds/baths/sqft should be nil, got %v %v %v", res.Beds, res.Baths, res.SqFt)
	}
	if src := res.Debug.Sources["address"]; src != "meta" {
		t.Errorf("source for address = %q, want meta", src)
	}
}

func TestFromHTMLNothingUsable(t *testing.T) {
	res := FromHTML(strings.NewReader("<html><body><p>hi</p></body></html>"), "https://example.com/x")

	if res.Address != "" || res.Price != nil {
		t.Errorf("expected empty result, got %+v", res)
	}
	if res.Debug.Note == "" {
		t.Error("expected a debug note explaining the empty result")
	}
}

func TestWalkBlobHandlesCycles(t *testing.T) {
	inner := map[string]any{"listPrice": 410000.0}
	outer := map[string]any{"a": inner}
	inner["back"] = outer // cycle

	var fs fieldSet
	walkBlob(&fs, outer)

	wantNum(t, "price", fs.price, 410000)
}
