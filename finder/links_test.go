package finder

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLinksFromHTML(t *testing.T) {
	f, err := os.Open(filepath.Join("testdata", "results_page.html"))
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	defer f.Close()

	links, err := LinksFromHTML(f, "https://portal.example.com/search")
	if err != nil {
		t.Fatalf("LinksFromHTML: %v", err)
	}

	want := []string{
		"https://portal.example.com/listing/r2901234-12-maple-crescent",
		"https://other.example.com/property/55-oak-ave",
		"https://portal.example.com/details?id=99812",
		"https://portal.example.com/map?ListingId=88765",
	}
	if len(links) != len(want) {
		t.Fatalf("got %d links, want %d: %+v", len(links), len(want), links)
	}
	for i, w := range want {
		if links[i].URL != w {
			t.Errorf("link %d = %q, want %q", i, links[i].URL, w)
		}
	}

	// Multi-line anchor text is collapsed to single spaces.
	if strings.Contains(links[0].Text, "\n") {
		t.Errorf("link text not collapsed: %q", links[0].Text)
	}
	if !strings.Contains(links[0].Text, "12 Maple Crescent") {
		t.Errorf("unexpected link text: %q", links[0].Text)
	}
}

func TestLinksFromHTMLTruncatesText(t *testing.T) {
	html := `<a href="/listing/x">` + strings.Repeat("z", 900) + `</a>`
	links, err := LinksFromHTML(strings.NewReader(html), "https://portal.example.com")
	if err != nil {
		t.Fatalf("LinksFromHTML: %v", err)
	}
	if len(links) != 1 {
		t.Fatalf("got %d links, want 1", len(links))
	}
	if len(links[0].Text) != maxLinkText {
		t.Errorf("text length = %d, want %d", len(links[0].Text), maxLinkText)
	}
}
