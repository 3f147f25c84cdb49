package finder

import (
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Link is one candidate listing detail page found on a search results page.
type Link struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

// listing detail pages on the portals we care about carry one of these
// markers in the href
var hrefMarkers = []string{
	"/listing",
	"/property",
	"/details",
	"/mls",
	"ListingId=",
	"listingId=",
}

const maxLinkText = 500

// LinksFromHTML pulls candidate listing links out of a results page.
// Relative hrefs are resolved against baseURL and duplicates dropped,
// keeping document order.
func LinksFromHTML(r io.Reader, baseURL string) ([]Link, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	base, _ := url.Parse(baseURL)

	var links []Link
	seen := map[string]bool{}
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" || !looksLikeListing(href) {
			return
		}

		resolved := href
		if base != nil {
			if u, err := url.Parse(href); err == nil {
				resolved = base.ResolveReference(u).String()
			}
		}
		if seen[resolved] {
			return
		}
		seen[resolved] = true

		text := strings.Join(strings.Fields(s.Text()), " ")
		if len(text) > maxLinkText {
			text = text[:maxLinkText]
		}
		links = append(links, Link{URL: resolved, Text: text})
	})

	return links, nil
}

func looksLikeListing(href string) bool {
	for _, marker := range hrefMarkers {
		if strings.Contains(href, marker) {
			return true
		}
	}
	return false
}
