package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"roilens/fields"
	"roilens/httputil"
)

// Result holds whatever could be pulled out of a single listing page.
// Fields the page did not expose stay nil; callers decide what to do
// with partial data.
type Result struct {
	Address string   `json:"address"`
	Price   *float64 `json:"price"`
	Beds    *float64 `json:"beds"`
	Baths   *float64 `json:"baths"`
	SqFt    *float64 `json:"sqft"`
	Debug   Debug    `json:"debug"`
}

// Debug records where each field came from so failed extractions can be
// diagnosed without re-fetching the page.
type Debug struct {
	RequestID string            `json:"requestId"`
	URL       string            `json:"url"`
	Sources   map[string]string `json:"sources"`
	Note      string            `json:"note,omitempty"`
}

type Extractor struct {
	client *http.Client
}

func New(clients *httputil.Clients) *Extractor {
	return &Extractor{client: clients.Page}
}

// FromURL fetches a listing page and extracts what it can. It never
// returns an error: fetch or parse failures produce an all-null Result
// with the failure recorded in Debug.Note.
func (e *Extractor) FromURL(ctx context.Context, pageURL string) Result {
	res := newResult(pageURL)

	req, err := httputil.NewPageRequest(ctx, pageURL)
	if err != nil {
		res.Debug.Note = fmt.Sprintf("bad url: %v", err)
		return res
	}

	resp, err := e.client.Do(req)
	if err != nil {
		res.Debug.Note = fmt.Sprintf("fetch failed: %v", err)
		return res
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		res.Debug.Note = fmt.Sprintf("unexpected status %d", resp.StatusCode)
		return res
	}

	return FromHTML(resp.Body, pageURL)
}

// FromHTML runs the extraction pipeline over an already-fetched page.
// Sources are tried in order of reliability: JSON-LD structured data,
// then framework hydration blobs, then meta/title text guesses. Later
// sources only fill fields earlier ones left empty.
func FromHTML(r io.Reader, pageURL string) Result {
	res := newResult(pageURL)

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		res.Debug.Note = fmt.Sprintf("parse failed: %v", err)
		return res
	}

	stages := []struct {
		name string
		fn   func(*goquery.Document) fieldSet
	}{
		{"linked-data", fromLinkedData},
		{"hydration", fromHydration},
		{"meta", fromMeta},
	}
	for _, st := range stages {
		merge(&res, st.fn(doc), st.name)
		if complete(res) {
			break
		}
	}

	if res.Debug.Note == "" && len(res.Debug.Sources) == 0 {
		res.Debug.Note = "no recognizable listing data on page"
	}
	return res
}

func newResult(pageURL string) Result {
	return Result{Debug: Debug{
		RequestID: uuid.NewString(),
		URL:       pageURL,
		Sources:   map[string]string{},
	}}
}

// fieldSet is one source's contribution before merging.
type fieldSet struct {
	address                  string
	price, beds, baths, sqft *float64
}

func (fs fieldSet) full() bool {
	return fs.address != "" && fs.price != nil && fs.beds != nil &&
		fs.baths != nil && fs.sqft != nil
}

func merge(res *Result, fs fieldSet, source string) {
	if res.Address == "" && fs.address != "" {
		res.Address = fs.address
		res.Debug.Sources["address"] = source
	}
	mergeNum(&res.Price, fs.price, "price", source, res)
	mergeNum(&res.Beds, fs.beds, "beds", source, res)
	mergeNum(&res.Baths, fs.baths, "baths", source, res)
	mergeNum(&res.SqFt, fs.sqft, "sqft", source, res)
}

func mergeNum(dst **float64, src *float64, field, source string, res *Result) {
	if *dst == nil && src != nil {
		*dst = src
		res.Debug.Sources[field] = source
	}
}

func complete(res Result) bool {
	return res.Address != "" && res.Price != nil && res.Beds != nil &&
		res.Baths != nil && res.SqFt != nil
}

// --- tier 1: JSON-LD -------------------------------------------------

var listingTypes = map[string]bool{
	"RealEstateListing":     true,
	"Product":               true,
	"Offer":                 true,
	"House":                 true,
	"Apartment":             true,
	"Residence":             true,
	"SingleFamilyResidence": true,
	"SingleFamilyDwelling":  true,
	"ApartmentComplex":      true,
	"Place":                 true,
}

func fromLinkedData(doc *goquery.Document) fieldSet {
	var fs fieldSet
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var blob any
		if err := json.Unmarshal([]byte(s.Text()), &blob); err != nil {
			return
		}
		for _, node := range flattenLD(blob) {
			if !looksLikeListing(node) {
				continue
			}
			applyLD(&fs, node)
		}
	})
	return fs
}

// flattenLD unwraps top-level arrays and @graph containers.
func flattenLD(blob any) []map[string]any {
	var out []map[string]any
	switch v := blob.(type) {
	case []any:
		for _, item := range v {
			out = append(out, flattenLD(item)...)
		}
	case map[string]any:
		out = append(out, v)
		if graph, ok := v["@graph"].([]any); ok {
			for _, item := range graph {
				out = append(out, flattenLD(item)...)
			}
		}
	}
	return out
}

func looksLikeListing(node map[string]any) bool {
	switch t := node["@type"].(type) {
	case string:
		if listingTypes[t] {
			return true
		}
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && listingTypes[s] {
				return true
			}
		}
	}
	_, hasOffers := node["offers"]
	_, hasAddr := node["address"]
	return hasOffers || hasAddr
}

func applyLD(fs *fieldSet, node map[string]any) {
	if fs.address == "" {
		fs.address = ldAddress(node["address"])
	}
	if fs.price == nil {
		fs.price = ldPrice(node)
	}
	if fs.beds == nil {
		fs.beds = fields.ToNumber(firstOf(node, "numberOfBedrooms", "numberOfRooms"))
	}
	if fs.baths == nil {
		fs.baths = fields.ToNumber(firstOf(node, "numberOfBathroomsTotal", "numberOfFullBathrooms"))
	}
	if fs.sqft == nil {
		if size, ok := node["floorSize"].(map[string]any); ok {
			fs.sqft = fields.ToNumber(size["value"])
		}
	}
}

func ldAddress(v any) string {
	switch a := v.(type) {
	case string:
		return strings.TrimSpace(a)
	case map[string]any:
		var parts []string
		for _, key := range []string{"streetAddress", "addressLocality", "addressRegion"} {
			if s := fields.ToString(a[key]); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

func ldPrice(node map[string]any) *float64 {
	if offers, ok := node["offers"].(map[string]any); ok {
		if n := fields.ToNumber(firstOf(offers, "price", "lowPrice")); n != nil {
			return n
		}
	}
	return fields.ToNumber(node["price"])
}

func firstOf(node map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := node[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// --- tier 2: hydration blobs -----------------------------------------

var (
	priceKeys   = []string{"price", "listPrice", "listingPrice", "purchasePrice", "askingPrice", "priceValue"}
	bedsKeys    = []string{"beds", "bedrooms", "numBedrooms", "bedroomsTotal"}
	bathsKeys   = []string{"baths", "bathrooms", "numBathrooms", "bathroomTotal"}
	sqftKeys    = []string{"sqft", "squareFeet", "squareFootage", "livingArea", "floorArea", "sizeInterior"}
	addressKeys = []string{"address", "fullAddress", "streetAddress", "formattedAddress", "unparsedAddress", "addressText"}
)

// fromHydration walks framework state blobs (__NEXT_DATA__ and other
// application/json script tags) breadth-first, picking the shallowest
// object that carries recognizable listing fields. A visited set guards
// against blobs with internal cycles; children are enqueued in sorted
// key order so extraction is deterministic.
func fromHydration(doc *goquery.Document) fieldSet {
	var fs fieldSet
	doc.Find(`script#__NEXT_DATA__, script[type="application/json"]`).Each(func(_ int, s *goquery.Selection) {
		if fs.full() {
			return
		}
		var blob any
		if err := json.Unmarshal([]byte(s.Text()), &blob); err != nil {
			return
		}
		walkBlob(&fs, blob)
	})
	return fs
}

func walkBlob(fs *fieldSet, root any) {
	visited := map[uintptr]bool{}
	queue := []any{root}

	for len(queue) > 0 {
		if fs.full() {
			return
		}
		node := queue[0]
		queue = queue[1:]

		switch v := node.(type) {
		case map[string]any:
			ptr := reflect.ValueOf(v).Pointer()
			if visited[ptr] {
				continue
			}
			visited[ptr] = true
			harvest(fs, v)

			keys := make([]string, 0, len(v))
			for k := range v {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				switch v[k].(type) {
				case map[string]any, []any:
					queue = append(queue, v[k])
				}
			}
		case []any:
			if len(v) > 0 {
				ptr := reflect.ValueOf(v).Pointer()
				if visited[ptr] {
					continue
				}
				visited[ptr] = true
			}
			for _, item := range v {
				switch item.(type) {
				case map[string]any, []any:
					queue = append(queue, item)
				}
			}
		}
	}
}

func harvest(fs *fieldSet, node map[string]any) {
	if fs.address == "" {
		for _, k := range addressKeys {
			if s := blobAddress(node[k]); s != "" {
				fs.address = s
				break
			}
		}
	}
	harvestNum(&fs.price, node, priceKeys)
	harvestNum(&fs.beds, node, bedsKeys)
	harvestNum(&fs.baths, node, bathsKeys)
	harvestNum(&fs.sqft, node, sqftKeys)
}

func harvestNum(dst **float64, node map[string]any, keys []string) {
	if *dst != nil {
		return
	}
	for _, k := range keys {
		if n := fields.ToNumber(node[k]); n != nil {
			*dst = n
			return
		}
	}
}

func blobAddress(v any) string {
	switch a := v.(type) {
	case string:
		return strings.TrimSpace(a)
	case map[string]any:
		for _, k := range []string{"full", "fullAddress", "streetAddress", "addressText"} {
			if s := fields.ToString(a[k]); s != "" {
				return s
			}
		}
	}
	return ""
}

// --- tier 3: meta tags and title -------------------------------------

var (
	metaPriceRe   = regexp.MustCompile(`(?i)(?:C\$|CAD\s*|\$)\s*\d[\d,]*(?:\.\d+)?`)
	metaAddressRe = regexp.MustCompile(`(?i)\d+[-\d]*\s+[a-z0-9 .'’-]+,\s*[a-z .'’-]+(?:,\s*[a-z]{2})?`)
)

// fromMeta is the last resort: regex guesses over og: tags and the page
// title. Only price and address are worth guessing from free text.
func fromMeta(doc *goquery.Document) fieldSet {
	var fs fieldSet

	candidates := []string{
		doc.Find(`meta[property="og:title"]`).AttrOr("content", ""),
		doc.Find(`meta[property="og:description"]`).AttrOr("content", ""),
		doc.Find(`meta[name="description"]`).AttrOr("content", ""),
		doc.Find("title").Text(),
	}

	for _, text := range candidates {
		if text == "" {
			continue
		}
		if fs.price == nil {
			if m := metaPriceRe.FindString(text); m != "" {
				fs.price = fields.ToNumber(m)
			}
		}
		if fs.address == "" {
			if m := metaAddressRe.FindString(text); m != "" {
				fs.address = strings.TrimSpace(m)
			}
		}
	}
	return fs
}
