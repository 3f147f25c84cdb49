package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"roilens/extract"
	"roilens/finder"
	"roilens/geo"
	"roilens/models"
	"roilens/query"
	"roilens/store"
)

func fptr(v float64) *float64 { return &v }

type fakeSource struct {
	listings []models.Listing
	err      error
}

func (f *fakeSource) Listings(ctx context.Context) ([]models.Listing, error) {
	return f.listings, f.err
}

type fakeExtractor struct {
	result extract.Result
}

func (f *fakeExtractor) FromURL(ctx context.Context, pageURL string) extract.Result {
	res := f.result
	res.Debug.URL = pageURL
	return res
}

type fakeFinder struct {
	result finder.RunResult
}

func (f *fakeFinder) Run(ctx context.Context, startURL, searchText string) finder.RunResult {
	return f.result
}

func testListings() []models.Listing {
	return []models.Listing{
		{
			ID:      0,
			Address: "60-8220 King George Blvd, Surrey, BC",
			Price:   fptr(589000), Beds: fptr(3), Baths: fptr(2),
			EstRent: fptr(3300), NOI: fptr(25740), CapRate: fptr(4.37),
		},
		{
			ID:      1,
			Address: "3 Elm Rd, Toronto, ON",
			Price:   fptr(1200000), Beds: fptr(4), Baths: fptr(3),
			EstRent: fptr(4000), NOI: fptr(31200), CapRate: fptr(2.6),
		},
		{
			// fails hard rules: under the price floor
			ID:      2,
			Address: "9 Cheap St, Surrey, BC",
			Price:   fptr(120000), Beds: fptr(1), Baths: fptr(1),
		},
	}
}

func newTestServer(source ListingSource, ex PageExtractor, lf LinkFinder) *Server {
	market := geo.DefaultMarket()
	engine := query.NewEngine(market, query.DefaultHardMinPrice)
	return New(source, engine, market, ex, lf)
}

func doRequest(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestListListings(t *testing.T) {
	s := newTestServer(&fakeSource{listings: testListings()}, nil, nil)

	w := doRequest(t, s, http.MethodGet, "/api/listings", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp listingsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if resp.Total != 2 {
		t.Errorf("total = %d, want 2 (hard rules drop the cheap listing)", resp.Total)
	}
	// default sort is cap rate descending
	if resp.Items[0].ID != 0 {
		t.Errorf("first item = %d, want 0", resp.Items[0].ID)
	}
	if resp.Items[0].Location.City != "Surrey" || resp.Items[0].Location.Province != "BC" {
		t.Errorf("location = %+v", resp.Items[0].Location)
	}
	if resp.Items[0].Metrics.MonthlyMortgage == nil {
		t.Error("expected mortgage metrics on decorated listing")
	}
	if resp.Assumptions.DownPaymentPct != 20 {
		t.Errorf("default down payment = %v, want 20", resp.Assumptions.DownPaymentPct)
	}
	if len(resp.ProvinceOptions) != 2 {
		t.Errorf("provinceOptions = %v", resp.ProvinceOptions)
	}
}

func TestListListingsAssumptionOverrides(t *testing.T) {
	s := newTestServer(&fakeSource{listings: testListings()}, nil, nil)

	w := doRequest(t, s, http.MethodGet, "/api/listings?downPayment=35&amortYears=25", "")
	var resp listingsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Assumptions.DownPaymentPct != 35 || resp.Assumptions.AmortYears != 25 {
		t.Errorf("assumptions = %+v", resp.Assumptions)
	}
}

func TestListListingsDataFileMissing(t *testing.T) {
	src := &fakeSource{err: store.ErrDataFileMissing}
	s := newTestServer(src, nil, nil)

	w := doRequest(t, s, http.MethodGet, "/api/listings", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}

	var e apiError
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if e.Error == "" {
		t.Error("expected an error field distinguishing failure from empty results")
	}
}

func TestMarketSummary(t *testing.T) {
	s := newTestServer(&fakeSource{listings: testListings()}, nil, nil)

	w := doRequest(t, s, http.MethodGet, "/api/market-summary?province=BC", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var summary query.Summary
	if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if summary.Count != 1 {
		t.Errorf("count = %d, want 1", summary.Count)
	}
}

func TestExtractProperty(t *testing.T) {
	ex := &fakeExtractor{result: extract.Result{Address: "12 Maple Crescent, Burnaby, BC", Price: fptr(742500)}}
	s := newTestServer(&fakeSource{}, ex, nil)

	w := doRequest(t, s, http.MethodPost, "/api/property", `{"url":"https://example.com/listing/1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var res extract.Result
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Address != "12 Maple Crescent, Burnaby, BC" {
		t.Errorf("address = %q", res.Address)
	}
	if res.Debug.URL != "https://example.com/listing/1" {
		t.Errorf("debug url = %q", res.Debug.URL)
	}
}

func TestExtractPropertyRequiresURL(t *testing.T) {
	s := newTestServer(&fakeSource{}, &fakeExtractor{}, nil)

	w := doRequest(t, s, http.MethodPost, "/api/property", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestFindLinksDisabled(t *testing.T) {
	s := newTestServer(&fakeSource{}, nil, nil)

	w := doRequest(t, s, http.MethodPost, "/api/find-links", `{"url":"https://portal.example.com"}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}

func TestFindLinks(t *testing.T) {
	lf := &fakeFinder{result: finder.RunResult{
		OK:    true,
		Links: []finder.Link{{URL: "https://portal.example.com/listing/1", Text: "1 Pine St"}},
	}}
	s := newTestServer(&fakeSource{}, nil, lf)

	w := doRequest(t, s, http.MethodPost, "/api/find-links", `{"url":"https://portal.example.com","search":"Surrey"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var res finder.RunResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !res.OK || len(res.Links) != 1 {
		t.Errorf("result = %+v", res)
	}
}
