// Package query applies hard validity rules, user filters, sorting and
// pagination over the canonical listing set. All operations are pure
// functions over immutable inputs and safe for concurrent use.
package query

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"roilens/geo"
	"roilens/models"
)

const (
	DefaultHardMinPrice = 200000
	MaxPageSize         = 200
	DefaultPageSize     = 50

	// Sort sentinels so nil metrics always sort last.
	nilCapSort   = -999
	nilNOISort   = -999
	nilPriceSort = 9e18
)

// Params are the user-selected filters; all optional and conjunctive.
// "any" (or the zero value) disables the corresponding filter.
type Params struct {
	Q           string
	Country     string
	Province    string
	City        string
	PriceBucket string // any|200-500|500-1000|1000+
	MinCap      float64
	MinBeds     float64
	MinBaths    float64
	SortBy      string // cap|priceLow|noiHigh
	Page        int
	PageSize    int
}

// Result is one page of listings plus the dropdown option lists derived from
// the full hard-rule-passing universe.
type Result struct {
	Items           []models.Listing `json:"items"`
	Total           int              `json:"total"`
	TotalPages      int              `json:"totalPages"`
	Page            int              `json:"page"`
	PageSize        int              `json:"pageSize"`
	ProvinceOptions []string         `json:"provinceOptions"`
	CityOptions     []string         `json:"cityOptions"`
}

// Engine evaluates queries against a fixed market and hard price floor.
type Engine struct {
	market       *geo.Market
	hardMinPrice float64
}

func NewEngine(market *geo.Market, hardMinPrice float64) *Engine {
	if market == nil {
		market = geo.DefaultMarket()
	}
	if hardMinPrice <= 0 {
		hardMinPrice = DefaultHardMinPrice
	}
	return &Engine{market: market, hardMinPrice: hardMinPrice}
}

// located pairs a listing with its derived location so each address is
// parsed once per query.
type located struct {
	listing  models.Listing
	location geo.Location
}

// Run evaluates one query. Option lists always come from the full
// hard-rule-passing set, independent of user filters, so selecting a filter
// never shrinks the choices offered for the others.
func (e *Engine) Run(all []models.Listing, p Params) Result {
	valid := e.passHardRules(all)

	res := Result{
		Items:           []models.Listing{},
		ProvinceOptions: e.provinceOptions(valid),
		CityOptions:     e.cityOptions(valid),
	}

	filtered := make([]models.Listing, 0, len(valid))
	for _, v := range valid {
		if e.matches(v, p) {
			filtered = append(filtered, v.listing)
		}
	}

	sortListings(filtered, p.SortBy)

	res.Total = len(filtered)
	res.PageSize = clampInt(p.PageSize, 1, MaxPageSize)
	res.TotalPages = (res.Total + res.PageSize - 1) / res.PageSize
	if res.TotalPages < 1 {
		res.TotalPages = 1
	}
	res.Page = clampInt(p.Page, 1, res.TotalPages)

	start := (res.Page - 1) * res.PageSize
	if start < res.Total {
		end := start + res.PageSize
		if end > res.Total {
			end = res.Total
		}
		res.Items = append(res.Items, filtered[start:end]...)
	}

	return res
}

// passHardRules drops listings that fail the non-negotiable validity rules:
// a known price at or above the floor and strictly positive beds and baths.
func (e *Engine) passHardRules(all []models.Listing) []located {
	valid := make([]located, 0, len(all))
	for _, l := range all {
		if l.Price == nil || *l.Price < e.hardMinPrice {
			continue
		}
		if l.Beds == nil || *l.Beds <= 0 {
			continue
		}
		if l.Baths == nil || *l.Baths <= 0 {
			continue
		}
		valid = append(valid, located{listing: l, location: e.market.Parse(l.Address)})
	}
	return valid
}

func (e *Engine) matches(v located, p Params) bool {
	if q := strings.ToLower(strings.TrimSpace(p.Q)); q != "" {
		if !strings.Contains(strings.ToLower(v.listing.Address), q) {
			return false
		}
	}
	if wanted(p.Country) && v.location.Country != p.Country {
		return false
	}
	if wanted(p.Province) && v.location.Province != p.Province {
		return false
	}
	if wanted(p.City) && v.location.City != p.City {
		return false
	}
	if !inPriceBucket(*v.listing.Price, p.PriceBucket) {
		return false
	}
	if p.MinCap > 0 {
		if v.listing.CapRate == nil || *v.listing.CapRate < p.MinCap {
			return false
		}
	}
	if p.MinBeds > 0 && *v.listing.Beds < p.MinBeds {
		return false
	}
	if p.MinBaths > 0 && *v.listing.Baths < p.MinBaths {
		return false
	}
	return true
}

func wanted(filter string) bool {
	return filter != "" && filter != "any"
}

// inPriceBucket tests bucket membership; bounds are in full currency units
// and upper bounds are exclusive so adjacent buckets never overlap.
func inPriceBucket(price float64, bucket string) bool {
	switch bucket {
	case "200-500":
		return price >= 200000 && price < 500000
	case "500-1000":
		return price >= 500000 && price < 1000000
	case "1000+":
		return price >= 1000000
	default:
		// "any" and unrecognized buckets pass everything.
		return true
	}
}

// sortListings orders the result set in place. Sorts are stable and nil
// metrics sort last in every mode; an unrecognized key leaves the load order
// untouched.
func sortListings(listings []models.Listing, sortBy string) {
	switch sortBy {
	case "cap":
		sort.SliceStable(listings, func(i, j int) bool {
			return capOrNil(listings[i]) > capOrNil(listings[j])
		})
	case "priceLow":
		sort.SliceStable(listings, func(i, j int) bool {
			return priceOrNil(listings[i]) < priceOrNil(listings[j])
		})
	case "noiHigh":
		sort.SliceStable(listings, func(i, j int) bool {
			return noiOrNil(listings[i]) > noiOrNil(listings[j])
		})
	}
}

func capOrNil(l models.Listing) float64 {
	if l.CapRate == nil {
		return nilCapSort
	}
	return *l.CapRate
}

func priceOrNil(l models.Listing) float64 {
	if l.Price == nil {
		return nilPriceSort
	}
	return *l.Price
}

func noiOrNil(l models.Listing) float64 {
	if l.NOI == nil {
		return nilNOISort
	}
	return *l.NOI
}

func (e *Engine) provinceOptions(valid []located) []string {
	opts := distinct(valid, func(v located) string { return v.location.Province })
	sort.Strings(opts)
	return opts
}

func (e *Engine) cityOptions(valid []located) []string {
	opts := distinct(valid, func(v located) string { return v.location.City })
	collate.New(language.English).SortStrings(opts)
	return opts
}

func distinct(valid []located, key func(located) string) []string {
	seen := make(map[string]struct{}, len(valid))
	out := make([]string, 0, len(valid))
	for _, v := range valid {
		k := key(v)
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

func clampInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
