package geo

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Market describes one country's address conventions: the region codes that
// may appear in the last address segment, and the street-type tokens used to
// tell a street line apart from a bare city name.
type Market struct {
	ID           string   `yaml:"id"`
	Country      string   `yaml:"country"`
	RegionCodes  []string `yaml:"region_codes"`
	StreetTokens []string `yaml:"street_tokens"`

	regionRe *regexp.Regexp
	streetRe *regexp.Regexp
}

var defaultStreetTokens = []string{
	"ave", "avenue", "st", "street", "rd", "road", "blvd", "boulevard",
	"dr", "drive", "way", "lane", "ln", "pl", "place", "cres", "court", "ct",
}

// DefaultMarket returns the Canadian market with the 13 province and
// territory abbreviations.
func DefaultMarket() *Market {
	m := &Market{
		ID:      "canada",
		Country: "Canada",
		RegionCodes: []string{
			"BC", "AB", "SK", "MB", "ON", "QC", "NB",
			"NS", "NL", "PE", "NT", "NU", "YT",
		},
		StreetTokens: defaultStreetTokens,
	}
	m.compile()
	return m
}

// LoadMarkets reads market definitions from YAML files in dir, keyed by
// market ID. A missing directory is not an error; callers fall back to the
// default market.
func LoadMarkets(dir string) (map[string]*Market, error) {
	markets := make(map[string]*Market)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return markets, nil
		}
		return nil, err
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}

		var m Market
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse market %s: %w", entry.Name(), err)
		}
		if m.ID == "" || m.Country == "" || len(m.RegionCodes) == 0 {
			return nil, fmt.Errorf("market %s: id, country and region_codes are required", entry.Name())
		}
		if len(m.StreetTokens) == 0 {
			m.StreetTokens = defaultStreetTokens
		}
		m.compile()
		markets[m.ID] = &m
	}

	return markets, nil
}

func (m *Market) compile() {
	m.regionRe = regexp.MustCompile(`(?i)\b(` + strings.Join(escapeAll(m.RegionCodes), "|") + `)\b`)
	m.streetRe = regexp.MustCompile(`(?i)\b(` + strings.Join(escapeAll(m.StreetTokens), "|") + `)\b`)
}

func escapeAll(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = regexp.QuoteMeta(t)
	}
	return out
}
