// Package geo decomposes free-text addresses into city/province/country by
// heuristic token matching. It is a best-effort classifier, not a geocoder:
// the rules are lossy and order-dependent on purpose.
package geo

import "strings"

const Unknown = "Unknown"

// Location is derived from a listing address on demand; it is never stored.
type Location struct {
	City     string `json:"city"`
	Province string `json:"province"`
	Country  string `json:"country"`
}

// Parse splits the address on commas and classifies the parts:
//   - the last part is searched for a region code (province),
//   - the first part is treated as a street line when it contains a digit
//     or a street-type token, in which case the second part is the city;
//     otherwise the first part itself is the city.
func (m *Market) Parse(address string) Location {
	loc := Location{City: Unknown, Province: Unknown, Country: Unknown}
	if strings.TrimSpace(address) == "" {
		return loc
	}
	var parts []string
	for _, p := range strings.Split(address, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return loc
	}
	loc.Country = m.Country

	last := parts[len(parts)-1]
	if match := m.regionRe.FindString(last); match != "" {
		loc.Province = strings.ToUpper(match)
	}

	first := parts[0]
	looksLikeStreet := strings.ContainsAny(first, "0123456789") || m.streetRe.MatchString(first)

	switch {
	case looksLikeStreet && len(parts) > 1:
		loc.City = parts[1]
	default:
		loc.City = first
	}

	return loc
}
