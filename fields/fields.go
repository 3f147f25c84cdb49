// Package fields parses loosely-typed spreadsheet and JSON values. Source
// files mix currency strings, percentages and numbers with trailing unit
// text; everything funnels through ToNumber so that no call site grows its
// own ad hoc parsing.
package fields

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"roilens/models"
)

var numberRe = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// Currency markers stripped before numeric extraction. Longer tokens first
// so "C$" goes before "$" and "CAD" is removed whole.
var noiseTokens = []string{"C$", "CAD", "USD", "$", "%"}

// ToNumber coerces v into a float, tolerating currency symbols, thousands
// separators, percent signs and trailing unit text ("1,234 sqft",
// "$450,000", "6.5%"). Returns nil when no numeric substring is found or v
// is nil/empty. Never panics; all failure is a nil result.
func ToNumber(v any) *float64 {
	switch n := v.(type) {
	case nil:
		return nil
	case float64:
		f := n
		return &f
	case float32:
		f := float64(n)
		return &f
	case int:
		f := float64(n)
		return &f
	case int64:
		f := float64(n)
		return &f
	}

	s := strings.TrimSpace(fmt.Sprint(v))
	if s == "" {
		return nil
	}
	for _, tok := range noiseTokens {
		s = replaceFold(s, tok)
	}
	s = strings.ReplaceAll(s, ",", "")

	match := numberRe.FindString(s)
	if match == "" {
		return nil
	}
	f, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return nil
	}
	return &f
}

// ToString trims v into a string, empty for nil.
func ToString(v any) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// PickFirst returns the first non-empty value among the named keys of row.
// Source files disagree on column naming ("Price_Listing", "Price",
// "Purchase Price"...), so every canonical field resolves through an ordered
// alias list.
func PickFirst(row models.Row, keys ...string) any {
	for _, k := range keys {
		v, ok := row[k]
		if !ok || v == nil {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(v)) == "" {
			continue
		}
		return v
	}
	return nil
}

// replaceFold removes every case-insensitive occurrence of tok from s.
func replaceFold(s, tok string) string {
	if tok == strings.ToLower(tok) && tok == strings.ToUpper(tok) {
		// No letters, plain replace is enough ("$", "%").
		return strings.ReplaceAll(s, tok, "")
	}
	var b strings.Builder
	for i := 0; i < len(s); {
		if i+len(tok) <= len(s) && strings.EqualFold(s[i:i+len(tok)], tok) {
			i += len(tok)
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}
