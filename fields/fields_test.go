package fields

import (
	"strconv"
	"testing"

	"roilens/models"
)

func TestToNumber(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
		null bool
	}{
		{"plain float", 450000.0, 450000, false},
		{"int", 3, 3, false},
		{"currency with commas", "$450,000", 450000, false},
		{"canadian prefix", "C$1,200", 1200, false},
		{"currency code", "1,149,900 CAD", 1149900, false},
		{"percent", "6.5%", 6.5, false},
		{"trailing units", "1,234 sqft", 1234, false},
		{"negative", "-1,200", -1200, false},
		{"decimal", "2.75", 2.75, false},
		{"leading text", "approx. 890 sq ft", 890, false},
		{"nil", nil, 0, true},
		{"empty", "", 0, true},
		{"whitespace", "   ", 0, true},
		{"no digits", "call for price", 0, true},
		{"lone symbol", "$", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToNumber(tt.in)
			if tt.null {
				if got != nil {
					t.Fatalf("expected nil, got %v", *got)
				}
				return
			}
			if got == nil {
				t.Fatalf("expected %v, got nil", tt.want)
			}
			if *got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, *got)
			}
		})
	}
}

// ToNumber must be idempotent on its own output once formatted back to a
// plain numeral.
func TestToNumberIdempotent(t *testing.T) {
	inputs := []any{"$450,000", "6.5%", "1,234 sqft", "-12.5", 42}
	for _, in := range inputs {
		first := ToNumber(in)
		if first == nil {
			t.Fatalf("expected a number for %v", in)
		}
		second := ToNumber(strconv.FormatFloat(*first, 'f', -1, 64))
		if second == nil || *second != *first {
			t.Fatalf("not idempotent for %v: first %v, second %v", in, *first, second)
		}
	}
}

func TestPickFirst(t *testing.T) {
	row := models.Row{
		"Price":   "",
		"price":   "$450,000",
		"Address": nil,
		"Beds":    3,
	}

	if v := PickFirst(row, "Price_Listing", "Price", "price"); v != "$450,000" {
		t.Fatalf("expected dirty price string, got %v", v)
	}
	if v := PickFirst(row, "Address", "address"); v != nil {
		t.Fatalf("expected nil for all-empty candidates, got %v", v)
	}
	if v := PickFirst(row, "Bed", "Beds"); v != 3 {
		t.Fatalf("expected 3, got %v", v)
	}
}

func TestToString(t *testing.T) {
	if got := ToString("  60-8220 King George Blvd  "); got != "60-8220 King George Blvd" {
		t.Fatalf("unexpected trim result: %q", got)
	}
	if got := ToString(nil); got != "" {
		t.Fatalf("expected empty string for nil, got %q", got)
	}
}
