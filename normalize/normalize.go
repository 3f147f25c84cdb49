// Package normalize maps arbitrary source rows into canonical listings.
// Column naming varies wildly across source files, so every canonical field
// resolves through one ordered alias list; missing rent/NOI/cap-rate values
// are back-filled from configurable estimates.
package normalize

import (
	"math"

	"roilens/fields"
	"roilens/models"
)

// Config holds the estimation knobs used when a source row omits rent, NOI
// or cap rate.
type Config struct {
	RentBase     float64 // flat monthly rent component
	RentPerBed   float64 // monthly rent per bedroom
	FallbackBeds float64 // bedroom count assumed when beds is unknown
	ExpenseRatio float64 // share of gross rent consumed by operating costs
}

// DefaultConfig mirrors the estimation defaults the listing files were
// calibrated against.
func DefaultConfig() Config {
	return Config{
		RentBase:     1200,
		RentPerBed:   700,
		FallbackBeds: 2,
		ExpenseRatio: 0.35,
	}
}

// One alias list per canonical field, in resolution priority order.
var (
	addressAliases = []string{"Location", "Address", "address", "ADDRESS", "Full Address", "Property Address"}
	priceAliases   = []string{"Price_Listing", "Price", "price", "Purchase Price"}
	bedsAliases    = []string{"Bed", "Beds", "Bedrooms", "bedrooms"}
	bathsAliases   = []string{"Bath", "Baths", "Bathrooms", "bathrooms"}
	sqftAliases    = []string{"Property_Sqft", "Sqft", "sqft", "Square Feet", "squareFeet"}
	rentAliases    = []string{"Rent", "rent", "estimatedRent", "Estimated Rent", "Est Rent"}
	noiAliases     = []string{"NOI", "noi", "NOI/yr", "NOI Yearly", "noiYear"}
	capAliases     = []string{"Cap Rate", "capRate", "cap_rate", "CapRate"}
)

// Row maps one source row into a canonical Listing. ok is false when the row
// carries no information at all (pure junk) and must be discarded.
func Row(id int, row models.Row, cfg Config) (models.Listing, bool) {
	l := models.Listing{
		ID:      id,
		Address: fields.ToString(fields.PickFirst(row, addressAliases...)),
		Price:   fields.ToNumber(fields.PickFirst(row, priceAliases...)),
		Beds:    fields.ToNumber(fields.PickFirst(row, bedsAliases...)),
		Baths:   fields.ToNumber(fields.PickFirst(row, bathsAliases...)),
		SqFt:    fields.ToNumber(fields.PickFirst(row, sqftAliases...)),
		Raw:     row,
	}

	if !l.HasAnyData() {
		return models.Listing{}, false
	}

	l.EstRent = fields.ToNumber(fields.PickFirst(row, rentAliases...))
	if l.EstRent == nil {
		rent := EstimateMonthlyRent(l.Beds, cfg)
		l.EstRent = &rent
	}

	l.NOI = fields.ToNumber(fields.PickFirst(row, noiAliases...))
	if l.NOI == nil {
		noi := EstimateAnnualNOI(*l.EstRent, cfg.ExpenseRatio)
		l.NOI = &noi
	}

	l.CapRate = fields.ToNumber(fields.PickFirst(row, capAliases...))
	if l.CapRate == nil {
		l.CapRate = CapRate(l.NOI, l.Price)
	}

	return l, true
}

// EstimateMonthlyRent derives a monthly rent from the bedroom count,
// substituting the configured fallback when beds is unknown.
func EstimateMonthlyRent(beds *float64, cfg Config) float64 {
	b := cfg.FallbackBeds
	if beds != nil {
		b = *beds
	}
	return math.Max(0, math.Round(cfg.RentBase+b*cfg.RentPerBed))
}

// EstimateAnnualNOI reduces a year of gross rent by the expense ratio.
func EstimateAnnualNOI(monthlyRent, expenseRatio float64) float64 {
	return math.Round(monthlyRent * 12 * (1 - expenseRatio))
}

// CapRate is annual NOI over price as a percentage with 2-decimal precision,
// nil unless both inputs are present and price is positive.
func CapRate(noiAnnual, price *float64) *float64 {
	if noiAnnual == nil || price == nil || *price <= 0 {
		return nil
	}
	cap := math.Round(*noiAnnual / *price * 10000) / 100
	return &cap
}
