// Package invest computes investor metrics for a listing under a caller
// supplied assumption set. Only fixed-rate fully-amortizing loans are
// modeled. Everything here is a pure function over immutable inputs.
package invest

import "math"

// Assumptions is the investor configuration, supplied per request and never
// persisted server-side. Percentage fields are clamped into [0,100] before
// use; out-of-range values are silently clamped, not rejected.
type Assumptions struct {
	DownPaymentPct  float64 `json:"downPaymentPct"`
	InterestRatePct float64 `json:"interestRatePct"` // annual
	AmortYears      int     `json:"amortYears"`      // 15/20/25/30
	VacancyPct      float64 `json:"vacancyPct"`
	ExpensePct      float64 `json:"expensePct"`
}

// DefaultAssumptions returns the assumptions the UI starts from.
func DefaultAssumptions() Assumptions {
	return Assumptions{
		DownPaymentPct:  20,
		InterestRatePct: 5.5,
		AmortYears:      30,
		VacancyPct:      5,
		ExpensePct:      35,
	}
}

// Metrics is derived per request from a listing and an assumption set. Nil
// propagates: a missing price nulls everything except pass-through NOI, a
// missing rent nulls the cash-flow-dependent fields only.
type Metrics struct {
	LoanAmount           *float64 `json:"loanAmount"`
	MonthlyMortgage      *float64 `json:"monthlyMortgage"`
	EffectiveRentMonthly *float64 `json:"effectiveRentMonthly"`
	OpexMonthly          *float64 `json:"opexMonthly"`
	NOIAnnual            *float64 `json:"noiAnnual"`
	CashFlowMonthly      *float64 `json:"cashFlowMonthly"`
	CashOnCashPct        *float64 `json:"cashOnCashPct"`
	DSCR                 *float64 `json:"dscr"`
}

// MortgagePayment is the standard fixed-rate amortization formula:
// P * r(1+r)^n / ((1+r)^n - 1) with a monthly rate, falling back to straight
// division when the rate is zero.
func MortgagePayment(principal, annualRatePct float64, amortYears int) float64 {
	r := annualRatePct / 100 / 12
	n := amortYears * 12
	if principal <= 0 || n <= 0 {
		return 0
	}
	if r == 0 {
		return principal / float64(n)
	}
	growth := math.Pow(1+r, float64(n))
	return principal * (r * growth) / (growth - 1)
}

// ComputeMetrics derives the full metric set from price, monthly rent and an
// optional listing-provided annual NOI.
func ComputeMetrics(price, estRentMonthly, listingNOIAnnual *float64, a Assumptions) Metrics {
	if price == nil || *price <= 0 {
		return Metrics{NOIAnnual: listingNOIAnnual}
	}

	dp := clamp(a.DownPaymentPct, 0, 100) / 100
	loanAmount := *price * (1 - dp)
	monthlyMortgage := MortgagePayment(loanAmount, a.InterestRatePct, a.AmortYears)

	// Without rent there is no cash flow, but the mortgage side still holds.
	if estRentMonthly == nil || *estRentMonthly <= 0 {
		return Metrics{
			LoanAmount:      &loanAmount,
			MonthlyMortgage: &monthlyMortgage,
			NOIAnnual:       listingNOIAnnual,
		}
	}

	vacancy := clamp(a.VacancyPct, 0, 100) / 100
	effectiveRent := *estRentMonthly * (1 - vacancy)

	expense := clamp(a.ExpensePct, 0, 100) / 100
	opex := effectiveRent * expense

	noiAnnual := (effectiveRent - opex) * 12
	cashFlow := (effectiveRent - opex) - monthlyMortgage

	m := Metrics{
		LoanAmount:           &loanAmount,
		MonthlyMortgage:      &monthlyMortgage,
		EffectiveRentMonthly: &effectiveRent,
		OpexMonthly:          &opex,
		NOIAnnual:            &noiAnnual,
		CashFlowMonthly:      &cashFlow,
	}

	if invested := *price * dp; invested > 0 {
		coc := cashFlow * 12 / invested * 100
		m.CashOnCashPct = &coc
	}
	if monthlyMortgage > 0 {
		dscr := (effectiveRent - opex) / monthlyMortgage
		m.DSCR = &dscr
	}

	return m
}

func clamp(n, lo, hi float64) float64 {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
