package query

import "roilens/models"

// Summary aggregates the hard-rule-passing, location-filtered set. Averages
// are nil when the filtered set is empty.
type Summary struct {
	Count      int      `json:"count"`
	AvgCapRate *float64 `json:"avgCapRate"`
	AvgPrice   *float64 `json:"avgPrice"`
	AvgRent    *float64 `json:"avgRent"`
}

// Summarize computes market averages for a location slice of the listing
// universe. Only the location filters apply; everything else is ignored.
func (e *Engine) Summarize(all []models.Listing, country, province, city string) Summary {
	valid := e.passHardRules(all)

	var caps, prices, rents []float64
	count := 0
	for _, v := range valid {
		if wanted(country) && v.location.Country != country {
			continue
		}
		if wanted(province) && v.location.Province != province {
			continue
		}
		if wanted(city) && v.location.City != city {
			continue
		}
		count++
		if v.listing.CapRate != nil {
			caps = append(caps, *v.listing.CapRate)
		}
		if v.listing.Price != nil {
			prices = append(prices, *v.listing.Price)
		}
		if v.listing.EstRent != nil {
			rents = append(rents, *v.listing.EstRent)
		}
	}

	return Summary{
		Count:      count,
		AvgCapRate: avg(caps),
		AvgPrice:   avg(prices),
		AvgRent:    avg(rents),
	}
}

func avg(nums []float64) *float64 {
	if len(nums) == 0 {
		return nil
	}
	total := 0.0
	for _, n := range nums {
		total += n
	}
	mean := total / float64(len(nums))
	return &mean
}
