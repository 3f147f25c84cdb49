package models

// Row is one raw source record: a spreadsheet row keyed by header name, or a
// scraped JSON object. Values are loosely typed and may be dirty strings.
type Row map[string]any

// Listing is the canonical listing record. It is immutable after creation;
// query results hold filtered/sorted copies that share the same backing data.
type Listing struct {
	ID      int      `json:"id"`
	Address string   `json:"address"`
	Price   *float64 `json:"price"`
	Beds    *float64 `json:"beds"`
	Baths   *float64 `json:"baths"`
	SqFt    *float64 `json:"sqft"`
	EstRent *float64 `json:"estRent"` // monthly
	NOI     *float64 `json:"noi"`     // annual
	CapRate *float64 `json:"capRate"` // percent, 2 decimals
	Raw     Row      `json:"raw,omitempty"`
}

// HasAnyData reports whether the listing carries any information at all.
// Rows where address, price, beds, baths and sqft are all empty are junk.
func (l *Listing) HasAnyData() bool {
	return l.Address != "" || l.Price != nil || l.Beds != nil || l.Baths != nil || l.SqFt != nil
}
