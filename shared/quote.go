package shared

import "time"

// Quote represents the current price and day change of a symbol.
type Quote struct {
	Symbol        string
	Price         float64
	ChangePercent float64
}

// PreviousClose estimates the prior day close implied by the quote's change
// percent. The estimate is undefined when the change percent approaches
// -100, in which case ok is false.
func (q *Quote) PreviousClose() (float64, bool) {
	denominator := 1 + q.ChangePercent/100
	if denominator < 1e-9 && denominator > -1e-9 {
		return 0, false
	}

	return q.Price / denominator, true
}

// NewsItem represents a unit news headline for a symbol.
type NewsItem struct {
	ID        string
	Category  string
	Headline  string
	Source    string
	URL       string
	Timestamp time.Time
}
