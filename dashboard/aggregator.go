package dashboard

import (
	"math"
	"sort"

	"github.com/hlchan/folio/ledger"
	"github.com/hlchan/folio/shared"
)

// Holding represents the ranked performance of a held symbol.
type Holding struct {
	Symbol        string
	Price         float64
	ChangePercent float64
	MarketValue   float64
	UnrealizedPL  float64
	ReturnPercent float64
}

// Segment represents a unit slice of the allocation breakdown.
type Segment struct {
	Label string
	Value float64
}

// ZeroCostHolding represents a zero cost sub-position with its market value.
type ZeroCostHolding struct {
	Symbol      string
	Shares      float64
	FaceValue   float64
	Price       float64
	MarketValue float64
}

// Summary represents the aggregated portfolio metrics of an account at the
// provided quotes. EstimatedDayChange is an estimate derived from quote
// change percents, not a realized figure.
type Summary struct {
	Cash               float64
	TotalMarketValue   float64
	TotalEquity        float64
	TotalCost          float64
	TotalUnrealizedPL  float64
	TotalReturnPercent float64
	EstimatedDayChange float64
	Holdings           []Holding
	Segments           []Segment
	ZeroCost           []ZeroCostHolding
}

// Summarize rolls positions, current quotes and cash into portfolio totals.
// It is a pure function of its inputs; symbols without a quote contribute
// nothing to the totals and rank with a zero price.
func Summarize(positions []ledger.Position, quotes map[string]shared.Quote, cash float64) Summary {
	summary := Summary{
		Cash:     cash,
		Segments: []Segment{{Label: "Cash", Value: cash}},
	}

	for idx := range positions {
		pos := &positions[idx]

		quote, ok := quotes[pos.Symbol]
		if !ok {
			summary.Holdings = append(summary.Holdings, Holding{Symbol: pos.Symbol})
		} else {
			valuation := pos.Valuate(quote.Price)
			summary.TotalMarketValue += valuation.MarketValue
			summary.TotalCost += valuation.CostValue
			summary.TotalUnrealizedPL += valuation.UnrealizedPL

			// The day change estimate needs the implied previous close,
			// which is undefined for a -100 percent change.
			prevClose, defined := quote.PreviousClose()
			if defined {
				totalShares := pos.Shares + pos.ZeroCost.Shares
				summary.EstimatedDayChange += (quote.Price - prevClose) * totalShares
			}

			summary.Holdings = append(summary.Holdings, Holding{
				Symbol:        pos.Symbol,
				Price:         quote.Price,
				ChangePercent: quote.ChangePercent,
				MarketValue:   valuation.MarketValue,
				UnrealizedPL:  valuation.UnrealizedPL,
				ReturnPercent: valuation.ReturnPercent,
			})
			summary.Segments = append(summary.Segments, Segment{
				Label: pos.Symbol,
				Value: valuation.MarketValue,
			})
		}

		if pos.ZeroCost.Shares > 0 {
			summary.ZeroCost = append(summary.ZeroCost, ZeroCostHolding{
				Symbol:      pos.Symbol,
				Shares:      pos.ZeroCost.Shares,
				FaceValue:   pos.ZeroCost.FaceValue,
				Price:       quote.Price,
				MarketValue: pos.ZeroCost.Shares * quote.Price,
			})
		}
	}

	summary.TotalEquity = cash + summary.TotalMarketValue
	if summary.TotalCost > 0 {
		summary.TotalReturnPercent = summary.TotalUnrealizedPL / summary.TotalCost * 100
	}

	sort.SliceStable(summary.Holdings, func(i, j int) bool {
		return math.Abs(summary.Holdings[i].UnrealizedPL) > math.Abs(summary.Holdings[j].UnrealizedPL)
	})
	sort.SliceStable(summary.Segments, func(i, j int) bool {
		return summary.Segments[i].Value > summary.Segments[j].Value
	})
	sort.SliceStable(summary.ZeroCost, func(i, j int) bool {
		return summary.ZeroCost[i].MarketValue > summary.ZeroCost[j].MarketValue
	})

	return summary
}
