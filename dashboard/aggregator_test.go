package dashboard

import (
	"math"
	"testing"

	"github.com/hlchan/folio/ledger"
	"github.com/hlchan/folio/shared"
	"github.com/peterldowns/testy/assert"
)

func TestSummarize(t *testing.T) {
	positions := []ledger.Position{
		{
			Symbol:    "NVDA",
			Shares:    10,
			CostBasis: 450,
			ZeroCost:  ledger.ZeroCost{Shares: 2, FaceValue: 0},
		},
		{
			Symbol:    "AAPL",
			Shares:    50,
			CostBasis: 145.20,
		},
	}
	quotes := map[string]shared.Quote{
		"NVDA": {Symbol: "NVDA", Price: 880, ChangePercent: 10},
		"AAPL": {Symbol: "AAPL", Price: 170, ChangePercent: -0.5},
	}

	summary := Summarize(positions, quotes, 50000)

	// Ensure market value includes zero cost shares.
	wantNvdaMarket := float64(12 * 880)
	wantAaplMarket := float64(50 * 170)
	assert.True(t, math.Abs(summary.TotalMarketValue-(wantNvdaMarket+wantAaplMarket)) < 1e-9)
	assert.True(t, math.Abs(summary.TotalEquity-(50000+wantNvdaMarket+wantAaplMarket)) < 1e-9)

	// Ensure unrealized P/L excludes zero cost shares.
	wantNvdaPL := float64(10*880 - 10*450)
	wantAaplPL := 50*170 - 50*145.20
	assert.True(t, math.Abs(summary.TotalUnrealizedPL-(wantNvdaPL+wantAaplPL)) < 1e-9)

	// Ensure the day change estimate uses the implied previous close across
	// all shares, zero cost included.
	nvdaPrev := 880 / 1.10
	aaplPrev := 170 / 0.995
	wantDayChange := (880-nvdaPrev)*12 + (170-aaplPrev)*50
	assert.True(t, math.Abs(summary.EstimatedDayChange-wantDayChange) < 1e-9)

	// Ensure holdings rank by absolute unrealized P/L descending.
	assert.Equal(t, len(summary.Holdings), 2)
	assert.Equal(t, summary.Holdings[0].Symbol, "NVDA")
	assert.Equal(t, summary.Holdings[1].Symbol, "AAPL")

	// Ensure allocation segments include cash and sort by value descending.
	assert.Equal(t, len(summary.Segments), 3)
	assert.Equal(t, summary.Segments[0].Label, "Cash")
	assert.Equal(t, summary.Segments[1].Label, "NVDA")
	assert.Equal(t, summary.Segments[2].Label, "AAPL")

	// Ensure zero cost holdings are listed with their market value.
	assert.Equal(t, len(summary.ZeroCost), 1)
	assert.Equal(t, summary.ZeroCost[0].Symbol, "NVDA")
	assert.Equal(t, summary.ZeroCost[0].MarketValue, float64(2*880))
}

func TestSummarizeMissingQuote(t *testing.T) {
	positions := []ledger.Position{
		{Symbol: "TSLA", Shares: 25, CostBasis: 210.50},
	}

	// Ensure a symbol without a quote contributes nothing to the totals but
	// still ranks with a zero price.
	summary := Summarize(positions, map[string]shared.Quote{}, 1000)
	assert.Equal(t, summary.TotalMarketValue, float64(0))
	assert.Equal(t, summary.TotalEquity, float64(1000))
	assert.Equal(t, len(summary.Holdings), 1)
	assert.Equal(t, summary.Holdings[0].Price, float64(0))
	assert.Equal(t, len(summary.Segments), 1)
}

func TestSummarizeDayChangeGuard(t *testing.T) {
	positions := []ledger.Position{
		{Symbol: "WIPE", Shares: 10, CostBasis: 50},
	}
	quotes := map[string]shared.Quote{
		"WIPE": {Symbol: "WIPE", Price: 0, ChangePercent: -100},
	}

	// Ensure a -100 percent change skips the day change contribution rather
	// than propagating a division by zero.
	summary := Summarize(positions, quotes, 0)
	assert.Equal(t, summary.EstimatedDayChange, float64(0))
	assert.False(t, math.IsNaN(summary.TotalUnrealizedPL))
}

func TestSummarizeEmpty(t *testing.T) {
	// Ensure an empty account summarizes to cash only.
	summary := Summarize(nil, nil, 0)
	assert.Equal(t, summary.TotalEquity, float64(0))
	assert.Equal(t, summary.TotalReturnPercent, float64(0))
	assert.Equal(t, len(summary.Segments), 1)
	assert.Equal(t, len(summary.Holdings), 0)
	assert.Equal(t, len(summary.ZeroCost), 0)
}
