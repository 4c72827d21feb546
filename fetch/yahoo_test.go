package fetch

import (
	"errors"
	"sync"
	"testing"

	"github.com/hlchan/folio/shared"
	"github.com/peterldowns/testy/assert"
	"github.com/tidwall/gjson"
)

func TestYahooParseChartCandles(t *testing.T) {
	yc := NewYahooClient(&YahooConfig{})

	// Ensure chart candles can be parsed, skipping null holiday entries.
	result := gjson.Parse(`{
		"timestamp": [1714694400, 1714780800, 1714867200],
		"indicators": {"quote": [{
			"open":  [10.111, null, 12.555],
			"high":  [15.0, null, 16.0],
			"low":   [8.0, null, 11.0],
			"close": [12.0, null, 14.004]
		}]}
	}`)

	candles, err := yc.ParseChartCandles(result)
	assert.NoError(t, err)
	assert.Equal(t, len(candles), 2)
	assert.Equal(t, candles[0].Open, 10.11)
	assert.Equal(t, candles[1].Close, float64(14))

	// Ensure an empty payload reports unavailable data.
	_, err = yc.ParseChartCandles(gjson.Parse(`{}`))
	assert.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrDataUnavailable))

	// Ensure mismatched columns report a malformed series.
	result = gjson.Parse(`{
		"timestamp": [1714694400, 1714780800],
		"indicators": {"quote": [{"open":[10],"high":[15],"low":[8],"close":[12]}]}
	}`)
	_, err = yc.ParseChartCandles(result)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrMalformedSeries))
}

func TestYahooParseNews(t *testing.T) {
	yc := NewYahooClient(&YahooConfig{})

	// Ensure search news items can be parsed.
	data := gjson.Parse(`[
		{"uuid":"n1","title":"headline one","publisher":"pubA","link":"l1","providerPublishTime":1714694400},
		{"uuid":"n2","title":"headline two","publisher":"pubB","link":"l2","providerPublishTime":1714694401}
	]`).Array()

	items := yc.ParseNews(data)
	assert.Equal(t, len(items), 2)
	assert.Equal(t, items[0].ID, "n1")
	assert.Equal(t, items[0].Headline, "headline one")
	assert.Equal(t, items[0].Source, "pubA")
	assert.Equal(t, items[0].Category, "News")
	assert.Equal(t, items[1].Timestamp.Unix(), int64(1714694401))

	// Ensure the base urls default when unset.
	assert.Equal(t, yc.cfg.ChartBaseURL, defaultYahooChartURL)
	assert.Equal(t, yc.cfg.SearchBaseURL, defaultYahooSearchURL)
}

func TestYahooConcurrentURLs(t *testing.T) {
	yc := NewYahooClient(&YahooConfig{
		ChartBaseURL:  "http://chart",
		SearchBaseURL: "http://search",
	})

	// Ensure urls are formed accurately, escaping the symbol path segment.
	assert.Equal(t, yc.chartURL("NVDA", "interval=1d"), "http://chart/NVDA?interval=1d")
	assert.Equal(t, yc.searchURL("q=NVDA"), "http://search?q=NVDA")

	// Ensure concurrent fetch workers sharing the client form urls without
	// interference.
	var wg sync.WaitGroup
	chartURLs := make([]string, maxWorkers)
	searchURLs := make([]string, maxWorkers)
	for idx := range chartURLs {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			chartURLs[idx] = yc.chartURL("NVDA", "interval=1d")
			searchURLs[idx] = yc.searchURL("q=NVDA")
		}(idx)
	}
	wg.Wait()

	for idx := range chartURLs {
		assert.Equal(t, chartURLs[idx], "http://chart/NVDA?interval=1d")
		assert.Equal(t, searchURLs[idx], "http://search?q=NVDA")
	}
}
