package fetch

import (
	"errors"
	"net/url"
	"sync"
	"testing"

	"github.com/hlchan/folio/shared"
	"github.com/peterldowns/testy/assert"
	"github.com/tidwall/gjson"
)

func TestFinnhubClient(t *testing.T) {
	// Ensure the finnhub client can be created.
	cfg := &FinnhubConfig{
		APIKey:  "key",
		BaseURL: "http://base",
	}

	fc := NewFinnhubClient(cfg)

	// Ensure urls can be formed accurately.
	params := url.Values{}
	params.Add("a", "bbb")
	params.Add("b", "ccc")

	path := "/path"
	formedUrl := fc.formURL(path, params.Encode())
	assert.Equal(t, formedUrl, "http://base/path?a=bbb&b=ccc")

	// Ensure the base url defaults when unset.
	fc = NewFinnhubClient(&FinnhubConfig{APIKey: "key"})
	assert.Equal(t, fc.cfg.BaseURL, defaultFinnhubBaseURL)
}

func TestFinnhubConcurrentFormURL(t *testing.T) {
	fc := NewFinnhubClient(&FinnhubConfig{APIKey: "key", BaseURL: "http://base"})

	params := url.Values{}
	params.Add("symbol", "NVDA")
	encoded := params.Encode()

	// Ensure concurrent fetch workers sharing the client form urls without
	// interference.
	var wg sync.WaitGroup
	results := make([]string, maxWorkers)
	for idx := range results {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx] = fc.formURL("/quote", encoded)
		}(idx)
	}
	wg.Wait()

	for idx := range results {
		assert.Equal(t, results[idx], "http://base/quote?symbol=NVDA")
	}
}

func TestFinnhubParseQuote(t *testing.T) {
	fc := NewFinnhubClient(&FinnhubConfig{APIKey: "key"})

	// Ensure a quote payload can be parsed.
	data := gjson.Parse(`{"c":880.08,"d":10.5,"dp":1.2}`)
	quote, err := fc.ParseQuote(data, "NVDA")
	assert.NoError(t, err)
	assert.Equal(t, quote.Symbol, "NVDA")
	assert.Equal(t, quote.Price, 880.08)
	assert.Equal(t, quote.ChangePercent, 1.2)

	// Ensure an empty quote reports unavailable data.
	data = gjson.Parse(`{"c":0}`)
	_, err = fc.ParseQuote(data, "NVDA")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrDataUnavailable))
}

func TestFinnhubParseCandles(t *testing.T) {
	fc := NewFinnhubClient(&FinnhubConfig{APIKey: "key"})

	// Ensure columnar candle data can be parsed.
	data := gjson.Parse(`{"s":"ok","t":[1714694400,1714780800],"o":[10,12],"h":[15,16],"l":[8,11],"c":[12,14]}`)
	candles, err := fc.ParseCandles(data)
	assert.NoError(t, err)
	assert.Equal(t, len(candles), 2)
	assert.Equal(t, candles[0].Open, float64(10))
	assert.Equal(t, candles[0].High, float64(15))
	assert.Equal(t, candles[0].Low, float64(8))
	assert.Equal(t, candles[0].Close, float64(12))
	assert.Equal(t, candles[0].Date.Year(), 2024)
	assert.True(t, candles[1].Date.After(candles[0].Date))

	// Ensure a no data status reports unavailable data.
	_, err = fc.ParseCandles(gjson.Parse(`{"s":"no_data"}`))
	assert.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrDataUnavailable))

	// Ensure an unexpected status is rejected.
	_, err = fc.ParseCandles(gjson.Parse(`{"s":"error"}`))
	assert.Error(t, err)

	// Ensure mismatched columns report a malformed series.
	_, err = fc.ParseCandles(gjson.Parse(`{"s":"ok","t":[1714694400],"o":[],"h":[15],"l":[8],"c":[12]}`))
	assert.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrMalformedSeries))
}

func TestFinnhubParseNews(t *testing.T) {
	fc := NewFinnhubClient(&FinnhubConfig{APIKey: "key"})

	// Ensure news items can be parsed and are capped.
	data := gjson.Parse(`[
		{"id":1,"category":"company","datetime":1714694400,"headline":"one","source":"a","url":"u1"},
		{"id":2,"category":"company","datetime":1714694401,"headline":"two","source":"b","url":"u2"},
		{"id":3,"category":"company","datetime":1714694402,"headline":"three","source":"c","url":"u3"},
		{"id":4,"category":"company","datetime":1714694403,"headline":"four","source":"d","url":"u4"},
		{"id":5,"category":"company","datetime":1714694404,"headline":"five","source":"e","url":"u5"},
		{"id":6,"category":"company","datetime":1714694405,"headline":"six","source":"f","url":"u6"}
	]`).Array()

	items := fc.ParseNews(data)
	assert.Equal(t, len(items), maxNewsItems)
	assert.Equal(t, items[0].Headline, "one")
	assert.Equal(t, items[0].Source, "a")
	assert.Equal(t, items[0].Timestamp.Unix(), int64(1714694400))
}
