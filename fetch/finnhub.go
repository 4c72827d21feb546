package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hlchan/folio/shared"
	"github.com/tidwall/gjson"
)

const (
	defaultFinnhubBaseURL = "https://finnhub.io/api/v1"
	// candleLookback is the historical window requested for daily candles.
	candleLookback = 180 * 24 * time.Hour
	// newsLookback is the historical window requested for company news.
	newsLookback = 7 * 24 * time.Hour
	// maxNewsItems caps the news items returned per symbol.
	maxNewsItems = 5
)

// FinnhubConfig represents the configuration for the Finnhub client.
type FinnhubConfig struct {
	// APIKey is the Finnhub API key.
	APIKey string
	// BaseURL overrides the Finnhub API base url.
	BaseURL string
}

// FinnhubClient represents the Finnhub API client. It is safe for use by
// concurrent fetch workers.
type FinnhubClient struct {
	cfg   *FinnhubConfig
	httpc http.Client
}

// Ensure the Finnhub client implements the fetcher interfaces.
var _ shared.QuoteFetcher = (*FinnhubClient)(nil)
var _ shared.CandleFetcher = (*FinnhubClient)(nil)
var _ shared.NewsFetcher = (*FinnhubClient)(nil)

// NewFinnhubClient instantiates a new Finnhub client.
func NewFinnhubClient(cfg *FinnhubConfig) *FinnhubClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultFinnhubBaseURL
	}

	return &FinnhubClient{
		cfg:   cfg,
		httpc: http.Client{Timeout: time.Second * 5},
	}
}

// formURL creates full urls including parameters for the api. The url is
// built in a per-call builder so concurrent fetch workers can share the
// client.
func (c *FinnhubClient) formURL(path string, params string) string {
	var b strings.Builder
	b.Grow(len(c.cfg.BaseURL) + len(path) + len(params) + 1)
	b.WriteString(c.cfg.BaseURL)
	b.WriteString(path)
	b.WriteString("?")
	b.WriteString(params)

	return b.String()
}

// fetch performs a GET request and returns the response body.
func (c *FinnhubClient) fetch(ctx context.Context, formedURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, formedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", formedURL, err)
	}

	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("finnhub rate limited (429): %w", shared.ErrDataUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("finnhub status %d: %w", resp.StatusCode, shared.ErrDataUnavailable)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return body, nil
}

// ParseQuote parses a quote from the provided json data.
func (c *FinnhubClient) ParseQuote(data gjson.Result, symbol string) (*shared.Quote, error) {
	price := data.Get("c")
	change := data.Get("d")
	if price.Float() == 0 && !change.Exists() {
		return nil, fmt.Errorf("no quote for %s: %w", symbol, shared.ErrDataUnavailable)
	}

	quote := &shared.Quote{
		Symbol:        symbol,
		Price:         price.Float(),
		ChangePercent: data.Get("dp").Float(),
	}

	return quote, nil
}

// FetchQuote fetches the current quote for the provided symbol.
func (c *FinnhubClient) FetchQuote(ctx context.Context, symbol string) (*shared.Quote, error) {
	const quotePath = "/quote"

	params := url.Values{}
	params.Add("symbol", symbol)
	params.Add("token", c.cfg.APIKey)

	body, err := c.fetch(ctx, c.formURL(quotePath, params.Encode()))
	if err != nil {
		return nil, err
	}

	return c.ParseQuote(gjson.ParseBytes(body), symbol)
}

// ParseCandles parses daily candles from the provided json data. Finnhub
// returns columnar arrays keyed by field.
func (c *FinnhubClient) ParseCandles(data gjson.Result) ([]shared.Candle, error) {
	status := data.Get("s").String()
	switch status {
	case "ok":
		// do nothing.
	case "no_data":
		return nil, fmt.Errorf("no candle data: %w", shared.ErrDataUnavailable)
	default:
		return nil, fmt.Errorf("unexpected candle status %q: %w", status, shared.ErrDataUnavailable)
	}

	timestamps := data.Get("t").Array()
	opens := data.Get("o").Array()
	highs := data.Get("h").Array()
	lows := data.Get("l").Array()
	closes := data.Get("c").Array()

	if len(opens) != len(timestamps) || len(highs) != len(timestamps) ||
		len(lows) != len(timestamps) || len(closes) != len(timestamps) {
		return nil, fmt.Errorf("mismatched candle columns: %w", shared.ErrMalformedSeries)
	}

	candles := make([]shared.Candle, 0, len(timestamps))
	for idx := range timestamps {
		candles = append(candles, shared.Candle{
			Date:  time.Unix(timestamps[idx].Int(), 0).UTC(),
			Open:  opens[idx].Float(),
			High:  highs[idx].Float(),
			Low:   lows[idx].Float(),
			Close: closes[idx].Float(),
		})
	}

	return candles, nil
}

// FetchDailyCandles fetches the daily candle series for the provided symbol.
func (c *FinnhubClient) FetchDailyCandles(ctx context.Context, symbol string) ([]shared.Candle, error) {
	const candlePath = "/stock/candle"

	end := time.Now()
	start := end.Add(-candleLookback)

	params := url.Values{}
	params.Add("symbol", symbol)
	params.Add("resolution", "D")
	params.Add("from", strconv.FormatInt(start.Unix(), 10))
	params.Add("to", strconv.FormatInt(end.Unix(), 10))
	params.Add("token", c.cfg.APIKey)

	body, err := c.fetch(ctx, c.formURL(candlePath, params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("fetching daily candles for %s: %w", symbol, err)
	}

	candles, err := c.ParseCandles(gjson.ParseBytes(body))
	if err != nil {
		return nil, fmt.Errorf("parsing daily candles for %s: %w", symbol, err)
	}

	return candles, nil
}

// ParseNews parses news items from the provided json data.
func (c *FinnhubClient) ParseNews(data []gjson.Result) []shared.NewsItem {
	items := make([]shared.NewsItem, 0, maxNewsItems)
	for idx := range data {
		if len(items) == maxNewsItems {
			break
		}

		items = append(items, shared.NewsItem{
			ID:        data[idx].Get("id").String(),
			Category:  data[idx].Get("category").String(),
			Headline:  data[idx].Get("headline").String(),
			Source:    data[idx].Get("source").String(),
			URL:       data[idx].Get("url").String(),
			Timestamp: time.Unix(data[idx].Get("datetime").Int(), 0).UTC(),
		})
	}

	return items
}

// FetchNews fetches recent news items for the provided symbol.
func (c *FinnhubClient) FetchNews(ctx context.Context, symbol string) ([]shared.NewsItem, error) {
	const newsPath = "/company-news"

	end := time.Now()
	start := end.Add(-newsLookback)

	params := url.Values{}
	params.Add("symbol", symbol)
	params.Add("from", start.Format(shared.DayLayout))
	params.Add("to", end.Format(shared.DayLayout))
	params.Add("token", c.cfg.APIKey)

	body, err := c.fetch(ctx, c.formURL(newsPath, params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("fetching news for %s: %w", symbol, err)
	}

	return c.ParseNews(gjson.ParseBytes(body).Array()), nil
}
