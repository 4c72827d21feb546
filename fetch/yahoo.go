package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hlchan/folio/shared"
	"github.com/tidwall/gjson"
)

const (
	defaultYahooChartURL  = "https://query1.finance.yahoo.com/v8/finance/chart"
	defaultYahooSearchURL = "https://query2.finance.yahoo.com/v1/finance/search"
)

// YahooConfig represents the configuration for the Yahoo Finance client.
type YahooConfig struct {
	// ChartBaseURL overrides the chart API base url.
	ChartBaseURL string
	// SearchBaseURL overrides the search API base url.
	SearchBaseURL string
}

// YahooClient represents the Yahoo Finance API client. It needs no API key
// and serves as the keyless data source and the fallback provider. It is
// safe for use by concurrent fetch workers.
type YahooClient struct {
	cfg   *YahooConfig
	httpc http.Client
}

// Ensure the Yahoo client implements the fetcher interfaces.
var _ shared.QuoteFetcher = (*YahooClient)(nil)
var _ shared.CandleFetcher = (*YahooClient)(nil)
var _ shared.NewsFetcher = (*YahooClient)(nil)

// NewYahooClient instantiates a new Yahoo Finance client.
func NewYahooClient(cfg *YahooConfig) *YahooClient {
	if cfg.ChartBaseURL == "" {
		cfg.ChartBaseURL = defaultYahooChartURL
	}
	if cfg.SearchBaseURL == "" {
		cfg.SearchBaseURL = defaultYahooSearchURL
	}

	return &YahooClient{
		cfg:   cfg,
		httpc: http.Client{Timeout: time.Second * 5},
	}
}

// chartURL creates the chart url for the provided symbol. The url is built
// in a per-call builder so concurrent fetch workers can share the client.
func (c *YahooClient) chartURL(symbol string, params string) string {
	var b strings.Builder
	b.WriteString(c.cfg.ChartBaseURL)
	b.WriteString("/")
	b.WriteString(url.PathEscape(symbol))
	b.WriteString("?")
	b.WriteString(params)

	return b.String()
}

// searchURL creates the news search url from the provided parameters.
func (c *YahooClient) searchURL(params string) string {
	var b strings.Builder
	b.WriteString(c.cfg.SearchBaseURL)
	b.WriteString("?")
	b.WriteString(params)

	return b.String()
}

// fetch performs a GET request and returns the response body.
func (c *YahooClient) fetch(ctx context.Context, formedURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, formedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", formedURL, err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo status %d: %w", resp.StatusCode, shared.ErrDataUnavailable)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return body, nil
}

// fetchChart fetches the six month daily chart payload for the provided
// symbol.
func (c *YahooClient) fetchChart(ctx context.Context, symbol string) (gjson.Result, error) {
	params := url.Values{}
	params.Add("range", "6mo")
	params.Add("interval", "1d")

	body, err := c.fetch(ctx, c.chartURL(symbol, params.Encode()))
	if err != nil {
		return gjson.Result{}, err
	}

	result := gjson.GetBytes(body, "chart.result.0")
	if !result.Exists() {
		return gjson.Result{}, fmt.Errorf("no chart result for %s: %w", symbol, shared.ErrDataUnavailable)
	}

	return result, nil
}

// ParseChartCandles parses daily candles from the provided chart result.
// Days with null opens or closes are market holidays and are skipped.
func (c *YahooClient) ParseChartCandles(result gjson.Result) ([]shared.Candle, error) {
	timestamps := result.Get("timestamp").Array()
	quote := result.Get("indicators.quote.0")
	if len(timestamps) == 0 || !quote.Exists() {
		return nil, fmt.Errorf("empty chart payload: %w", shared.ErrDataUnavailable)
	}

	opens := quote.Get("open").Array()
	highs := quote.Get("high").Array()
	lows := quote.Get("low").Array()
	closes := quote.Get("close").Array()

	if len(opens) != len(timestamps) || len(highs) != len(timestamps) ||
		len(lows) != len(timestamps) || len(closes) != len(timestamps) {
		return nil, fmt.Errorf("mismatched chart columns: %w", shared.ErrMalformedSeries)
	}

	candles := make([]shared.Candle, 0, len(timestamps))
	for idx := range timestamps {
		if opens[idx].Type == gjson.Null || closes[idx].Type == gjson.Null {
			continue
		}

		candles = append(candles, shared.Candle{
			Date:  time.Unix(timestamps[idx].Int(), 0).UTC(),
			Open:  round2(opens[idx].Float()),
			High:  round2(highs[idx].Float()),
			Low:   round2(lows[idx].Float()),
			Close: round2(closes[idx].Float()),
		})
	}

	return candles, nil
}

// FetchDailyCandles fetches the daily candle series for the provided symbol.
func (c *YahooClient) FetchDailyCandles(ctx context.Context, symbol string) ([]shared.Candle, error) {
	result, err := c.fetchChart(ctx, symbol)
	if err != nil {
		return nil, err
	}

	candles, err := c.ParseChartCandles(result)
	if err != nil {
		return nil, fmt.Errorf("parsing chart candles for %s: %w", symbol, err)
	}

	return candles, nil
}

// FetchQuote fetches the current quote for the provided symbol from the
// chart metadata.
func (c *YahooClient) FetchQuote(ctx context.Context, symbol string) (*shared.Quote, error) {
	result, err := c.fetchChart(ctx, symbol)
	if err != nil {
		return nil, err
	}

	price := result.Get("meta.regularMarketPrice")
	if !price.Exists() {
		return nil, fmt.Errorf("no market price for %s: %w", symbol, shared.ErrDataUnavailable)
	}

	quote := &shared.Quote{
		Symbol:        symbol,
		Price:         price.Float(),
		ChangePercent: result.Get("meta.regularMarketChangePercent").Float(),
	}

	return quote, nil
}

// ParseNews parses news items from the provided search payload.
func (c *YahooClient) ParseNews(data []gjson.Result) []shared.NewsItem {
	items := make([]shared.NewsItem, 0, maxNewsItems)
	for idx := range data {
		if len(items) == maxNewsItems {
			break
		}

		items = append(items, shared.NewsItem{
			ID:        data[idx].Get("uuid").String(),
			Category:  "News",
			Headline:  data[idx].Get("title").String(),
			Source:    data[idx].Get("publisher").String(),
			URL:       data[idx].Get("link").String(),
			Timestamp: time.Unix(data[idx].Get("providerPublishTime").Int(), 0).UTC(),
		})
	}

	return items
}

// FetchNews fetches recent news items for the provided symbol.
func (c *YahooClient) FetchNews(ctx context.Context, symbol string) ([]shared.NewsItem, error) {
	params := url.Values{}
	params.Add("q", symbol)

	body, err := c.fetch(ctx, c.searchURL(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("fetching news for %s: %w", symbol, err)
	}

	return c.ParseNews(gjson.GetBytes(body, "news").Array()), nil
}
