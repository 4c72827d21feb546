package shared

import "context"

// QuoteFetcher defines the requirements for fetching current quotes.
type QuoteFetcher interface {
	// FetchQuote fetches the current quote for the provided symbol.
	FetchQuote(ctx context.Context, symbol string) (*Quote, error)
}

// CandleFetcher defines the requirements for fetching daily candle series.
type CandleFetcher interface {
	// FetchDailyCandles fetches the daily candle series for the provided symbol.
	FetchDailyCandles(ctx context.Context, symbol string) ([]Candle, error)
}

// NewsFetcher defines the requirements for fetching symbol news.
type NewsFetcher interface {
	// FetchNews fetches recent news items for the provided symbol.
	FetchNews(ctx context.Context, symbol string) ([]NewsItem, error)
}
