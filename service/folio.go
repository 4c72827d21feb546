package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hlchan/folio/chart"
	"github.com/hlchan/folio/dashboard"
	"github.com/hlchan/folio/fetch"
	"github.com/hlchan/folio/ledger"
	"github.com/hlchan/folio/shared"
	"github.com/hlchan/folio/store"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
)

const (
	// FinnhubSource selects finnhub as the primary data source.
	FinnhubSource = "finnhub"
	// YahooSource selects yahoo as the primary data source.
	YahooSource = "yahoo"

	// quoteRefreshInterval is the tracked symbol quote refresh cadence.
	quoteRefreshInterval = time.Minute
)

// defaultOverlays are the moving average overlays available on charts.
var defaultOverlays = []chart.OverlayConfig{
	{Window: 5, Enabled: true},
	{Window: 20, Enabled: true},
	{Window: 60, Enabled: false},
}

// FolioConfig represents the configuration struct for the folio service.
type FolioConfig struct {
	// Symbols represents the tracked symbols.
	Symbols []string
	// FinnhubAPIKey is the finnhub service API key.
	FinnhubAPIKey string
	// DataSource is the primary market data source.
	DataSource string
	// StoreEndpoint represents the database connection endpoint.
	StoreEndpoint string
	// StoreUser is the database user.
	StoreUser string
	// StorePass is the database user pass.
	StorePass string
	// Cancel is the context cancellation function.
	Cancel context.CancelFunc
}

// Validate asserts the config sane inputs.
func (cfg *FolioConfig) Validate() error {
	var errs error

	if len(cfg.Symbols) == 0 {
		errs = errors.Join(errs, fmt.Errorf("no symbols provided for folio service"))
	}
	switch cfg.DataSource {
	case FinnhubSource:
		if cfg.FinnhubAPIKey == "" {
			errs = errors.Join(errs, fmt.Errorf("finnhub api key cannot be an empty string"))
		}
	case YahooSource:
	default:
		errs = errors.Join(errs, fmt.Errorf("unknown data source: %s", cfg.DataSource))
	}
	if cfg.StoreEndpoint == "" {
		errs = errors.Join(errs, fmt.Errorf("store endpoint cannot be an empty string"))
	}
	if cfg.Cancel == nil {
		errs = errors.Join(errs, fmt.Errorf("context cancellation function cannot be nil"))
	}

	return errs
}

// Folio represents a portfolio tracking service.
type Folio struct {
	cfg           *FolioConfig
	store         *store.Store
	ledgerManager *ledger.Manager
	fetchManager  *fetch.Manager
	logger        *zerolog.Logger
	wg            sync.WaitGroup
}

// NewFolio initializes a new folio service.
func NewFolio(ctx context.Context, cfg *FolioConfig) (*Folio, error) {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	logger := log.With().Str("service", "folio").Logger()

	storeLogger := logger.With().Str("component", "store").Logger()
	accountStore, err := store.NewStore(ctx, &store.StoreConfig{
		Endpoint: cfg.StoreEndpoint,
		User:     cfg.StoreUser,
		Pass:     cfg.StorePass,
		Logger:   &storeLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating store: %v", err)
	}

	snapshot, ok, err := accountStore.LoadAccount(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading account: %v", err)
	}
	if !ok {
		seed := DemoSnapshot()
		snapshot = &seed
		logger.Info().Msg("no persisted account found, seeding starter account")
	}

	account := ledger.FromSnapshot(*snapshot)
	if err := account.Verify(); err != nil {
		logger.Warn().Msgf("account ledger failed verification: %v", err)
	}

	ledgerLogger := logger.With().Str("component", "ledgermanager").Logger()
	ledgerMgr := ledger.NewManager(&ledger.ManagerConfig{
		Account: account,
		PersistSnapshot: func(snapshot ledger.Snapshot) error {
			return accountStore.SaveAccount(ctx, &snapshot)
		},
		Logger: ledgerLogger,
	})

	var quotes shared.QuoteFetcher
	var candles, fallback shared.CandleFetcher
	var news shared.NewsFetcher

	yahoo := fetch.NewYahooClient(&fetch.YahooConfig{})
	switch cfg.DataSource {
	case FinnhubSource:
		finnhub := fetch.NewFinnhubClient(&fetch.FinnhubConfig{APIKey: cfg.FinnhubAPIKey})
		quotes, candles, news = finnhub, finnhub, finnhub
		fallback = yahoo
	default:
		quotes, candles, news = yahoo, yahoo, yahoo
	}

	fetchLogger := logger.With().Str("component", "fetchmanager").Logger()
	fetchMgr, err := fetch.NewManager(&fetch.ManagerConfig{
		TrackedSymbols:  cfg.Symbols,
		Quotes:          quotes,
		Candles:         candles,
		FallbackCandles: fallback,
		News:            news,
		RefreshInterval: quoteRefreshInterval,
		Logger:          &fetchLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating fetch manager: %v", err)
	}

	service := &Folio{
		cfg:           cfg,
		store:         accountStore,
		ledgerManager: ledgerMgr,
		fetchManager:  fetchMgr,
		logger:        &logger,
	}

	return service, nil
}

// Run handles the lifecycle processes of the folio service.
func (f *Folio) Run(ctx context.Context) {
	f.wg.Add(2)

	go func() {
		f.ledgerManager.Run(ctx)
		f.wg.Done()
	}()

	go func() {
		f.fetchManager.Run(ctx)
		f.wg.Done()
	}()

	f.wg.Wait()
}

// Subscribe registers the provided subscriber for quote updates.
func (f *Folio) Subscribe(sub *chan shared.Quote) {
	f.fetchManager.Subscribe(sub)
}

// snapshot reads the current account state.
func (f *Folio) snapshot(ctx context.Context) (*ledger.Snapshot, error) {
	request := ledger.NewSnapshotRequest()
	f.ledgerManager.SendSnapshotRequest(*request)

	select {
	case snapshot := <-request.Response:
		return &snapshot, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Trade applies the provided account mutation.
func (f *Folio) Trade(ctx context.Context, kind ledger.TxKind, symbol string, shares float64, price float64, amount float64) (*ledger.Transaction, error) {
	request := ledger.NewTradeRequest(kind, symbol, shares, price, amount)
	f.ledgerManager.SendTradeRequest(*request)

	select {
	case result := <-request.Response:
		return result.Tx, result.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// SetZeroCost replaces the zero cost sub-position of the provided symbol.
func (f *Folio) SetZeroCost(ctx context.Context, symbol string, shares float64, faceValue float64) error {
	request := ledger.NewZeroCostRequest(symbol, shares, faceValue)
	f.ledgerManager.SendZeroCostRequest(*request)

	select {
	case err := <-request.Response:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SelectSymbol fetches the candle series for the provided symbol and builds
// a chart viewport over it, anchored to the account's cost basis if the
// symbol is held.
func (f *Folio) SelectSymbol(ctx context.Context, symbol string) (*chart.Viewport, *fetch.Series, error) {
	request := fetch.NewSeriesRequest(symbol)
	f.fetchManager.SendSeriesRequest(*request)

	var series *fetch.Series
	select {
	case series = <-request.Response:
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}

	snapshot, err := f.snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}

	var costBasis float64
	for idx := range snapshot.Positions {
		position := snapshot.Positions[idx]
		if position.Symbol == symbol && position.Shares > 0 {
			costBasis = position.CostBasis
			break
		}
	}

	viewport, err := chart.NewViewport(&chart.ViewportConfig{
		Candles:   series.Candles,
		Overlays:  defaultOverlays,
		CostBasis: costBasis,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating viewport: %v", err)
	}

	return viewport, series, nil
}

// News fetches recent news items for the provided symbol.
func (f *Folio) News(ctx context.Context, symbol string) ([]shared.NewsItem, error) {
	request := fetch.NewNewsRequest(symbol)
	f.fetchManager.SendNewsRequest(*request)

	select {
	case items := <-request.Response:
		return items, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Dashboard aggregates the account and the latest cached quotes into a
// portfolio summary.
func (f *Folio) Dashboard(ctx context.Context) (*dashboard.Summary, error) {
	snapshot, err := f.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	quotes := make(map[string]shared.Quote)
	for idx := range snapshot.Positions {
		symbol := snapshot.Positions[idx].Symbol
		quote, ok := f.fetchManager.CachedQuote(symbol)
		if !ok {
			continue
		}

		quotes[symbol] = *quote
	}

	summary := dashboard.Summarize(snapshot.Positions, quotes, snapshot.Cash)
	return &summary, nil
}
