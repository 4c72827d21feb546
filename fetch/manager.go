package fetch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/hlchan/folio/shared"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"
)

const (
	// bufferSize is the default buffer size for channels.
	bufferSize = 64
	// maxWorkers is the maximum number of concurrent workers.
	maxWorkers = 8
	// minSubscriberBuffer is the minimum buffer size for subscribers.
	minSubscriberBuffer = 24
	// syntheticTargetPrice is the placeholder series target when no quote is
	// known for a symbol.
	syntheticTargetPrice = 100
)

// Series represents a candle series for a symbol with its provenance label.
type Series struct {
	Symbol     string
	Candles    []shared.Candle
	Provenance shared.Provenance
}

// SeriesRequest represents a request for a symbol's daily candle series.
type SeriesRequest struct {
	Symbol   string
	Response chan *Series
}

// NewSeriesRequest initializes a new series request.
func NewSeriesRequest(symbol string) *SeriesRequest {
	return &SeriesRequest{
		Symbol:   symbol,
		Response: make(chan *Series, 1),
	}
}

// QuoteRequest represents a request for a symbol's current quote.
type QuoteRequest struct {
	Symbol   string
	Response chan *shared.Quote
}

// NewQuoteRequest initializes a new quote request.
func NewQuoteRequest(symbol string) *QuoteRequest {
	return &QuoteRequest{
		Symbol:   symbol,
		Response: make(chan *shared.Quote, 1),
	}
}

// NewsRequest represents a request for a symbol's recent news.
type NewsRequest struct {
	Symbol   string
	Response chan []shared.NewsItem
}

// NewNewsRequest initializes a new news request.
func NewNewsRequest(symbol string) *NewsRequest {
	return &NewsRequest{
		Symbol:   symbol,
		Response: make(chan []shared.NewsItem, 1),
	}
}

// symbolSlot caches the latest series and quote for one symbol. Slots are
// keyed by symbol so concurrent fetches for different symbols can never
// interleave writes to each other's cache entries. The generation counter
// makes the last writer wins race explicit: responses from a superseded
// fetch are discarded instead of overwriting newer state.
type symbolSlot struct {
	generation atomic.Uint64
	series     atomic.Pointer[Series]
	quote      atomic.Pointer[shared.Quote]
}

// ManagerConfig represents the configuration for the fetch manager.
type ManagerConfig struct {
	// TrackedSymbols are the symbols refreshed on the quote schedule.
	TrackedSymbols []string
	// Quotes fetches current quotes.
	Quotes shared.QuoteFetcher
	// Candles fetches daily candle series.
	Candles shared.CandleFetcher
	// FallbackCandles optionally fetches candles when the primary fails.
	FallbackCandles shared.CandleFetcher
	// News optionally fetches news items.
	News shared.NewsFetcher
	// RefreshInterval is the quote refresh cadence. Zero disables the
	// refresh schedule.
	RefreshInterval time.Duration
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Manager fetches and caches market data per symbol, falling back to cached
// or synthetic series when providers fail.
type Manager struct {
	cfg          *ManagerConfig
	slots        map[string]*symbolSlot
	slotsMtx     sync.RWMutex
	jobScheduler gocron.Scheduler
	seriesReqs   chan SeriesRequest
	quoteReqs    chan QuoteRequest
	newsReqs     chan NewsRequest
	subscribers  []*chan shared.Quote
	workers      chan struct{}
}

// NewManager initializes the fetch manager.
func NewManager(cfg *ManagerConfig) (*Manager, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("creating job scheduler: %w", err)
	}

	mgr := &Manager{
		cfg:          cfg,
		slots:        make(map[string]*symbolSlot),
		jobScheduler: scheduler,
		seriesReqs:   make(chan SeriesRequest, bufferSize),
		quoteReqs:    make(chan QuoteRequest, bufferSize),
		newsReqs:     make(chan NewsRequest, bufferSize),
		subscribers:  make([]*chan shared.Quote, 0, minSubscriberBuffer),
		workers:      make(chan struct{}, maxWorkers),
	}

	return mgr, nil
}

// Subscribe registers the provided subscriber for quote updates.
func (m *Manager) Subscribe(sub *chan shared.Quote) {
	m.subscribers = append(m.subscribers, sub)
}

// notifySubscribers notifies subscribers of the new quote.
func (m *Manager) notifySubscribers(quote *shared.Quote) {
	for k := range m.subscribers {
		*m.subscribers[k] <- *quote
	}
}

// slot fetches or creates the cache slot for the provided symbol.
func (m *Manager) slot(symbol string) *symbolSlot {
	m.slotsMtx.RLock()
	slot, ok := m.slots[symbol]
	m.slotsMtx.RUnlock()
	if ok {
		return slot
	}

	m.slotsMtx.Lock()
	defer m.slotsMtx.Unlock()

	slot, ok = m.slots[symbol]
	if !ok {
		slot = &symbolSlot{}
		m.slots[symbol] = slot
	}

	return slot
}

// CachedQuote returns the latest cached quote for the provided symbol.
func (m *Manager) CachedQuote(symbol string) (*shared.Quote, bool) {
	quote := m.slot(symbol).quote.Load()
	if quote == nil {
		return nil, false
	}

	return quote, true
}

// SendSeriesRequest relays the provided series request for processing.
func (m *Manager) SendSeriesRequest(request SeriesRequest) {
	select {
	case m.seriesReqs <- request:
		// do nothing.
	default:
		m.cfg.Logger.Error().Msgf("series request channel at capacity: %d/%d",
			len(m.seriesReqs), bufferSize)
	}
}

// SendQuoteRequest relays the provided quote request for processing.
func (m *Manager) SendQuoteRequest(request QuoteRequest) {
	select {
	case m.quoteReqs <- request:
		// do nothing.
	default:
		m.cfg.Logger.Error().Msgf("quote request channel at capacity: %d/%d",
			len(m.quoteReqs), bufferSize)
	}
}

// SendNewsRequest relays the provided news request for processing.
func (m *Manager) SendNewsRequest(request NewsRequest) {
	select {
	case m.newsReqs <- request:
		// do nothing.
	default:
		m.cfg.Logger.Error().Msgf("news request channel at capacity: %d/%d",
			len(m.newsReqs), bufferSize)
	}
}

// handleSeriesRequest processes the provided series request, falling back to
// a cached or synthetic series when the providers fail.
func (m *Manager) handleSeriesRequest(request *SeriesRequest) {
	slot := m.slot(request.Symbol)
	generation := slot.generation.Inc()

	candles, err := m.cfg.Candles.FetchDailyCandles(context.Background(), request.Symbol)
	if err != nil && m.cfg.FallbackCandles != nil {
		m.cfg.Logger.Warn().Msgf("primary candle fetch for %s failed, trying fallback: %v",
			request.Symbol, err)
		candles, err = m.cfg.FallbackCandles.FetchDailyCandles(context.Background(), request.Symbol)
	}

	if err == nil {
		series := &Series{
			Symbol:     request.Symbol,
			Candles:    shared.SanitizeCandles(candles),
			Provenance: shared.Live,
		}

		// A newer fetch for this symbol may have started while this one was
		// in flight; its result supersedes this one.
		if slot.generation.Load() == generation {
			slot.series.Store(series)
		}

		request.Response <- series
		return
	}

	m.cfg.Logger.Error().Msgf("fetching candles for %s: %v", request.Symbol, err)

	if cached := slot.series.Load(); cached != nil {
		request.Response <- &Series{
			Symbol:     request.Symbol,
			Candles:    cached.Candles,
			Provenance: shared.Cached,
		}
		return
	}

	target := float64(syntheticTargetPrice)
	if quote := slot.quote.Load(); quote != nil && quote.Price > 0 {
		target = quote.Price
	}

	request.Response <- &Series{
		Symbol:     request.Symbol,
		Candles:    SyntheticSeries(target, SyntheticDays),
		Provenance: shared.Synthetic,
	}
}

// handleQuoteRequest processes the provided quote request, falling back to
// the cached quote when the provider fails.
func (m *Manager) handleQuoteRequest(request *QuoteRequest) {
	quote, err := m.cfg.Quotes.FetchQuote(context.Background(), request.Symbol)
	if err != nil {
		m.cfg.Logger.Error().Msgf("fetching quote for %s: %v", request.Symbol, err)
		request.Response <- m.slot(request.Symbol).quote.Load()
		return
	}

	m.slot(request.Symbol).quote.Store(quote)
	request.Response <- quote
}

// handleNewsRequest processes the provided news request. News is advisory,
// so failures respond with no items.
func (m *Manager) handleNewsRequest(request *NewsRequest) {
	if m.cfg.News == nil {
		request.Response <- nil
		return
	}

	items, err := m.cfg.News.FetchNews(context.Background(), request.Symbol)
	if err != nil {
		m.cfg.Logger.Warn().Msgf("fetching news for %s: %v", request.Symbol, err)
		request.Response <- nil
		return
	}

	request.Response <- items
}

// refreshQuotes fetches quotes for all tracked symbols and notifies
// subscribers of the updates.
func (m *Manager) refreshQuotes(ctx context.Context) {
	for _, symbol := range m.cfg.TrackedSymbols {
		if ctx.Err() != nil {
			return
		}

		quote, err := m.cfg.Quotes.FetchQuote(ctx, symbol)
		if err != nil {
			m.cfg.Logger.Warn().Msgf("refreshing quote for %s: %v", symbol, err)
			continue
		}

		m.slot(symbol).quote.Store(quote)
		m.notifySubscribers(quote)
	}
}

// Run manages the lifecycle processes of the fetch manager.
func (m *Manager) Run(ctx context.Context) {
	if m.cfg.RefreshInterval > 0 {
		_, err := m.jobScheduler.NewJob(
			gocron.DurationJob(m.cfg.RefreshInterval),
			gocron.NewTask(func() { m.refreshQuotes(ctx) }),
		)
		if err != nil {
			m.cfg.Logger.Error().Msgf("scheduling quote refresh: %v", err)
		}

		m.jobScheduler.Start()
		defer func() {
			err := m.jobScheduler.Shutdown()
			if err != nil {
				m.cfg.Logger.Error().Msgf("shutting down job scheduler: %v", err)
			}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			return
		case request := <-m.seriesReqs:
			m.workers <- struct{}{}
			go func(request *SeriesRequest) {
				m.handleSeriesRequest(request)
				<-m.workers
			}(&request)
		case request := <-m.quoteReqs:
			m.workers <- struct{}{}
			go func(request *QuoteRequest) {
				m.handleQuoteRequest(request)
				<-m.workers
			}(&request)
		case request := <-m.newsReqs:
			m.workers <- struct{}{}
			go func(request *NewsRequest) {
				m.handleNewsRequest(request)
				<-m.workers
			}(&request)
		}
	}
}
