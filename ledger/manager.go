package ledger

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

const (
	// bufferSize is the default buffer size for channels.
	bufferSize = 64
)

// TradeResult represents the outcome of a processed trade request.
type TradeResult struct {
	Tx  *Transaction
	Err error
}

// TradeRequest represents a ledger mutation request.
type TradeRequest struct {
	Kind     TxKind
	Symbol   string
	Shares   float64
	Price    float64
	Amount   float64
	Response chan TradeResult
}

// NewTradeRequest initializes a new trade request.
func NewTradeRequest(kind TxKind, symbol string, shares float64, price float64, amount float64) *TradeRequest {
	return &TradeRequest{
		Kind:     kind,
		Symbol:   symbol,
		Shares:   shares,
		Price:    price,
		Amount:   amount,
		Response: make(chan TradeResult, 1),
	}
}

// ZeroCostRequest represents a request to replace a symbol's zero cost
// sub-position.
type ZeroCostRequest struct {
	Symbol    string
	Shares    float64
	FaceValue float64
	Response  chan error
}

// NewZeroCostRequest initializes a new zero cost request.
func NewZeroCostRequest(symbol string, shares float64, faceValue float64) *ZeroCostRequest {
	return &ZeroCostRequest{
		Symbol:    symbol,
		Shares:    shares,
		FaceValue: faceValue,
		Response:  make(chan error, 1),
	}
}

// SnapshotRequest represents a request to read the current account state.
type SnapshotRequest struct {
	Response chan Snapshot
}

// NewSnapshotRequest initializes a new snapshot request.
func NewSnapshotRequest() *SnapshotRequest {
	return &SnapshotRequest{
		Response: make(chan Snapshot, 1),
	}
}

// ManagerConfig represents the ledger manager configuration.
type ManagerConfig struct {
	// Account is the managed account.
	Account *Account
	// PersistSnapshot persists the provided account snapshot.
	PersistSnapshot func(snapshot Snapshot) error
	// Logger represents the application logger.
	Logger zerolog.Logger
}

// Manager serializes all account mutations through a single goroutine,
// preserving the single actor model of the ledger.
type Manager struct {
	cfg              *ManagerConfig
	tradeRequests    chan TradeRequest
	zeroCostRequests chan ZeroCostRequest
	snapshotRequests chan SnapshotRequest
}

// NewManager initializes a new ledger manager.
func NewManager(cfg *ManagerConfig) *Manager {
	return &Manager{
		cfg:              cfg,
		tradeRequests:    make(chan TradeRequest, bufferSize),
		zeroCostRequests: make(chan ZeroCostRequest, bufferSize),
		snapshotRequests: make(chan SnapshotRequest, bufferSize),
	}
}

// SendTradeRequest relays the provided trade request for processing.
func (m *Manager) SendTradeRequest(request TradeRequest) {
	select {
	case m.tradeRequests <- request:
		// do nothing.
	default:
		m.cfg.Logger.Error().Msgf("trade request channel at capacity: %d/%d",
			len(m.tradeRequests), bufferSize)
	}
}

// SendZeroCostRequest relays the provided zero cost request for processing.
func (m *Manager) SendZeroCostRequest(request ZeroCostRequest) {
	select {
	case m.zeroCostRequests <- request:
		// do nothing.
	default:
		m.cfg.Logger.Error().Msgf("zero cost request channel at capacity: %d/%d",
			len(m.zeroCostRequests), bufferSize)
	}
}

// SendSnapshotRequest relays the provided snapshot request for processing.
func (m *Manager) SendSnapshotRequest(request SnapshotRequest) {
	select {
	case m.snapshotRequests <- request:
		// do nothing.
	default:
		m.cfg.Logger.Error().Msgf("snapshot request channel at capacity: %d/%d",
			len(m.snapshotRequests), bufferSize)
	}
}

// persist persists the current account state when a persister is configured.
func (m *Manager) persist() {
	if m.cfg.PersistSnapshot == nil {
		return
	}

	err := m.cfg.PersistSnapshot(m.cfg.Account.Snapshot())
	if err != nil {
		m.cfg.Logger.Error().Msgf("persisting account snapshot: %v", err)
	}
}

// handleTradeRequest processes the provided trade request.
func (m *Manager) handleTradeRequest(request *TradeRequest) {
	var result TradeResult

	switch request.Kind {
	case Deposit:
		result.Tx, result.Err = m.cfg.Account.Deposit(request.Amount)
	case Withdraw:
		result.Tx, result.Err = m.cfg.Account.Withdraw(request.Amount)
	case Buy:
		result.Tx, result.Err = m.cfg.Account.Buy(request.Symbol, request.Shares, request.Price)
	case Sell:
		result.Tx, result.Err = m.cfg.Account.Sell(request.Symbol, request.Shares, request.Price)
	default:
		result.Err = fmt.Errorf("unknown trade request kind: %d", request.Kind)
	}

	if result.Err == nil {
		m.persist()
	}

	request.Response <- result
}

// handleZeroCostRequest processes the provided zero cost request.
func (m *Manager) handleZeroCostRequest(request *ZeroCostRequest) {
	err := m.cfg.Account.SetZeroCost(request.Symbol, request.Shares, request.FaceValue)
	if err == nil {
		m.persist()
	}

	request.Response <- err
}

// Run manages the lifecycle processes of the ledger manager. All requests
// are handled on this goroutine so no two mutations ever overlap.
func (m *Manager) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case request := <-m.tradeRequests:
			m.handleTradeRequest(&request)
		case request := <-m.zeroCostRequests:
			m.handleZeroCostRequest(&request)
		case request := <-m.snapshotRequests:
			request.Response <- m.cfg.Account.Snapshot()
		}
	}
}
