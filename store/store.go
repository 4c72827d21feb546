package store

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/hlchan/folio/ledger"
	rqlitehttp "github.com/rqlite/rqlite-go-http"
	"github.com/rs/zerolog"
)

const (
	// SQL statements.
	createStateTableSQL = "CREATE TABLE IF NOT EXISTS state (key TEXT PRIMARY KEY, value TEXT)"
	upsertStateSQL      = "INSERT INTO state(key, value) VALUES(?,?) ON CONFLICT(key) DO UPDATE SET value = excluded.value"
	findStateSQL        = "SELECT value FROM state WHERE key = ?"

	// State keys.
	cashKey         = "cash"
	positionsKey    = "positions"
	transactionsKey = "transactions"
)

// AccountStorer defines the requirements for persisting account state.
type AccountStorer interface {
	// SaveAccount persists the provided account snapshot.
	SaveAccount(ctx context.Context, snapshot *ledger.Snapshot) error
	// LoadAccount fetches the persisted account snapshot.
	LoadAccount(ctx context.Context) (*ledger.Snapshot, bool, error)
}

// StoreConfig is the configuration for the store.
type StoreConfig struct {
	// Endpoint represents the database connection endpoint.
	Endpoint string
	// User is the database user.
	User string
	// Pass is the database user pass.
	Pass string
	// Logger is the store logger.
	Logger *zerolog.Logger
}

// Store persists account state to the database.
type Store struct {
	cfg    *StoreConfig
	client *rqlitehttp.Client
}

// Ensure the store implements the AccountStorer interface.
var _ AccountStorer = (*Store)(nil)

// NewStore initializes a new store.
func NewStore(ctx context.Context, cfg *StoreConfig) (*Store, error) {
	httpc := &http.Client{Timeout: time.Second * 5}
	client, err := rqlitehttp.NewClient(cfg.Endpoint, httpc)
	if err != nil {
		return nil, fmt.Errorf("creating store client: %w", err)
	}

	client.SetBasicAuth(cfg.User, cfg.Pass)

	store := &Store{
		cfg:    cfg,
		client: client,
	}

	err = store.bootstrap(ctx)
	if err != nil {
		return nil, fmt.Errorf("bootstrapping store: %w", err)
	}

	return store, nil
}

// bootstrap initializes the store.
func (s *Store) bootstrap(ctx context.Context) error {
	_, err := s.client.Execute(ctx, rqlitehttp.SQLStatements{
		{SQL: createStateTableSQL},
	}, &rqlitehttp.ExecuteOptions{
		Transaction: true,
		Timings:     true,
	})
	if err != nil {
		return err
	}

	return nil
}

// fetchValue fetches the persisted value for the provided key. The second
// return value indicates whether the key exists.
func (s *Store) fetchValue(ctx context.Context, key string) (string, bool, error) {
	resp, err := s.client.QuerySingle(ctx, findStateSQL, key)
	if err != nil {
		return "", false, fmt.Errorf("fetching state %s: %w", key, err)
	}

	rows := resp.GetQueryResultsAssoc()
	if len(rows) == 0 || len(rows[0].Rows) == 0 {
		return "", false, nil
	}

	value, ok := rows[0].Rows[0]["value"].(string)
	if !ok {
		return "", false, nil
	}

	return value, true, nil
}

// SaveAccount persists the provided account snapshot.
func (s *Store) SaveAccount(ctx context.Context, snapshot *ledger.Snapshot) error {
	positions, err := encodePositions(snapshot.Positions)
	if err != nil {
		return err
	}

	transactions, err := encodeTransactions(snapshot.Transactions)
	if err != nil {
		return err
	}

	resp, err := s.client.Execute(ctx, rqlitehttp.SQLStatements{
		{
			SQL:              upsertStateSQL,
			PositionalParams: []any{cashKey, encodeCash(snapshot.Cash)},
		},
		{
			SQL:              upsertStateSQL,
			PositionalParams: []any{positionsKey, positions},
		},
		{
			SQL:              upsertStateSQL,
			PositionalParams: []any{transactionsKey, transactions},
		},
	}, &rqlitehttp.ExecuteOptions{Transaction: true, Timings: true})
	if err != nil {
		return fmt.Errorf("persisting account state: %w", err)
	}

	has, idx, errStr := resp.HasError()
	if has {
		return fmt.Errorf("persisting account state: %d -> %s", idx, errStr)
	}

	return nil
}

// LoadAccount fetches the persisted account snapshot. The second return
// value indicates whether persisted state exists. Malformed state resolves
// to sane defaults rather than an error.
func (s *Store) LoadAccount(ctx context.Context) (*ledger.Snapshot, bool, error) {
	rawCash, hasCash, err := s.fetchValue(ctx, cashKey)
	if err != nil {
		return nil, false, err
	}

	rawPositions, hasPositions, err := s.fetchValue(ctx, positionsKey)
	if err != nil {
		return nil, false, err
	}

	rawTransactions, hasTransactions, err := s.fetchValue(ctx, transactionsKey)
	if err != nil {
		return nil, false, err
	}

	if !hasCash && !hasPositions && !hasTransactions {
		return nil, false, nil
	}

	snapshot := &ledger.Snapshot{
		Cash:         decodeCash(rawCash),
		Positions:    decodePositions(rawPositions),
		Transactions: decodeTransactions(rawTransactions),
	}

	if hasPositions && snapshot.Positions == nil {
		s.cfg.Logger.Error().Msgf("discarding malformed persisted positions: %s", spew.Sdump(rawPositions))
	}
	if hasTransactions && snapshot.Transactions == nil {
		s.cfg.Logger.Error().Msgf("discarding malformed persisted transactions: %s", spew.Sdump(rawTransactions))
	}

	return snapshot, true, nil
}
