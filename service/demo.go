package service

import (
	"time"

	"github.com/hlchan/folio/ledger"
)

// DemoSnapshot returns the starter account used when no persisted state
// exists.
func DemoSnapshot() ledger.Snapshot {
	now := time.Now().UTC()

	return ledger.Snapshot{
		Cash: 50000,
		Positions: []ledger.Position{
			{
				Symbol:    "NVDA",
				Shares:    10,
				CostBasis: 450,
				ZeroCost:  ledger.ZeroCost{Shares: 2},
			},
			{
				Symbol:    "TSLA",
				Shares:    25,
				CostBasis: 210.50,
			},
			{
				Symbol:    "AAPL",
				Shares:    50,
				CostBasis: 145.20,
			},
		},
		Transactions: []ledger.Transaction{
			{
				ID:           "tx_1",
				Timestamp:    now.AddDate(0, 0, -5),
				Kind:         ledger.Deposit,
				Amount:       60000,
				BalanceAfter: 60000,
			},
			{
				ID:           "tx_2",
				Timestamp:    now.AddDate(0, 0, -4),
				Kind:         ledger.Buy,
				Symbol:       "AAPL",
				Shares:       50,
				Price:        145.20,
				Amount:       7260,
				BalanceAfter: 52740,
			},
			{
				ID:           "tx_3",
				Timestamp:    now.AddDate(0, 0, -2),
				Kind:         ledger.Buy,
				Symbol:       "NVDA",
				Shares:       10,
				Price:        450,
				Amount:       4500,
				BalanceAfter: 48240,
			},
		},
	}
}

// DefaultSymbols are the symbols tracked when none are configured.
var DefaultSymbols = []string{"NVDA", "TSLA", "AAPL"}
