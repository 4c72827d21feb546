package store

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/hlchan/folio/ledger"
	"github.com/tidwall/gjson"
)

// encodeCash serializes the provided cash balance for persistence.
func encodeCash(cash float64) string {
	return strconv.FormatFloat(cash, 'f', -1, 64)
}

// encodePositions serializes the provided positions for persistence.
func encodePositions(positions []ledger.Position) (string, error) {
	b, err := json.Marshal(positions)
	if err != nil {
		return "", fmt.Errorf("marshalling positions: %w", err)
	}

	return string(b), nil
}

// encodeTransactions serializes the provided transactions for persistence.
func encodeTransactions(transactions []ledger.Transaction) (string, error) {
	b, err := json.Marshal(transactions)
	if err != nil {
		return "", fmt.Errorf("marshalling transactions: %w", err)
	}

	return string(b), nil
}

// decodeCash deserializes a persisted cash balance. Malformed payloads
// resolve to a zero balance.
func decodeCash(raw string) float64 {
	result := gjson.Parse(raw)
	if result.Type != gjson.Number {
		return 0
	}

	return result.Float()
}

// decodePositions deserializes persisted positions. Malformed entries are
// skipped.
func decodePositions(raw string) []ledger.Position {
	result := gjson.Parse(raw)
	if !result.IsArray() {
		return nil
	}

	entries := result.Array()
	positions := make([]ledger.Position, 0, len(entries))
	for idx := range entries {
		entry := entries[idx]
		symbol := entry.Get("symbol").String()
		if symbol == "" {
			continue
		}

		positions = append(positions, ledger.Position{
			Symbol:    symbol,
			Shares:    entry.Get("shares").Float(),
			CostBasis: entry.Get("costBasis").Float(),
			ZeroCost: ledger.ZeroCost{
				Shares:    entry.Get("zeroCost.shares").Float(),
				FaceValue: entry.Get("zeroCost.faceValue").Float(),
			},
		})
	}

	return positions
}

// decodeTransactions deserializes persisted transactions. Malformed entries
// are skipped.
func decodeTransactions(raw string) []ledger.Transaction {
	result := gjson.Parse(raw)
	if !result.IsArray() {
		return nil
	}

	entries := result.Array()
	transactions := make([]ledger.Transaction, 0, len(entries))
	for idx := range entries {
		entry := entries[idx]
		kind, err := ledger.ParseTxKind(entry.Get("kind").String())
		if err != nil {
			continue
		}

		timestamp, err := time.Parse(time.RFC3339, entry.Get("timestamp").String())
		if err != nil {
			continue
		}

		transactions = append(transactions, ledger.Transaction{
			ID:           entry.Get("id").String(),
			Timestamp:    timestamp,
			Kind:         kind,
			Symbol:       entry.Get("symbol").String(),
			Shares:       entry.Get("shares").Float(),
			Price:        entry.Get("price").Float(),
			Amount:       entry.Get("amount").Float(),
			BalanceAfter: entry.Get("balanceAfter").Float(),
		})
	}

	return transactions
}
