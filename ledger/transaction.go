package ledger

import (
	"fmt"
	"math"
	"time"
)

// TxKind represents the kind of a ledger transaction.
type TxKind int

const (
	Deposit TxKind = iota
	Withdraw
	Buy
	Sell
)

// String stringifies the provided transaction kind.
func (k TxKind) String() string {
	switch k {
	case Deposit:
		return "deposit"
	case Withdraw:
		return "withdraw"
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	default:
		return "unknown"
	}
}

// ParseTxKind parses a transaction kind from its string form.
func ParseTxKind(value string) (TxKind, error) {
	switch value {
	case "deposit":
		return Deposit, nil
	case "withdraw":
		return Withdraw, nil
	case "buy":
		return Buy, nil
	case "sell":
		return Sell, nil
	default:
		return 0, fmt.Errorf("unknown transaction kind: %s", value)
	}
}

// MarshalJSON encodes the transaction kind as its string form.
func (k TxKind) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.String() + `"`), nil
}

// UnmarshalJSON decodes the transaction kind from its string form.
func (k *TxKind) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("transaction kind must be a string, got %s", data)
	}

	kind, err := ParseTxKind(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}

	*k = kind
	return nil
}

// Transaction represents an immutable ledger record. The ledger is an
// append-only sequence; BalanceAfter of record i equals the account cash
// immediately after applying record i.
type Transaction struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Kind         TxKind    `json:"kind"`
	Symbol       string    `json:"symbol,omitempty"`
	Shares       float64   `json:"shares,omitempty"`
	Price        float64   `json:"price,omitempty"`
	Amount       float64   `json:"amount"`
	BalanceAfter float64   `json:"balanceAfter"`
}

// Replay applies the provided transactions in order to the initial cash value
// and asserts that every BalanceAfter matches the replayed balance. A ledger
// that fails replay has been edited or truncated.
func Replay(initialCash float64, transactions []Transaction) (float64, error) {
	balance := initialCash

	for idx := range transactions {
		tx := &transactions[idx]

		switch tx.Kind {
		case Deposit, Sell:
			balance += tx.Amount
		case Withdraw, Buy:
			balance -= tx.Amount
		default:
			return balance, fmt.Errorf("replaying transaction %s: unknown kind %d", tx.ID, tx.Kind)
		}

		if math.Abs(balance-tx.BalanceAfter) > 1e-9 {
			return balance, fmt.Errorf("replaying transaction %s: expected balance %v, got %v",
				tx.ID, tx.BalanceAfter, balance)
		}

		// Carry the recorded balance forward so rounding differences cannot
		// accumulate across a long ledger.
		balance = tx.BalanceAfter
	}

	return balance, nil
}
