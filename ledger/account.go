package ledger

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/hlchan/folio/shared"
)

// Account owns the cash balance, positions and transaction log of a
// portfolio. Cash is mutated only through deposit, withdraw, buy and sell
// operations; failed operations leave the account unchanged.
type Account struct {
	cash         float64
	positions    map[string]*Position
	transactions []Transaction
}

// NewAccount initializes an empty account.
func NewAccount() *Account {
	return &Account{
		positions: make(map[string]*Position),
	}
}

// Cash returns the current cash balance.
func (a *Account) Cash() float64 {
	return a.cash
}

// Position returns a copy of the position for the provided symbol.
func (a *Account) Position(symbol string) (Position, bool) {
	pos, ok := a.positions[symbol]
	if !ok {
		return Position{}, false
	}

	return *pos, true
}

// Positions returns copies of all held positions, ordered by symbol.
func (a *Account) Positions() []Position {
	set := make([]Position, 0, len(a.positions))
	for _, pos := range a.positions {
		set = append(set, *pos)
	}

	sort.Slice(set, func(i, j int) bool {
		return set[i].Symbol < set[j].Symbol
	})

	return set
}

// Transactions returns a copy of the transaction log in append order.
func (a *Account) Transactions() []Transaction {
	set := make([]Transaction, len(a.transactions))
	copy(set, a.transactions)

	return set
}

// appendTransaction appends a new transaction reflecting the current cash
// balance to the ledger.
func (a *Account) appendTransaction(kind TxKind, symbol string, shares float64, price float64, amount float64) *Transaction {
	tx := Transaction{
		ID:           uuid.New().String(),
		Timestamp:    time.Now().UTC(),
		Kind:         kind,
		Symbol:       symbol,
		Shares:       shares,
		Price:        price,
		Amount:       amount,
		BalanceAfter: a.cash,
	}

	a.transactions = append(a.transactions, tx)

	return &a.transactions[len(a.transactions)-1]
}

// Deposit adds the provided amount to the cash balance.
func (a *Account) Deposit(amount float64) (*Transaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("deposit amount must be positive, got %v", amount)
	}

	a.cash += amount

	return a.appendTransaction(Deposit, "", 0, 0, amount), nil
}

// Withdraw removes the provided amount from the cash balance.
func (a *Account) Withdraw(amount float64) (*Transaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("withdraw amount must be positive, got %v", amount)
	}
	if amount > a.cash {
		return nil, fmt.Errorf("withdrawing %v with balance %v: %w", amount, a.cash, shared.ErrInsufficientCash)
	}

	a.cash -= amount

	return a.appendTransaction(Withdraw, "", 0, 0, amount), nil
}

// Buy purchases the provided shares at the provided price, updating the
// position's cost basis to the volume weighted average purchase price.
func (a *Account) Buy(symbol string, shares float64, price float64) (*Transaction, error) {
	if symbol == "" {
		return nil, fmt.Errorf("buy symbol cannot be an empty string")
	}
	if shares <= 0 {
		return nil, fmt.Errorf("buy shares must be positive, got %v", shares)
	}
	if price <= 0 {
		return nil, fmt.Errorf("buy price must be positive, got %v", price)
	}

	total := shares * price
	if total > a.cash {
		return nil, fmt.Errorf("buying %v %s @ %v with balance %v: %w",
			shares, symbol, price, a.cash, shared.ErrInsufficientCash)
	}

	pos, ok := a.positions[symbol]
	if !ok {
		pos = &Position{Symbol: symbol}
		a.positions[symbol] = pos
	}

	switch {
	case pos.Shares > 0:
		pos.CostBasis = (pos.Shares*pos.CostBasis + total) / (pos.Shares + shares)
	default:
		pos.CostBasis = price
	}

	pos.Shares += shares
	a.cash -= total

	return a.appendTransaction(Buy, symbol, shares, price, total), nil
}

// Sell disposes the provided shares at the provided price. The cost basis of
// the remaining shares is unchanged (average cost method). A position left
// with no regular and no zero cost shares is removed.
func (a *Account) Sell(symbol string, shares float64, price float64) (*Transaction, error) {
	if symbol == "" {
		return nil, fmt.Errorf("sell symbol cannot be an empty string")
	}
	if shares <= 0 {
		return nil, fmt.Errorf("sell shares must be positive, got %v", shares)
	}
	if price <= 0 {
		return nil, fmt.Errorf("sell price must be positive, got %v", price)
	}

	pos, ok := a.positions[symbol]
	if !ok || shares > pos.Shares {
		var held float64
		if ok {
			held = pos.Shares
		}

		return nil, fmt.Errorf("selling %v %s with %v held: %w",
			shares, symbol, held, shared.ErrInsufficientShares)
	}

	total := shares * price
	pos.Shares -= shares
	a.cash += total

	if pos.empty() {
		delete(a.positions, symbol)
	}

	return a.appendTransaction(Sell, symbol, shares, price, total), nil
}

// SetZeroCost replaces the zero cost sub-position of the provided symbol
// outright. A position entry is created when absent so zero cost shares can
// be held without any regular shares.
func (a *Account) SetZeroCost(symbol string, shares float64, faceValue float64) error {
	if symbol == "" {
		return fmt.Errorf("zero cost symbol cannot be an empty string")
	}
	if shares < 0 {
		return fmt.Errorf("zero cost shares cannot be negative, got %v", shares)
	}
	if faceValue < 0 {
		return fmt.Errorf("zero cost face value cannot be negative, got %v", faceValue)
	}

	pos, ok := a.positions[symbol]
	if !ok {
		pos = &Position{Symbol: symbol}
		a.positions[symbol] = pos
	}

	pos.ZeroCost = ZeroCost{Shares: shares, FaceValue: faceValue}

	if pos.empty() {
		delete(a.positions, symbol)
	}

	return nil
}

// Valuation derives the valuation of the provided symbol at the provided
// price. A symbol with no position values to zero.
func (a *Account) Valuation(symbol string, currentPrice float64) Valuation {
	pos, ok := a.positions[symbol]
	if !ok {
		return Valuation{}
	}

	return pos.Valuate(currentPrice)
}

// Verify replays the transaction log from a zero balance and asserts that it
// reproduces the current cash balance.
func (a *Account) Verify() error {
	balance, err := Replay(0, a.transactions)
	if err != nil {
		return err
	}

	if balance != a.cash {
		return fmt.Errorf("ledger replay produced balance %v, account holds %v", balance, a.cash)
	}

	return nil
}
