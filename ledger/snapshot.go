package ledger

// Snapshot represents the serializable state of an account.
type Snapshot struct {
	Cash         float64       `json:"cash"`
	Positions    []Position    `json:"positions"`
	Transactions []Transaction `json:"transactions"`
}

// Snapshot captures the account state for persistence.
func (a *Account) Snapshot() Snapshot {
	return Snapshot{
		Cash:         a.cash,
		Positions:    a.Positions(),
		Transactions: a.Transactions(),
	}
}

// FromSnapshot restores an account from a persisted snapshot. Positions
// holding no shares of any kind are dropped on restore.
func FromSnapshot(snapshot Snapshot) *Account {
	account := NewAccount()
	account.cash = snapshot.Cash

	for idx := range snapshot.Positions {
		pos := snapshot.Positions[idx]
		if pos.Symbol == "" || pos.empty() {
			continue
		}

		account.positions[pos.Symbol] = &pos
	}

	account.transactions = make([]Transaction, len(snapshot.Transactions))
	copy(account.transactions, snapshot.Transactions)

	return account
}
