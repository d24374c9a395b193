package store

import "time"

type Player struct {
	ID         string
	Name       string
	Identity   string
	APIKeyHash string
	Status     string
	CreatedAt  time.Time
}

type Account struct {
	ID        string
	Balance   int64
	UpdatedAt time.Time
}

type LedgerEntry struct {
	ID        string
	AccountID string
	Type      string
	Amount    int64
	RefType   string
	RefID     string
	CreatedAt time.Time
}

type SessionRow struct {
	ID        string
	Authority string
	BetAmount int64
	Mode      string
	Status    string
	CreatedAt int64
	ExpiresAt int64
	UpdatedAt time.Time
}
