package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

func (s *Store) EnsureAccount(ctx context.Context, accountID string, initial int64) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO accounts (id, balance)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING`,
		accountID, initial)
	return err
}

func (s *Store) GetAccount(ctx context.Context, accountID string) (*Account, error) {
	var a Account
	err := s.Pool.QueryRow(ctx, `
		SELECT id, balance, updated_at
		FROM accounts WHERE id = $1`,
		accountID).Scan(&a.ID, &a.Balance, &a.UpdatedAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &a, nil
}

func (s *Store) GetBalance(ctx context.Context, accountID string) (int64, error) {
	var bal int64
	err := s.Pool.QueryRow(ctx, `
		SELECT balance FROM accounts WHERE id = $1`,
		accountID).Scan(&bal)
	if err != nil {
		return 0, mapNotFound(err)
	}
	return bal, nil
}

// Credit adds funds with no counterparty. Used for faucet grants and admin
// top-ups; every other balance change goes through Transfer.
func (s *Store) Credit(ctx context.Context, accountID string, amount int64, entryType, refType, refID string) (int64, error) {
	if amount < 0 {
		return 0, errors.New("amount must be positive")
	}
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	bal, err := lockBalance(ctx, tx, accountID)
	if err != nil {
		return 0, err
	}
	newBal := bal + amount
	if err := updateBalance(ctx, tx, accountID, newBal); err != nil {
		return 0, err
	}
	if err := insertLedgerEntry(ctx, tx, accountID, entryType, amount, refType, refID); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return newBal, nil
}

// Transfer atomically moves amount between two accounts, writing one ledger
// entry per side. Rows are locked in sorted id order so concurrent transfers
// between the same pair cannot deadlock.
func (s *Store) Transfer(ctx context.Context, from, to string, amount int64, entryType, refType, refID string) error {
	if amount < 0 {
		return errors.New("amount must be positive")
	}
	if from == to {
		return errors.New("transfer to self")
	}
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	first, second := from, to
	if second < first {
		first, second = second, first
	}
	balances := map[string]int64{}
	for _, id := range []string{first, second} {
		bal, err := lockBalance(ctx, tx, id)
		if err != nil {
			return err
		}
		balances[id] = bal
	}
	if balances[from] < amount {
		return ErrInsufficientBalance
	}
	if err := updateBalance(ctx, tx, from, balances[from]-amount); err != nil {
		return err
	}
	if err := updateBalance(ctx, tx, to, balances[to]+amount); err != nil {
		return err
	}
	if err := insertLedgerEntry(ctx, tx, from, entryType, -amount, refType, refID); err != nil {
		return err
	}
	if err := insertLedgerEntry(ctx, tx, to, entryType, amount, refType, refID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func lockBalance(ctx context.Context, tx pgx.Tx, accountID string) (int64, error) {
	var bal int64
	err := tx.QueryRow(ctx, `
		SELECT balance FROM accounts WHERE id = $1 FOR UPDATE`,
		accountID).Scan(&bal)
	if err != nil {
		return 0, mapNotFound(err)
	}
	return bal, nil
}

func updateBalance(ctx context.Context, tx pgx.Tx, accountID string, balance int64) error {
	_, err := tx.Exec(ctx, `
		UPDATE accounts SET balance = $1, updated_at = now() WHERE id = $2`,
		balance, accountID)
	return err
}

func insertLedgerEntry(ctx context.Context, tx pgx.Tx, accountID, entryType string, amount int64, refType, refID string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO ledger_entries (id, account_id, type, amount, ref_type, ref_id)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		NewID(), accountID, entryType, amount, refType, refID)
	return err
}
