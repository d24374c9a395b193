// Package vault holds each session's escrowed funds in a derived account and
// enforces the transfer protocol: predict the post-transfer balance, move the
// funds, re-read and verify. A verification mismatch is an integrity fault,
// never silently accepted.
package vault

import (
	"context"
	"errors"
	"math"

	"wager-arena/internal/game"
	"wager-arena/internal/payout"
)

var (
	ErrTransferVerificationFailed = errors.New("transfer_verification_failed")
	ErrVaultNotEmpty              = errors.New("vault_not_empty")
	ErrAmountTooLarge             = errors.New("amount_too_large")
	ErrInvalidWinnerAccount       = errors.New("invalid_winner_account")
	ErrInsufficientFunds          = errors.New("insufficient_funds")
)

// Accounts is the ledger primitive underneath the vault. Transfer is atomic:
// it either applies both sides and the ledger entries, or nothing.
type Accounts interface {
	EnsureAccount(ctx context.Context, accountID string, initial int64) error
	GetBalance(ctx context.Context, accountID string) (int64, error)
	Transfer(ctx context.Context, from, to string, amount int64, entryType, refType, refID string) error
}

// EscrowAddress derives the session's escrow account id. Deterministic, so
// every component addressing the same session reaches the same account.
func EscrowAddress(sessionID string) string {
	return "escrow_" + sessionID
}

// PlayerAccount maps an identity to its ledger account id.
func PlayerAccount(player game.Identity) string {
	return player.String()
}

type Vault struct {
	accounts Accounts
}

func New(accounts Accounts) *Vault {
	return &Vault{accounts: accounts}
}

// Open initializes the session's escrow account. The account must be empty;
// a leftover balance means the session id collides with unreconciled funds.
func (v *Vault) Open(ctx context.Context, sessionID string) error {
	escrow := EscrowAddress(sessionID)
	if err := v.accounts.EnsureAccount(ctx, escrow, 0); err != nil {
		return err
	}
	bal, err := v.accounts.GetBalance(ctx, escrow)
	if err != nil {
		return err
	}
	if bal != 0 {
		return ErrVaultNotEmpty
	}
	return nil
}

func (v *Vault) Balance(ctx context.Context, sessionID string) (uint64, error) {
	bal, err := v.accounts.GetBalance(ctx, EscrowAddress(sessionID))
	if err != nil {
		return 0, err
	}
	if bal < 0 {
		return 0, ErrTransferVerificationFailed
	}
	return uint64(bal), nil
}

// Deposit moves amount from the player's account into escrow and verifies the
// escrow balance landed exactly on the predicted value.
func (v *Vault) Deposit(ctx context.Context, sessionID string, player game.Identity, amount uint64, entryType string) error {
	signed, err := toSigned(amount)
	if err != nil {
		return err
	}
	escrow := EscrowAddress(sessionID)
	before, err := v.accounts.GetBalance(ctx, escrow)
	if err != nil {
		return err
	}
	predicted := before + signed
	if predicted < before {
		return ErrAmountTooLarge
	}
	if err := v.accounts.Transfer(ctx, PlayerAccount(player), escrow, signed, entryType, "session", sessionID); err != nil {
		return err
	}
	return v.verify(ctx, escrow, predicted)
}

// Withdraw moves amount from escrow back to the player with the same
// predict-then-verify protocol. Solvency is checked before the transfer.
func (v *Vault) Withdraw(ctx context.Context, sessionID string, player game.Identity, amount uint64, entryType string) error {
	signed, err := toSigned(amount)
	if err != nil {
		return err
	}
	escrow := EscrowAddress(sessionID)
	before, err := v.accounts.GetBalance(ctx, escrow)
	if err != nil {
		return err
	}
	if before < signed {
		return ErrInsufficientFunds
	}
	if err := v.accounts.Transfer(ctx, escrow, PlayerAccount(player), signed, entryType, "session", sessionID); err != nil {
		return err
	}
	return v.verify(ctx, escrow, before-signed)
}

func (v *Vault) verify(ctx context.Context, escrow string, predicted int64) error {
	after, err := v.accounts.GetBalance(ctx, escrow)
	if err != nil {
		return err
	}
	if after != predicted {
		return ErrTransferVerificationFailed
	}
	return nil
}

func toSigned(amount uint64) (int64, error) {
	if amount > math.MaxInt64 {
		return 0, ErrAmountTooLarge
	}
	return int64(amount), nil
}

// ForSession binds the vault to one session as a payout backend.
func (v *Vault) ForSession(sessionID string) payout.Backend {
	return &sessionVault{v: v, sessionID: sessionID}
}

type sessionVault struct {
	v         *Vault
	sessionID string
}

func (sv *sessionVault) Balance(ctx context.Context) (uint64, error) {
	return sv.v.Balance(ctx, sv.sessionID)
}

func (sv *sessionVault) Pay(ctx context.Context, to game.Identity, amount uint64, kind string) error {
	return sv.v.Withdraw(ctx, sv.sessionID, to, amount, kind)
}

func (sv *sessionVault) ValidateRecipient(ctx context.Context, to game.Identity) error {
	if to.IsZero() {
		return ErrInvalidWinnerAccount
	}
	if _, err := sv.v.accounts.GetBalance(ctx, PlayerAccount(to)); err != nil {
		return ErrInvalidWinnerAccount
	}
	return nil
}
