// Package payout computes per-player amounts from a session's final ledgers
// and drives them through an escrow backend. Pooled earnings tolerate partial
// transfer failure up to a threshold; winner-takes-all is all-or-nothing.
package payout

import (
	"context"
	"errors"

	"wager-arena/internal/game"
)

var (
	ErrInsufficientVaultBalance   = errors.New("insufficient_vault_balance")
	ErrDistributionPartialFailure = errors.New("distribution_partial_failure")
	ErrNoActiveWinners            = errors.New("no_active_winners")
)

// EarningsDivisor converts a player's kill+spawn basis into escrow units:
// earnings = basis * bet_amount / EarningsDivisor.
const EarningsDivisor = 10

// Backend is the escrow side of a single session. Pay either fully applies
// or fully fails; balance reads always reflect committed state.
type Backend interface {
	Balance(ctx context.Context) (uint64, error)
	Pay(ctx context.Context, to game.Identity, amount uint64, kind string) error
	ValidateRecipient(ctx context.Context, to game.Identity) error
}

// Recipient is one computed payout line.
type Recipient struct {
	Player game.Identity `json:"player"`
	Amount uint64        `json:"amount"`
}

// Result reports which transfers landed. Failed is non-empty only in the
// pooled algorithm, which keeps going past individual failures.
type Result struct {
	Paid   []Recipient `json:"paid"`
	Failed []Recipient `json:"failed,omitempty"`
}

type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// EarningsFor computes one player's pooled payout with checked arithmetic.
func EarningsFor(basis uint16, betAmount uint64) (uint64, error) {
	product, err := game.CheckedMulU64(uint64(basis), betAmount)
	if err != nil {
		return 0, err
	}
	return product / EarningsDivisor, nil
}

// EarningsSummary recomputes the pooled payout set from current counters.
// Zero-earnings players are dropped. Pure read; safe to call repeatedly.
func (e *Engine) EarningsSummary(s *game.Session) ([]Recipient, uint64, error) {
	if !s.Mode.PayToSpawn() {
		return nil, 0, game.ErrWrongMode
	}
	var total uint64
	recipients := make([]Recipient, 0, 2*s.Mode.PlayersPerTeam())
	for _, player := range s.AllPlayers() {
		basis, err := s.KillsAndSpawns(player)
		if err != nil {
			return nil, 0, err
		}
		amount, err := EarningsFor(basis, s.BetAmount)
		if err != nil {
			return nil, 0, err
		}
		if amount == 0 {
			continue
		}
		total, err = game.CheckedAddU64(total, amount)
		if err != nil {
			return nil, 0, err
		}
		recipients = append(recipients, Recipient{Player: player, Amount: amount})
	}
	return recipients, total, nil
}

// checkNotExpired rejects distribution past the session deadline. A live
// session observed after its expiry flips to Expired here, same as every
// other mutating path; a Completed session past the deadline is rejected
// without a status change.
func checkNotExpired(s *game.Session, now int64) error {
	if s.Status == game.StatusExpired {
		return game.ErrSessionExpired
	}
	if !s.IsExpired(now) {
		return nil
	}
	if s.Status == game.StatusWaitingForPlayers || s.Status == game.StatusInProgress {
		s.Status = game.StatusExpired
	}
	return game.ErrSessionExpired
}

// DistributeEarnings pays every player their kill+spawn earnings from escrow.
// The payee set is snapshotted before any transfer so counter changes cannot
// shift amounts mid-loop. Transfers are attempted independently; when more
// than half fail the call errors with ErrDistributionPartialFailure, otherwise
// the session lands on Completed and unpaid payees keep their claim in escrow
// for an identical recomputation on retry.
func (e *Engine) DistributeEarnings(ctx context.Context, s *game.Session, caller game.Identity, now int64, backend Backend) (Result, error) {
	if caller != s.Authority {
		return Result{}, game.ErrUnauthorized
	}
	if err := checkNotExpired(s, now); err != nil {
		return Result{}, err
	}
	if s.Status != game.StatusInProgress && s.Status != game.StatusCompleted {
		return Result{}, game.ErrWrongStatus
	}
	recipients, total, err := e.EarningsSummary(s)
	if err != nil {
		return Result{}, err
	}
	if len(recipients) == 0 {
		s.Status = game.StatusCompleted
		return Result{}, nil
	}
	balance, err := backend.Balance(ctx)
	if err != nil {
		return Result{}, err
	}
	if total > balance {
		return Result{}, ErrInsufficientVaultBalance
	}

	var res Result
	for _, r := range recipients {
		if err := backend.Pay(ctx, r.Player, r.Amount, "payout_earnings"); err != nil {
			res.Failed = append(res.Failed, r)
			continue
		}
		res.Paid = append(res.Paid, r)
	}
	if 2*len(res.Failed) > len(recipients) {
		return res, ErrDistributionPartialFailure
	}
	s.Status = game.StatusCompleted
	return res, nil
}

// WinningsSummary computes the all-or-nothing payout for the given team.
func (e *Engine) WinningsSummary(s *game.Session, winningTeam int) ([]Recipient, uint64, error) {
	if s.Mode.PayToSpawn() {
		return nil, 0, game.ErrWrongMode
	}
	if _, err := s.TeamStats(winningTeam); err != nil {
		return nil, 0, err
	}
	winners := s.TeamPlayers(winningTeam)
	if len(winners) == 0 {
		return nil, 0, ErrNoActiveWinners
	}
	perWinner, err := game.CheckedMulU64(s.BetAmount, 2)
	if err != nil {
		return nil, 0, err
	}
	total, err := game.CheckedMulU64(perWinner, uint64(len(winners)))
	if err != nil {
		return nil, 0, err
	}
	recipients := make([]Recipient, 0, len(winners))
	for _, w := range winners {
		recipients = append(recipients, Recipient{Player: w, Amount: perWinner})
	}
	return recipients, total, nil
}

// DistributeWinnings pays double the bet to every member of the winning team.
// Every destination is validated before the first transfer; the loop aborts
// on the first failure and leaves the session on Completed so the operator
// can reconcile. Full success moves the session to Distributed. The deadline
// binds here too: a session past its expiry cannot pay out.
func (e *Engine) DistributeWinnings(ctx context.Context, s *game.Session, caller game.Identity, winningTeam int, now int64, backend Backend) (Result, error) {
	if caller != s.Authority {
		return Result{}, game.ErrUnauthorized
	}
	if err := checkNotExpired(s, now); err != nil {
		return Result{}, err
	}
	if s.Status != game.StatusCompleted {
		return Result{}, game.ErrWrongStatus
	}
	recipients, total, err := e.WinningsSummary(s, winningTeam)
	if err != nil {
		return Result{}, err
	}
	balance, err := backend.Balance(ctx)
	if err != nil {
		return Result{}, err
	}
	if balance < total {
		return Result{}, ErrInsufficientVaultBalance
	}
	for _, r := range recipients {
		if err := backend.ValidateRecipient(ctx, r.Player); err != nil {
			return Result{}, err
		}
	}
	var res Result
	for _, r := range recipients {
		if err := backend.Pay(ctx, r.Player, r.Amount, "payout_winnings"); err != nil {
			return res, err
		}
		res.Paid = append(res.Paid, r)
	}
	s.Status = game.StatusDistributed
	return res, nil
}
