// Package arena serializes all operations against a wager session and keeps
// the session state machine, the escrow vault and the persisted session rows
// in step. Funds always move before the in-memory mutation they justify.
package arena

import (
	"context"
	"errors"
	"sync"
	"time"

	"wager-arena/internal/game"
	"wager-arena/internal/payout"
	"wager-arena/internal/store"

	"github.com/rs/zerolog/log"
)

var (
	ErrSessionNotFound = errors.New("session_not_found")
	ErrSessionExists   = errors.New("session_already_exists")
)

// Escrow is the vault surface the arena drives. Deposits and withdrawals are
// verified transfers; Open initializes an empty per-session account.
type Escrow interface {
	Open(ctx context.Context, sessionID string) error
	Deposit(ctx context.Context, sessionID string, player game.Identity, amount uint64, entryType string) error
	Withdraw(ctx context.Context, sessionID string, player game.Identity, amount uint64, entryType string) error
	Balance(ctx context.Context, sessionID string) (uint64, error)
	ForSession(sessionID string) payout.Backend
}

// Records persists the session catalog for listing and restart recovery.
type Records interface {
	CreateSessionRow(ctx context.Context, row store.SessionRow) error
	UpdateSessionStatus(ctx context.Context, sessionID, status string) error
	UpdateSessionExpiry(ctx context.Context, sessionID string, expiresAt int64) error
}

type entry struct {
	mu sync.Mutex
	s  *game.Session
}

type Arena struct {
	escrow  Escrow
	records Records
	engine  *payout.Engine
	clock   func() int64

	mu       sync.Mutex
	sessions map[string]*entry
}

func New(escrow Escrow, records Records) *Arena {
	return &Arena{
		escrow:   escrow,
		records:  records,
		engine:   payout.NewEngine(),
		clock:    func() int64 { return time.Now().Unix() },
		sessions: map[string]*entry{},
	}
}

// SetClock replaces the time source. Test hook.
func (a *Arena) SetClock(clock func() int64) {
	a.clock = clock
}

func (a *Arena) get(sessionID string) (*entry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	e, ok := a.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e, nil
}

// CreateSession validates and registers a new session, opens its escrow
// account and persists the catalog row.
func (a *Arena) CreateSession(ctx context.Context, sessionID string, authority game.Identity, betAmount uint64, mode game.Mode) (game.Session, error) {
	s, err := game.NewSession(sessionID, authority, betAmount, mode, a.clock())
	if err != nil {
		return game.Session{}, err
	}
	a.mu.Lock()
	if _, ok := a.sessions[sessionID]; ok {
		a.mu.Unlock()
		return game.Session{}, ErrSessionExists
	}
	e := &entry{s: s}
	a.sessions[sessionID] = e
	a.mu.Unlock()

	unregister := func() {
		a.mu.Lock()
		delete(a.sessions, sessionID)
		a.mu.Unlock()
	}
	if err := a.escrow.Open(ctx, sessionID); err != nil {
		unregister()
		return game.Session{}, err
	}
	row := store.SessionRow{
		ID:        s.ID,
		Authority: s.Authority.String(),
		BetAmount: int64(s.BetAmount),
		Mode:      s.Mode.String(),
		Status:    s.Status.String(),
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
	}
	if err := a.records.CreateSessionRow(ctx, row); err != nil {
		unregister()
		if errors.Is(err, store.ErrDuplicate) {
			return game.Session{}, ErrSessionExists
		}
		return game.Session{}, err
	}
	log.Info().
		Str("session_id", s.ID).
		Str("mode", s.Mode.String()).
		Uint64("bet_amount", s.BetAmount).
		Msg("session created")
	return *s, nil
}

// Join validates the slot, collects the bet into escrow, then applies the
// roster mutation. A failed deposit leaves the session untouched.
func (a *Arena) Join(ctx context.Context, sessionID string, team int, player game.Identity) (int, error) {
	e, err := a.get(sessionID)
	if err != nil {
		return 0, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	now := a.clock()
	before := e.s.Status
	if _, err := e.s.EmptySlotFor(team, player, now); err != nil {
		if e.s.Status != before {
			a.persistStatus(ctx, e.s)
		}
		return 0, err
	}
	if err := a.escrow.Deposit(ctx, sessionID, player, e.s.BetAmount, "escrow_deposit"); err != nil {
		return 0, err
	}
	slot, err := e.s.Join(team, player, now)
	if err != nil {
		// Deposit landed but the re-validated join failed. Refund.
		if werr := a.escrow.Withdraw(ctx, sessionID, player, e.s.BetAmount, "escrow_refund"); werr != nil {
			log.Error().Err(werr).Str("session_id", sessionID).Msg("refund after failed join")
		}
		return 0, err
	}
	if e.s.Status != before {
		a.persistStatus(ctx, e.s)
	}
	return slot, nil
}

// Leave refunds the bet from escrow, then clears the slot. Pre-start only.
func (a *Arena) Leave(ctx context.Context, sessionID string, team int, player game.Identity) (uint64, error) {
	e, err := a.get(sessionID)
	if err != nil {
		return 0, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	now := a.clock()
	before := e.s.Status
	refund, err := e.s.LeaveRefund(team, player, now)
	if err != nil {
		if e.s.Status != before {
			a.persistStatus(ctx, e.s)
		}
		return 0, err
	}
	if err := a.escrow.Withdraw(ctx, sessionID, player, refund, "escrow_refund"); err != nil {
		return 0, err
	}
	return e.s.Leave(team, player, now)
}

// PurchaseSpawns collects the bet into escrow and credits the configured
// spawn increment.
func (a *Arena) PurchaseSpawns(ctx context.Context, sessionID string, team int, player game.Identity) (uint16, error) {
	e, err := a.get(sessionID)
	if err != nil {
		return 0, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	now := a.clock()
	before := e.s.Status
	cost, err := e.s.SpawnPurchaseCost(team, player, now)
	if err != nil {
		if e.s.Status != before {
			a.persistStatus(ctx, e.s)
		}
		return 0, err
	}
	if err := a.escrow.Deposit(ctx, sessionID, player, cost, "spawn_purchase"); err != nil {
		return 0, err
	}
	return e.s.PurchaseSpawns(team, player, now)
}

// RecordKill is restricted to the session authority, which stands in for the
// trusted game server reporting eliminations.
func (a *Arena) RecordKill(ctx context.Context, sessionID string, caller game.Identity, killerTeam int, killer game.Identity, victimTeam int, victim game.Identity) error {
	e, err := a.get(sessionID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.s.Authority {
		return game.ErrUnauthorized
	}
	before := e.s.Status
	if err := e.s.RecordKill(killerTeam, killer, victimTeam, victim); err != nil {
		return err
	}
	if e.s.Status != before {
		a.persistStatus(ctx, e.s)
		log.Info().
			Str("session_id", sessionID).
			Str("status", e.s.Status.String()).
			Msg("session completed by elimination")
	}
	return nil
}

func (a *Arena) Extend(ctx context.Context, sessionID string, caller game.Identity, additionalSeconds int64) (int64, error) {
	e, err := a.get(sessionID)
	if err != nil {
		return 0, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.s.Extend(caller, additionalSeconds); err != nil {
		return 0, err
	}
	if err := a.records.UpdateSessionExpiry(ctx, sessionID, e.s.ExpiresAt); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("persist session expiry")
	}
	return e.s.ExpiresAt, nil
}

// Cancel refunds every joined player, then marks the session cancelled.
// A refund failure aborts the sweep with players still seated, so the call
// can be retried.
func (a *Arena) Cancel(ctx context.Context, sessionID string, caller game.Identity) error {
	e, err := a.get(sessionID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.s.Authority {
		return game.ErrUnauthorized
	}
	if e.s.Status != game.StatusWaitingForPlayers {
		return game.ErrAlreadyStarted
	}
	now := a.clock()
	for team := 0; team <= 1; team++ {
		for _, player := range e.s.TeamPlayers(team) {
			refund, err := e.s.LeaveRefund(team, player, now)
			if err != nil {
				return err
			}
			if err := a.escrow.Withdraw(ctx, sessionID, player, refund, "escrow_refund"); err != nil {
				return err
			}
			if _, err := e.s.Leave(team, player, now); err != nil {
				return err
			}
		}
	}
	if err := e.s.Cancel(caller); err != nil {
		return err
	}
	a.persistStatus(ctx, e.s)
	log.Info().Str("session_id", sessionID).Msg("session cancelled")
	return nil
}

// Settle moves an in-progress session to Completed on the authority's word.
func (a *Arena) Settle(ctx context.Context, sessionID string, caller game.Identity) error {
	e, err := a.get(sessionID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	before := e.s.Status
	err = e.s.Settle(caller, a.clock())
	if e.s.Status != before {
		a.persistStatus(ctx, e.s)
	}
	return err
}

func (a *Arena) SetSpawnsPerPurchase(ctx context.Context, sessionID string, caller game.Identity, n uint16) error {
	e, err := a.get(sessionID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.s.SetSpawnsPerPurchase(caller, n)
}

func (a *Arena) DisableSpawnPurchases(ctx context.Context, sessionID string, caller game.Identity) error {
	e, err := a.get(sessionID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.s.DisableSpawnPurchases(caller)
}

// DistributeEarnings runs the pooled payout under the session lock.
func (a *Arena) DistributeEarnings(ctx context.Context, sessionID string, caller game.Identity) (payout.Result, error) {
	e, err := a.get(sessionID)
	if err != nil {
		return payout.Result{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	before := e.s.Status
	res, derr := a.engine.DistributeEarnings(ctx, e.s, caller, a.clock(), a.escrow.ForSession(sessionID))
	if e.s.Status != before {
		a.persistStatus(ctx, e.s)
	}
	if derr != nil {
		log.Error().
			Err(derr).
			Str("session_id", sessionID).
			Int("paid", len(res.Paid)).
			Int("failed", len(res.Failed)).
			Msg("earnings distribution failed")
	}
	return res, derr
}

// DistributeWinnings runs the all-or-nothing payout under the session lock.
func (a *Arena) DistributeWinnings(ctx context.Context, sessionID string, caller game.Identity, winningTeam int) (payout.Result, error) {
	e, err := a.get(sessionID)
	if err != nil {
		return payout.Result{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	before := e.s.Status
	res, derr := a.engine.DistributeWinnings(ctx, e.s, caller, winningTeam, a.clock(), a.escrow.ForSession(sessionID))
	if e.s.Status != before {
		a.persistStatus(ctx, e.s)
	}
	if derr != nil {
		log.Error().
			Err(derr).
			Str("session_id", sessionID).
			Int("winning_team", winningTeam).
			Int("paid", len(res.Paid)).
			Msg("winnings distribution failed")
	}
	return res, derr
}

// Snapshot returns a copy of the session; fixed-size arrays make the copy
// deep enough for read-only use.
func (a *Arena) Snapshot(sessionID string) (game.Session, error) {
	e, err := a.get(sessionID)
	if err != nil {
		return game.Session{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return *e.s, nil
}

func (a *Arena) PlayerStats(sessionID string, player game.Identity) (game.PlayerStats, error) {
	e, err := a.get(sessionID)
	if err != nil {
		return game.PlayerStats{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.s.PlayerStats(player)
}

// EarningsSummary is the pooled payout dry run.
func (a *Arena) EarningsSummary(sessionID string) ([]payout.Recipient, uint64, error) {
	e, err := a.get(sessionID)
	if err != nil {
		return nil, 0, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return a.engine.EarningsSummary(e.s)
}

func (a *Arena) EscrowBalance(ctx context.Context, sessionID string) (uint64, error) {
	if _, err := a.get(sessionID); err != nil {
		return 0, err
	}
	return a.escrow.Balance(ctx, sessionID)
}

func (a *Arena) persistStatus(ctx context.Context, s *game.Session) {
	if err := a.records.UpdateSessionStatus(ctx, s.ID, s.Status.String()); err != nil {
		log.Error().Err(err).Str("session_id", s.ID).Msg("persist session status")
	}
}

// StartJanitor periodically flips sessions past their deadline to Expired so
// the catalog stays truthful even when nobody touches a dead session.
func (a *Arena) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				a.sweepExpired(ctx)
			}
		}
	}()
}

func (a *Arena) sweepExpired(ctx context.Context) {
	a.mu.Lock()
	entries := make([]*entry, 0, len(a.sessions))
	for _, e := range a.sessions {
		entries = append(entries, e)
	}
	a.mu.Unlock()

	now := a.clock()
	for _, e := range entries {
		e.mu.Lock()
		live := e.s.Status == game.StatusWaitingForPlayers || e.s.Status == game.StatusInProgress
		if live && e.s.IsExpired(now) {
			e.s.Status = game.StatusExpired
			a.persistStatus(ctx, e.s)
			log.Info().Str("session_id", e.s.ID).Msg("session expired")
		}
		e.mu.Unlock()
	}
}
