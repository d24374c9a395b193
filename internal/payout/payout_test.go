package payout

import (
	"context"
	"errors"
	"testing"

	"wager-arena/internal/game"
)

const testNow int64 = 1_700_000_000

func ident(b byte) game.Identity {
	var id game.Identity
	id[0] = b
	return id
}

type fakeBackend struct {
	balance uint64
	failPay map[game.Identity]error
	invalid map[game.Identity]bool
	paid    []Recipient
}

func (f *fakeBackend) Balance(ctx context.Context) (uint64, error) {
	return f.balance, nil
}

func (f *fakeBackend) Pay(ctx context.Context, to game.Identity, amount uint64, kind string) error {
	if err := f.failPay[to]; err != nil {
		return err
	}
	if amount > f.balance {
		return errors.New("overdraw")
	}
	f.balance -= amount
	f.paid = append(f.paid, Recipient{Player: to, Amount: amount})
	return nil
}

func (f *fakeBackend) ValidateRecipient(ctx context.Context, to game.Identity) error {
	if f.invalid[to] {
		return errors.New("invalid_winner_account")
	}
	return nil
}

// pooledSession builds a 3v3 pooled session with three occupied slots whose
// kill+spawn bases are 0, 5 and 15.
func pooledSession(status game.Status) *game.Session {
	s := &game.Session{
		ID:        "arena-1",
		Authority: ident(0xAA),
		BetAmount: 1000,
		Mode:      game.ModePayToSpawn3v3,
		Status:    status,
		CreatedAt: testNow,
		ExpiresAt: testNow + game.SessionTimeoutSeconds,
	}
	s.TeamA.Players[0] = ident(1) // basis 0
	s.TeamA.Players[1] = ident(2)
	s.TeamA.PlayerKills[1] = 2
	s.TeamA.PlayerSpawns[1] = 3 // basis 5
	s.TeamB.Players[0] = ident(3)
	s.TeamB.PlayerKills[0] = 5
	s.TeamB.PlayerSpawns[0] = 10 // basis 15
	return s
}

func wtaSession() *game.Session {
	s := &game.Session{
		ID:        "arena-1",
		Authority: ident(0xAA),
		BetAmount: 1000,
		Mode:      game.ModeWinnerTakesAll3v3,
		Status:    game.StatusCompleted,
		CreatedAt: testNow,
		ExpiresAt: testNow + game.SessionTimeoutSeconds,
	}
	s.TeamA.Players[0] = ident(1)
	s.TeamA.Players[1] = ident(2)
	s.TeamB.Players[0] = ident(3)
	s.TeamB.PlayerSpawns[0] = 1
	return s
}

func TestEarningsSummary(t *testing.T) {
	s := pooledSession(game.StatusCompleted)
	recipients, total, err := NewEngine().EarningsSummary(s)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if total != 2000 {
		t.Fatalf("total = %d, want 2000", total)
	}
	if len(recipients) != 2 {
		t.Fatalf("recipients = %d, want 2 (zero earnings dropped)", len(recipients))
	}
	want := map[game.Identity]uint64{ident(2): 500, ident(3): 1500}
	for _, r := range recipients {
		if want[r.Player] != r.Amount {
			t.Fatalf("recipient %s amount = %d, want %d", r.Player, r.Amount, want[r.Player])
		}
	}
}

func TestEarningsSummaryIdempotent(t *testing.T) {
	s := pooledSession(game.StatusCompleted)
	e := NewEngine()
	first, firstTotal, err := e.EarningsSummary(s)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	second, secondTotal, err := e.EarningsSummary(s)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if firstTotal != secondTotal || len(first) != len(second) {
		t.Fatalf("recompute diverged: %d/%d vs %d/%d", firstTotal, len(first), secondTotal, len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("recipient %d diverged: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestDistributeEarningsSolvencyGate(t *testing.T) {
	s := pooledSession(game.StatusCompleted)
	backend := &fakeBackend{balance: 1999}
	_, err := NewEngine().DistributeEarnings(context.Background(), s, s.Authority, testNow, backend)
	if !errors.Is(err, ErrInsufficientVaultBalance) {
		t.Fatalf("got %v, want %v", err, ErrInsufficientVaultBalance)
	}
	if len(backend.paid) != 0 {
		t.Fatalf("transfers attempted despite solvency failure: %d", len(backend.paid))
	}
	if backend.balance != 1999 {
		t.Fatalf("balance moved: %d", backend.balance)
	}
}

func TestDistributeEarningsSuccess(t *testing.T) {
	s := pooledSession(game.StatusInProgress)
	backend := &fakeBackend{balance: 2000}
	res, err := NewEngine().DistributeEarnings(context.Background(), s, s.Authority, testNow, backend)
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}
	if len(res.Paid) != 2 || len(res.Failed) != 0 {
		t.Fatalf("result = %+v", res)
	}
	if backend.balance != 0 {
		t.Fatalf("escrow remainder = %d", backend.balance)
	}
	if s.Status != game.StatusCompleted {
		t.Fatalf("status = %s, want %s", s.Status, game.StatusCompleted)
	}
}

func TestDistributeEarningsPartialFailureBelowThreshold(t *testing.T) {
	s := pooledSession(game.StatusCompleted)
	backend := &fakeBackend{
		balance: 2000,
		failPay: map[game.Identity]error{ident(2): errors.New("account frozen")},
	}
	res, err := NewEngine().DistributeEarnings(context.Background(), s, s.Authority, testNow, backend)
	if err != nil {
		t.Fatalf("one failure of two should not abort: %v", err)
	}
	if len(res.Paid) != 1 || len(res.Failed) != 1 {
		t.Fatalf("result = %+v", res)
	}
	if s.Status != game.StatusCompleted {
		t.Fatalf("status = %s", s.Status)
	}
	// Unpaid claim stays in escrow for an identical retry.
	if backend.balance != 500 {
		t.Fatalf("escrow remainder = %d, want 500", backend.balance)
	}
}

func TestDistributeEarningsPartialFailureAboveThreshold(t *testing.T) {
	s := pooledSession(game.StatusCompleted)
	backend := &fakeBackend{
		balance: 2000,
		failPay: map[game.Identity]error{
			ident(2): errors.New("account frozen"),
			ident(3): errors.New("account frozen"),
		},
	}
	res, err := NewEngine().DistributeEarnings(context.Background(), s, s.Authority, testNow, backend)
	if !errors.Is(err, ErrDistributionPartialFailure) {
		t.Fatalf("got %v, want %v", err, ErrDistributionPartialFailure)
	}
	if len(res.Failed) != 2 {
		t.Fatalf("failed = %d", len(res.Failed))
	}
}

func TestDistributeEarningsEmptyPayeeSet(t *testing.T) {
	s := pooledSession(game.StatusInProgress)
	s.TeamA.PlayerKills[1] = 0
	s.TeamA.PlayerSpawns[1] = 0
	s.TeamB.PlayerKills[0] = 0
	s.TeamB.PlayerSpawns[0] = 0
	backend := &fakeBackend{balance: 5000}
	res, err := NewEngine().DistributeEarnings(context.Background(), s, s.Authority, testNow, backend)
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}
	if len(res.Paid) != 0 {
		t.Fatalf("paid = %d", len(res.Paid))
	}
	if s.Status != game.StatusCompleted {
		t.Fatalf("status = %s", s.Status)
	}
}

func TestDistributeEarningsGuards(t *testing.T) {
	e := NewEngine()
	backend := &fakeBackend{balance: 10_000}
	s := pooledSession(game.StatusCompleted)
	if _, err := e.DistributeEarnings(context.Background(), s, ident(0x99), testNow, backend); !errors.Is(err, game.ErrUnauthorized) {
		t.Fatalf("non-authority: got %v", err)
	}
	s = pooledSession(game.StatusDistributed)
	if _, err := e.DistributeEarnings(context.Background(), s, s.Authority, testNow, backend); !errors.Is(err, game.ErrWrongStatus) {
		t.Fatalf("terminal status: got %v", err)
	}
	wta := wtaSession()
	if _, err := e.DistributeEarnings(context.Background(), wta, wta.Authority, testNow, backend); !errors.Is(err, game.ErrWrongMode) {
		t.Fatalf("pooled distribution on winner-takes-all: got %v", err)
	}
}

func TestDistributeEarningsRejectsExpiredSession(t *testing.T) {
	s := pooledSession(game.StatusInProgress)
	backend := &fakeBackend{balance: 10_000}
	after := s.ExpiresAt
	_, err := NewEngine().DistributeEarnings(context.Background(), s, s.Authority, after, backend)
	if !errors.Is(err, game.ErrSessionExpired) {
		t.Fatalf("got %v, want %v", err, game.ErrSessionExpired)
	}
	if len(backend.paid) != 0 {
		t.Fatalf("transfers attempted on expired session: %d", len(backend.paid))
	}
	// A live session observed past its deadline flips to Expired.
	if s.Status != game.StatusExpired {
		t.Fatalf("status = %s, want %s", s.Status, game.StatusExpired)
	}
	if _, err := NewEngine().DistributeEarnings(context.Background(), s, s.Authority, after, backend); !errors.Is(err, game.ErrSessionExpired) {
		t.Fatalf("retry on expired session: got %v", err)
	}
}

func TestDistributeWinnings(t *testing.T) {
	s := wtaSession()
	backend := &fakeBackend{balance: 4000}
	res, err := NewEngine().DistributeWinnings(context.Background(), s, s.Authority, 0, testNow, backend)
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}
	if len(res.Paid) != 2 {
		t.Fatalf("paid = %d", len(res.Paid))
	}
	for _, r := range res.Paid {
		if r.Amount != 2000 {
			t.Fatalf("per winner = %d, want 2000", r.Amount)
		}
	}
	if backend.balance != 0 {
		t.Fatalf("escrow remainder = %d", backend.balance)
	}
	if s.Status != game.StatusDistributed {
		t.Fatalf("status = %s, want %s", s.Status, game.StatusDistributed)
	}
}

func TestDistributeWinningsAbortsOnFirstFailure(t *testing.T) {
	s := wtaSession()
	backend := &fakeBackend{
		balance: 4000,
		failPay: map[game.Identity]error{ident(2): errors.New("account frozen")},
	}
	res, err := NewEngine().DistributeWinnings(context.Background(), s, s.Authority, 0, testNow, backend)
	if err == nil {
		t.Fatal("expected propagated transfer failure")
	}
	if len(res.Paid) != 1 {
		t.Fatalf("paid before abort = %d, want 1", len(res.Paid))
	}
	if s.Status != game.StatusCompleted {
		t.Fatalf("status after abort = %s, want %s", s.Status, game.StatusCompleted)
	}
}

func TestDistributeWinningsValidatesBeforeAnyTransfer(t *testing.T) {
	s := wtaSession()
	backend := &fakeBackend{
		balance: 4000,
		invalid: map[game.Identity]bool{ident(2): true},
	}
	if _, err := NewEngine().DistributeWinnings(context.Background(), s, s.Authority, 0, testNow, backend); err == nil {
		t.Fatal("expected recipient validation failure")
	}
	if len(backend.paid) != 0 {
		t.Fatalf("transfers attempted despite invalid recipient: %d", len(backend.paid))
	}
}

func TestDistributeWinningsRejectsExpiredSession(t *testing.T) {
	s := wtaSession()
	backend := &fakeBackend{balance: 10_000}
	after := s.ExpiresAt + 60
	_, err := NewEngine().DistributeWinnings(context.Background(), s, s.Authority, 0, after, backend)
	if !errors.Is(err, game.ErrSessionExpired) {
		t.Fatalf("got %v, want %v", err, game.ErrSessionExpired)
	}
	if len(backend.paid) != 0 {
		t.Fatalf("transfers attempted on expired session: %d", len(backend.paid))
	}
	// Completed is not a live status; the deadline rejects without a flip.
	if s.Status != game.StatusCompleted {
		t.Fatalf("status = %s, want %s", s.Status, game.StatusCompleted)
	}
}

func TestDistributeWinningsGuards(t *testing.T) {
	e := NewEngine()
	backend := &fakeBackend{balance: 10_000}
	s := wtaSession()
	if _, err := e.DistributeWinnings(context.Background(), s, ident(0x99), 0, testNow, backend); !errors.Is(err, game.ErrUnauthorized) {
		t.Fatalf("non-authority: got %v", err)
	}
	s.Status = game.StatusInProgress
	if _, err := e.DistributeWinnings(context.Background(), s, s.Authority, 0, testNow, backend); !errors.Is(err, game.ErrWrongStatus) {
		t.Fatalf("in progress: got %v", err)
	}
	pooled := pooledSession(game.StatusCompleted)
	if _, err := e.DistributeWinnings(context.Background(), pooled, pooled.Authority, 0, testNow, backend); !errors.Is(err, game.ErrWrongMode) {
		t.Fatalf("pooled mode: got %v", err)
	}
	empty := wtaSession()
	empty.TeamA = game.Team{}
	if _, err := e.DistributeWinnings(context.Background(), empty, empty.Authority, 0, testNow, backend); !errors.Is(err, ErrNoActiveWinners) {
		t.Fatalf("empty winner roster: got %v", err)
	}
	if _, err := e.DistributeWinnings(context.Background(), wtaSession(), ident(0xAA), 2, testNow, backend); !errors.Is(err, game.ErrInvalidTeam) {
		t.Fatalf("team index 2: got %v", err)
	}
}
