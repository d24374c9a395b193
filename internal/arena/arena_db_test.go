package arena_test

import (
	"context"
	"encoding/hex"
	"testing"

	"wager-arena/internal/arena"
	"wager-arena/internal/game"
	"wager-arena/internal/store"
	"wager-arena/internal/testutil"
	"wager-arena/internal/vault"
)

func dbIdentity(b byte) game.Identity {
	var id game.Identity
	id[0] = b
	return id
}

func ensureFunded(t *testing.T, st *store.Store, id game.Identity, balance int64) {
	t.Helper()
	account := hex.EncodeToString(id[:])
	if err := st.EnsureAccount(context.Background(), account, balance); err != nil {
		t.Fatalf("ensure account: %v", err)
	}
}

func balanceOf(t *testing.T, st *store.Store, id game.Identity) int64 {
	t.Helper()
	bal, err := st.GetBalance(context.Background(), hex.EncodeToString(id[:]))
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	return bal
}

// Full winner-takes-all flow against a real database: every balance change
// goes through the verified transfer protocol and the double-entry ledger.
func TestWinnerTakesAllAgainstDatabase(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()

	v := vault.New(st)
	a := arena.New(v, st)

	auth := dbIdentity(0xAA)
	p1, p2 := dbIdentity(1), dbIdentity(2)
	ensureFunded(t, st, p1, 50_000)
	ensureFunded(t, st, p2, 50_000)

	if _, err := a.CreateSession(ctx, "arena-db-1", auth, 10_000, game.ModeWinnerTakesAll1v1); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := a.Join(ctx, "arena-db-1", 0, p1); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := a.Join(ctx, "arena-db-1", 1, p2); err != nil {
		t.Fatalf("join: %v", err)
	}
	escrowBal, err := a.EscrowBalance(ctx, "arena-db-1")
	if err != nil || escrowBal != 20_000 {
		t.Fatalf("escrow = %d, err %v", escrowBal, err)
	}
	if err := a.RecordKill(ctx, "arena-db-1", auth, 0, p1, 1, p2); err != nil {
		t.Fatalf("kill: %v", err)
	}
	res, err := a.DistributeWinnings(ctx, "arena-db-1", auth, 0)
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}
	if len(res.Paid) != 1 || res.Paid[0].Amount != 20_000 {
		t.Fatalf("result = %+v", res)
	}

	if got := balanceOf(t, st, p1); got != 60_000 {
		t.Fatalf("winner balance = %d", got)
	}
	if got := balanceOf(t, st, p2); got != 40_000 {
		t.Fatalf("loser balance = %d", got)
	}
	escrowBal, _ = a.EscrowBalance(ctx, "arena-db-1")
	if escrowBal != 0 {
		t.Fatalf("escrow remainder = %d", escrowBal)
	}

	row, err := st.GetSessionRow(ctx, "arena-db-1")
	if err != nil {
		t.Fatalf("session row: %v", err)
	}
	if row.Status != "distributed" {
		t.Fatalf("persisted status = %q", row.Status)
	}

	// Every transfer wrote both sides of the ledger.
	entries, err := st.ListLedgerEntries(ctx, store.LedgerFilter{RefID: "arena-db-1"}, 50, 0)
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}
	var sum int64
	for _, e := range entries {
		sum += e.Amount
	}
	if sum != 0 {
		t.Fatalf("ledger does not balance: %d", sum)
	}
}

func TestCancelRefundAgainstDatabase(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()

	v := vault.New(st)
	a := arena.New(v, st)

	auth := dbIdentity(0xAA)
	p1 := dbIdentity(1)
	ensureFunded(t, st, p1, 50_000)

	if _, err := a.CreateSession(ctx, "arena-db-2", auth, 10_000, game.ModePayToSpawn3v3); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := a.Join(ctx, "arena-db-2", 0, p1); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := a.Cancel(ctx, "arena-db-2", auth); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got := balanceOf(t, st, p1); got != 50_000 {
		t.Fatalf("balance after cancel = %d", got)
	}
	row, err := st.GetSessionRow(ctx, "arena-db-2")
	if err != nil || row.Status != "cancelled" {
		t.Fatalf("row = %+v, err %v", row, err)
	}
}
