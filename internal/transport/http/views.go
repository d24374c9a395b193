package httptransport

import (
	"wager-arena/internal/game"
)

type playerSlotView struct {
	Identity string `json:"identity"`
	Spawns   uint16 `json:"spawns"`
	Kills    uint16 `json:"kills"`
}

type teamView struct {
	Players           []playerSlotView `json:"players"`
	TotalContribution uint64           `json:"total_contribution"`
}

type sessionView struct {
	ID                string   `json:"id"`
	Authority         string   `json:"authority"`
	BetAmount         uint64   `json:"bet_amount"`
	Mode              string   `json:"mode"`
	Status            string   `json:"status"`
	CreatedAt         int64    `json:"created_at"`
	ExpiresAt         int64    `json:"expires_at"`
	SpawnsPerPurchase uint16   `json:"spawns_per_purchase"`
	TeamA             teamView `json:"team_a"`
	TeamB             teamView `json:"team_b"`
	EscrowBalance     uint64   `json:"escrow_balance"`
}

func newTeamView(t *game.Team, capacity int) teamView {
	view := teamView{
		Players:           make([]playerSlotView, 0, capacity),
		TotalContribution: t.TotalContribution,
	}
	for i := 0; i < capacity; i++ {
		if t.Players[i].IsZero() {
			continue
		}
		view.Players = append(view.Players, playerSlotView{
			Identity: t.Players[i].String(),
			Spawns:   t.PlayerSpawns[i],
			Kills:    t.PlayerKills[i],
		})
	}
	return view
}

func newSessionView(s game.Session, escrowBalance uint64) sessionView {
	capacity := s.Mode.PlayersPerTeam()
	return sessionView{
		ID:                s.ID,
		Authority:         s.Authority.String(),
		BetAmount:         s.BetAmount,
		Mode:              s.Mode.String(),
		Status:            s.Status.String(),
		CreatedAt:         s.CreatedAt,
		ExpiresAt:         s.ExpiresAt,
		SpawnsPerPurchase: s.SpawnsPerPurchase,
		TeamA:             newTeamView(&s.TeamA, capacity),
		TeamB:             newTeamView(&s.TeamB, capacity),
		EscrowBalance:     escrowBalance,
	}
}
