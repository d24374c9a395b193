package httptransport

import (
	"encoding/json"
	"net/http"

	"wager-arena/internal/arena"
	"wager-arena/internal/game"

	"github.com/go-chi/chi/v5"
)

type SessionHandlers struct {
	arena *arena.Arena
}

func NewSessionHandlers(a *arena.Arena) *SessionHandlers {
	return &SessionHandlers{arena: a}
}

func callerIdentity(w http.ResponseWriter, r *http.Request) (game.Identity, bool) {
	player, ok := PlayerFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return game.Identity{}, false
	}
	id, err := game.ParseIdentity(player.Identity)
	if err != nil {
		WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
		return game.Identity{}, false
	}
	return id, true
}

// Create registers a new session with the caller as authority.
func (h *SessionHandlers) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerIdentity(w, r)
		if !ok {
			return
		}
		var body struct {
			SessionID string `json:"session_id"`
			BetAmount uint64 `json:"bet_amount"`
			Mode      string `json:"mode"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		mode, err := game.ParseMode(body.Mode)
		if err != nil {
			metricSessionCreateErrors.Add(1)
			writeDomainError(w, err)
			return
		}
		s, err := h.arena.CreateSession(r.Context(), body.SessionID, caller, body.BetAmount, mode)
		if err != nil {
			metricSessionCreateErrors.Add(1)
			writeDomainError(w, err)
			return
		}
		metricSessionCreateTotal.Add(1)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(newSessionView(s, 0))
	}
}

func (h *SessionHandlers) Join() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerIdentity(w, r)
		if !ok {
			return
		}
		var body struct {
			Team int `json:"team"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		slot, err := h.arena.Join(r.Context(), chi.URLParam(r, "session_id"), body.Team, caller)
		if err != nil {
			metricJoinErrors.Add(1)
			writeDomainError(w, err)
			return
		}
		metricJoinTotal.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{"team": body.Team, "slot": slot})
	}
}

func (h *SessionHandlers) Leave() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerIdentity(w, r)
		if !ok {
			return
		}
		var body struct {
			Team int `json:"team"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		refund, err := h.arena.Leave(r.Context(), chi.URLParam(r, "session_id"), body.Team, caller)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"refund": refund})
	}
}

func (h *SessionHandlers) PurchaseSpawns() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerIdentity(w, r)
		if !ok {
			return
		}
		var body struct {
			Team int `json:"team"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		spawns, err := h.arena.PurchaseSpawns(r.Context(), chi.URLParam(r, "session_id"), body.Team, caller)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		metricSpawnPurchaseTotal.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{"spawns": spawns})
	}
}

// RecordKill accepts an elimination report from the session authority.
func (h *SessionHandlers) RecordKill() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerIdentity(w, r)
		if !ok {
			return
		}
		var body struct {
			KillerTeam int    `json:"killer_team"`
			Killer     string `json:"killer"`
			VictimTeam int    `json:"victim_team"`
			Victim     string `json:"victim"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		killer, err := game.ParseIdentity(body.Killer)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		victim, err := game.ParseIdentity(body.Victim)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		sessionID := chi.URLParam(r, "session_id")
		if err := h.arena.RecordKill(r.Context(), sessionID, caller, body.KillerTeam, killer, body.VictimTeam, victim); err != nil {
			writeDomainError(w, err)
			return
		}
		metricKillTotal.Add(1)
		snap, err := h.arena.Snapshot(sessionID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"status": snap.Status.String()})
	}
}

func (h *SessionHandlers) Extend() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerIdentity(w, r)
		if !ok {
			return
		}
		var body struct {
			AdditionalSeconds int64 `json:"additional_seconds"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		expiresAt, err := h.arena.Extend(r.Context(), chi.URLParam(r, "session_id"), caller, body.AdditionalSeconds)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"expires_at": expiresAt})
	}
}

func (h *SessionHandlers) Cancel() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerIdentity(w, r)
		if !ok {
			return
		}
		if err := h.arena.Cancel(r.Context(), chi.URLParam(r, "session_id"), caller); err != nil {
			writeDomainError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"status": game.StatusCancelled.String()})
	}
}

func (h *SessionHandlers) Settle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerIdentity(w, r)
		if !ok {
			return
		}
		if err := h.arena.Settle(r.Context(), chi.URLParam(r, "session_id"), caller); err != nil {
			writeDomainError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"status": game.StatusCompleted.String()})
	}
}

// ConfigureSpawns sets the spawn purchase increment; zero disables purchases.
func (h *SessionHandlers) ConfigureSpawns() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerIdentity(w, r)
		if !ok {
			return
		}
		var body struct {
			SpawnsPerPurchase uint16 `json:"spawns_per_purchase"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		sessionID := chi.URLParam(r, "session_id")
		var err error
		if body.SpawnsPerPurchase == 0 {
			err = h.arena.DisableSpawnPurchases(r.Context(), sessionID, caller)
		} else {
			err = h.arena.SetSpawnsPerPurchase(r.Context(), sessionID, caller, body.SpawnsPerPurchase)
		}
		if err != nil {
			writeDomainError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"spawns_per_purchase": body.SpawnsPerPurchase})
	}
}

func (h *SessionHandlers) DistributeEarnings() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerIdentity(w, r)
		if !ok {
			return
		}
		res, err := h.arena.DistributeEarnings(r.Context(), chi.URLParam(r, "session_id"), caller)
		if err != nil {
			metricDistributionErrors.Add(1)
			writeDomainError(w, err)
			return
		}
		metricDistributionTotal.Add(1)
		_ = json.NewEncoder(w).Encode(res)
	}
}

func (h *SessionHandlers) DistributeWinnings() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerIdentity(w, r)
		if !ok {
			return
		}
		var body struct {
			WinningTeam int `json:"winning_team"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		res, err := h.arena.DistributeWinnings(r.Context(), chi.URLParam(r, "session_id"), caller, body.WinningTeam)
		if err != nil {
			metricDistributionErrors.Add(1)
			writeDomainError(w, err)
			return
		}
		metricDistributionTotal.Add(1)
		_ = json.NewEncoder(w).Encode(res)
	}
}

// Get returns the full session view including live escrow balance.
func (h *SessionHandlers) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "session_id")
		snap, err := h.arena.Snapshot(sessionID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		balance, err := h.arena.EscrowBalance(r.Context(), sessionID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(newSessionView(snap, balance))
	}
}

func (h *SessionHandlers) PlayerStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		player, err := game.ParseIdentity(chi.URLParam(r, "identity"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		stats, err := h.arena.PlayerStats(chi.URLParam(r, "session_id"), player)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"identity": stats.Player.String(),
			"team":     stats.Team,
			"slot":     stats.Slot,
			"spawns":   stats.Spawns,
			"kills":    stats.Kills,
		})
	}
}

// EarningsSummary is the pooled payout dry run: what each player would
// receive if earnings were distributed now.
func (h *SessionHandlers) EarningsSummary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recipients, total, err := h.arena.EarningsSummary(chi.URLParam(r, "session_id"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"recipients":     recipients,
			"total_required": total,
		})
	}
}
