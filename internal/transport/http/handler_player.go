package httptransport

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"wager-arena/internal/config"
	"wager-arena/internal/store"
)

type PlayerHandlers struct {
	st  *store.Store
	cfg config.ServerConfig
}

func NewPlayerHandlers(st *store.Store, cfg config.ServerConfig) *PlayerHandlers {
	return &PlayerHandlers{st: st, cfg: cfg}
}

// Register creates a player with a fresh identity and API key, opens their
// ledger account and seeds it from the faucet. The API key is returned once
// and stored only as a hash.
func (h *PlayerHandlers) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		name := strings.TrimSpace(body.Name)
		if name == "" || len(name) > 64 {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		identity, err := randomHex(32)
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		apiKey, err := randomHex(24)
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		apiKey = "wk_" + apiKey

		player := store.Player{
			ID:         store.NewID(),
			Name:       name,
			Identity:   identity,
			APIKeyHash: store.HashAPIKey(apiKey),
			Status:     "active",
		}
		if err := h.st.CreatePlayer(r.Context(), player); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				WriteHTTPError(w, http.StatusConflict, "duplicate")
				return
			}
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		if err := h.st.EnsureAccount(r.Context(), identity, 0); err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		if h.cfg.FaucetBalance > 0 {
			if _, err := h.st.Credit(r.Context(), identity, h.cfg.FaucetBalance, "faucet", "player", player.ID); err != nil {
				WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
				return
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"player_id": player.ID,
			"name":      player.Name,
			"identity":  identity,
			"api_key":   apiKey,
			"balance":   h.cfg.FaucetBalance,
		})
	}
}

func (h *PlayerHandlers) Me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		player, ok := PlayerFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		balance, err := h.st.GetBalance(r.Context(), player.Identity)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"player_id":  player.ID,
			"name":       player.Name,
			"identity":   player.Identity,
			"balance":    balance,
			"created_at": player.CreatedAt,
		})
	}
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
