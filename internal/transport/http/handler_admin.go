package httptransport

import (
	"encoding/json"
	"net/http"

	"wager-arena/internal/store"
)

type AdminHandlers struct {
	st *store.Store
}

func NewAdminHandlers(st *store.Store) *AdminHandlers {
	return &AdminHandlers{st: st}
}

func (h *AdminHandlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.st.Ping(r.Context()); err != nil {
			WriteHTTPError(w, http.StatusServiceUnavailable, "db_unavailable")
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}
}

// Topup credits an arbitrary account out of thin air. Operator escape hatch.
func (h *AdminHandlers) Topup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			AccountID string `json:"account_id"`
			Amount    int64  `json:"amount"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if body.AccountID == "" || body.Amount <= 0 {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		if err := h.st.EnsureAccount(r.Context(), body.AccountID, 0); err != nil {
			writeDomainError(w, err)
			return
		}
		balance, err := h.st.Credit(r.Context(), body.AccountID, body.Amount, "admin_topup", "", "")
		if err != nil {
			writeDomainError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"account_id": body.AccountID, "balance": balance})
	}
}

func (h *AdminHandlers) Ledger() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := ParsePagination(r)
		entries, err := h.st.ListLedgerEntries(r.Context(), store.LedgerFilter{
			AccountID: r.URL.Query().Get("account_id"),
			RefID:     r.URL.Query().Get("ref_id"),
		}, limit, offset)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"entries": entries})
	}
}

// Sessions lists the persisted session catalog, optionally by status.
func (h *AdminHandlers) Sessions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := ParsePagination(r)
		rows, err := h.st.ListSessionRows(r.Context(), r.URL.Query().Get("status"), limit, offset)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"sessions": rows})
	}
}
