package httptransport

import (
	"expvar"
	"net/http"
	"sort"

	"wager-arena/internal/arena"
	"wager-arena/internal/config"
	"wager-arena/internal/store"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

func NewRouter(st *store.Store, cfg config.ServerConfig, a *arena.Arena) *chi.Mux {
	playerHandlers := NewPlayerHandlers(st, cfg)
	sessionHandlers := NewSessionHandlers(a)
	adminHandlers := NewAdminHandlers(st)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(APILogMiddleware()).Get("/healthz", adminHandlers.Health())

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())

		r.Post("/players/register", playerHandlers.Register())

		// Public read side.
		r.Get("/sessions", adminHandlers.Sessions())
		r.Get("/sessions/{session_id}", sessionHandlers.Get())
		r.Get("/sessions/{session_id}/players/{identity}", sessionHandlers.PlayerStats())
		r.Get("/sessions/{session_id}/earnings", sessionHandlers.EarningsSummary())

		r.Group(func(r chi.Router) {
			r.Use(PlayerAuthMiddleware(st))
			r.Get("/players/me", playerHandlers.Me())

			r.Post("/sessions", sessionHandlers.Create())
			r.Post("/sessions/{session_id}/join", sessionHandlers.Join())
			r.Post("/sessions/{session_id}/leave", sessionHandlers.Leave())
			r.Post("/sessions/{session_id}/spawns/purchase", sessionHandlers.PurchaseSpawns())
			r.Put("/sessions/{session_id}/spawns/config", sessionHandlers.ConfigureSpawns())
			r.Post("/sessions/{session_id}/kills", sessionHandlers.RecordKill())
			r.Post("/sessions/{session_id}/extend", sessionHandlers.Extend())
			r.Post("/sessions/{session_id}/cancel", sessionHandlers.Cancel())
			r.Post("/sessions/{session_id}/settle", sessionHandlers.Settle())
			r.Post("/sessions/{session_id}/distribute/earnings", sessionHandlers.DistributeEarnings())
			r.Post("/sessions/{session_id}/distribute/winnings", sessionHandlers.DistributeWinnings())
		})

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.AdminAPIKey))
			r.Post("/admin/topup", adminHandlers.Topup())
			r.Get("/admin/ledger", adminHandlers.Ledger())
			r.Get("/admin/debug/vars", expvar.Handler().ServeHTTP)
		})
	})

	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 32)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Msg("walk routes")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	for _, rt := range routes {
		log.Info().Str("method", rt.Method).Str("route", rt.Path).Msg("route registered")
	}
}
