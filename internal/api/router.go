// Package api exposes lead intake, chat, catalog and dashboard
// endpoints over HTTP. All application routes live under /api/v1 and
// require an X-Client-ID header; stats and seeding additionally sit
// behind a bearer token.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/huenthong/spacifychat/internal/chat"
	"github.com/huenthong/spacifychat/internal/leads"
	"github.com/huenthong/spacifychat/internal/routing"
	"github.com/huenthong/spacifychat/internal/store"
)

// Options carry the server-level knobs the router needs from config.
type Options struct {
	AdminToken         string
	RateLimitPerMinute int
	CORSOrigins        []string
}

func NewRouter(st store.Store, svc *leads.Service, engine *chat.Engine, rt *routing.Router, opts Options, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(RequestLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Client-ID"},
		MaxAge:         300,
	}))
	r.Use(RateLimitMiddleware(opts.RateLimitPerMinute))

	leadsH := NewLeadsHandler(svc, st, rt)
	chatH := NewChatHandler(engine)
	catalogH := NewCatalogHandler()
	agentsH := NewAgentsHandler(st, rt.Roster())
	adminH := NewAdminHandler(st, rt, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ClientIDMiddleware)

		r.Post("/leads", leadsH.Create)
		r.Get("/leads", leadsH.List)
		r.Get("/leads/{id}", leadsH.Get)
		r.Get("/leads/{id}/explain", leadsH.Explain)
		r.Post("/leads/{id}/response", leadsH.Response)
		r.Patch("/leads/{id}/status", leadsH.Status)

		r.Get("/agents", agentsH.List)

		r.Get("/areas", catalogH.Areas)
		r.Get("/areas/{area}/properties", catalogH.Properties)

		r.Post("/chat/sessions", chatH.Create)
		r.Get("/chat/sessions/{id}", chatH.Get)
		r.Post("/chat/sessions/{id}/messages", chatH.Message)
		r.Delete("/chat/sessions/{id}", chatH.End)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(opts.AdminToken))
			r.Get("/stats", adminH.Stats)
			r.Post("/admin/seed", adminH.Seed)
		})
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
