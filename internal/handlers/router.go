package handlers

import (
	"database/sql"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/linkpulse/linkpulse/internal/cache"
	"github.com/linkpulse/linkpulse/internal/config"
	"github.com/linkpulse/linkpulse/internal/geo"
)

// NewRouter wires every endpoint. RealIP middleware is deliberately not
// used: the tracking handler reads proxy headers itself so the IP
// stored on a click follows one fixed priority order.
func NewRouter(db *sql.DB, cfg *config.Config, linkCache *cache.LinkCache, resolver *geo.Resolver) *chi.Mux {
	linkHandler := &LinkHandler{DB: db, Cfg: cfg, Cache: linkCache}
	analyticsHandler := &AnalyticsHandler{DB: db, Cfg: cfg}
	trackHandler := &TrackHandler{DB: db, Cache: linkCache, Resolver: resolver}

	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/links", linkHandler.List)
		r.Post("/links", linkHandler.Create)
		r.Delete("/links", linkHandler.Delete)
		r.Get("/links/{id}/qr", linkHandler.QRCode)
		r.Get("/analytics", analyticsHandler.Global)
		r.Get("/analytics/{linkId}", analyticsHandler.PerLink)
	})

	r.Get("/track/{shortCode}", trackHandler.ServeHTTP)

	return r
}
