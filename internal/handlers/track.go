package handlers

import (
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/linkpulse/linkpulse/internal/cache"
	"github.com/linkpulse/linkpulse/internal/geo"
	"github.com/linkpulse/linkpulse/internal/models"
	"github.com/linkpulse/linkpulse/internal/visitor"
)

type TrackHandler struct {
	DB       *sql.DB
	Cache    *cache.LinkCache
	Resolver *geo.Resolver
}

// ServeHTTP records a visit and redirects to the link's destination.
// Everything after the initial lookup is best-effort: if recording
// fails, the visitor is still redirected via a fresh lookup.
func (h *TrackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "shortCode")
	if code == "" {
		jsonError(w, "not found", http.StatusNotFound)
		return
	}

	link, found := h.Cache.Get(code)
	if !found {
		var err error
		link, err = models.GetLinkByShortCode(h.DB, code)
		if err != nil {
			if err == sql.ErrNoRows {
				jsonError(w, "not found", http.StatusNotFound)
				return
			}
			h.fallbackRedirect(w, r, code)
			return
		}
		h.Cache.Set(code, link)
	}

	if err := h.record(r, link); err != nil {
		log.Printf("track: recording click for %s failed: %v", code, err)
		h.fallbackRedirect(w, r, code)
		return
	}

	http.Redirect(w, r, link.OriginalURL, http.StatusFound)
}

func (h *TrackHandler) record(r *http.Request, link *models.Link) error {
	ip := visitor.ClientIP(r)
	if ip == "" {
		ip = "127.0.0.1"
	}

	// Location resolution is on the critical path: the click row must
	// carry a best-effort location before the redirect is issued.
	loc := h.Resolver.Resolve(ip)

	click := &models.Click{
		LinkID:    link.ID,
		IP:        &ip,
		Country:   nullable(loc.Country),
		City:      nullable(loc.City),
		Region:    nullable(loc.Region),
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		UserAgent: nullable(r.UserAgent()),
		Referer:   nullable(visitor.SanitizeReferer(r.Referer())),
		CreatedAt: time.Now().UTC(),
	}

	return models.RecordClick(h.DB, click)
}

// fallbackRedirect re-attempts a bare lookup so the visitor still gets
// redirected when recording failed. No click is stored on this path.
func (h *TrackHandler) fallbackRedirect(w http.ResponseWriter, r *http.Request, code string) {
	link, err := models.GetLinkByShortCode(h.DB, code)
	if err != nil {
		if err == sql.ErrNoRows {
			jsonError(w, "not found", http.StatusNotFound)
			return
		}
		jsonError(w, "tracking failed", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, link.OriginalURL, http.StatusFound)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
