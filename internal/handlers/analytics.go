package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/linkpulse/linkpulse/internal/config"
	"github.com/linkpulse/linkpulse/internal/models"
)

type AnalyticsHandler struct {
	DB  *sql.DB
	Cfg *config.Config
}

func (h *AnalyticsHandler) Global(w http.ResponseWriter, r *http.Request) {
	summary, err := models.GetGlobalAnalytics(h.DB)
	if err != nil {
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}

func (h *AnalyticsHandler) PerLink(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "linkId")

	link := &models.Link{ID: id}
	if err := models.GetLinkByID(h.DB, link); err != nil {
		if err == sql.ErrNoRows {
			jsonError(w, "not found", http.StatusNotFound)
			return
		}
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	link.FillTrackingURL(h.Cfg.BaseURL)

	analytics, err := models.GetLinkAnalytics(h.DB, id)
	if err != nil {
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"link":      link,
		"analytics": analytics,
	})
}
