package handlers

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/linkpulse/linkpulse/internal/cache"
	"github.com/linkpulse/linkpulse/internal/config"
	"github.com/linkpulse/linkpulse/internal/models"
	"github.com/linkpulse/linkpulse/internal/shortcode"
)

const maxNameLength = 100

type LinkHandler struct {
	DB    *sql.DB
	Cfg   *config.Config
	Cache *cache.LinkCache
}

type createLinkRequest struct {
	Name        string `json:"name"`
	OriginalURL string `json:"originalUrl"`
}

func (h *LinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	if errs := validateCreate(req); len(errs) > 0 {
		jsonFieldErrors(w, errs)
		return
	}

	// Generate a unique code with collision retry
	var code string
	for i := 0; i < 10; i++ {
		candidate, err := shortcode.Generate()
		if err != nil {
			jsonError(w, "internal error", http.StatusInternalServerError)
			return
		}
		exists, err := models.ShortCodeExists(h.DB, candidate)
		if err != nil {
			jsonError(w, "internal error", http.StatusInternalServerError)
			return
		}
		if !exists {
			code = candidate
			break
		}
	}
	if code == "" {
		jsonError(w, "failed to generate unique short code", http.StatusInternalServerError)
		return
	}

	link := &models.Link{
		ID:          uuid.NewString(),
		Name:        req.Name,
		OriginalURL: req.OriginalURL,
		ShortCode:   code,
	}

	if err := models.CreateLink(h.DB, link); err != nil {
		log.Printf("links: create %q failed: %v", req.Name, err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	link.FillTrackingURL(h.Cfg.BaseURL)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(link)
}

func validateCreate(req createLinkRequest) map[string]string {
	errs := make(map[string]string)
	if req.Name == "" {
		errs["name"] = "name is required"
	} else if len(req.Name) > maxNameLength {
		errs["name"] = "name must be at most 100 characters"
	}

	if req.OriginalURL == "" {
		errs["originalUrl"] = "originalUrl is required"
	} else if u, err := url.Parse(req.OriginalURL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		errs["originalUrl"] = "originalUrl must be a valid http(s) URL"
	}
	return errs
}

func (h *LinkHandler) List(w http.ResponseWriter, r *http.Request) {
	links, err := models.ListLinks(h.DB)
	if err != nil {
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if links == nil {
		links = []models.Link{}
	}
	for i := range links {
		links[i].FillTrackingURL(h.Cfg.BaseURL)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(links)
}

func (h *LinkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		jsonError(w, "id is required", http.StatusBadRequest)
		return
	}

	// Fetch first so the cache entry can be dropped
	link := &models.Link{ID: id}
	if err := models.GetLinkByID(h.DB, link); err == nil {
		h.Cache.Invalidate(link.ShortCode)
	}

	if err := models.DeleteLink(h.DB, id); err != nil {
		if err == sql.ErrNoRows {
			jsonError(w, "not found", http.StatusNotFound)
			return
		}
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func jsonFieldErrors(w http.ResponseWriter, errs map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(map[string]any{"errors": errs})
}
