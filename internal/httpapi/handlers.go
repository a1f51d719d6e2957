package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hammamikhairi/ottorecipes/internal/domain"
	"github.com/hammamikhairi/ottorecipes/internal/logger"
	"github.com/hammamikhairi/ottorecipes/internal/recipe"
	"github.com/hammamikhairi/ottorecipes/internal/session"
)

// Option configures the API.
type Option func(*handler)

// WithRecentLimit sets the default size of the recent row in /v1/feed.
func WithRecentLimit(n int) Option {
	return func(h *handler) { h.recentLimit = n }
}

type handler struct {
	s           Session
	log         *logger.Logger
	recentLimit int
}

func newHandler(s Session, log *logger.Logger, opts ...Option) *handler {
	h := &handler{s: s, log: log, recentLimit: 5}
	for _, o := range opts {
		o(h)
	}
	return h
}

// ── Wire types ───────────────────────────────────────────────────

type recipeJSON struct {
	ID           string     `json:"id,omitempty"`
	Title        string     `json:"title"`
	Category     string     `json:"category"`
	Minutes      int        `json:"minutes"`
	Stars        float64    `json:"stars"`
	Ingredients  []string   `json:"ingredients"`
	Instructions []string   `json:"instructions"`
	ImageURL     string     `json:"image_url,omitempty"`
	Prompt       string     `json:"prompt,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
}

type stateJSON struct {
	Recipes   []recipeJSON `json:"recipes"`
	Generated *recipeJSON  `json:"generated"`
	Loading   bool         `json:"loading"`
	ShowSheet bool         `json:"show_sheet"`
	Loaded    bool         `json:"loaded"`
	LastError string       `json:"last_error,omitempty"`
}

type ideaJSON struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Prompt string `json:"prompt"`
}

type feedJSON struct {
	Recent []recipeJSON `json:"recent"`
	All    []recipeJSON `json:"all"`
	Ideas  []ideaJSON   `json:"ideas"`
	Active string       `json:"active,omitempty"`
}

type generateReq struct {
	Prompt string `json:"prompt"`
}

type errorJSON struct {
	Error string `json:"error"`
}

func toRecipeJSON(r domain.Recipe) recipeJSON {
	out := recipeJSON{
		ID:           r.ID,
		Title:        r.Title,
		Category:     r.Category,
		Minutes:      r.Minutes,
		Stars:        r.Stars,
		Ingredients:  nonNil(r.Ingredients),
		Instructions: nonNil(r.Instructions),
		ImageURL:     r.ImageURL,
		Prompt:       r.Prompt,
	}
	if !r.CreatedAt.IsZero() {
		t := r.CreatedAt
		out.CreatedAt = &t
	}
	return out
}

func toRecipesJSON(rs []domain.Recipe) []recipeJSON {
	out := make([]recipeJSON, 0, len(rs))
	for _, r := range rs {
		out = append(out, toRecipeJSON(r))
	}
	return out
}

func toStateJSON(st session.State) stateJSON {
	out := stateJSON{
		Recipes:   toRecipesJSON(st.Recipes),
		Loading:   st.Loading,
		ShowSheet: st.ShowSheet,
		Loaded:    st.Loaded,
	}
	if st.Generated != nil {
		g := toRecipeJSON(*st.Generated)
		out.Generated = &g
	}
	if st.LastError != nil {
		out.LastError = st.LastError.Error()
	}
	return out
}

func nonNil(lines []string) []string {
	if lines == nil {
		return []string{}
	}
	return lines
}

// ── Handlers ─────────────────────────────────────────────────────

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"loaded": h.s.State().Loaded,
	})
}

func (h *handler) state(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toStateJSON(h.s.State()))
}

func (h *handler) feed(w http.ResponseWriter, r *http.Request) {
	limit := h.recentLimit
	if v := r.URL.Query().Get("recent"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "recent must be a non-negative integer")
			return
		}
		limit = n
	}

	var idea recipe.Idea
	if name := r.URL.Query().Get("idea"); name != "" {
		var ok bool
		if idea, ok = recipe.LookupIdea(name); !ok {
			writeError(w, http.StatusBadRequest, "unknown idea "+strconv.Quote(name))
			return
		}
	}

	f := recipe.BuildFeed(h.s.State().Recipes, limit, idea)
	out := feedJSON{
		Recent: toRecipesJSON(f.Recent),
		All:    toRecipesJSON(f.All),
		Active: idea.Key,
	}
	for _, i := range recipe.QuickIdeas() {
		out.Ideas = append(out.Ideas, ideaJSON{Key: i.Key, Label: i.Label, Prompt: i.Prompt})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) generate(w http.ResponseWriter, r *http.Request) {
	var req generateReq
	if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := h.s.GenerateRecipe(r.Context(), domain.NewPrompt(req.Prompt)); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStateJSON(h.s.State()))
}

func (h *handler) presentGenerated(w http.ResponseWriter, r *http.Request) {
	if !h.s.PresentGenerated() {
		writeError(w, http.StatusConflict, "no generated recipe to show")
		return
	}
	writeJSON(w, http.StatusOK, toStateJSON(h.s.State()))
}

func (h *handler) previewSaved(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	for _, rec := range h.s.State().Recipes {
		if rec.ID == id {
			h.s.ShowModalFromList(rec)
			writeJSON(w, http.StatusOK, toStateJSON(h.s.State()))
			return
		}
	}
	writeError(w, http.StatusNotFound, "recipe not found")
}

func (h *handler) hidePreview(w http.ResponseWriter, r *http.Request) {
	h.s.HideModal()
	writeJSON(w, http.StatusOK, toStateJSON(h.s.State()))
}

func (h *handler) save(w http.ResponseWriter, r *http.Request) {
	if err := h.s.SaveRecipeInDB(r.Context()); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStateJSON(h.s.State()))
}

func (h *handler) deleteRecipe(w http.ResponseWriter, r *http.Request) {
	if err := h.s.DeleteRecipe(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) reload(w http.ResponseWriter, r *http.Request) {
	if err := h.s.Reload(r.Context()); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStateJSON(h.s.State()))
}

// ── Helpers ──────────────────────────────────────────────────────

// statusFor maps controller errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, domain.ErrClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrGeneration):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrPersistence):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *handler) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Warn("api: %v", err)
	}
	writeError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorJSON{Error: msg})
}
