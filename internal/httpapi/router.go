// Package httpapi exposes one recipe session over a JSON HTTP API.
package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hammamikhairi/ottorecipes/internal/domain"
	"github.com/hammamikhairi/ottorecipes/internal/logger"
	"github.com/hammamikhairi/ottorecipes/internal/session"
)

// Compile-time interface check.
var _ Session = (*session.Controller)(nil)

// Session is the controller surface the API drives.
type Session interface {
	State() session.State
	GenerateRecipe(ctx context.Context, prompt domain.Prompt) error
	PresentGenerated() bool
	ShowModalFromList(r domain.Recipe)
	HideModal()
	SaveRecipeInDB(ctx context.Context) error
	DeleteRecipe(ctx context.Context, id string) error
	Reload(ctx context.Context) error
}

// NewRouter builds the API routes over the given session.
func NewRouter(s Session, log *logger.Logger, opts ...Option) http.Handler {
	h := newHandler(s, log, opts...)

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		RequestLogger(log.Zerolog()),
	)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/healthz", h.health)
		r.Get("/state", h.state)
		r.Get("/feed", h.feed)
		r.Post("/generate", h.generate)
		r.Post("/reload", h.reload)
		r.Post("/save", h.save)

		r.Route("/preview", func(r chi.Router) {
			r.Post("/", h.presentGenerated)
			r.Delete("/", h.hidePreview)
		})

		r.Route("/recipes/{id}", func(r chi.Router) {
			r.Post("/preview", h.previewSaved)
			r.Delete("/", h.deleteRecipe)
		})
	})

	return r
}
