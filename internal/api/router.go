package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/lexicon/internal/lexservice"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	// AuthEnabled controls whether Bearer token auth is enforced.
	AuthEnabled bool
	Token       string
	// CORSOrigins lists origins allowed to call the API from a browser.
	CORSOrigins []string
	// UploadsPerMinute limits PUT /snapshot; zero disables the limit.
	UploadsPerMinute int
	// Events, if non-nil, is mounted at GET /events inside the auth group.
	Events http.Handler
}

// NewRouter creates a chi router with all API routes mounted.
func NewRouter(svc *lexservice.Service, opts RouterOptions) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	if len(opts.CORSOrigins) > 0 {
		r.Use(CORSMiddleware(opts.CORSOrigins))
	}
	r.Use(AuthMiddleware(opts.AuthEnabled, opts.Token))

	// Network.
	r.Get("/data", h.Data)
	r.Get("/concepts/{id}", h.Concept)

	// Snapshot file.
	r.Get("/snapshot", h.GetSnapshot)
	r.Group(func(r chi.Router) {
		if opts.UploadsPerMinute > 0 {
			r.Use(RateLimitMiddleware(opts.UploadsPerMinute))
		}
		r.Put("/snapshot", h.PutSnapshot)
	})

	// Archive.
	r.Get("/search", h.Search)
	r.Get("/history", h.History)

	if opts.Events != nil {
		r.Get("/events", opts.Events.ServeHTTP)
	}

	return r
}
