package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/lexicon/internal/apperr"
	"github.com/starford/lexicon/internal/lexservice"
)

const maxSnapshotBytes = 32 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *lexservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *lexservice.Service) *Handler {
	return &Handler{svc: svc}
}

// Data handles GET /api/data.
//
//	@Summary		Build the concept network of the current snapshot
//	@Tags			network
//	@Produce		json
//	@Success		200	{object}	Payload
//	@Failure		500	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/data [get]
func (h *Handler) Data(w http.ResponseWriter, r *http.Request) {
	payload, err := h.svc.Network(r.Context())
	if err != nil {
		writeReadError(w, "build network", err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

// Concept handles GET /api/concepts/{id}.
//
//	@Summary		Get one concept with its words and edges
//	@Tags			network
//	@Produce		json
//	@Param			id	path		string	true	"Concept id"
//	@Success		200	{object}	ConceptDetail
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/concepts/{id} [get]
func (h *Handler) Concept(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if decoded, err := url.PathUnescape(id); err == nil {
		id = decoded
	}
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("id is required"))
		return
	}
	detail, err := h.svc.Concept(r.Context(), id)
	if err != nil {
		writeReadError(w, "get concept", err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// GetSnapshot handles GET /api/snapshot.
//
//	@Summary		Describe the stored snapshot file
//	@Tags			snapshot
//	@Produce		json
//	@Success		200	{object}	SnapshotMeta
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/snapshot [get]
func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	meta, err := h.svc.Meta(r.Context())
	if err != nil {
		writeReadError(w, "stat snapshot", err)
		return
	}
	w.Header().Set("ETag", strconv.Quote(meta.Checksum))
	writeJSON(w, http.StatusOK, meta)
}

// PutSnapshot handles PUT /api/snapshot.
//
//	@Summary		Replace the stored snapshot
//	@Tags			snapshot
//	@Accept			json
//	@Produce		json
//	@Param			If-Match	header	string	false	"SHA-256 checksum of the snapshot being replaced"
//	@Success		200		{object}	SnapshotMeta
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/snapshot [put]
func (h *Handler) PutSnapshot(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSnapshotBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}

	meta, err := h.svc.Ingest(r.Context(), body, r.Header.Get("If-Match"))
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrConflict):
			writeJSON(w, http.StatusConflict, errorBody("checksum mismatch"))
		case errors.Is(err, apperr.ErrMalformedSnapshot), errors.Is(err, apperr.ErrSourceUnavailable):
			slog.Warn("snapshot upload rejected", slog.String("error", err.Error()))
			writeJSON(w, http.StatusBadRequest, errorBody("invalid snapshot"))
		default:
			slog.Error("store snapshot failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	w.Header().Set("ETag", strconv.Quote(meta.Checksum))
	writeJSON(w, http.StatusOK, meta)
}

// Search handles GET /api/search.
//
//	@Summary		Search the living vocabulary
//	@Tags			archive
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// History handles GET /api/history.
//
//	@Summary		List archived snapshots, newest first
//	@Tags			archive
//	@Produce		json
//	@Param			limit	query		int	false	"Max rows"
//	@Success		200		{object}	HistoryResponse
//	@Security		BearerAuth
//	@Router			/history [get]
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rows, err := h.svc.History(r.Context(), limit)
	if err != nil {
		slog.Error("history failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, HistoryResponse{Snapshots: rows})
}
