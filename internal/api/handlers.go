package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/dyluth/quill/internal/clock"
	"github.com/dyluth/quill/pkg/posts"
)

// Pinger is implemented by stores that can report backend connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// handlers holds the dependencies shared by every route.
type handlers struct {
	store     posts.Store
	logger    *zap.Logger
	clock     clock.Clock
	startedAt time.Time
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	now := h.clock.Now()
	resp := HealthResponse{
		Status:    "ok",
		Uptime:    now.Sub(h.startedAt).Seconds(),
		Timestamp: now.UTC().Format(time.RFC3339),
	}

	if p, ok := h.store.(Pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			h.logger.Warn("store ping failed", zap.Error(err))
			resp.Status = "unavailable"
			writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) listPosts(w http.ResponseWriter, r *http.Request) {
	all, err := h.store.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if all == nil {
		all = []posts.Post{}
	}
	writeJSON(w, http.StatusOK, all)
}

func (h *handlers) getPost(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handlers) createPost(w http.ResponseWriter, r *http.Request) {
	in, err := decodeInput(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	p, err := h.store.Create(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.logger.Info("post created", zap.String("post_id", p.ID))
	writeJSON(w, http.StatusCreated, p)
}

func (h *handlers) updatePost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	in, err := decodeInput(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	p, err := h.store.Update(r.Context(), id, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handlers) patchPost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	patch, err := decodePatch(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	p, err := h.store.Patch(r.Context(), id, patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handlers) deletePost(w http.ResponseWriter, r *http.Request) {
	removed, err := h.store.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.logger.Info("post deleted", zap.String("post_id", removed.ID))
	writeJSON(w, http.StatusOK, DeleteResponse{OK: true, Removed: removed})
}

// writeError maps store and decoding errors onto status codes.
// Only 500s are logged; their detail never reaches the client.
func (h *handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		badBody *errBadBody
		invalid *posts.ValidationError
	)
	switch {
	case errors.As(err, &badBody):
		writeJSON(w, http.StatusBadRequest, APIError{Error: badBody.msg})
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusBadRequest, APIError{Error: invalid.Message})
	case posts.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, APIError{Error: posts.ErrNotFound.Error()})
	default:
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, APIError{Error: MsgInternal})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(v)
}
