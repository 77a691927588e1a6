package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/dyluth/quill/internal/clock"
	"github.com/dyluth/quill/pkg/posts"
)

// RouterOptions configures NewRouter. Zero values are usable.
type RouterOptions struct {
	Logger *zap.Logger
	Clock  clock.Clock
}

// NewRouter constructs the API HTTP router around store.
func NewRouter(store posts.Store, opts RouterOptions) http.Handler {
	if store == nil {
		panic("api.NewRouter: store is nil")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}

	h := &handlers{
		store:     store,
		logger:    opts.Logger,
		clock:     opts.Clock,
		startedAt: opts.Clock.Now(),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(opts.Logger))
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, APIError{Error: MsgNotFound})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, APIError{Error: MsgMethodNotAllowed})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.health)
		r.Route("/posts", func(r chi.Router) {
			r.Get("/", h.listPosts)
			r.Post("/", h.createPost)
			r.Get("/{id}", h.getPost)
			r.Put("/{id}", h.updatePost)
			r.Patch("/{id}", h.patchPost)
			r.Delete("/{id}", h.deletePost)
		})
	})

	return r
}
