package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jaminalder/tictactoe-history/internal/app"
	"go.uber.org/zap"
)

// Options tune the HTTP layer. Zero values select defaults.
type Options struct {
	HeartbeatInterval time.Duration
}

// NewServer wires routes, installs the broadcast renderer on s, and returns
// an http.Handler.
func NewServer(s *app.Service, logger *zap.Logger, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.HeartbeatInterval <= 0 {
		opts.HeartbeatInterval = 15 * time.Second
	}
	h := &handlers{
		svc:       s,
		tpl:       loadTemplates(),
		log:       logger.With(zap.String("component", "web")),
		heartbeat: opts.HeartbeatInterval,
	}
	s.SetRenderer(h.broadcastFragment)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(h.log))
	r.Use(middleware.Recoverer)

	r.Get("/", h.index)
	r.Get("/healthz", h.healthz)
	r.Post("/game", h.create)
	r.Route("/game/{id}", func(r chi.Router) {
		r.Get("/", h.view)
		r.Post("/play", h.play)
		r.Post("/jump", h.jump)
		r.Post("/sort", h.sort)
		r.Get("/events", h.events)
	})
	return r
}
