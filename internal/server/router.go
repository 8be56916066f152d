package server

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"reeldiary-server/internal/deps"
	"reeldiary-server/internal/routes"

	pkghttpx "reeldiary-server/pkg/httpx"
)

// Options tune the router; zero values take defaults.
type Options struct {
	CORSAllowedOrigins []string
	// TriggerRequests per TriggerWindow per client IP on the job trigger.
	TriggerRequests int
	TriggerWindow   time.Duration
}

type Server struct {
	deps.ServerDeps
	opts Options
}

func New(d deps.ServerDeps, opts Options) *Server {
	if d.Name == "" {
		d.Name = "reeldiary-server"
	}
	if d.StartedAt.IsZero() {
		d.StartedAt = time.Now()
	}
	if opts.TriggerRequests <= 0 {
		opts.TriggerRequests = 5
	}
	if opts.TriggerWindow <= 0 {
		opts.TriggerWindow = time.Minute
	}
	return &Server{ServerDeps: d, opts: opts}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	sd := s.ServerDeps

	triggerLimit := httprate.Limit(
		s.opts.TriggerRequests,
		s.opts.TriggerWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			pkghttpx.WriteError(w, r, pkghttpx.TooManyRequests("too many trigger requests", nil))
		}),
	)

	// Endpoints declared here for easy scanning
	mux.HandleFunc("GET /health", routes.Health(sd))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("POST /jobs/recommendations", triggerLimit(routes.TriggerRecommendations(sd)))
	mux.HandleFunc("GET /users/{id}/recommendations", routes.UserRecommendations(sd))

	return withCorrelationID(withLogging(withSecurityHeaders(withCORS(s.opts.CORSAllowedOrigins)(mux))))
}
