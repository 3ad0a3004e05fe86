package httpapi

import (
	_ "embed"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"liker/internal/config"
)

//go:embed static/index.html
var indexPage []byte

// NewRouter wires every public endpoint. /api routes are rate limited per
// client address; forwarding headers only count when cfg.TrustProxy is set.
func NewRouter(h *Handler, gatherer prometheus.Gatherer, cfg config.APIConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if cfg.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors(cfg.CORSOrigin))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})

	r.Get("/", handleIndex)
	r.Get("/health", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Get("/uid={uid}&amount={amount:[0-9]+}", h.handleDirectLink)

	r.Route("/api", func(r chi.Router) {
		r.Use(rateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow.Std()))
		h.Register(r)
	})

	return r
}

func handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(indexPage)
}
