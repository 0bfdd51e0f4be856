package order_notifier_http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tumbleweedd/two_services_system/order_notifier/internal/config"
	notifierMiddleware "github.com/tumbleweedd/two_services_system/order_notifier/internal/delivery/http/middleware"
	"github.com/tumbleweedd/two_services_system/order_notifier/internal/delivery/http/webhook"
	"github.com/tumbleweedd/two_services_system/order_notifier/pkg/logger"
)

type Handler struct {
	log logger.Logger
	cfg config.HTTPConfig

	webhooks []*webhook.Handler
	metrics  http.Handler
}

// NewHandler mounts each webhook handler on its own route. metrics may be nil.
func NewHandler(log logger.Logger, cfg config.HTTPConfig, metrics http.Handler, webhooks ...*webhook.Handler) *Handler {
	return &Handler{
		log:      log,
		cfg:      cfg,
		webhooks: webhooks,
		metrics:  metrics,
	}
}

func (h *Handler) InitRoutes() http.Handler {
	mux := chi.NewRouter()

	mux.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	if h.metrics != nil {
		mux.Method(http.MethodGet, "/metrics", h.metrics)
	}

	mux.Group(func(r chi.Router) {
		r.Use(
			notifierMiddleware.RateLimit(h.cfg.RateLimitRPS, h.cfg.RateLimitBurst),
			middleware.RequestSize(h.cfg.MaxBodyBytes),
		)

		// every method is routed so each entry point answers 405 in its own shape
		for _, wh := range h.webhooks {
			r.Handle(wh.Route(), wh)
		}
	})

	return mux
}
