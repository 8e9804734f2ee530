package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"bobox/internal/api"
	"bobox/internal/metrics"
	"bobox/internal/unit"
	"bobox/pkg/config"
)

type Dependencies struct {
	Cfg    config.Config
	Log    logrus.FieldLogger
	Store  *unit.Store
	Engine *unit.Engine
	// Events and Metrics are optional.
	Events  unit.EventSink
	Metrics *metrics.Metrics
}

func NewRouter(deps Dependencies) http.Handler {
	log := deps.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(api.RequestLogger(log))
	// Outside Recoverer so recovered panics are counted as 500s.
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}
	r.Use(api.Recoverer)
	r.Use(api.SecurityHeaders)
	r.Use(api.CORSMiddleware(api.CORSOptions{
		AllowedOrigins:   deps.Cfg.AllowedOrigins,
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAgeSeconds:    600,
	}))

	r.NotFound(api.NotFound)
	r.MethodNotAllowed(api.MethodNotAllowed)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.WriteData(w, http.StatusOK, map[string]any{
			"timestamp": time.Now().UTC(),
			"units":     deps.Store.Len(),
		}, "Bobox Unit Management API is running")
	})
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	unitHandlers := unit.Handlers{
		Store:  deps.Store,
		Engine: deps.Engine,
		Events: deps.Events,
	}
	if deps.Metrics != nil {
		unitHandlers.Metrics = deps.Metrics
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/statuses", unitHandlers.Statuses)
		r.Route("/units", unitHandlers.Routes)
	})

	return r
}
