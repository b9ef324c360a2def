package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/visitor"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/config"
	appCtx "github.com/baechuer/real-time-ressys/services/listing-service/internal/pkg/context"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/transport/http/handlers"
	mw "github.com/baechuer/real-time-ressys/services/listing-service/internal/transport/http/middleware"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/transport/http/response"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/transport/http/web"
)

type Deps struct {
	Hub      *visitor.Hub
	Previews handlers.PreviewSource
	Checks   map[string]handlers.Check
}

func New(d Deps, cfg *config.Config) http.Handler {
	page := handlers.NewPageHandler()
	sess := handlers.NewSessionHandler(cfg.CookieSecure, cfg.AccessTokenTTL)
	events := handlers.NewEventsHandler()
	edit := handlers.NewEditHandler(cfg.MaxUploadBytes)
	previews := handlers.NewPreviewsHandler(d.Previews)
	z := handlers.NewHealthHandler(d.Checks)
	visitors := mw.NewVisitors(d.Hub, cfg.CookieSecure)

	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.SecurityHeaders(cfg.S3PublicBaseURL))
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(mw.AccessLog)
	r.Use(mw.Metrics)

	r.Get("/healthz", z.Healthz)
	r.Get("/readyz", z.Readyz)
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/static/*", http.StripPrefix("/static/", web.Static()))
	r.Get("/previews/{handle}", previews.Get)

	r.Group(func(r chi.Router) {
		if cfg.RLEnabled {
			r.Use(httprate.LimitByIP(cfg.RLLimit, cfg.RLWindow))
		}
		r.Use(visitors.Attach)

		r.Get("/", page.Index)

		r.Route("/api", func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			r.Get("/session", sess.Get)
			r.With(loginLimit(cfg)).Post("/session/login", sess.Login)
			r.Post("/session/logout", sess.Logout)

			r.Get("/events", events.List)

			r.Route("/edit", func(r chi.Router) {
				r.Use(mw.RequireAdmin)
				r.Get("/", edit.Get)
				r.Post("/", edit.Open)
				r.Patch("/", edit.Update)
				r.Delete("/", edit.Cancel)
				r.Post("/image", edit.SelectImage)
				r.Patch("/crop", edit.AdjustCrop)
				r.Post("/crop/confirm", edit.ConfirmCrop)
				r.Delete("/crop", edit.CancelCrop)
				r.Post("/save", edit.Save)
			})
		})
	})

	return r
}

// loginLimit is stricter than the global limit and keyed by client IP and endpoint.
func loginLimit(cfg *config.Config) func(http.Handler) http.Handler {
	if !cfg.RLEnabled || cfg.RLLoginLimit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		cfg.RLLoginLimit,
		cfg.RLWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			mw.LoginAttemptsTotal.WithLabelValues("rate_limited").Inc()
			response.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many login attempts", nil,
				appCtx.GetRequestID(r.Context()))
		}),
	)
}
