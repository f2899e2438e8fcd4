package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"

	"github.com/iamdashante1/mb/internal/auth"
	"github.com/iamdashante1/mb/internal/gallery"
	"github.com/iamdashante1/mb/internal/metrics"
	"github.com/iamdashante1/mb/models"
)

type RouterConfig struct {
	Submissions *Submissions
	Gallery     *gallery.Gallery
	Admins      *auth.Admins
	Logger      *zap.Logger
}

func NewRouter(c RouterConfig) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  zap.NewStdLog(c.Logger.Named("access")),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Route("/api", func(r chi.Router) {
		r.Get("/messages", c.Submissions.List(models.KindRSVP))
		r.Post("/messages", c.Submissions.Submit(models.KindRSVP))
		r.Get("/tributes", c.Submissions.List(models.KindTribute))
		r.Post("/tributes", c.Submissions.Submit(models.KindTribute))

		if c.Gallery != nil {
			r.Get("/gallery", GalleryHandler(c.Gallery, c.Logger))
		}

		r.Route("/admin", func(r chi.Router) {
			r.Use(httprate.LimitByIP(60, 1*time.Minute))
			r.Use(c.Admins.Middleware)
			r.Get("/data", c.Submissions.AdminData)
		})
	})

	// OAuth sign-in for the family dashboard
	r.Group(func(r chi.Router) {
		r.Use(httprate.Limit(
			20,
			1*time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint),
		))
		r.Get("/auth/{provider}", c.Admins.BeginHandler)
		r.Get("/auth/{provider}/callback", c.Admins.CallbackHandler)
		r.Post("/logout/{provider}", c.Admins.LogoutHandler)
	})

	if c.Gallery != nil {
		r.Handle("/assets/*", http.StripPrefix("/assets", AssetsHandler(c.Gallery)))
	}

	r.Handle("/metrics", metrics.Handler())

	return r
}
