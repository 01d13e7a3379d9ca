package httpapi

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"lookbook/internal/http/handlers"
	"lookbook/internal/middleware"
)

// Options carries the router's cross-cutting dependencies.
type Options struct {
	Limiter *middleware.RateLimiter
	Geo     middleware.CountryLookup
	CORS    []string
}

func NewRouter(app *handlers.App, opts Options) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.Geo(opts.Geo))
	r.Use(middleware.Logger(app.Logger))
	if len(opts.CORS) > 0 {
		r.Use(middleware.CORS(opts.CORS))
	}

	r.Get("/v1/healthz", app.Health)

	r.Post("/v1/prompts/preview", app.PromptPreview)

	r.Route("/v1/exposes", func(r chi.Router) {
		r.Post("/", app.ExposesCreate)
		r.Get("/{id}", app.ExposeGet)
		r.Put("/{id}/selection", app.ExposeSelectVariant)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(opts.Limiter))
			r.Post("/{id}/generate", app.ExposesGenerate)
			r.Post("/{id}/slides/generate", app.SlidesGenerate)
		})
	})

	r.Route("/v1/shoots", func(r chi.Router) {
		r.Post("/", app.ShootsCreate)
		r.Get("/{id}", app.ShootGet)
		r.Get("/{id}/photos", app.ShootPhotos)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(opts.Limiter))
			r.Post("/{id}/generate", app.ShootsGenerate)
		})
	})

	r.Route("/v1/photos", func(r chi.Router) {
		r.Post("/{id}/approve", app.PhotoApprove)
		r.Post("/{id}/reject", app.PhotoReject)
	})

	r.Route("/v1/admin/settings", func(r chi.Router) {
		r.Get("/ai_provider", app.SettingGetProvider)
		r.Put("/ai_provider", app.SettingPutProvider)
	})

	return r
}
