// Package knowyourrights собирает HTTP API сервиса: выбирает провайдеров,
// регистрирует маршруты и управляет жизненным циклом серверов.
package knowyourrights

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/knowyourrights/internal/http/handlers/guides/read"
	"github.com/magabrotheeeer/knowyourrights/internal/http/handlers/health"
	"github.com/magabrotheeeer/knowyourrights/internal/http/handlers/recording/control"
	"github.com/magabrotheeeer/knowyourrights/internal/http/handlers/recording/notes"
	recordingstatus "github.com/magabrotheeeer/knowyourrights/internal/http/handlers/recording/status"
	"github.com/magabrotheeeer/knowyourrights/internal/http/handlers/recording/summary"
	"github.com/magabrotheeeer/knowyourrights/internal/http/handlers/scripts/generate"
	"github.com/magabrotheeeer/knowyourrights/internal/http/handlers/session/create"
	"github.com/magabrotheeeer/knowyourrights/internal/http/handlers/session/get"
	"github.com/magabrotheeeer/knowyourrights/internal/http/handlers/session/jurisdiction"
	"github.com/magabrotheeeer/knowyourrights/internal/http/handlers/session/refresh"
	"github.com/magabrotheeeer/knowyourrights/internal/http/handlers/session/signin"
	"github.com/magabrotheeeer/knowyourrights/internal/http/handlers/session/signout"
	"github.com/magabrotheeeer/knowyourrights/internal/http/handlers/session/signup"
	"github.com/magabrotheeeer/knowyourrights/internal/http/handlers/session/upgrade"
	"github.com/magabrotheeeer/knowyourrights/internal/http/middlewarectx"
	"github.com/magabrotheeeer/knowyourrights/internal/lib/jwt"
	"github.com/magabrotheeeer/knowyourrights/internal/models"
	"github.com/magabrotheeeer/knowyourrights/internal/services/guide"
	"github.com/magabrotheeeer/knowyourrights/internal/services/session"
)

// RouteDeps зависимости обработчиков.
type RouteDeps struct {
	Sessions  *session.Manager
	Tokens    *jwt.MakerImpl
	Guides    *guide.Service
	Health    *health.Handler
	RateLimit float64
	RateBurst int
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, deps RouteDeps) {
	validate := validator.New()

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		middlewarectx.RateLimitMiddleware(logger, deps.RateLimit, deps.RateBurst),
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/session", create.New(logger, deps.Sessions, deps.Tokens).ServeHTTP)
		jurisdictions := jurisdiction.New(logger, validate)
		r.Get("/jurisdictions", jurisdictions.List)
		scripts := generate.New(logger, validate)
		r.Get("/scripts/scenarios", scripts.Scenarios)

		// Группа с токеном сессии
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(deps.Tokens, deps.Sessions, logger))

			r.Get("/session", get.New(logger).ServeHTTP)
			r.Post("/session/signin", signin.New(logger).ServeHTTP)
			r.Post("/session/signup", signup.New(logger, validate).ServeHTTP)
			r.Post("/session/signout", signout.New(logger).ServeHTTP)
			r.Post("/session/upgrade/{plan}", upgrade.New(logger).ServeHTTP)
			r.Post("/session/refresh", refresh.New(logger).ServeHTTP)
			r.Put("/session/jurisdiction", jurisdictions.ServeHTTP)

			guides := read.New(logger, deps.Guides)
			r.Get("/guides", guides.ServeHTTP)
			r.Get("/guides/{code}", guides.ServeHTTP)

			r.With(middlewarectx.FeatureGate(models.FeatureScripts, logger)).
				Post("/scripts", scripts.ServeHTTP)

			// start и карточка проверяют доступ в сессии, остановка и просмотр открыты всегда
			r.Route("/recording", func(r chi.Router) {
				r.Get("/", recordingstatus.New(logger).ServeHTTP)
				r.Put("/notes", notes.New(logger, validate).ServeHTTP)
				r.Post("/records/{id}/summary", summary.New(logger).ServeHTTP)
				r.Post("/{action}", control.New(logger).ServeHTTP)
			})
		})
	})

	r.Get("/health", deps.Health.ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
