package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/knowyourrights/internal/http/response"
	"github.com/magabrotheeeer/knowyourrights/internal/lib/sl"
	"github.com/magabrotheeeer/knowyourrights/internal/models"
)

// Gatekeeper проверка доступа к функции.
type Gatekeeper interface {
	Require(feature models.Feature) error
}

// FeatureGate пропускает запрос, только если функция доступна сессии. Иначе 403.
func FeatureGate(feature models.Feature, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.FeatureGate"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("feature", string(feature)),
			)

			gate, ok := SessionFrom[Gatekeeper](r.Context())
			if !ok {
				log.Error("session missing in context")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("session required"))
				return
			}
			if err := gate.Require(feature); err != nil {
				log.Info("feature locked", sl.Err(err))
				response.WriteError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
