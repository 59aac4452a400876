// Package upgrade оформление пробного периода или платной подписки.
package upgrade

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/knowyourrights/internal/http/middlewarectx"
	"github.com/magabrotheeeer/knowyourrights/internal/http/response"
	"github.com/magabrotheeeer/knowyourrights/internal/lib/sl"
	"github.com/magabrotheeeer/knowyourrights/internal/models"
	"github.com/magabrotheeeer/knowyourrights/internal/services/session"
)

// Response состояние сессии и ссылка на оплату.
// CheckoutURL пуст, если оформление не начиналось.
type Response struct {
	Session     session.View `json:"session"`
	CheckoutURL string       `json:"checkout_url,omitempty"`
}

// Session оформление подписки.
type Session interface {
	BeginUpgrade(ctx context.Context, plan models.Plan) (session.View, string, error)
}

// Handler обработчик POST /session/upgrade/{plan}.
type Handler struct {
	log *slog.Logger
}

// New создает обработчик.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Оформление подписки
// @Description Создает страницу оплаты плана trial или premium. Уровень подписки меняется только после подтверждения провайдером.
// @Tags Session
// @Produce json
// @Security BearerAuth
// @Param plan path string true "План" Enums(trial, premium)
// @Success 200 {object} response.Response{data=Response}
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse "Неизвестный план"
// @Failure 409 {object} response.ErrorResponse "Оформление уже выполняется"
// @Failure 502 {object} response.ErrorResponse "Платежный провайдер недоступен"
// @Router /session/upgrade/{plan} [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.upgrade"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	s, ok := middlewarectx.SessionFrom[Session](r.Context())
	if !ok {
		log.Error("session missing in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("session required"))
		return
	}

	plan, ok := models.ParsePlan(chi.URLParam(r, "plan"))
	if !ok {
		log.Info("unknown plan", slog.String("plan", chi.URLParam(r, "plan")))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("unknown plan"))
		return
	}

	view, checkoutURL, err := s.BeginUpgrade(r.Context(), plan)
	if err != nil {
		log.Error("failed to begin upgrade", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("upgrade started", slog.String("plan", string(plan)), slog.Bool("checkout", checkoutURL != ""))
	render.JSON(w, r, response.OKWithData(Response{Session: view, CheckoutURL: checkoutURL}))
}
