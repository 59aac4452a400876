// Package get возвращает состояние текущей сессии.
package get

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/knowyourrights/internal/http/middlewarectx"
	"github.com/magabrotheeeer/knowyourrights/internal/http/response"
	"github.com/magabrotheeeer/knowyourrights/internal/services/session"
)

// Session источник состояния.
type Session interface {
	Snapshot() session.View
}

// Handler обработчик GET /session.
type Handler struct {
	log *slog.Logger
}

// New создает обработчик.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Состояние сессии
// @Description Возвращает вход, уровень подписки, юрисдикцию и доступ к функциям.
// @Tags Session
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=session.View}
// @Failure 401 {object} response.ErrorResponse
// @Router /session [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.get"
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
	render.JSON(w, r, response.OKWithData(s.Snapshot()))
}
