// Package signout выход из учетной записи.
package signout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/knowyourrights/internal/http/middlewarectx"
	"github.com/magabrotheeeer/knowyourrights/internal/http/response"
	"github.com/magabrotheeeer/knowyourrights/internal/services/session"
)

// Session выход.
type Session interface {
	SignOut(ctx context.Context) session.View
}

// Handler обработчик POST /session/signout.
type Handler struct {
	log *slog.Logger
}

// New создает обработчик.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Выход
// @Description Сбрасывает учетную запись и уровень подписки, выбранная юрисдикция сохраняется. Повторный вызов безопасен.
// @Tags Session
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=session.View}
// @Failure 401 {object} response.ErrorResponse
// @Router /session/signout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.signout"
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

	view := s.SignOut(r.Context())
	log.Info("signed out")
	render.JSON(w, r, response.OKWithData(view))
}
