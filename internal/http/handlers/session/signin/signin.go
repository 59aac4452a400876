// Package signin вход в учетную запись в рамках текущей сессии.
package signin

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/knowyourrights/internal/http/middlewarectx"
	"github.com/magabrotheeeer/knowyourrights/internal/http/response"
	"github.com/magabrotheeeer/knowyourrights/internal/lib/sl"
	"github.com/magabrotheeeer/knowyourrights/internal/models"
	"github.com/magabrotheeeer/knowyourrights/internal/services/session"
)

// Request учетные данные.
type Request struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session вход.
type Session interface {
	SignIn(ctx context.Context, creds models.Credentials) (session.View, error)
}

// Handler обработчик POST /session/signin.
type Handler struct {
	log *slog.Logger
}

// New создает обработчик.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Вход
// @Description Проверяет учетные данные и привязывает учетную запись к сессии.
// @Tags Session
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Учетные данные"
// @Success 200 {object} response.Response{data=session.View}
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 409 {object} response.ErrorResponse "Запрос вытеснен более новым"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /session/signin [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.signin"
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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	view, err := s.SignIn(r.Context(), models.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		log.Info("sign in rejected", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("sign in success")
	render.JSON(w, r, response.OKWithData(view))
}
