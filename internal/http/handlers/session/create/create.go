// Package create создает анонимную сессию и выдает ее токен.
package create

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/knowyourrights/internal/http/response"
	"github.com/magabrotheeeer/knowyourrights/internal/lib/sl"
	"github.com/magabrotheeeer/knowyourrights/internal/services/session"
)

// Manager создание сессий.
type Manager interface {
	Create(ctx context.Context) (*session.Store, error)
}

// TokenMaker выпуск токена сессии.
type TokenMaker interface {
	GenerateToken(sessionID string) (string, error)
}

// Response токен и начальное состояние сессии.
type Response struct {
	Token   string       `json:"token"`
	Session session.View `json:"session"`
}

// Handler обработчик POST /session.
type Handler struct {
	log      *slog.Logger
	sessions Manager
	tokens   TokenMaker
}

// New создает обработчик.
func New(log *slog.Logger, sessions Manager, tokens TokenMaker) *Handler {
	return &Handler{
		log:      log,
		sessions: sessions,
		tokens:   tokens,
	}
}

// ServeHTTP godoc
// @Summary Создание сессии
// @Description Создает анонимную сессию и возвращает bearer-токен для последующих запросов.
// @Tags Session
// @Produce json
// @Success 201 {object} response.Response{data=Response}
// @Failure 500 {object} response.ErrorResponse
// @Router /session [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	store, err := h.sessions.Create(r.Context())
	if err != nil {
		log.Error("failed to create session", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to create session"))
		return
	}

	token, err := h.tokens.GenerateToken(store.ID())
	if err != nil {
		log.Error("failed to generate token", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to create session"))
		return
	}

	log.Info("session created", sl.Session(store.ID()))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithData(Response{Token: token, Session: store.Snapshot()}))
}
