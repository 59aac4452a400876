// Package summary карточка завершенного взаимодействия.
package summary

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
)

// Response карточка записи.
type Response struct {
	RecordID string `json:"record_id"`
	Summary  string `json:"summary"`
}

// Session генерация карточки.
type Session interface {
	SummaryCard(ctx context.Context, id string) (string, error)
}

// Handler обработчик POST /recording/records/{id}/summary.
type Handler struct {
	log *slog.Logger
}

// New создает обработчик.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Карточка взаимодействия
// @Description Генерирует карточку для юридической справки по завершенной записи.
// @Tags Recording
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID записи"
// @Success 200 {object} response.Response{data=Response}
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /recording/records/{id}/summary [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.recording.summary"
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

	id := chi.URLParam(r, "id")
	card, err := s.SummaryCard(r.Context(), id)
	if err != nil {
		log.Info("summary card failed", slog.String("record_id", id), sl.Err(err))
		response.WriteError(w, r, err)
		return
	}
	render.JSON(w, r, response.OKWithData(Response{RecordID: id, Summary: card}))
}
