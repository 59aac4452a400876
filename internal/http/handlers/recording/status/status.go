// Package status состояние записи и история взаимодействий.
package status

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/knowyourrights/internal/http/middlewarectx"
	"github.com/magabrotheeeer/knowyourrights/internal/http/response"
	"github.com/magabrotheeeer/knowyourrights/internal/models"
	"github.com/magabrotheeeer/knowyourrights/internal/services/recording"
)

// Response таймер и завершенные записи, новые первыми.
type Response struct {
	Status  recording.Status         `json:"status"`
	Records []models.RecordingRecord `json:"records"`
}

// Session источник состояния записи.
type Session interface {
	RecordingStatus() recording.Status
	History(ctx context.Context) []models.RecordingRecord
}

// Handler обработчик GET /recording.
type Handler struct {
	log *slog.Logger
}

// New создает обработчик.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Состояние записи
// @Tags Recording
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=Response}
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Router /recording [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.recording.status"
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

	records := s.History(r.Context())
	if records == nil {
		records = []models.RecordingRecord{}
	}
	render.JSON(w, r, response.OKWithData(Response{Status: s.RecordingStatus(), Records: records}))
}
