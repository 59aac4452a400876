// Package control управление таймером записи: start, pause, resume, stop.
package control

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
	"github.com/magabrotheeeer/knowyourrights/internal/services/recording"
)

// Response состояние таймера. Record заполняется только при stop.
type Response struct {
	Status recording.Status        `json:"status"`
	Record *models.RecordingRecord `json:"record,omitempty"`
}

// Session управление записью.
type Session interface {
	StartRecording() (recording.Status, error)
	PauseRecording() recording.Status
	ResumeRecording() recording.Status
	StopRecording(ctx context.Context) (models.RecordingRecord, bool)
	RecordingStatus() recording.Status
}

// Handler обработчик POST /recording/{action}.
type Handler struct {
	log *slog.Logger
}

// New создает обработчик.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Управление записью
// @Description Недопустимые для текущего состояния действия ничего не меняют. stop без активной записи не создает запись.
// @Tags Recording
// @Produce json
// @Security BearerAuth
// @Param action path string true "Действие" Enums(start, pause, resume, stop)
// @Success 200 {object} response.Response{data=Response}
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse "Неизвестное действие"
// @Router /recording/{action} [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.recording.control"
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

	action := chi.URLParam(r, "action")
	var resp Response
	switch action {
	case "start":
		status, err := s.StartRecording()
		if err != nil {
			log.Info("recording start denied", sl.Err(err))
			response.WriteError(w, r, err)
			return
		}
		resp.Status = status
	case "pause":
		resp.Status = s.PauseRecording()
	case "resume":
		resp.Status = s.ResumeRecording()
	case "stop":
		if rec, ok := s.StopRecording(r.Context()); ok {
			resp.Record = &rec
			log.Info("recording stopped", slog.String("record_id", rec.ID), slog.Int("duration", rec.Duration))
		}
		resp.Status = s.RecordingStatus()
	default:
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("unknown action"))
		return
	}

	render.JSON(w, r, response.OKWithData(resp))
}
