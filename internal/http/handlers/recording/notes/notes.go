// Package notes заметки текущей записи.
package notes

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/knowyourrights/internal/http/middlewarectx"
	"github.com/magabrotheeeer/knowyourrights/internal/http/response"
	"github.com/magabrotheeeer/knowyourrights/internal/lib/sl"
	"github.com/magabrotheeeer/knowyourrights/internal/services/recording"
)

// Request новый текст заметок, заменяет прежний.
type Request struct {
	Notes string `json:"notes" validate:"max=5000"`
}

// Session заметки записи.
type Session interface {
	SetNotes(notes string) recording.Status
}

// Handler обработчик PUT /recording/notes.
type Handler struct {
	log      *slog.Logger
	validate *validator.Validate
}

// New создает обработчик.
func New(log *slog.Logger, validate *validator.Validate) *Handler {
	return &Handler{log: log, validate: validate}
}

// ServeHTTP godoc
// @Summary Заметки записи
// @Tags Recording
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Заметки"
// @Success 200 {object} response.Response{data=recording.Status}
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /recording/notes [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.recording.notes"
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
	if err := h.validate.Struct(req); err != nil {
		var validateErr validator.ValidationErrors
		if errors.As(err, &validateErr) {
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, response.ValidationError(validateErr))
			return
		}
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request"))
		return
	}

	render.JSON(w, r, response.OKWithData(s.SetNotes(req.Notes)))
}
