// Package jurisdiction выбор юрисдикции сессии.
package jurisdiction

import (
	"context"
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
	"github.com/magabrotheeeer/knowyourrights/internal/models"
	"github.com/magabrotheeeer/knowyourrights/internal/services/session"
)

// Request код юрисдикции, например CA.
type Request struct {
	Jurisdiction string `json:"jurisdiction" validate:"required,max=8"`
}

// Session выбор юрисдикции.
type Session interface {
	SetJurisdiction(ctx context.Context, code string) (session.View, error)
}

// Handler обработчик PUT /session/jurisdiction и GET /jurisdictions.
type Handler struct {
	log      *slog.Logger
	validate *validator.Validate
}

// New создает обработчик.
func New(log *slog.Logger, validate *validator.Validate) *Handler {
	return &Handler{log: log, validate: validate}
}

// ServeHTTP godoc
// @Summary Выбор юрисдикции
// @Tags Session
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Код юрисдикции"
// @Success 200 {object} response.Response{data=session.View}
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse "Неизвестная юрисдикция"
// @Router /session/jurisdiction [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.jurisdiction"
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

	view, err := s.SetJurisdiction(r.Context(), req.Jurisdiction)
	if err != nil {
		log.Info("jurisdiction rejected", slog.String("jurisdiction", req.Jurisdiction), sl.Err(err))
		response.WriteError(w, r, err)
		return
	}
	render.JSON(w, r, response.OKWithData(view))
}

// List godoc
// @Summary Список юрисдикций
// @Tags Session
// @Produce json
// @Success 200 {object} response.Response{data=[]models.Jurisdiction}
// @Router /jurisdictions [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.OKWithData(models.Jurisdictions))
}
