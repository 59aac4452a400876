// Package generate генерация фразы для типовой ситуации.
package generate

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
	"github.com/magabrotheeeer/knowyourrights/internal/services/script"
	"github.com/magabrotheeeer/knowyourrights/internal/services/session"
)

// Request ситуация и необязательные язык и подробности.
type Request struct {
	Scenario string `json:"scenario" validate:"required,max=64"`
	Language string `json:"language,omitempty"`
	Context  string `json:"context,omitempty" validate:"max=500"`
}

// Response сгенерированная фраза.
type Response struct {
	Scenario     string          `json:"scenario"`
	Jurisdiction string          `json:"jurisdiction"`
	Language     models.Language `json:"language"`
	Script       string          `json:"script"`
}

// Session генерация в контексте сессии.
type Session interface {
	GenerateScript(ctx context.Context, req session.ScriptRequest) (string, error)
	Jurisdiction() string
	Language() models.Language
}

// Handler обработчик POST /scripts.
type Handler struct {
	log      *slog.Logger
	validate *validator.Validate
}

// New создает обработчик.
func New(log *slog.Logger, validate *validator.Validate) *Handler {
	return &Handler{log: log, validate: validate}
}

// ServeHTTP godoc
// @Summary Фраза для ситуации
// @Description Возвращает фразу для выбранной юрисдикции. При недоступности генератора используется шаблон, для неизвестной ситуации возвращается "Script not available".
// @Tags Scripts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Ситуация"
// @Success 200 {object} response.Response{data=Response}
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse "Требуется подписка"
// @Failure 409 {object} response.ErrorResponse "Запрос вытеснен более новым"
// @Failure 422 {object} response.ErrorResponse
// @Router /scripts [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.scripts.generate"
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
			log.Error("invalid request", sl.Err(err))
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, response.ValidationError(validateErr))
			return
		}
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request"))
		return
	}

	language := s.Language()
	if req.Language != "" {
		language = models.ParseLanguage(req.Language)
	}

	text, err := s.GenerateScript(r.Context(), session.ScriptRequest{
		Scenario: req.Scenario,
		Language: language,
		Context:  req.Context,
	})
	if err != nil {
		log.Info("script rejected", slog.String("scenario", req.Scenario), sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	render.JSON(w, r, response.OKWithData(Response{
		Scenario:     req.Scenario,
		Jurisdiction: s.Jurisdiction(),
		Language:     language,
		Script:       text,
	}))
}

// Scenarios godoc
// @Summary Список ситуаций
// @Tags Scripts
// @Produce json
// @Success 200 {object} response.Response{data=[]string}
// @Router /scripts/scenarios [get]
func (h *Handler) Scenarios(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.OKWithData(script.Scenarios))
}
