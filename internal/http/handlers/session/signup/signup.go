// Package signup регистрация учетной записи в рамках текущей сессии.
package signup

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

// Request данные регистрации.
type Request struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ConfirmPassword   string `json:"confirm_password"`
	PreferredLanguage string `json:"preferred_language,omitempty" validate:"omitempty,oneof=en es"`
}

// Session регистрация.
type Session interface {
	SignUp(ctx context.Context, creds models.Credentials, profile models.Profile) (session.View, error)
}

// Handler обработчик POST /session/signup.
type Handler struct {
	log      *slog.Logger
	validate *validator.Validate
}

// New создает обработчик.
func New(log *slog.Logger, validate *validator.Validate) *Handler {
	return &Handler{log: log, validate: validate}
}

// ServeHTTP godoc
// @Summary Регистрация
// @Description Создает учетную запись на бесплатном уровне и выполняет вход.
// @Tags Session
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Данные регистрации"
// @Success 201 {object} response.Response{data=session.View}
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Учетная запись уже существует"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /session/signup [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.signup"
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
		log.Error("failed to validate request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request"))
		return
	}

	creds := models.Credentials{
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	}
	profile := models.Profile{PreferredLanguage: models.ParseLanguage(req.PreferredLanguage)}

	view, err := s.SignUp(r.Context(), creds, profile)
	if err != nil {
		log.Info("sign up rejected", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("sign up success")
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithData(view))
}
