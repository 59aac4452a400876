// Package response формирует унифицированные JSON-ответы HTTP-обработчиков
// и сопоставляет доменные ошибки с HTTP-статусами.
package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/knowyourrights/internal/models"
)

// Response стандартная структура JSON-ответа.
// Fields заполняется при ошибках валидации формы.
type Response struct {
	Status string            `json:"status"`
	Error  string            `json:"error,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
	Data   any               `json:"data,omitempty"`
}

// ErrorResponse структура ошибки для swagger-документации.
type ErrorResponse struct {
	Status string            `json:"status" example:"Error"`
	Error  string            `json:"error" example:"invalid request body"`
	Fields map[string]string `json:"fields,omitempty"`
}

const (
	// StatusOK значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// OKWithData возвращает успешный Response с данными.
func OKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает ответ с ошибкой msg.
func Error(msg string) ErrorResponse {
	return ErrorResponse{
		Status: StatusError,
		Error:  msg,
	}
}

// ValidationFields ответ об ошибке формы с сообщениями по полям.
func ValidationFields(fields map[string]string) ErrorResponse {
	return ErrorResponse{
		Status: StatusError,
		Error:  "validation failed",
		Fields: fields,
	}
}

// ValidationError формирует ответ по ошибкам validator.
func ValidationError(errs validator.ValidationErrors) ErrorResponse {
	var errsMsgs []string
	fields := make(map[string]string, len(errs))

	for _, err := range errs {
		var msg string
		switch err.ActualTag() {
		case "required":
			msg = fmt.Sprintf("field %s is a required field", err.Field())
		case "oneof":
			msg = fmt.Sprintf("field %s must be one of: %s", err.Field(), err.Param())
		case "max":
			msg = fmt.Sprintf("field %s is too long", err.Field())
		default:
			msg = fmt.Sprintf("field %s is not valid", err.Field())
		}
		errsMsgs = append(errsMsgs, msg)
		fields[strings.ToLower(err.Field())] = msg
	}
	return ErrorResponse{
		Status: StatusError,
		Error:  strings.Join(errsMsgs, ", "),
		Fields: fields,
	}
}

// FromError возвращает HTTP-статус и тело ответа для доменной ошибки.
func FromError(err error) (int, ErrorResponse) {
	var (
		mismatch *models.ConfirmationMismatchError
		verr     *models.ValidationError
		authErr  *models.AuthError
		provErr  *models.ProviderError
	)
	switch {
	case errors.As(err, &mismatch):
		return http.StatusUnprocessableEntity, ValidationFields(mismatch.Fields)
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, ValidationFields(verr.Fields)
	case errors.As(err, &authErr):
		return http.StatusUnauthorized, Error(authErr.Message)
	case errors.Is(err, models.ErrFeatureLocked):
		return http.StatusForbidden, Error(models.ErrFeatureLocked.Error())
	case errors.Is(err, models.ErrNotAuthenticated):
		return http.StatusUnauthorized, Error(models.ErrNotAuthenticated.Error())
	case errors.Is(err, models.ErrSuperseded):
		return http.StatusConflict, Error(models.ErrSuperseded.Error())
	case errors.Is(err, models.ErrUpgradeInProgress):
		return http.StatusConflict, Error(models.ErrUpgradeInProgress.Error())
	case errors.Is(err, models.ErrRecordNotFound):
		return http.StatusNotFound, Error(models.ErrRecordNotFound.Error())
	case errors.As(err, &provErr):
		return http.StatusBadGateway, Error("payment provider unavailable, please try again")
	default:
		return http.StatusInternalServerError, Error("internal error")
	}
}

// WriteError пишет ответ для доменной ошибки err.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := FromError(err)
	render.Status(r, status)
	render.JSON(w, r, body)
}
