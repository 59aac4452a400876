package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrConfirmationMismatch пароль и подтверждение не совпадают.
	ErrConfirmationMismatch = errors.New("passwords do not match")
	// ErrSuperseded результат операции отброшен, так как ее вытеснил более новый запрос того же вида.
	ErrSuperseded = errors.New("operation superseded by a newer request")
	// ErrUpgradeInProgress оформление подписки для сессии уже выполняется.
	ErrUpgradeInProgress = errors.New("upgrade already in progress")
	// ErrFeatureLocked функция недоступна на текущем уровне подписки.
	ErrFeatureLocked = errors.New("premium feature: subscription required")
	// ErrNotAuthenticated операция требует входа в учетную запись.
	ErrNotAuthenticated = errors.New("authentication required")
	// ErrRecordNotFound запись взаимодействия не найдена.
	ErrRecordNotFound = errors.New("recording not found")
	// ErrAccountNotFound учетная запись не найдена.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountExists учетная запись с таким email уже существует.
	ErrAccountExists = errors.New("account already exists")
)

// ValidationError ошибка проверки формы с сообщениями по полям.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(msgs, ", ")
}

// ConfirmationMismatchError ошибка несовпадения подтверждения пароля.
// Реализует Is для сравнения с ErrConfirmationMismatch.
type ConfirmationMismatchError struct {
	ValidationError
}

func (e *ConfirmationMismatchError) Is(target error) bool {
	return target == ErrConfirmationMismatch
}

// NewConfirmationMismatch возвращает ошибку несовпадения с сообщением для поля confirm_password.
func NewConfirmationMismatch() *ConfirmationMismatchError {
	return &ConfirmationMismatchError{ValidationError{Fields: map[string]string{
		"confirm_password": "Passwords do not match",
	}}}
}

// AuthError отказ провайдера идентификации. Message показывается пользователю.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth: %s: %v", e.Message, e.Err)
	}
	return "auth: " + e.Message
}

func (e *AuthError) Unwrap() error { return e.Err }

// ProviderError сбой внешнего провайдера (генерация текста, платежи).
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// ConfigurationError отсутствуют учетные данные внешних провайдеров.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return "missing required configuration: " + strings.Join(e.Missing, ", ")
}
