// Package generation содержит провайдеры генерации текста: OpenAI, Gemini
// и статический, который всегда сообщает о недоступности.
package generation

import (
	"context"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/knowyourrights/internal/config"
	"github.com/magabrotheeeer/knowyourrights/internal/models"
)

// ErrUnavailable провайдер генерации не настроен.
var ErrUnavailable = errors.New("generation provider is not configured")

// ErrEmptyAnswer провайдер вернул пустой ответ.
var ErrEmptyAnswer = errors.New("empty completion")

// Request запрос на генерацию.
type Request struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Provider генератор текста.
type Provider interface {
	Complete(ctx context.Context, req Request) (string, error)
	Name() string
}

// Static провайдер без внешнего сервиса.
type Static struct{}

// Complete всегда возвращает ProviderError с ErrUnavailable.
func (Static) Complete(context.Context, Request) (string, error) {
	return "", &models.ProviderError{Provider: "static", Err: ErrUnavailable}
}

// Name имя провайдера.
func (Static) Name() string { return "static" }

// New выбирает провайдера по настройке cfg.Provider.
func New(ctx context.Context, cfg config.Generation) (Provider, error) {
	const op = "generation.New"
	switch cfg.Provider {
	case "openai":
		p, err := NewOpenAI(cfg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return p, nil
	case "gemini":
		p, err := NewGemini(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return p, nil
	case "":
		return Static{}, nil
	default:
		return nil, fmt.Errorf("%s: unknown provider %q", op, cfg.Provider)
	}
}
