package generation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/magabrotheeeer/knowyourrights/internal/config"
	"github.com/magabrotheeeer/knowyourrights/internal/models"
)

// Gemini провайдер на Gemini API.
type Gemini struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGemini создает клиента Gemini API.
func NewGemini(ctx context.Context, cfg config.Generation) (*Gemini, error) {
	const op = "generation.NewGemini"
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Gemini{client: client, model: cfg.GeminiModel, timeout: cfg.GenerationTimeout}, nil
}

// Complete генерирует ответ с системной инструкцией.
func (p *Gemini) Complete(ctx context.Context, req Request) (string, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	contents := []*genai.Content{genai.NewContentFromText(req.Prompt, genai.RoleUser)}
	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
		MaxOutputTokens:   int32(req.MaxTokens),
		Temperature:       genai.Ptr(float32(req.Temperature)),
	})
	if err != nil {
		return "", &models.ProviderError{Provider: p.Name(), Err: err}
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", &models.ProviderError{Provider: p.Name(), Err: ErrEmptyAnswer}
	}
	return text, nil
}

// Name имя провайдера.
func (p *Gemini) Name() string { return "gemini" }
