package generation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/magabrotheeeer/knowyourrights/internal/config"
	"github.com/magabrotheeeer/knowyourrights/internal/models"
)

// OpenAI провайдер на chat completions OpenAI.
type OpenAI struct {
	llm     llms.Model
	timeout time.Duration
}

// NewOpenAI создает клиента OpenAI.
func NewOpenAI(cfg config.Generation) (*OpenAI, error) {
	const op = "generation.NewOpenAI"
	opts := []openai.Option{
		openai.WithToken(cfg.OpenAIKey),
		openai.WithModel(cfg.OpenAIModel),
	}
	if cfg.OpenAIBaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.OpenAIBaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &OpenAI{llm: llm, timeout: cfg.GenerationTimeout}, nil
}

// Complete отправляет системную и пользовательскую реплики и возвращает ответ модели.
func (p *OpenAI) Complete(ctx context.Context, req Request) (string, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, req.System),
		llms.TextParts(llms.ChatMessageTypeHuman, req.Prompt),
	}
	resp, err := p.llm.GenerateContent(ctx, messages,
		llms.WithMaxTokens(req.MaxTokens),
		llms.WithTemperature(req.Temperature),
	)
	if err != nil {
		return "", &models.ProviderError{Provider: p.Name(), Err: err}
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		return "", &models.ProviderError{Provider: p.Name(), Err: ErrEmptyAnswer}
	}
	return resp.Choices[0].Content, nil
}

// Name имя провайдера.
func (p *OpenAI) Name() string { return "openai" }
