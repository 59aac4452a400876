// Package script выдает фразы для отстаивания своих прав в типовых ситуациях
// и карточки завершенных взаимодействий.
//
// Внешний генератор используется, когда доступен. Любой его сбой приводит
// к статическому шаблону, поэтому методы сервиса не возвращают ошибок.
package script

import (
	"context"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/knowyourrights/internal/lib/sl"
	"github.com/magabrotheeeer/knowyourrights/internal/metrics"
	"github.com/magabrotheeeer/knowyourrights/internal/models"
	"github.com/magabrotheeeer/knowyourrights/internal/providers/generation"
)

// Generator внешний генератор текста.
type Generator interface {
	Complete(ctx context.Context, req generation.Request) (string, error)
}

// Service генерация фраз и карточек.
type Service struct {
	gen     Generator
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewService создает сервис. m может быть nil.
func NewService(gen Generator, log *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{gen: gen, log: log, metrics: m}
}

// Generate возвращает фразу для ситуации scenario в юрисдикции jurisdiction.
// Неизвестный язык трактуется как английский, неизвестная ситуация дает NotAvailable.
func (s *Service) Generate(ctx context.Context, scenario, jurisdiction string, language models.Language, extra string) string {
	const op = "services.script.Generate"
	log := s.log.With(slog.String("op", op), slog.String("scenario", scenario))

	if !IsScenario(scenario) {
		log.Debug("unknown scenario")
		return NotAvailable
	}
	sc := Scenario(scenario)
	language = models.ParseLanguage(string(language))

	if s.gen != nil {
		text, err := s.gen.Complete(ctx, generation.Request{
			System:      scriptSystemPrompt,
			Prompt:      scriptPrompt(sc, jurisdiction, language, extra),
			MaxTokens:   300,
			Temperature: 0.3,
		})
		if err == nil && strings.TrimSpace(text) != "" {
			s.metrics.ScriptGenerated(scenario, metrics.SourceRemote)
			return text
		}
		if err != nil {
			log.Warn("generation failed, using template", sl.Err(err))
		}
	}

	s.metrics.ScriptGenerated(scenario, metrics.SourceFallback)
	return Fallback(sc, language)
}

// SummaryCard возвращает карточку для завершенной записи.
func (s *Service) SummaryCard(ctx context.Context, rec models.RecordingRecord) string {
	const op = "services.script.SummaryCard"
	log := s.log.With(slog.String("op", op), slog.String("record_id", rec.ID))

	if s.gen != nil {
		text, err := s.gen.Complete(ctx, generation.Request{
			System:      summarySystemPrompt,
			Prompt:      summaryPrompt(rec),
			MaxTokens:   400,
			Temperature: 0.2,
		})
		if err == nil && strings.TrimSpace(text) != "" {
			s.metrics.SummaryGenerated(metrics.SourceRemote)
			return text
		}
		if err != nil {
			log.Warn("generation failed, using template", sl.Err(err))
		}
	}

	s.metrics.SummaryGenerated(metrics.SourceFallback)
	return FallbackSummary(rec)
}
