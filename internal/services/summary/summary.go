// Package summary обрабатывает события о сохраненных записях: генерирует
// карточку взаимодействия, сохраняет ее и отправляет владельцу по почте.
package summary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/knowyourrights/internal/lib/sl"
	"github.com/magabrotheeeer/knowyourrights/internal/lib/smtp"
	"github.com/magabrotheeeer/knowyourrights/internal/models"
)

// Repository хранилище записей.
type Repository interface {
	GetInteraction(ctx context.Context, id string) (*models.RecordingRecord, string, error)
	SaveSummaryCard(ctx context.Context, id, card string) error
}

// CardGenerator генератор карточек.
type CardGenerator interface {
	SummaryCard(ctx context.Context, rec models.RecordingRecord) string
}

// Service воркер карточек.
type Service struct {
	repo      Repository
	cards     CardGenerator
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewService создает воркер. transport может быть nil, тогда письма не отправляются.
func NewService(repo Repository, cards CardGenerator, transport smtp.TransportInterface, log *slog.Logger) *Service {
	return &Service{repo: repo, cards: cards, transport: transport, log: log}
}

// Handle обрабатывает тело сообщения из очереди. Ошибка означает, что
// сообщение нужно вернуть в очередь. Битые сообщения и удаленные записи
// отбрасываются.
func (s *Service) Handle(ctx context.Context, body []byte) error {
	const op = "services.summary.Handle"
	log := s.log.With(slog.String("op", op))

	var event models.InteractionEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Error("failed to unmarshal message body", sl.Err(err))
		return nil
	}
	log = log.With(slog.String("record_id", event.RecordID))

	rec, _, err := s.repo.GetInteraction(ctx, event.RecordID)
	if err != nil {
		if errors.Is(err, models.ErrRecordNotFound) {
			log.Warn("record no longer exists, skipping")
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	card := rec.Summary
	if card == "" {
		card = s.cards.SummaryCard(ctx, *rec)
		if err = s.repo.SaveSummaryCard(ctx, rec.ID, card); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if s.transport == nil || event.Email == "" {
		log.Debug("summary stored without email")
		return nil
	}
	subject := "Your interaction summary (" + rec.Location + ", " + rec.Timestamp.Format("Jan 2, 2006 15:04 MST") + ")"
	if err = s.sendEmail([]string{event.Email}, subject, card); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Service) sendEmail(to []string, subject, bodyText string) error {
	err := smtp.Send(s.transport, smtp.Message{To: to, Subject: subject, Body: bodyText})
	if err != nil {
		s.log.Error("failed to send summary email", sl.Err(err))
		return err
	}
	s.log.Info("summary email sent", slog.Any("to", to))
	return nil
}
