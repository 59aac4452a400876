// Package interaction сохраняет завершенные записи взаимодействий и
// сообщает о них воркеру карточек.
package interaction

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/knowyourrights/internal/lib/sl"
	"github.com/magabrotheeeer/knowyourrights/internal/models"
)

// HistoryLimit сколько последних записей возвращает History.
const HistoryLimit = 10

// Repository хранилище записей.
type Repository interface {
	SaveInteraction(ctx context.Context, accountID string, rec models.RecordingRecord) error
	ListInteractions(ctx context.Context, accountID string, limit int) ([]models.RecordingRecord, error)
	GetInteraction(ctx context.Context, id string) (*models.RecordingRecord, string, error)
	SaveSummaryCard(ctx context.Context, id, card string) error
}

// Publisher отправка событий о сохраненных записях.
type Publisher interface {
	Publish(ctx context.Context, event models.InteractionEvent) error
}

// Service хранение записей.
type Service struct {
	repo Repository
	pub  Publisher
	log  *slog.Logger
}

// NewService создает сервис. pub может быть nil, тогда события не отправляются.
func NewService(repo Repository, pub Publisher, log *slog.Logger) *Service {
	return &Service{repo: repo, pub: pub, log: log}
}

// Save сохраняет запись owner и публикует событие. Ошибка публикации только логируется.
func (s *Service) Save(ctx context.Context, owner models.Identity, rec models.RecordingRecord) error {
	const op = "services.interaction.Save"
	log := s.log.With(slog.String("op", op), slog.String("record_id", rec.ID))

	if err := s.repo.SaveInteraction(ctx, owner.ID, rec); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if s.pub == nil {
		return nil
	}
	event := models.InteractionEvent{
		RecordID:  rec.ID,
		AccountID: owner.ID,
		Email:     owner.Email,
		Timestamp: rec.Timestamp,
		Duration:  rec.Duration,
		Notes:     rec.Notes,
		Location:  rec.Location,
	}
	if err := s.pub.Publish(ctx, event); err != nil {
		log.Warn("failed to publish interaction event", sl.Err(err))
		return nil
	}
	log.Debug("interaction event published")
	return nil
}

// History последние записи учетной записи, новые первыми.
func (s *Service) History(ctx context.Context, accountID string) ([]models.RecordingRecord, error) {
	const op = "services.interaction.History"
	records, err := s.repo.ListInteractions(ctx, accountID, HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return records, nil
}

// Record запись id, если она принадлежит accountID.
func (s *Service) Record(ctx context.Context, accountID, id string) (*models.RecordingRecord, error) {
	const op = "services.interaction.Record"
	rec, owner, err := s.repo.GetInteraction(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if owner != accountID {
		return nil, fmt.Errorf("%s: %w", op, models.ErrRecordNotFound)
	}
	return rec, nil
}

// SaveSummary сохраняет карточку записи.
func (s *Service) SaveSummary(ctx context.Context, id, card string) error {
	const op = "services.interaction.SaveSummary"
	if err := s.repo.SaveSummaryCard(ctx, id, card); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
