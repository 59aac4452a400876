package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/knowyourrights/internal/models"
)

// SaveInteraction сохраняет завершенную запись учетной записи accountID.
func (s *Storage) SaveInteraction(ctx context.Context, accountID string, rec models.RecordingRecord) error {
	const op = "storage.SaveInteraction"
	if err := checkContext(ctx, op); err != nil {
		return err
	}

	query := `INSERT INTO interaction_records
			      (id, account_id, recorded_at, duration_seconds, location, notes, audio_url)
			  VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))`
	_, err := s.DB.ExecContext(ctx, query,
		rec.ID, accountID, rec.Timestamp, rec.Duration, rec.Location, rec.Notes, rec.AudioURL)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListInteractions возвращает последние limit записей, новые первыми.
func (s *Storage) ListInteractions(ctx context.Context, accountID string, limit int) ([]models.RecordingRecord, error) {
	const op = "storage.ListInteractions"
	if err := checkContext(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT id, recorded_at, duration_seconds, location, notes,
			      COALESCE(audio_url, ''), COALESCE(generated_card, '')
			  FROM interaction_records
			  WHERE account_id = $1
			  ORDER BY recorded_at DESC
			  LIMIT $2`
	rows, err := s.DB.QueryContext(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.RecordingRecord, 0, limit)
	for rows.Next() {
		var r models.RecordingRecord
		if err = rows.Scan(&r.ID, &r.Timestamp, &r.Duration, &r.Location, &r.Notes, &r.AudioURL, &r.Summary); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetInteraction возвращает запись по id.
func (s *Storage) GetInteraction(ctx context.Context, id string) (*models.RecordingRecord, string, error) {
	const op = "storage.GetInteraction"
	if err := checkContext(ctx, op); err != nil {
		return nil, "", err
	}

	query := `SELECT id, account_id, recorded_at, duration_seconds, location, notes,
			      COALESCE(audio_url, ''), COALESCE(generated_card, '')
			  FROM interaction_records
			  WHERE id = $1`
	var (
		r         models.RecordingRecord
		accountID string
	)
	err := s.DB.QueryRowContext(ctx, query, id).
		Scan(&r.ID, &accountID, &r.Timestamp, &r.Duration, &r.Location, &r.Notes, &r.AudioURL, &r.Summary)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", fmt.Errorf("%s: %w", op, models.ErrRecordNotFound)
	}
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	return &r, accountID, nil
}

// SaveSummaryCard сохраняет карточку записи.
func (s *Storage) SaveSummaryCard(ctx context.Context, id, card string) error {
	const op = "storage.SaveSummaryCard"
	if err := checkContext(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `UPDATE interaction_records SET generated_card = $1 WHERE id = $2`, card, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrRecordNotFound)
	}
	return nil
}
