package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/knowyourrights/internal/models"
)

// FetchGuide возвращает справочник юрисдикции на языке language или nil, если его нет.
func (s *Storage) FetchGuide(ctx context.Context, jurisdiction string, language models.Language) (*models.Guide, error) {
	const op = "storage.FetchGuide"
	if err := checkContext(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT id, jurisdiction, language, title, content
			  FROM legal_guides
			  WHERE jurisdiction = $1 AND language = $2`
	var (
		g       models.Guide
		lang    string
		content []byte
	)
	err := s.DB.QueryRowContext(ctx, query, jurisdiction, string(language)).
		Scan(&g.ID, &g.Jurisdiction, &lang, &g.Title, &content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = json.Unmarshal(content, &g.Content); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	g.Language = models.ParseLanguage(lang)
	return &g, nil
}

// SaveGuide создает или заменяет справочник для пары юрисдикция и язык.
func (s *Storage) SaveGuide(ctx context.Context, g models.Guide) (string, error) {
	const op = "storage.SaveGuide"
	if err := checkContext(ctx, op); err != nil {
		return "", err
	}

	content, err := json.Marshal(g.Content)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	query := `INSERT INTO legal_guides (jurisdiction, language, title, content)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (jurisdiction, language)
			  DO UPDATE SET title = EXCLUDED.title, content = EXCLUDED.content, updated_at = now()
			  RETURNING id`
	var id string
	if err = s.DB.QueryRowContext(ctx, query, g.Jurisdiction, string(g.Language), g.Title, content).Scan(&id); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}
