package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/magabrotheeeer/knowyourrights/internal/models"
)

// CreateAccount сохраняет учетную запись и возвращает ее с присвоенным id.
func (s *Storage) CreateAccount(ctx context.Context, acc models.Account) (models.Account, error) {
	const op = "storage.CreateAccount"
	if err := checkContext(ctx, op); err != nil {
		return models.Account{}, err
	}

	query := `INSERT INTO accounts (email, password_hash, subscription_status, preferred_language)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id, created_at;`
	err := s.DB.QueryRowContext(ctx, query,
		acc.Email, acc.PasswordHash, string(acc.SubscriptionTier), string(acc.PreferredLanguage),
	).Scan(&acc.ID, &acc.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return models.Account{}, fmt.Errorf("%s: %w", op, models.ErrAccountExists)
		}
		return models.Account{}, fmt.Errorf("%s: %w", op, err)
	}
	return acc, nil
}

// GetAccountByEmail возвращает учетную запись по email.
func (s *Storage) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	const op = "storage.GetAccountByEmail"
	if err := checkContext(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT id, email, password_hash, subscription_status, preferred_language, created_at
			  FROM accounts
			  WHERE email = $1`
	return s.scanAccount(s.DB.QueryRowContext(ctx, query, email), op)
}

// GetAccount возвращает учетную запись по id.
func (s *Storage) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	const op = "storage.GetAccount"
	if err := checkContext(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT id, email, password_hash, subscription_status, preferred_language, created_at
			  FROM accounts
			  WHERE id = $1`
	return s.scanAccount(s.DB.QueryRowContext(ctx, query, id), op)
}

func (s *Storage) scanAccount(row *sql.Row, op string) (*models.Account, error) {
	var (
		acc      models.Account
		tier     string
		language string
	)
	if err := row.Scan(&acc.ID, &acc.Email, &acc.PasswordHash, &tier, &language, &acc.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	acc.SubscriptionTier = models.ParseTier(tier)
	acc.PreferredLanguage = models.ParseLanguage(language)
	return &acc, nil
}

// UpdateAccountTier обновляет уровень подписки учетной записи.
func (s *Storage) UpdateAccountTier(ctx context.Context, id string, tier models.Tier) error {
	const op = "storage.UpdateAccountTier"
	if err := checkContext(ctx, op); err != nil {
		return err
	}

	query := `UPDATE accounts
			  SET subscription_status = $1, updated_at = now()
			  WHERE id = $2`
	res, err := s.DB.ExecContext(ctx, query, string(tier), id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrAccountNotFound)
	}
	return nil
}
