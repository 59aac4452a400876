package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/knowyourrights/internal/lib/password"
	"github.com/magabrotheeeer/knowyourrights/internal/models"
)

// Repository хранилище учетных записей.
type Repository interface {
	CreateAccount(ctx context.Context, acc models.Account) (models.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	GetAccount(ctx context.Context, id string) (*models.Account, error)
	UpdateAccountTier(ctx context.Context, id string, tier models.Tier) error
}

// Live учетные записи в PostgreSQL, пароли в bcrypt.
type Live struct {
	repo Repository
}

// NewLive создает провайдер поверх хранилища.
func NewLive(repo Repository) *Live {
	return &Live{repo: repo}
}

// SignIn проверяет пароль и возвращает учетную запись.
func (l *Live) SignIn(ctx context.Context, email, pass string) (*models.Account, error) {
	const op = "identity.Live.SignIn"

	acc, err := l.repo.GetAccountByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, models.ErrAccountNotFound) {
			return nil, &models.AuthError{Message: MsgInvalidCredentials}
		}
		return nil, &models.AuthError{Message: MsgUnavailable, Err: fmt.Errorf("%s: %w", op, err)}
	}
	if err = password.CompareHash(acc.PasswordHash, pass); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return nil, &models.AuthError{Message: MsgInvalidCredentials}
		}
		return nil, &models.AuthError{Message: MsgUnavailable, Err: fmt.Errorf("%s: %w", op, err)}
	}
	return acc, nil
}

// SignUp создает учетную запись на уровне free.
func (l *Live) SignUp(ctx context.Context, email, pass string, profile models.Profile) (*models.Account, error) {
	const op = "identity.Live.SignUp"

	hash, err := password.GetHash(pass)
	if err != nil {
		return nil, &models.AuthError{Message: MsgUnavailable, Err: fmt.Errorf("%s: %w", op, err)}
	}
	acc, err := l.repo.CreateAccount(ctx, models.Account{
		Email:             normalizeEmail(email),
		PasswordHash:      hash,
		SubscriptionTier:  models.TierFree,
		PreferredLanguage: models.ParseLanguage(string(profile.PreferredLanguage)),
	})
	if err != nil {
		if errors.Is(err, models.ErrAccountExists) {
			return nil, &models.AuthError{Message: MsgAlreadyRegistered}
		}
		return nil, &models.AuthError{Message: MsgUnavailable, Err: fmt.Errorf("%s: %w", op, err)}
	}
	return &acc, nil
}

// SignOut серверного состояния у входа нет, поэтому ничего не делает.
func (l *Live) SignOut(context.Context, string) error {
	return nil
}

// FetchAccount возвращает учетную запись по id.
func (l *Live) FetchAccount(ctx context.Context, accountID string) (*models.Account, error) {
	const op = "identity.Live.FetchAccount"
	acc, err := l.repo.GetAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return acc, nil
}

// SetTier сохраняет подтвержденный уровень подписки.
func (l *Live) SetTier(ctx context.Context, accountID string, tier models.Tier) error {
	const op = "identity.Live.SetTier"
	if err := l.repo.UpdateAccountTier(ctx, accountID, tier); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
