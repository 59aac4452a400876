// Package identity аутентификация пользователей.
package identity

import (
	"context"

	"github.com/magabrotheeeer/knowyourrights/internal/models"
)

// Сообщения, которые показываются пользователю при отказе.
const (
	MsgInvalidCredentials = "Invalid login credentials"
	MsgAlreadyRegistered  = "User already registered"
	MsgUnavailable        = "Authentication service unavailable"
)

// Provider провайдер идентификации.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*models.Account, error)
	SignUp(ctx context.Context, email, password string, profile models.Profile) (*models.Account, error)
	SignOut(ctx context.Context, accountID string) error
	FetchAccount(ctx context.Context, accountID string) (*models.Account, error)
	SetTier(ctx context.Context, accountID string, tier models.Tier) error
}
