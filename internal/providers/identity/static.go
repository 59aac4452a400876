package identity

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/knowyourrights/internal/models"
)

// Static демонстрационный режим: любые учетные данные принимаются.
// Id учетной записи детерминированно выводится из email.
type Static struct {
	mu       sync.Mutex
	accounts map[string]*models.Account
}

// NewStatic создает демонстрационный провайдер.
func NewStatic() *Static {
	return &Static{accounts: make(map[string]*models.Account)}
}

func staticID(email string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+email)).String()
}

func (s *Static) getOrCreate(email string, language models.Language) *models.Account {
	email = normalizeEmail(email)
	id := staticID(email)

	s.mu.Lock()
	defer s.mu.Unlock()
	if acc, ok := s.accounts[id]; ok {
		return acc
	}
	acc := &models.Account{
		ID:                id,
		Email:             email,
		SubscriptionTier:  models.TierFree,
		PreferredLanguage: models.ParseLanguage(string(language)),
		CreatedAt:         time.Now(),
	}
	s.accounts[id] = acc
	return acc
}

func copyAccount(acc *models.Account) *models.Account {
	c := *acc
	return &c
}

// SignIn возвращает демо-учетную запись для email.
func (s *Static) SignIn(_ context.Context, email, _ string) (*models.Account, error) {
	return copyAccount(s.getOrCreate(email, models.LanguageEnglish)), nil
}

// SignUp возвращает демо-учетную запись с языком из профиля.
func (s *Static) SignUp(_ context.Context, email, _ string, profile models.Profile) (*models.Account, error) {
	return copyAccount(s.getOrCreate(email, profile.PreferredLanguage)), nil
}

// SignOut ничего не делает.
func (s *Static) SignOut(context.Context, string) error {
	return nil
}

// FetchAccount возвращает ранее созданную демо-учетную запись.
func (s *Static) FetchAccount(_ context.Context, accountID string) (*models.Account, error) {
	const op = "identity.Static.FetchAccount"
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, models.ErrAccountNotFound)
	}
	return copyAccount(acc), nil
}

// SetTier запоминает уровень подписки.
func (s *Static) SetTier(_ context.Context, accountID string, tier models.Tier) error {
	const op = "identity.Static.SetTier"
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[accountID]
	if !ok {
		return fmt.Errorf("%s: %w", op, models.ErrAccountNotFound)
	}
	acc.SubscriptionTier = tier
	return nil
}
