// Package payment оформляет подписки через платежного провайдера и сообщает
// их подтвержденный статус.
package payment

import (
	"context"
	"sync"

	"github.com/magabrotheeeer/knowyourrights/internal/models"
)

// Provider платежный провайдер.
type Provider interface {
	// CreateCheckoutSession создает страницу оплаты плана и возвращает ссылку на нее.
	CreateCheckoutSession(ctx context.Context, plan models.Plan, accountID, email string) (string, error)
	// SubscriptionStatus возвращает подтвержденный уровень подписки учетной записи.
	SubscriptionStatus(ctx context.Context, accountID string) (models.Tier, error)
}

// Static демонстрационный провайдер: оформление подтверждается сразу.
type Static struct {
	appURL string

	mu    sync.Mutex
	tiers map[string]models.Tier
}

// NewStatic создает демонстрационный провайдер.
func NewStatic(appURL string) *Static {
	return &Static{appURL: appURL, tiers: make(map[string]models.Tier)}
}

// CreateCheckoutSession запоминает уровень плана и возвращает ссылку на страницу успеха.
func (s *Static) CreateCheckoutSession(_ context.Context, plan models.Plan, accountID, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tiers[accountID] = plan.TargetTier()
	return s.appURL + "/success?plan=" + string(plan), nil
}

// SubscriptionStatus возвращает запомненный уровень или free.
func (s *Static) SubscriptionStatus(_ context.Context, accountID string) (models.Tier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tier, ok := s.tiers[accountID]; ok {
		return tier, nil
	}
	return models.TierFree, nil
}

// Cancel имитирует отмену подписки на стороне провайдера.
func (s *Static) Cancel(accountID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tiers[accountID] = models.TierCanceled
}
