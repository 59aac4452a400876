package models

import "time"

// DefaultJurisdiction юрисдикция по умолчанию для новых сессий и справочников.
const DefaultJurisdiction = "CA"

// Identity ссылка на учетную запись аутентифицированного пользователя.
type Identity struct {
	ID                string   `json:"id"`
	Email             string   `json:"email"`
	PreferredLanguage Language `json:"preferred_language"`
}

// PendingUpgrade незавершенное оформление подписки, ожидающее подтверждения платежного провайдера.
type PendingUpgrade struct {
	Plan        Plan      `json:"plan"`
	TargetTier  Tier      `json:"target_tier"`
	CheckoutURL string    `json:"checkout_url"`
	StartedAt   time.Time `json:"started_at"`
}

// Session состояние клиентской сессии.
//
// Инвариант: Authenticated == (Identity != nil), и при Authenticated == false
// уровень подписки всегда free.
type Session struct {
	Identity             *Identity       `json:"identity,omitempty"`
	Authenticated        bool            `json:"authenticated"`
	SubscriptionTier     Tier            `json:"subscription_tier"`
	SelectedJurisdiction string          `json:"selected_jurisdiction"`
	PendingUpgrade       *PendingUpgrade `json:"pending_upgrade,omitempty"`
}

// NewSession возвращает сессию в начальном состоянии.
func NewSession() Session {
	return Session{
		SubscriptionTier:     TierFree,
		SelectedJurisdiction: DefaultJurisdiction,
	}
}

// Normalize восстанавливает инварианты сессии, например после чтения снимка.
func (s Session) Normalize() Session {
	s.Authenticated = s.Identity != nil
	s.SubscriptionTier = ParseTier(string(s.SubscriptionTier))
	if !s.Authenticated {
		s.SubscriptionTier = TierFree
		s.PendingUpgrade = nil
	}
	if !IsJurisdiction(s.SelectedJurisdiction) {
		s.SelectedJurisdiction = DefaultJurisdiction
	}
	return s
}

// AccountID возвращает идентификатор учетной записи или пустую строку.
func (s Session) AccountID() string {
	if s.Identity == nil {
		return ""
	}
	return s.Identity.ID
}
