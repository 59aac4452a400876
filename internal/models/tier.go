// Package models содержит доменные типы сервиса: сессию пользователя,
// уровни подписки, функции с ограниченным доступом, справочники юрисдикций,
// записи взаимодействий и типизированные ошибки.
package models

// Tier уровень подписки, определяющий доступ к платным функциям.
type Tier string

const (
	// TierFree бесплатный уровень, состояние по умолчанию.
	TierFree Tier = "free"
	// TierTrialing пробный период.
	TierTrialing Tier = "trialing"
	// TierActive оплаченная подписка.
	TierActive Tier = "active"
	// TierPastDue просроченный платеж.
	TierPastDue Tier = "past_due"
	// TierCanceled отмененная подписка.
	TierCanceled Tier = "canceled"
)

// ParseTier приводит строку к Tier. Неизвестные значения считаются free.
func ParseTier(s string) Tier {
	switch Tier(s) {
	case TierFree, TierTrialing, TierActive, TierPastDue, TierCanceled:
		return Tier(s)
	default:
		return TierFree
	}
}

// IsPremium сообщает, открывает ли уровень платные функции.
func (t Tier) IsPremium() bool {
	return t == TierTrialing || t == TierActive
}

// Feature идентификатор функции приложения.
type Feature string

const (
	// FeatureGuides справочники по юрисдикциям.
	FeatureGuides Feature = "guides"
	// FeatureScripts генерация фраз для общения с полицией.
	FeatureScripts Feature = "scripts"
	// FeatureRecording запись взаимодействий.
	FeatureRecording Feature = "recording"
	// FeatureMultilingual контент на языках кроме английского.
	FeatureMultilingual Feature = "multilingual"
)

// Features полный список известных функций.
var Features = []Feature{FeatureGuides, FeatureScripts, FeatureRecording, FeatureMultilingual}

// IsGated сообщает, доступна ли функция только на платных уровнях.
// Каждая функция перечислена явно, неизвестные идентификаторы не ограничены.
func (f Feature) IsGated() bool {
	switch f {
	case FeatureScripts, FeatureRecording, FeatureMultilingual:
		return true
	case FeatureGuides:
		return false
	default:
		return false
	}
}

// CanAccess решает, доступна ли функция на уровне подписки.
func CanAccess(tier Tier, feature Feature) bool {
	return !feature.IsGated() || tier.IsPremium()
}

// AccessMap возвращает решения по всем известным функциям для уровня.
func AccessMap(tier Tier) map[Feature]bool {
	res := make(map[Feature]bool, len(Features))
	for _, f := range Features {
		res[f] = CanAccess(tier, f)
	}
	return res
}

// Plan тарифный план для оформления подписки.
type Plan string

const (
	// PlanTrial семидневный пробный период.
	PlanTrial Plan = "trial"
	// PlanPremium ежемесячная подписка.
	PlanPremium Plan = "premium"
)

// TargetTier уровень, который получит пользователь после подтверждения оплаты плана.
func (p Plan) TargetTier() Tier {
	switch p {
	case PlanTrial:
		return TierTrialing
	case PlanPremium:
		return TierActive
	default:
		return TierFree
	}
}

// ParsePlan возвращает план и признак того, что строка известна.
func ParsePlan(s string) (Plan, bool) {
	switch Plan(s) {
	case PlanTrial, PlanPremium:
		return Plan(s), true
	default:
		return "", false
	}
}
