// Package session состояние клиентской сессии: вход, подписка, выбранная
// юрисдикция и доступ к платным функциям.
//
// Store сериализует изменения состояния мьютексом и не держит его во время
// обращений к внешним провайдерам. Асинхронные операции одного вида
// вытесняют друг друга, применяется результат только последнего запроса.
package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/knowyourrights/internal/metrics"
	"github.com/magabrotheeeer/knowyourrights/internal/models"
	"github.com/magabrotheeeer/knowyourrights/internal/providers/identity"
	"github.com/magabrotheeeer/knowyourrights/internal/providers/payment"
	"github.com/magabrotheeeer/knowyourrights/internal/services/recording"
)

// ScriptService генерация фраз и карточек взаимодействий.
type ScriptService interface {
	Generate(ctx context.Context, scenario, jurisdiction string, language models.Language, extra string) string
	SummaryCard(ctx context.Context, rec models.RecordingRecord) string
}

// InteractionSink долговременное хранение записей аутентифицированных пользователей.
type InteractionSink interface {
	Save(ctx context.Context, owner models.Identity, rec models.RecordingRecord) error
	History(ctx context.Context, accountID string) ([]models.RecordingRecord, error)
	Record(ctx context.Context, accountID, id string) (*models.RecordingRecord, error)
	SaveSummary(ctx context.Context, id, card string) error
}

// Deps зависимости сессий. Interactions и Metrics могут быть nil.
type Deps struct {
	Identity     identity.Provider
	Payment      payment.Provider
	Scripts      ScriptService
	Interactions InteractionSink
	Persister    Persister
	Metrics      *metrics.Metrics
	Log          *slog.Logger

	// PendingUpgradeTTL срок, после которого неподтвержденное оформление сбрасывается.
	PendingUpgradeTTL time.Duration
	// RemoteTimeout ограничение для фоновых вызовов, например выхода у провайдера.
	RemoteTimeout time.Duration
	Now           func() time.Time
	Tracker       []recording.Option
}

const (
	defaultPendingUpgradeTTL = time.Hour
	defaultRemoteTimeout     = 10 * time.Second
)

func (d Deps) withDefaults() Deps {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.PendingUpgradeTTL <= 0 {
		d.PendingUpgradeTTL = defaultPendingUpgradeTTL
	}
	if d.RemoteTimeout <= 0 {
		d.RemoteTimeout = defaultRemoteTimeout
	}
	if d.Persister == nil {
		d.Persister = NewMemoryPersister()
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}
	return d
}
