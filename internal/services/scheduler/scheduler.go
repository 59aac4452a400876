// Package scheduler периодически сверяет неподтвержденные оформления подписок
// и выгружает простаивающие сессии из памяти.
package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Sessions реестр сессий.
type Sessions interface {
	ReconcilePending(ctx context.Context) int
	EvictIdle(idle time.Duration) int
}

// Service планировщик обслуживания сессий.
type Service struct {
	sessions Sessions
	log      *slog.Logger
	interval time.Duration
	idle     time.Duration
}

// NewService создает планировщик. idle <= 0 отключает выгрузку.
func NewService(sessions Sessions, log *slog.Logger, interval, idle time.Duration) *Service {
	return &Service{
		sessions: sessions,
		log:      log,
		interval: interval,
		idle:     idle,
	}
}

// Run выполняет проход сразу и затем каждые interval до отмены ctx.
func (s *Service) Run(ctx context.Context) {
	s.RunOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce один проход обслуживания.
func (s *Service) RunOnce(ctx context.Context) {
	const op = "services.scheduler.RunOnce"
	log := s.log.With(slog.String("op", op))

	if n := s.sessions.ReconcilePending(ctx); n > 0 {
		log.Info("reconciled pending upgrades", slog.Int("count", n))
	}
	if s.idle <= 0 {
		return
	}
	if n := s.sessions.EvictIdle(s.idle); n > 0 {
		log.Info("evicted idle sessions", slog.Int("count", n))
	}
}
