// Package server реализует gRPC-сервер проверки состояния для оркестратора.
//
// HealthServer периодически выполняет проверки зависимостей и выставляет
// статус SERVING или NOT_SERVING стандартного сервиса grpc.health.v1.
package server

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/magabrotheeeer/knowyourrights/internal/lib/sl"
)

// ServiceName имя сервиса в протоколе проверки состояния.
const ServiceName = "knowyourrights.v1.API"

// Check проверка одной зависимости.
type Check func(ctx context.Context) error

// HealthServer обертка над health.Server с периодическими проверками.
type HealthServer struct {
	*health.Server
	checks   map[string]Check
	interval time.Duration
	log      *slog.Logger
}

// NewHealthServer создает сервер. До первой проверки статус SERVING.
func NewHealthServer(checks map[string]Check, interval time.Duration, logger *slog.Logger) *HealthServer {
	srv := health.NewServer()
	srv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	srv.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	return &HealthServer{
		Server:   srv,
		checks:   checks,
		interval: interval,
		log:      logger,
	}
}

// Monitor выполняет проверки каждые interval до отмены ctx, затем
// переводит сервер в NOT_SERVING.
func (s *HealthServer) Monitor(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.Probe(ctx)
		select {
		case <-ctx.Done():
			s.Shutdown()
			return
		case <-ticker.C:
		}
	}
}

// Probe выполняет проверки один раз и обновляет статус.
func (s *HealthServer) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	for name, check := range s.checks {
		checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := check(checkCtx)
		cancel()
		if err != nil {
			s.log.Warn("health probe failed", slog.String("check", name), sl.Err(err))
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.SetServingStatus("", status)
	s.SetServingStatus(ServiceName, status)
	return status
}
