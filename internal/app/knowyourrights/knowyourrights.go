package knowyourrights

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/magabrotheeeer/knowyourrights/internal/config"
	grpcserver "github.com/magabrotheeeer/knowyourrights/internal/grpc/server"
	"github.com/magabrotheeeer/knowyourrights/internal/http/handlers/health"
	"github.com/magabrotheeeer/knowyourrights/internal/lib/jwt"
	"github.com/magabrotheeeer/knowyourrights/internal/lib/sl"
	"github.com/magabrotheeeer/knowyourrights/internal/metrics"
	"github.com/magabrotheeeer/knowyourrights/internal/services/guide"
	"github.com/magabrotheeeer/knowyourrights/internal/services/interaction"
	"github.com/magabrotheeeer/knowyourrights/internal/services/scheduler"
	"github.com/magabrotheeeer/knowyourrights/internal/services/script"
	"github.com/magabrotheeeer/knowyourrights/internal/services/session"
)

// App HTTP API и gRPC-сервер проверки состояния.
type App struct {
	server    *http.Server
	grpc      *grpc.Server
	health    *grpcserver.HealthServer
	listener  net.Listener
	sessions  *session.Manager
	scheduler *scheduler.Service
	providers *providers
	logger    *slog.Logger
}

// New выбирает провайдеров, применяет миграции и собирает маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	p, err := selectProviders(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("providers selected", slog.Any("modes", p.modes))

	m := metrics.New(prometheus.DefaultRegisterer)
	scripts := script.NewService(p.generator, logger, m)
	interactions := interaction.NewService(p.interactions, p.publisher, logger)

	sessions := session.NewManager(session.Deps{
		Identity:          p.identity,
		Payment:           p.payment,
		Scripts:           scripts,
		Interactions:      interactions,
		Persister:         p.persister,
		Metrics:           m,
		Log:               logger,
		PendingUpgradeTTL: cfg.PendingUpgradeTTL,
	})

	secret := cfg.JWTSecretKey
	if secret == "" {
		secret = uuid.NewString()
		logger.Warn("JWT_SECRET_KEY is not set, tokens will not survive restart")
	}
	tokens := jwt.NewJWTMaker(secret, cfg.TokenTTL)

	httpChecks := make(map[string]health.Check, len(p.checks))
	grpcChecks := make(map[string]grpcserver.Check, len(p.checks))
	for name, check := range p.checks {
		httpChecks[name] = check
		grpcChecks[name] = check
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, RouteDeps{
		Sessions:  sessions,
		Tokens:    tokens,
		Guides:    guide.NewService(p.guideFetcher, p.guideCache, logger),
		Health:    health.New(logger, httpChecks, p.modes),
		RateLimit: cfg.RateLimit,
		RateBurst: cfg.RateBurst,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	app := &App{
		server:    srv,
		sessions:  sessions,
		scheduler: scheduler.NewService(sessions, logger, cfg.ReconcileInterval, cfg.IdleEviction),
		providers: p,
		logger:    logger,
	}

	if cfg.GRPCHealthAddress != "" {
		lis, err := net.Listen("tcp", cfg.GRPCHealthAddress)
		if err != nil {
			sessions.Close()
			p.close(logger)
			return nil, err
		}
		app.listener = lis
		app.grpc = grpc.NewServer()
		app.health = grpcserver.NewHealthServer(grpcChecks, 10*time.Second, logger)
		healthpb.RegisterHealthServer(app.grpc, app.health)
	}

	return app, nil
}

// Run запускает серверы и фоновое обслуживание сессий до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 2)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	if a.grpc != nil {
		go a.health.Monitor(ctx)
		go func() {
			a.logger.Info("gRPC health service listening on", slog.String("address", a.listener.Addr().String()))
			if err := a.grpc.Serve(a.listener); err != nil {
				errCh <- err
			}
		}()
	}

	go a.scheduler.Run(ctx)

	var runErr error
	select {
	case runErr = <-errCh:
	case <-ctx.Done():
	}

	timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	a.logger.Info("shutting down HTTP server gracefully")
	err := a.server.Shutdown(timeoutCtx)
	if a.grpc != nil {
		a.grpc.GracefulStop()
	}
	a.sessions.Close()
	a.providers.close(a.logger)
	if runErr != nil {
		a.logger.Error("server stopped with error", sl.Err(runErr))
		return runErr
	}
	return err
}
