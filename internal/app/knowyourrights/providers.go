package knowyourrights

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/knowyourrights/internal/cache"
	"github.com/magabrotheeeer/knowyourrights/internal/config"
	"github.com/magabrotheeeer/knowyourrights/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/knowyourrights/internal/lib/sl"
	"github.com/magabrotheeeer/knowyourrights/internal/migrations"
	"github.com/magabrotheeeer/knowyourrights/internal/providers/generation"
	"github.com/magabrotheeeer/knowyourrights/internal/providers/identity"
	"github.com/magabrotheeeer/knowyourrights/internal/providers/payment"
	"github.com/magabrotheeeer/knowyourrights/internal/services/guide"
	"github.com/magabrotheeeer/knowyourrights/internal/services/interaction"
	"github.com/magabrotheeeer/knowyourrights/internal/services/session"
	"github.com/magabrotheeeer/knowyourrights/internal/storage/repository"
)

const (
	modeLive   = "live"
	modeStatic = "static"
	modeMemory = "memory"
)

// providers внешние зависимости, выбранные один раз при старте.
// Отсутствующая в окружении разработки зависимость заменяется
// статической или хранящейся в памяти реализацией.
type providers struct {
	db    *repository.Storage
	cache *cache.Cache
	conn  *amqp.Connection
	ch    *amqp.Channel

	identity     identity.Provider
	payment      payment.Provider
	generator    generation.Provider
	persister    session.Persister
	guideFetcher guide.Fetcher
	guideCache   guide.Cache
	interactions interaction.Repository
	publisher    interaction.Publisher

	modes  map[string]string
	checks map[string]func(ctx context.Context) error
}

func selectProviders(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*providers, error) {
	const op = "app.selectProviders"
	log := logger.With(slog.String("op", op))

	if err := cfg.Collaborators(); err != nil {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		log.Warn("running with demo collaborators", sl.Err(err))
	}

	p := &providers{
		modes:  make(map[string]string),
		checks: make(map[string]func(ctx context.Context) error),
	}

	if err := p.selectStorage(ctx, cfg, log); err != nil {
		p.close(log)
		return nil, err
	}
	if err := p.selectCache(ctx, cfg, log); err != nil {
		p.close(log)
		return nil, err
	}
	if err := p.selectBroker(cfg, log); err != nil {
		p.close(log)
		return nil, err
	}

	gen, err := generation.New(ctx, cfg.Generation)
	if err != nil {
		if cfg.IsProduction() {
			p.close(log)
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		log.Warn("generation provider unavailable, using templates", sl.Err(err))
		gen = generation.Static{}
	}
	p.generator = gen
	p.modes["generation"] = gen.Name()

	if cfg.StripeSecretKey != "" {
		p.payment = payment.NewStripe(cfg.Payment, cfg.AppURL, logger)
		p.modes["payment"] = modeLive
	} else {
		p.payment = payment.NewStatic(cfg.AppURL)
		p.modes["payment"] = modeStatic
	}
	return p, nil
}

func (p *providers) selectStorage(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	if cfg.StorageConnectionString != "" {
		db, err := repository.New(ctx, cfg.StorageConnectionString)
		if err == nil {
			err = migrations.Run(db.DB, cfg.MigrationsPath)
			if err != nil {
				_ = db.Close()
			}
		}
		switch {
		case err == nil:
			p.db = db
			p.identity = identity.NewLive(db)
			p.guideFetcher = db
			p.interactions = db
			p.modes["storage"] = modeLive
			p.checks["postgres"] = db.Ready
			return nil
		case cfg.IsProduction():
			return err
		default:
			log.Warn("storage unavailable, using memory", sl.Err(err))
		}
	}
	p.identity = identity.NewStatic()
	p.interactions = interaction.NewMemoryRepository()
	p.modes["storage"] = modeMemory
	return nil
}

func (p *providers) selectCache(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	if cfg.AddressRedis != "" {
		c, err := cache.InitServer(ctx, cfg.RedisConnection)
		switch {
		case err == nil:
			p.cache = c
			p.persister = session.NewCachePersister(c, cfg.SessionTTL)
			p.guideCache = c
			p.modes["cache"] = modeLive
			p.checks["redis"] = func(ctx context.Context) error { return c.Db.Ping(ctx).Err() }
			return nil
		case cfg.IsProduction():
			return err
		default:
			log.Warn("redis unavailable, using memory", sl.Err(err))
		}
	}
	p.persister = session.NewMemoryPersister()
	p.modes["cache"] = modeMemory
	return nil
}

// selectBroker подключает публикацию событий о записях. Без брокера
// карточки генерируются только по запросу пользователя.
func (p *providers) selectBroker(cfg *config.Config, log *slog.Logger) error {
	if cfg.RabbitMQURL == "" {
		p.modes["broker"] = "disabled"
		return nil
	}
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err == nil {
		var ch *amqp.Channel
		ch, err = rabbitmq.SetupChannel(conn, rabbitmq.InteractionsExchange, rabbitmq.InteractionQueues())
		if err != nil {
			_ = conn.Close()
		} else {
			p.conn = conn
			p.ch = ch
			p.publisher = interaction.NewAMQPPublisher(ch)
			p.modes["broker"] = modeLive
			return nil
		}
	}
	if cfg.IsProduction() {
		return err
	}
	log.Warn("broker unavailable, interaction events disabled", sl.Err(err))
	p.modes["broker"] = "disabled"
	return nil
}

func (p *providers) close(log *slog.Logger) {
	if p.ch != nil {
		if err := p.ch.Close(); err != nil {
			log.Error("failed to close channel", sl.Err(err))
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			log.Error("failed to close connection", sl.Err(err))
		}
	}
	if p.cache != nil {
		if err := p.cache.Close(); err != nil {
			log.Error("failed to close redis", sl.Err(err))
		}
	}
	if p.db != nil {
		if err := p.db.Close(); err != nil {
			log.Error("failed to close storage", sl.Err(err))
		}
	}
}
