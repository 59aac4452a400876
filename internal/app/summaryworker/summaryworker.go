// Package summaryworker воркер карточек: потребляет события о сохраненных
// записях и генерирует для них карточки.
package summaryworker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/knowyourrights/internal/config"
	"github.com/magabrotheeeer/knowyourrights/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/knowyourrights/internal/lib/sl"
	"github.com/magabrotheeeer/knowyourrights/internal/lib/smtp"
	"github.com/magabrotheeeer/knowyourrights/internal/providers/generation"
	"github.com/magabrotheeeer/knowyourrights/internal/services/script"
	"github.com/magabrotheeeer/knowyourrights/internal/services/summary"
	"github.com/magabrotheeeer/knowyourrights/internal/storage/repository"
)

// App воркер карточек.
type App struct {
	db      *repository.Storage
	conn    *amqp.Connection
	ch      *amqp.Channel
	summary *summary.Service
	logger  *slog.Logger
}

// New подключает хранилище, брокер и генератор.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.InteractionsExchange, rabbitmq.InteractionQueues())
	if err != nil {
		closeResources(nil, conn, db, logger)
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	gen, err := generation.New(ctx, cfg.Generation)
	if err != nil {
		closeResources(ch, conn, db, logger)
		return nil, err
	}
	cards := script.NewService(gen, logger, nil)

	var transport smtp.TransportInterface
	if cfg.SMTPHost != "" {
		transport = smtp.NewTransport(cfg.SMTP, logger)
	} else {
		logger.Warn("SMTP_HOST is not set, summary cards will not be emailed")
	}

	return &App{
		db:      db,
		conn:    conn,
		ch:      ch,
		summary: summary.NewService(db, cards, transport, logger),
		logger:  logger,
	}, nil
}

// Run потребляет очередь до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	done, err := rabbitmq.ConsumerMessage(ctx, a.logger, a.ch, rabbitmq.SummaryQueue, a.summary.Handle)
	if err != nil {
		a.logger.Error("failed to start summary consumer", sl.Err(err))
		closeResources(a.ch, a.conn, a.db, a.logger)
		return err
	}

	<-ctx.Done()
	a.logger.Info("summary worker shutting down gracefully")
	<-done
	closeResources(a.ch, a.conn, a.db, a.logger)
	return nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, db *repository.Storage, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", sl.Err(err))
		}
	}
	if db != nil {
		if err := db.Close(); err != nil {
			logger.Error("failed to close storage", sl.Err(err))
		}
	}
}
