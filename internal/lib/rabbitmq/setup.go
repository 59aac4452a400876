package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

const (
	// InteractionsExchange обменник событий о записях взаимодействий.
	InteractionsExchange = "interactions"
	// RecordedRoutingKey ключ маршрутизации завершенной записи.
	RecordedRoutingKey = "recorded"
	// SummaryQueue очередь воркера карточек.
	SummaryQueue = "interactions.summary"
)

// QueueConfig очередь и ключ, которым она привязана к обменнику.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// InteractionQueues очереди, привязанные к InteractionsExchange.
func InteractionQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: SummaryQueue, RoutingKey: RecordedRoutingKey},
	}
}

// SetupChannel открывает канал, объявляет direct-обменник exchange и
// привязывает к нему очереди.
func SetupChannel(conn *amqp.Connection, exchange string, queues []QueueConfig) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = ch.Qos(10, 0, false); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("%s: set qos: %w", op, err)
	}

	err = ch.ExchangeDeclare(exchange, "direct", true, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, q := range queues {
		if _, err = ch.QueueDeclare(q.QueueName, true, false, false, false, nil); err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("%s: declare %s: %w", op, q.QueueName, err)
		}
		if err = ch.QueueBind(q.QueueName, q.RoutingKey, exchange, false, nil); err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("%s: bind %s: %w", op, q.QueueName, err)
		}
	}
	return ch, nil
}
