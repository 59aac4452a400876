package rabbitmq

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// Channel часть *amqp.Channel, нужная для публикации.
type Channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Envelope метаданные сообщения. MessageID используется потребителем
// для распознавания повторной доставки.
type Envelope struct {
	Exchange   string
	RoutingKey string
	MessageID  string
	Type       string
}

// PublishMessage публикует payload в JSON с постоянной доставкой.
func PublishMessage(ch Channel, env Envelope, payload any) error {
	const op = "rabbitmq.PublishMessage"
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = ch.Publish(env.Exchange, env.RoutingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    env.MessageID,
		Type:         env.Type,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("%s: publish to %s/%s: %w", op, env.Exchange, env.RoutingKey, err)
	}
	return nil
}
