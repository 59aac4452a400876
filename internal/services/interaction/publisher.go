package interaction

import (
	"context"
	"sync"

	"github.com/magabrotheeeer/knowyourrights/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/knowyourrights/internal/models"
)

// EventRecorded тип сообщения о сохраненной записи.
const EventRecorded = "interaction.recorded"

// AMQPPublisher публикует события в обменник interactions.
// Канал amqp не допускает конкурентной публикации, вызовы сериализуются.
type AMQPPublisher struct {
	mu sync.Mutex
	ch rabbitmq.Channel
}

// NewAMQPPublisher создает издателя поверх настроенного канала.
func NewAMQPPublisher(ch rabbitmq.Channel) *AMQPPublisher {
	return &AMQPPublisher{ch: ch}
}

// Publish отправляет событие с ключом recorded. ID записи служит ID сообщения.
func (p *AMQPPublisher) Publish(_ context.Context, event models.InteractionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return rabbitmq.PublishMessage(p.ch, rabbitmq.Envelope{
		Exchange:   rabbitmq.InteractionsExchange,
		RoutingKey: rabbitmq.RecordedRoutingKey,
		MessageID:  event.RecordID,
		Type:       EventRecorded,
	}, event)
}
