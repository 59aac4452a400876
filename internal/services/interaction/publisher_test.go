package interaction

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/knowyourrights/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/knowyourrights/internal/models"
)

type captureChannel struct {
	exchange, key string
	msgs          []amqp.Publishing
}

func (c *captureChannel) Publish(exchange, key string, _, _ bool, msg amqp.Publishing) error {
	c.exchange, c.key = exchange, key
	c.msgs = append(c.msgs, msg)
	return nil
}

func TestAMQPPublisher_Publish(t *testing.T) {
	ch := &captureChannel{}
	event := models.InteractionEvent{
		RecordID:  "rec-1",
		AccountID: "acc-1",
		Email:     "user@example.com",
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Duration:  95,
		Location:  "CA",
	}

	require.NoError(t, NewAMQPPublisher(ch).Publish(context.Background(), event))
	require.Len(t, ch.msgs, 1)
	assert.Equal(t, rabbitmq.InteractionsExchange, ch.exchange)
	assert.Equal(t, rabbitmq.RecordedRoutingKey, ch.key)
	assert.Equal(t, "rec-1", ch.msgs[0].MessageId)
	assert.Equal(t, EventRecorded, ch.msgs[0].Type)

	var got models.InteractionEvent
	require.NoError(t, json.Unmarshal(ch.msgs[0].Body, &got))
	assert.Equal(t, event, got)
}
