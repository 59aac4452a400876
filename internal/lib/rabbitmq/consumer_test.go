package rabbitmq

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
)

type countingAcker struct {
	acks, nacks atomic.Int32
}

func (a *countingAcker) Ack(uint64, bool) error        { a.acks.Add(1); return nil }
func (a *countingAcker) Nack(uint64, bool, bool) error { a.nacks.Add(1); return nil }
func (a *countingAcker) Reject(uint64, bool) error     { return nil }

func TestDispatch_WaitsForInFlightHandlers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	acker := &countingAcker{}
	delivery := make(chan amqp.Delivery, 1)

	started := make(chan struct{})
	release := make(chan struct{})
	done := dispatch(ctx, newNoopLogger(), delivery, func(context.Context, []byte) error {
		close(started)
		<-release
		return nil
	})

	delivery <- amqp.Delivery{Acknowledger: acker, DeliveryTag: 1, Body: []byte(`{}`)}
	<-started
	cancel()

	select {
	case <-done:
		t.Fatal("done closed while a handler is still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("done not closed after handler finished")
	}
	assert.Equal(t, int32(1), acker.acks.Load())
}

func TestDispatch_HandlerErrorNacks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	acker := &countingAcker{}
	delivery := make(chan amqp.Delivery)

	done := dispatch(ctx, newNoopLogger(), delivery, func(context.Context, []byte) error {
		return errors.New("db down")
	})
	delivery <- amqp.Delivery{Acknowledger: acker, DeliveryTag: 1}
	close(delivery)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("done not closed after delivery channel closed")
	}
	cancel()
	assert.Equal(t, int32(1), acker.nacks.Load())
	assert.Zero(t, acker.acks.Load())
}
