//go:build integration

package queue

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirinyoku/deskgo/internal/domain"
	"github.com/kirinyoku/deskgo/internal/events"
)

func TestPublishDeliversToQueue(t *testing.T) {
	url := os.Getenv("TEST_RABBITMQ_URL")
	if url == "" {
		t.Skip("TEST_RABBITMQ_URL is not set")
	}

	queueName := "deskgo.test." + time.Now().Format("150405.000000")
	p := NewPublisher(url, queueName, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { _ = p.Close() })

	ev := events.New(events.ReservationReturned, domain.Reservation{
		ID: 9, EmployeeID: 4, SeatID: 2, Status: domain.StatusCompleted,
	}, time.Now())
	require.NoError(t, p.Publish(context.Background(), ev))

	conn, err := amqp.Dial(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ch, err := conn.Channel()
	require.NoError(t, err)
	t.Cleanup(func() { _, _ = ch.QueueDelete(queueName, false, false, false) })

	var msg amqp.Delivery
	require.Eventually(t, func() bool {
		var ok bool
		msg, ok, err = ch.Get(queueName, true)
		return err == nil && ok
	}, 5*time.Second, 50*time.Millisecond)

	var got events.Event
	require.NoError(t, json.Unmarshal(msg.Body, &got))
	assert.Equal(t, events.ReservationReturned, got.Type)
	assert.Equal(t, int64(9), got.ReservationID)
	assert.Equal(t, "reservation.returned", msg.Type)
}
