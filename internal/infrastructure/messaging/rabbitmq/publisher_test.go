package rabbitmq

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
)

func TestPublishEvent_Validation(t *testing.T) {
	p := &Publisher{exchange: DefaultExchange, now: time.Now}

	assert.Error(t, p.PublishEvent(context.Background(), "", "m1", nil))
	assert.Error(t, p.PublishEvent(context.Background(), "k", " ", nil))
	assert.EqualError(t, p.PublishEvent(context.Background(), "k", "m1", nil), "publisher channel not ready")
}

func TestPublisher_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()

	rabbitC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "rabbitmq:3-management",
			ExposedPorts: []string{"5672/tcp"},
			WaitingFor:   wait.ForLog("Server startup complete").WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rabbitC.Terminate(ctx) })

	host, err := rabbitC.Host(ctx)
	require.NoError(t, err)
	port, err := rabbitC.MappedPort(ctx, "5672")
	require.NoError(t, err)
	url := "amqp://guest:guest@" + host + ":" + port.Port() + "/"

	p, err := NewPublisher(url, "test.events")
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	conn, err := amqp.Dial(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	ch, err := conn.Channel()
	require.NoError(t, err)

	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	require.NoError(t, err)
	require.NoError(t, ch.QueueBind(q.Name, RoutingKeyEventUpdated, "test.events", false, nil))
	deliveries, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	require.NoError(t, err)

	ev := domain.Event{
		ID: "e1", Description: "Concierto", EventType: domain.EventTypeMusic,
		EventDate: time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC),
		ImageURL:  domain.StringPtr("https://cdn/e1.jpg"),
	}
	require.NoError(t, p.PublishEventUpdated(ctx, ev))

	select {
	case d := <-deliveries:
		var env Envelope
		require.NoError(t, json.Unmarshal(d.Body, &env))
		assert.Equal(t, RoutingKeyEventUpdated, env.Type)
		assert.Equal(t, d.MessageId, env.MessageID)
		assert.Equal(t, "application/json", d.ContentType)

		var data map[string]any
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, "e1", data["id"])
		assert.Equal(t, "2024-03-15T18:30:00", data["event_date"])
		assert.Equal(t, "https://cdn/e1.jpg", data["image_url"])
	case <-time.After(5 * time.Second):
		t.Fatal("no delivery")
	}

	t.Run("unbound_routing_key_is_not_an_error", func(t *testing.T) {
		assert.NoError(t, p.PublishEvent(ctx, "nobody.listens", "m-2", []byte(`{}`)))
	})
}
