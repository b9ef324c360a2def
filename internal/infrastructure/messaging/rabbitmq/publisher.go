package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
)

const (
	DefaultExchange = "city.events"

	RoutingKeyEventUpdated = "event.updated"

	// wait window for the broker confirm
	publishWait = 150 * time.Millisecond
)

type Publisher struct {
	url      string
	exchange string
	now      func() time.Time

	mu sync.Mutex

	conn *amqp.Connection
	ch   *amqp.Channel

	confirmCh <-chan amqp.Confirmation
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}

	p := &Publisher{
		url:      url,
		exchange: exchange,
		now:      time.Now,
	}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Publisher) connect() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return err
	}

	if err := ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return err
	}

	// enable publisher confirms
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return err
	}

	p.conn = conn
	p.ch = ch
	p.confirmCh = ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
	return nil
}

// Envelope is the message body of every domain event.
type Envelope struct {
	MessageID  string          `json:"message_id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

type eventUpdatedData struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Location    string  `json:"location"`
	EventType   string  `json:"event_type"`
	EventDate   string  `json:"event_date"`
	ImageURL    *string `json:"image_url"`
}

// PublishEventUpdated announces a saved edit. Nobody is required to listen,
// so the message is not mandatory.
func (p *Publisher) PublishEventUpdated(ctx context.Context, ev domain.Event) error {
	data, err := json.Marshal(eventUpdatedData{
		ID:          ev.ID,
		Description: ev.Description,
		Location:    ev.Location,
		EventType:   ev.EventType,
		EventDate:   domain.FormatTimestamp(ev.EventDate),
		ImageURL:    ev.ImageURL,
	})
	if err != nil {
		return err
	}

	env := Envelope{
		MessageID:  uuid.NewString(),
		Type:       RoutingKeyEventUpdated,
		OccurredAt: p.now().UTC(),
		Data:       data,
	}
	body, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return p.PublishEvent(ctx, RoutingKeyEventUpdated, env.MessageID, body)
}

// PublishEvent publishes a JSON body to the topic exchange and waits briefly for the confirm.
func (p *Publisher) PublishEvent(ctx context.Context, routingKey, messageID string, body []byte) error {
	if routingKey == "" {
		return errors.New("missing routingKey")
	}
	if strings.TrimSpace(messageID) == "" {
		return errors.New("missing messageID")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil {
		return errors.New("publisher channel not ready")
	}

	err := p.ch.PublishWithContext(
		ctx,
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			MessageId:    messageID,
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    p.now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		return err
	}

	select {
	case conf := <-p.confirmCh:
		if !conf.Ack {
			return errors.New("publish nack")
		}
		return nil
	case <-time.After(publishWait):
		// no confirm inside the window; the event is advisory so this is not an error
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
