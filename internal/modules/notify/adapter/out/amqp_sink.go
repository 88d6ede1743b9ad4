package out

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"shotwatch/internal/platform/id"
)

const DefaultExchange = "shotwatch.notifications"

// publisher is the part of *amqp.Channel the sink needs.
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// amqpEvent is the JSON envelope published for every notification.
type amqpEvent struct {
	Type    string `json:"type"`
	Body    string `json:"body,omitempty"`
	Media   string `json:"media,omitempty"`
	Caption string `json:"caption,omitempty"`
	File    string `json:"file,omitempty"`
}

// AMQPSink publishes notifications to a fanout exchange. Media files are
// published as raw bytes under a generated handle that later video events
// refer to.
type AMQPSink struct {
	conn     *amqp.Connection
	channel  publisher
	exchange string
	idGen    id.Generator
}

func NewAMQPSink(url, exchange string, idGen id.Generator) (*AMQPSink, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		exchange,
		"fanout", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &AMQPSink{conn: conn, channel: ch, exchange: exchange, idGen: idGen}, nil
}

func newAMQPSinkWithPublisher(p publisher, exchange string, idGen id.Generator) *AMQPSink {
	return &AMQPSink{channel: p, exchange: exchange, idGen: idGen}
}

func (s *AMQPSink) SendText(ctx context.Context, message string) error {
	return s.publishEvent(ctx, amqpEvent{Type: "text", Body: message})
}

func (s *AMQPSink) SendVideo(ctx context.Context, handle, caption string) error {
	return s.publishEvent(ctx, amqpEvent{Type: "video", Media: handle, Caption: caption})
}

func (s *AMQPSink) UploadMedia(ctx context.Context, path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read media: %w", err)
	}
	handle := s.idGen.New()
	err = s.channel.PublishWithContext(ctx, s.exchange, "", false, false, amqp.Publishing{
		ContentType:  mediaType(path),
		DeliveryMode: amqp.Persistent,
		MessageId:    handle,
		Type:         "media",
		Timestamp:    time.Now().UTC(),
		Headers:      amqp.Table{"file": filepath.Base(path)},
		Body:         raw,
	})
	if err != nil {
		return "", fmt.Errorf("publish media: %w", err)
	}
	log.Debugf("published %s as media %s (%d bytes)", path, handle, len(raw))
	return handle, nil
}

func (s *AMQPSink) publishEvent(ctx context.Context, event amqpEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event.Type, err)
	}
	err = s.channel.PublishWithContext(ctx, s.exchange, "", false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    s.idGen.New(),
		Type:         event.Type,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s event: %w", event.Type, err)
	}
	return nil
}

func (s *AMQPSink) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
