package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/joseph-ayodele/fuel-tracker/internal/common"
	"github.com/joseph-ayodele/fuel-tracker/internal/entity"
)

const publishTimeout = 5 * time.Second

// AMQPPublisher publishes events to a durable direct exchange.
type AMQPPublisher struct {
	conn       *amqp091.Connection
	channel    *amqp091.Channel
	exchange   string
	routingKey string
	logger     *slog.Logger
	now        func() time.Time

	// amqp channels are not safe for concurrent publishing
	mu sync.Mutex
}

func Dial(url, exchange, routingKey string, logger *slog.Logger) (*AMQPPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"direct", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	logger.Info("events.amqp.connected", "exchange", exchange, "routing_key", routingKey)
	return &AMQPPublisher{
		conn:       conn,
		channel:    channel,
		exchange:   exchange,
		routingKey: routingKey,
		logger:     logger,
		now:        time.Now,
	}, nil
}

func (p *AMQPPublisher) PublishReceiptStored(ctx context.Context, r *entity.Receipt) {
	p.publish(ctx, NewReceiptStoredMessage(r, p.now()))
}

func (p *AMQPPublisher) PublishReset(ctx context.Context) {
	p.publish(ctx, NewResetMessage(p.now()))
}

func (p *AMQPPublisher) publish(ctx context.Context, msg *Message) {
	msg.RequestID = common.RequestIDFromContext(ctx)
	msg.ChatID = common.ChatIDFromContext(ctx)

	body, err := msg.ToJSON()
	if err != nil {
		p.logger.ErrorContext(ctx, "events.publish.marshal_error", "type", msg.Type, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,
		p.routingKey,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    msg.OccurredAt,
			Type:         msg.Type,
			MessageId:    msg.RequestID,
			Body:         body,
		},
	)
	p.mu.Unlock()
	if err != nil {
		p.logger.WarnContext(ctx, "events.publish.error", "type", msg.Type, "error", err)
		return
	}

	p.logger.InfoContext(ctx, "events.publish.ok",
		"type", msg.Type,
		"exchange", p.exchange,
		"routing_key", p.routingKey,
	)
}

func (p *AMQPPublisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
