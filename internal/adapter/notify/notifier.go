package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/okateva/resto/internal/domain/model"
)

// statusEvent is the payload published for every successful transition.
type statusEvent struct {
	OrderID     int64  `json:"order_id"`
	OrderNumber string `json:"order_number"`
	Status      string `json:"status"`
	OccurredAt  string `json:"occurred_at"`
}

// AMQPNotifier publishes order status events to a durable exchange. The
// notification pipeline downstream (templating, transport) is a separate
// system; this side only emits the event.
type AMQPNotifier struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	logger   *slog.Logger
}

// NewAMQPNotifier dials the broker and declares the exchange.
func NewAMQPNotifier(url, exchange string, logger *slog.Logger) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	if err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	return &AMQPNotifier{conn: conn, channel: ch, exchange: exchange, logger: logger}, nil
}

// OrderStatusChanged publishes one status event.
func (n *AMQPNotifier) OrderStatusChanged(ctx context.Context, orderID int64, number string, status model.OrderStatus) error {
	body, err := json.Marshal(statusEvent{
		OrderID:     orderID,
		OrderNumber: number,
		Status:      string(status),
		OccurredAt:  time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	return n.channel.PublishWithContext(ctx,
		n.exchange,
		"order.status."+string(status),
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			ContentType:  "application/json",
			Body:         body,
		},
	)
}

// Close releases the channel and connection.
func (n *AMQPNotifier) Close() {
	if n.channel != nil {
		_ = n.channel.Close()
	}
	if n.conn != nil {
		_ = n.conn.Close()
	}
}

// LogNotifier is the fallback when no broker is configured: events are only
// logged, so development environments stay fully exercisable.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier constructs LogNotifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// OrderStatusChanged logs the event instead of publishing it.
func (n *LogNotifier) OrderStatusChanged(_ context.Context, orderID int64, number string, status model.OrderStatus) error {
	n.logger.Info("order status notification",
		slog.Int64("order_id", orderID),
		slog.String("order_number", number),
		slog.String("status", string(status)),
	)
	return nil
}
