package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Dhoini/course-marketplace/pkg/logger"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// NotificationsExchange topic exchange для внешнего сервиса рассылки
	NotificationsExchange = "notifications"
	EmailRoutingKey       = "email.send"
)

// amqpChannel часть *amqp.Channel, используемая нотификатором
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQNotifier ставит письма в очередь RabbitMQ; доставкой занимается внешний mailer
type RabbitMQNotifier struct {
	conn    *amqp.Connection
	channel amqpChannel
	log     *logger.Logger
	mu      sync.Mutex
}

// NewRabbitMQNotifier подключается к RabbitMQ и объявляет exchange
func NewRabbitMQNotifier(url string, log *logger.Logger) (*RabbitMQNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		NotificationsExchange, // name
		"topic",               // type
		true,                  // durable
		false,                 // auto-deleted
		false,                 // internal
		false,                 // no-wait
		nil,                   // arguments
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	log.Infow("RabbitMQ notifier connected", "exchange", NotificationsExchange)
	return &RabbitMQNotifier{
		conn:    conn,
		channel: ch,
		log:     log,
	}, nil
}

// Send публикует письмо в exchange notifications
func (n *RabbitMQNotifier) Send(ctx context.Context, email Email) error {
	if email.To == "" {
		return ErrNoRecipient
	}

	body, err := json.Marshal(email)
	if err != nil {
		return fmt.Errorf("failed to marshal email: %w", err)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	err = n.channel.PublishWithContext(ctx,
		NotificationsExchange,
		EmailRoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		n.log.Errorw("Failed to publish email", "error", err, "to", email.To)
		return fmt.Errorf("failed to publish email: %w", err)
	}

	n.log.Debugw("Email queued", "to", email.To, "subject", email.Subject)
	return nil
}

// Close закрывает канал и соединение
func (n *RabbitMQNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.channel != nil {
		if err := n.channel.Close(); err != nil {
			n.log.Warnw("Error closing channel", "error", err)
		}
	}
	if n.conn != nil {
		return n.conn.Close()
	}
	return nil
}
