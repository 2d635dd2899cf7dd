package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/docentdesk/booking/internal/adapters/rabbit"
	"github.com/docentdesk/booking/internal/config"
	"github.com/docentdesk/booking/internal/notify"
	"github.com/docentdesk/booking/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdownOtel, err := observability.SetupOTel(context.Background(), cfg)
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdownOtel()

	logger := observability.NewLogger()

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to rabbitmq: %v", err)
	}
	defer conn.Close()

	consumer, err := rabbit.NewConsumer(conn, "notifications.q")
	if err != nil {
		log.Fatalf("failed to create consumer: %v", err)
	}

	mailer := notify.NewMailer(cfg)
	worker := NewNotifier(consumer, mailer, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := worker.Run(ctx); err != nil {
			logger.WithError(err).Error("notifier stopped")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("Shutdown notifier")
}

type Notifier struct {
	consumer *rabbit.Consumer
	sender   notify.Sender
	logger   observability.Logger
}

func NewNotifier(consumer *rabbit.Consumer, sender notify.Sender, logger observability.Logger) *Notifier {
	return &Notifier{consumer: consumer, sender: sender, logger: logger}
}

func (n *Notifier) Run(ctx context.Context) error {
	deliveries, err := n.consumer.Consume(ctx)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			n.handle(d)
		}
	}
}

// handle sends the email for one delivery. Failures are logged and the
// message is acked anyway: notification delivery is best-effort and a bad
// message must not wedge the queue.
func (n *Notifier) handle(d amqp.Delivery) {
	defer d.Ack(false)

	var msg notify.Message
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		n.logger.WithError(err).Error("malformed notification payload")
		return
	}

	var subject, body string
	switch d.RoutingKey {
	case notify.KeyBookingCreated:
		subject, body = notify.ConfirmationEmail(msg)
	case notify.KeyBookingCancelled:
		subject, body = notify.CancellationEmail(msg)
	default:
		n.logger.WithField("routing_key", d.RoutingKey).Warn("unknown notification type")
		return
	}

	if err := n.sender.Send(msg.Email, subject, body); err != nil {
		observability.NotificationFailures.Inc()
		n.logger.WithError(err).WithField("reference", msg.Reference).Error("failed to send notification email")
	}
}
