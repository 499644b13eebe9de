// Package sender собирает процесс отправки уведомлений: очереди RabbitMQ и SMTP.
package sender

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/interview-billing/internal/config"
	"github.com/magabrotheeeer/interview-billing/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/interview-billing/internal/lib/sl"
	"github.com/magabrotheeeer/interview-billing/internal/lib/smtp"
	senderservice "github.com/magabrotheeeer/interview-billing/internal/services/sender"
)

// App процесс отправки писем.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.Service
	logger        *slog.Logger
}

// New подключается к брокеру и объявляет очереди уведомлений.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.NotificationQueues())
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	transport := smtp.NewTransport(cfg.SMTP, logger)

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderservice.New(transport, logger),
		logger:        logger,
	}, nil
}

// Run слушает очереди до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	consumers := map[string]rabbitmq.Handler{
		rabbitmq.QueueReceipt:  a.senderService.SendReceipt,
		rabbitmq.QueueExpiring: a.senderService.SendExpiring,
	}
	stopped := make([]<-chan struct{}, 0, len(consumers))
	for queue, handler := range consumers {
		done, err := rabbitmq.ConsumeMessages(ctx, a.ch, queue, a.logger, handler)
		if err != nil {
			a.logger.Error("failed to start consumer", slog.String("queue", queue), sl.Err(err))
			a.close()
			return err
		}
		stopped = append(stopped, done)
	}

	<-ctx.Done()
	a.logger.Info("sender service shutting down gracefully")
	// письма в работе должны успеть получить ack до закрытия канала
	for _, done := range stopped {
		<-done
	}
	a.close()
	return nil
}

func (a *App) close() {
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
}
