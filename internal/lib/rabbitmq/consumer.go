package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/interview-billing/internal/lib/sl"
)

const maxInFlight = 10

// Handler обрабатывает тело сообщения. Ошибка возвращает сообщение в очередь.
type Handler func(body []byte) error

// ConsumeMessages запускает потребителя очереди queueName. Сообщения
// обрабатываются параллельно, не более maxInFlight одновременно; потребитель
// останавливается по отмене ctx или закрытию канала.
// Возвращённый канал закрывается, когда приём остановлен и все начатые
// обработчики завершились. Канал amqp можно закрывать только после этого.
func ConsumeMessages(ctx context.Context, ch *amqp.Channel, queueName string, log *slog.Logger, handler Handler) (<-chan struct{}, error) {
	const op = "rabbitmq.ConsumeMessages"
	deliveries, err := ch.Consume(
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log = log.With(slog.String("op", op), slog.String("queue", queueName))
	return dispatch(ctx, deliveries, log, handler), nil
}

func dispatch(ctx context.Context, deliveries <-chan amqp.Delivery, log *slog.Logger, handler Handler) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		var wg sync.WaitGroup
		defer func() {
			wg.Wait()
			close(done)
		}()

		sem := make(chan struct{}, maxInFlight)
		for {
			select {
			case d, ok := <-deliveries:
				if !ok {
					log.Info("delivery channel closed")
					return
				}
				sem <- struct{}{}
				wg.Add(1)
				go func(delivery amqp.Delivery) {
					defer func() {
						<-sem
						wg.Done()
					}()
					handle(log, delivery, handler)
				}(d)
			case <-ctx.Done():
				return
			}
		}
	}()
	return done
}

func handle(log *slog.Logger, delivery amqp.Delivery, handler Handler) {
	if err := handler(delivery.Body); err != nil {
		log.Error("failed to handle message", sl.Err(err))
		if nackErr := delivery.Nack(false, !delivery.Redelivered); nackErr != nil {
			log.Error("failed to nack message", sl.Err(nackErr))
		}
		return
	}
	if ackErr := delivery.Ack(false); ackErr != nil {
		log.Error("failed to ack message", sl.Err(ackErr))
	}
}
