// Package scheduler периодически ищет подписки, которые заканчиваются
// примерно через сутки, и ставит уведомления в очередь. Окна соседних
// запусков идут встык, поэтому каждая подписка попадает ровно в одно.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/magabrotheeeer/interview-billing/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/interview-billing/internal/lib/sl"
	"github.com/magabrotheeeer/interview-billing/internal/models"
)

// DefaultInterval период запуска проверки.
const DefaultInterval = 12 * time.Hour

// Repository источник истекающих подписок.
type Repository interface {
	FindSubscriptionsExpiringBetween(ctx context.Context, from, to time.Time) ([]*models.ExpiringSubscription, error)
}

// Publisher отправляет сообщения в брокер.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// Service планировщик уведомлений.
type Service struct {
	repo      Repository
	publisher Publisher
	interval  time.Duration
	log       *slog.Logger
	now       func() time.Time

	mu sync.Mutex
	// notifiedUntil правая граница последнего обработанного окна.
	notifiedUntil time.Time
}

// New создает новый экземпляр Service.
func New(repo Repository, publisher Publisher, interval time.Duration, log *slog.Logger) *Service {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		interval:  interval,
		log:       log,
		now:       time.Now,
	}
}

// Run выполняет проверку сразу и затем по таймеру до отмены ctx.
func (s *Service) Run(ctx context.Context) {
	s.runOnceLogged(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.runOnceLogged(ctx)
		}
	}
}

func (s *Service) runOnceLogged(ctx context.Context) {
	if _, err := s.NotifyExpiringTomorrow(ctx); err != nil {
		s.log.Error("failed to notify expiring subscriptions", sl.Err(err))
	}
}

// NotifyExpiringTomorrow публикует уведомления для подписок, чей период
// заканчивается в окне [now+24h, now+24h+interval). Следующее окно
// начинается там, где закончилось предыдущее, так что повторный запуск в те
// же сутки не дублирует письма, а задержка тикера не оставляет пропусков.
// Возвращает число опубликованных сообщений.
func (s *Service) NotifyExpiringTomorrow(ctx context.Context) (int, error) {
	const op = "scheduler.NotifyExpiringTomorrow"
	log := s.log.With(slog.String("op", op))

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	from := now.Add(24 * time.Hour)
	if !s.notifiedUntil.IsZero() {
		from = s.notifiedUntil
	}
	to := now.Add(24*time.Hour + s.interval)
	if !to.After(from) {
		log.Info("window already processed", slog.Time("until", s.notifiedUntil))
		return 0, nil
	}

	log.Info("looking for expiring subscriptions", slog.Time("from", from), slog.Time("to", to))
	subs, err := s.repo.FindSubscriptionsExpiringBetween(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	s.notifiedUntil = to
	if len(subs) == 0 {
		log.Info("no expiring subscriptions found")
		return 0, nil
	}
	log.Info("found expiring subscriptions", slog.Int("count", len(subs)))

	published := 0
	for _, sub := range subs {
		msg := models.ExpiringMessage{
			Email:     sub.Email,
			FullName:  sub.FullName,
			PlanType:  sub.PlanType,
			PeriodEnd: sub.CurrentPeriodEnd,
		}
		if err := s.publisher.Publish(ctx, rabbitmq.RoutingKeyExpiring, msg); err != nil {
			log.Error("failed to publish message", slog.String("user_id", sub.UserID), sl.Err(err))
			continue
		}
		published++
	}
	return published, nil
}
