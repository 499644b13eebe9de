// Package quota ограничивает число бесплатных пробных интервью в месяц.
package quota

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/interview-billing/internal/lib/metrics"
	"github.com/magabrotheeeer/interview-billing/internal/lib/month"
	"github.com/magabrotheeeer/interview-billing/internal/lib/sl"
)

// ErrQuotaExceeded лимит бесплатного тарифа на текущий месяц исчерпан.
var ErrQuotaExceeded = errors.New("free interview quota exceeded")

// Entitlements проверяет платный доступ.
type Entitlements interface {
	HasPro(ctx context.Context, userID string) (bool, error)
}

// Counter месячные счётчики в Redis.
type Counter interface {
	IncrUntil(ctx context.Context, key string, expireAt time.Time) (int64, error)
	Decr(ctx context.Context, key string) error
	Counter(ctx context.Context, key string) (int64, error)
}

// Usage состояние квоты пользователя.
type Usage struct {
	Unlimited bool  `json:"unlimited"`
	Used      int64 `json:"used"`
	Limit     int64 `json:"limit"`
	Remaining int64 `json:"remaining"`
}

// Service сервис квот.
type Service struct {
	entitlements Entitlements
	counter      Counter
	limit        int64
	log          *slog.Logger
	now          func() time.Time
}

// New создаёт сервис квот с лимитом perMonth бесплатных интервью.
func New(entitlements Entitlements, counter Counter, perMonth int, log *slog.Logger) *Service {
	return &Service{
		entitlements: entitlements,
		counter:      counter,
		limit:        int64(perMonth),
		log:          log,
		now:          time.Now,
	}
}

func (s *Service) key(userID string, now time.Time) string {
	return fmt.Sprintf("interviews:%s:%s", userID, month.Key(now))
}

// StartInterview списывает одно интервью из квоты. Платные пользователи не ограничены.
func (s *Service) StartInterview(ctx context.Context, userID string) (*Usage, error) {
	const op = "quota.StartInterview"
	log := s.log.With(slog.String("op", op), slog.String("user_id", userID))

	pro, err := s.entitlements.HasPro(ctx, userID)
	if err != nil {
		metrics.InterviewStarts.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if pro {
		metrics.InterviewStarts.WithLabelValues("unlimited").Inc()
		return &Usage{Unlimited: true}, nil
	}

	now := s.now()
	key := s.key(userID, now)
	used, err := s.counter.IncrUntil(ctx, key, now.Add(month.UntilNextMonth(now)))
	if err != nil {
		metrics.InterviewStarts.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if used > s.limit {
		if err := s.counter.Decr(ctx, key); err != nil {
			log.Error("failed to roll back quota counter", sl.Err(err))
		}
		log.Info("free interview quota exceeded", slog.Int64("limit", s.limit))
		metrics.InterviewStarts.WithLabelValues("quota_exceeded").Inc()
		return &Usage{Used: s.limit, Limit: s.limit}, fmt.Errorf("%s: %w", op, ErrQuotaExceeded)
	}

	metrics.InterviewStarts.WithLabelValues("allowed").Inc()
	return &Usage{Used: used, Limit: s.limit, Remaining: s.limit - used}, nil
}

// Usage возвращает расход квоты без списания.
func (s *Service) Usage(ctx context.Context, userID string) (*Usage, error) {
	const op = "quota.Usage"

	pro, err := s.entitlements.HasPro(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if pro {
		return &Usage{Unlimited: true}, nil
	}

	used, err := s.counter.Counter(ctx, s.key(userID, s.now()))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	used = min(used, s.limit)
	return &Usage{Used: used, Limit: s.limit, Remaining: s.limit - used}, nil
}
