// Package entitlement вычисляет, есть ли у пользователя доступ к платному тарифу.
package entitlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/interview-billing/internal/lib/month"
	"github.com/magabrotheeeer/interview-billing/internal/lib/sl"
	"github.com/magabrotheeeer/interview-billing/internal/models"
	"github.com/magabrotheeeer/interview-billing/internal/storage/repository"
)

// Repository источник подписок.
type Repository interface {
	GetLatestActiveSubscription(ctx context.Context, userID string) (*models.Subscription, error)
}

// Entitlement снимок доступа пользователя на момент запроса.
type Entitlement struct {
	HasPro       bool                 `json:"has_pro"`
	PlanType     models.PlanType      `json:"plan_type"`
	DaysLeft     int                  `json:"days_left"`
	Subscription *models.Subscription `json:"subscription,omitempty"`
}

// HasProPlan истинно, если подписка активна, не истекла и относится к платному тарифу.
func HasProPlan(sub *models.Subscription, now time.Time) bool {
	if sub == nil {
		return false
	}
	return sub.Status == models.SubscriptionStatusActive &&
		now.Before(sub.CurrentPeriodEnd) &&
		sub.PlanType.Paid()
}

// Service читает доступ из хранилища на каждый вызов, без кэша.
type Service struct {
	repo Repository
	log  *slog.Logger
	now  func() time.Time
}

// New создаёт сервис доступа.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

// Get возвращает доступ пользователя. Отсутствие подписки это бесплатный тариф, не ошибка.
func (s *Service) Get(ctx context.Context, userID string) (*Entitlement, error) {
	const op = "entitlement.Get"

	sub, err := s.repo.GetLatestActiveSubscription(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &Entitlement{PlanType: models.PlanFree}, nil
		}
		s.log.Error("failed to load subscription", slog.String("op", op), slog.String("user_id", userID), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	if !HasProPlan(sub, now) {
		return &Entitlement{PlanType: models.PlanFree, Subscription: sub}, nil
	}
	return &Entitlement{
		HasPro:       true,
		PlanType:     sub.PlanType,
		DaysLeft:     month.DaysLeft(now, sub.CurrentPeriodEnd),
		Subscription: sub,
	}, nil
}

// HasPro короткая форма Get для middleware и квот.
func (s *Service) HasPro(ctx context.Context, userID string) (bool, error) {
	e, err := s.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	return e.HasPro, nil
}
