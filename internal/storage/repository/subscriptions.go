package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/interview-billing/internal/models"
)

// GetLatestActiveSubscription возвращает активную подписку пользователя, которая
// ещё действует, а если таких нет, то ту, что закончилась позже всех.
// Продление обновляет строку тарифа на месте, поэтому created_at для выбора не годится.
// Истёкшие строки со статусом active тоже возвращаются, срок проверяет вызывающий.
func (s *Storage) GetLatestActiveSubscription(ctx context.Context, userID string) (*models.Subscription, error) {
	const op = "storage.GetLatestActiveSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + ` FROM user_subscriptions
			  WHERE user_id = $1 AND status = $2
			  ORDER BY (current_period_end > NOW()) DESC, current_period_end DESC
			  LIMIT 1`
	sub, err := scanSubscription(s.DB.QueryRowContext(ctx, query, userID, models.SubscriptionStatusActive))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// FindSubscriptionsExpiringBetween ищет активные подписки, у которых период
// заканчивается в полуинтервале [from, to), вместе с адресом владельца.
func (s *Storage) FindSubscriptionsExpiringBetween(ctx context.Context, from, to time.Time) ([]*models.ExpiringSubscription, error) {
	const op = "storage.FindSubscriptionsExpiringBetween"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT s.id, s.user_id, s.plan_type, s.status, s.current_period_start,
				s.current_period_end, s.created_at, s.updated_at, p.email, p.full_name
			  FROM user_subscriptions s
			  JOIN profiles p ON p.id = s.user_id
			  WHERE s.status = $1
			    AND s.current_period_end >= $2
			    AND s.current_period_end < $3
			    AND p.email <> ''`
	rows, err := s.DB.QueryContext(ctx, query, models.SubscriptionStatusActive, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.ExpiringSubscription, 0)
	for rows.Next() {
		var e models.ExpiringSubscription
		if err := rows.Scan(&e.ID, &e.UserID, &e.PlanType, &e.Status, &e.CurrentPeriodStart,
			&e.CurrentPeriodEnd, &e.CreatedAt, &e.UpdatedAt, &e.Email, &e.FullName); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
