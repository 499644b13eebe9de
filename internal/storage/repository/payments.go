package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/magabrotheeeer/interview-billing/internal/models"
)

const paymentColumns = `id, user_id, razorpay_order_id, razorpay_payment_id, razorpay_signature,
	amount, currency, plan_type, status, created_at`

const subscriptionColumns = `id, user_id, plan_type, status, current_period_start,
	current_period_end, created_at, updated_at`

func scanPayment(row interface{ Scan(...any) error }) (*models.Payment, error) {
	var p models.Payment
	if err := row.Scan(&p.ID, &p.UserID, &p.RazorpayOrderID, &p.RazorpayPaymentID, &p.RazorpaySignature,
		&p.Amount, &p.Currency, &p.PlanType, &p.Status, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanSubscription(row interface{ Scan(...any) error }) (*models.Subscription, error) {
	var sub models.Subscription
	if err := row.Scan(&sub.ID, &sub.UserID, &sub.PlanType, &sub.Status, &sub.CurrentPeriodStart,
		&sub.CurrentPeriodEnd, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
		return nil, err
	}
	return &sub, nil
}

// VerifiedPayment итог записи подтверждённой оплаты.
// Replayed выставляется, если платёж с таким идентификатором шлюза уже был записан.
type VerifiedPayment struct {
	Payment      models.Payment
	Subscription models.Subscription
	Replayed     bool
}

// RecordVerifiedPayment в одной транзакции добавляет платёж и продлевает подписку
// по паре (user_id, plan_type). Повтор с тем же razorpay_payment_id ничего не меняет
// и возвращает уже сохранённые строки.
func (s *Storage) RecordVerifiedPayment(ctx context.Context, payment models.Payment, sub models.Subscription) (*VerifiedPayment, error) {
	const op = "storage.RecordVerifiedPayment"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: begin: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	insertPayment := `INSERT INTO payments (id, user_id, razorpay_order_id, razorpay_payment_id,
				razorpay_signature, amount, currency, plan_type, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  ON CONFLICT (razorpay_payment_id) DO NOTHING
			  RETURNING ` + paymentColumns
	saved, err := scanPayment(tx.QueryRowContext(ctx, insertPayment,
		payment.ID, payment.UserID, payment.RazorpayOrderID, payment.RazorpayPaymentID,
		payment.RazorpaySignature, payment.Amount, payment.Currency, payment.PlanType, payment.Status))

	if errors.Is(err, sql.ErrNoRows) {
		result, err := replayedPayment(ctx, tx, payment.RazorpayPaymentID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("%s: commit: %w", op, err)
		}
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: insert payment: %w", op, err)
	}

	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	upsertSubscription := `INSERT INTO user_subscriptions (id, user_id, plan_type, status,
				current_period_start, current_period_end)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  ON CONFLICT (user_id, plan_type) DO UPDATE
			  SET status = EXCLUDED.status,
			      current_period_start = EXCLUDED.current_period_start,
			      current_period_end = EXCLUDED.current_period_end,
			      updated_at = NOW()
			  RETURNING ` + subscriptionColumns
	savedSub, err := scanSubscription(tx.QueryRowContext(ctx, upsertSubscription,
		sub.ID, sub.UserID, sub.PlanType, sub.Status, sub.CurrentPeriodStart, sub.CurrentPeriodEnd))
	if err != nil {
		return nil, fmt.Errorf("%s: upsert subscription: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, err)
	}
	return &VerifiedPayment{Payment: *saved, Subscription: *savedSub}, nil
}

func replayedPayment(ctx context.Context, tx *sql.Tx, gatewayPaymentID string) (*VerifiedPayment, error) {
	existing, err := scanPayment(tx.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE razorpay_payment_id = $1`, gatewayPaymentID))
	if err != nil {
		return nil, fmt.Errorf("load existing payment: %w", err)
	}

	result := &VerifiedPayment{Payment: *existing, Replayed: true}
	sub, err := scanSubscription(tx.QueryRowContext(ctx,
		`SELECT `+subscriptionColumns+` FROM user_subscriptions WHERE user_id = $1 AND plan_type = $2`,
		existing.UserID, existing.PlanType))
	switch {
	case err == nil:
		result.Subscription = *sub
	case errors.Is(err, sql.ErrNoRows):
	default:
		return nil, fmt.Errorf("load existing subscription: %w", err)
	}
	return result, nil
}

// ListPaymentsByUser возвращает платежи пользователя, новые первыми.
func (s *Storage) ListPaymentsByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Payment, error) {
	const op = "storage.ListPaymentsByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + paymentColumns + ` FROM payments
			  WHERE user_id = $1
			  ORDER BY created_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	res, err := collectPayments(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// ListPayments возвращает все платежи для администратора.
func (s *Storage) ListPayments(ctx context.Context, limit, offset int) ([]*models.Payment, error) {
	const op = "storage.ListPayments"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + paymentColumns + ` FROM payments
			  ORDER BY created_at DESC
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	res, err := collectPayments(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

func collectPayments(rows *sql.Rows) ([]*models.Payment, error) {
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.Payment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}
