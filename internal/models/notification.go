package models

import "time"

// ReceiptMessage сообщение в очередь уведомлений после успешной оплаты.
type ReceiptMessage struct {
	Email     string    `json:"email"`
	PaymentID string    `json:"payment_id"`
	OrderID   string    `json:"order_id"`
	PlanType  PlanType  `json:"plan_type"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	PeriodEnd time.Time `json:"period_end"`
}

// ExpiringMessage сообщение о скором окончании оплаченного периода.
type ExpiringMessage struct {
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	PlanType  PlanType  `json:"plan_type"`
	PeriodEnd time.Time `json:"period_end"`
}
