package models

import "time"

// PaymentStatusCompleted единственный статус, который сейчас пишет верификатор.
const PaymentStatusCompleted = "completed"

// Payment запись о подтверждённой оплате. Строки только добавляются.
type Payment struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	RazorpayOrderID   string    `json:"razorpay_order_id"`
	RazorpayPaymentID string    `json:"razorpay_payment_id"`
	RazorpaySignature string    `json:"-"`
	Amount            int64     `json:"amount"`
	Currency          string    `json:"currency"`
	PlanType          PlanType  `json:"plan_type"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
}
