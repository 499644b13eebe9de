package models

import "time"

// PlanType тариф подписки.
type PlanType string

const (
	PlanFree       PlanType = "free"
	PlanPro        PlanType = "pro"
	PlanEnterprise PlanType = "enterprise"
)

// Valid сообщает, известен ли тариф.
func (p PlanType) Valid() bool {
	switch p {
	case PlanFree, PlanPro, PlanEnterprise:
		return true
	}
	return false
}

// Paid сообщает, даёт ли тариф доступ к платным функциям.
func (p PlanType) Paid() bool {
	return p == PlanPro || p == PlanEnterprise
}

// Статусы подписки.
const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusCanceled = "canceled"
)

// Subscription текущая подписка пользователя на тариф.
// На пару (UserID, PlanType) приходится одна строка.
type Subscription struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"user_id"`
	PlanType           PlanType  `json:"plan_type"`
	Status             string    `json:"status"`
	CurrentPeriodStart time.Time `json:"current_period_start"`
	CurrentPeriodEnd   time.Time `json:"current_period_end"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// ExpiringSubscription подписка, срок которой скоро истекает, вместе с адресом владельца.
type ExpiringSubscription struct {
	Subscription
	Email    string
	FullName string
}
