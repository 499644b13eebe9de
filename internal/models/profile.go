// Package models содержит доменные структуры биллинга: профиль,
// платёж, подписку и сообщения уведомлений.
package models

import "time"

// Profile представляет пользователя, которого знает база данных.
// ID выводится из внешнего идентификатора провайдера аутентификации.
type Profile struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"external_id"`
	Email      string    `json:"email"`
	FullName   string    `json:"full_name"`
	CreatedAt  time.Time `json:"created_at"`
}
