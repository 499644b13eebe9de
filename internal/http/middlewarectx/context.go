// Package middlewarectx содержит HTTP middleware: проверку сессии пользователя,
// проверку административного токена и ограничение частоты запросов.
package middlewarectx

import (
	"context"
	"strings"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// ExternalID идентификатор пользователя у провайдера аутентификации.
	ExternalID Key = "external_id"
	// UserID внутренний идентификатор, выведенный из ExternalID.
	UserID Key = "user_id"
	// Email адрес пользователя из сессии.
	Email Key = "email"
	// Subject владелец административного токена.
	Subject Key = "subject"
)

// UserIDFrom возвращает внутренний идентификатор пользователя из контекста.
func UserIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserID).(string)
	return id, ok && id != ""
}

func bearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}
