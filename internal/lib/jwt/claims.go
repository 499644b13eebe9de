// Package jwt реализует выпуск и разбор JWT токенов сервиса.
//
// CapabilityClaims описывают временный токен-возможность (например,
// административный доступ) с явным сроком действия. SessionClaims описывают
// сессионный токен, выпущенный провайдером аутентификации.
package jwt

import "github.com/golang-jwt/jwt/v5"

// CapabilityAdmin возможность доступа к административной консоли.
const CapabilityAdmin = "admin"

// CapabilityClaims описывает токен-возможность.
type CapabilityClaims struct {
	Capability           string `json:"cap"` // Выданная возможность
	jwt.RegisteredClaims        // Subject, ExpiresAt, IssuedAt
}

// SessionClaims описывает сессию пользователя из провайдера аутентификации.
// Subject содержит внешний идентификатор пользователя.
type SessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}
