// Package admin выдаёт временный административный доступ и обслуживает
// административные запросы.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/interview-billing/internal/lib/jwt"
	"github.com/magabrotheeeer/interview-billing/internal/lib/password"
	"github.com/magabrotheeeer/interview-billing/internal/models"
)

var (
	// ErrDisabled административный вход не настроен.
	ErrDisabled = errors.New("admin access is not configured")
	// ErrInvalidCredentials неверный пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

const (
	adminSubject    = "admin"
	defaultPageSize = 50
	maxPageSize     = 200
)

// TokenMaker выпускает токены-возможности.
type TokenMaker interface {
	GenerateCapabilityToken(subject, capability string) (string, time.Time, error)
}

// PaymentRepository источник платежей.
type PaymentRepository interface {
	ListPayments(ctx context.Context, limit, offset int) ([]*models.Payment, error)
}

// Settings изменяемые настройки шлюза.
type Settings interface {
	SetGatewayPublicKeyID(ctx context.Context, keyID string) error
}

// Session выданный токен доступа.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Service административный сервис.
type Service struct {
	passwordHash string
	tokens       TokenMaker
	payments     PaymentRepository
	settings     Settings
	log          *slog.Logger
}

// New создаёт административный сервис. Пустой passwordHash отключает вход.
func New(passwordHash string, tokens TokenMaker, payments PaymentRepository, settings Settings, log *slog.Logger) *Service {
	return &Service{
		passwordHash: passwordHash,
		tokens:       tokens,
		payments:     payments,
		settings:     settings,
		log:          log,
	}
}

// Login проверяет пароль и выдаёт токен с возможностью admin.
func (s *Service) Login(_ context.Context, pass string) (*Session, error) {
	const op = "admin.Login"
	log := s.log.With(slog.String("op", op))

	if s.passwordHash == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrDisabled)
	}
	if err := password.Compare(s.passwordHash, pass); err != nil {
		log.Warn("admin login rejected")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	token, expiresAt, err := s.tokens.GenerateCapabilityToken(adminSubject, jwt.CapabilityAdmin)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	log.Info("admin session issued", slog.Time("expires_at", expiresAt))
	return &Session{Token: token, ExpiresAt: expiresAt}, nil
}

// ListPayments возвращает страницу всех платежей.
func (s *Service) ListPayments(ctx context.Context, limit, offset int) ([]*models.Payment, error) {
	const op = "admin.ListPayments"
	limit, offset = Page(limit, offset)
	res, err := s.payments.ListPayments(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// SetGatewayPublicKeyID меняет ключ, который получает виджет оплаты.
func (s *Service) SetGatewayPublicKeyID(ctx context.Context, keyID string) error {
	const op = "admin.SetGatewayPublicKeyID"
	if err := s.settings.SetGatewayPublicKeyID(ctx, keyID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("gateway public key updated", slog.String("op", op), slog.String("key_id", keyID))
	return nil
}

// Page нормализует параметры пагинации.
func Page(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
