// Package settings хранит настройки, которые администратор меняет без перезапуска.
package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/interview-billing/internal/lib/sl"
	"github.com/magabrotheeeer/interview-billing/internal/storage/repository"
)

// KeyGatewayPublicKeyID ключ публичного идентификатора ключа шлюза.
const KeyGatewayPublicKeyID = "gateway_public_key_id"

const (
	cacheKeyPrefix = "settings:"
	cacheTTL       = 5 * time.Minute
)

// Repository таблица app_settings.
type Repository interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

// Cache кэш значений настроек.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// CheckoutConfig то, что нужно виджету оплаты. Секрет сюда не попадает.
type CheckoutConfig struct {
	KeyID    string `json:"key_id"`
	Currency string `json:"currency"`
}

// Service сервис настроек.
type Service struct {
	repo            Repository
	cache           Cache
	defaultKeyID    string
	defaultCurrency string
	log             *slog.Logger
}

// New создаёт сервис. defaultKeyID берётся из конфига и используется,
// пока администратор не сохранил своё значение.
func New(repo Repository, cache Cache, defaultKeyID, defaultCurrency string, log *slog.Logger) *Service {
	return &Service{
		repo:            repo,
		cache:           cache,
		defaultKeyID:    defaultKeyID,
		defaultCurrency: defaultCurrency,
		log:             log,
	}
}

// GatewayPublicKeyID возвращает публичный идентификатор ключа.
// Ошибки кэша не фатальны, значение читается из базы.
func (s *Service) GatewayPublicKeyID(ctx context.Context) (string, error) {
	const op = "settings.GatewayPublicKeyID"
	log := s.log.With(slog.String("op", op))
	cacheKey := cacheKeyPrefix + KeyGatewayPublicKeyID

	var cached string
	found, err := s.cache.Get(ctx, cacheKey, &cached)
	if err != nil {
		log.Warn("settings cache read failed", sl.Err(err))
	}
	if found {
		return cached, nil
	}

	value, err := s.repo.GetSetting(ctx, KeyGatewayPublicKeyID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		value = s.defaultKeyID
	case err != nil:
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := s.cache.Set(ctx, cacheKey, value, cacheTTL); err != nil {
		log.Warn("settings cache write failed", sl.Err(err))
	}
	return value, nil
}

// SetGatewayPublicKeyID сохраняет новое значение и сбрасывает кэш.
func (s *Service) SetGatewayPublicKeyID(ctx context.Context, keyID string) error {
	const op = "settings.SetGatewayPublicKeyID"

	if err := s.repo.SetSetting(ctx, KeyGatewayPublicKeyID, keyID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Invalidate(ctx, cacheKeyPrefix+KeyGatewayPublicKeyID); err != nil {
		s.log.Warn("settings cache invalidate failed", slog.String("op", op), sl.Err(err))
	}
	return nil
}

// CheckoutConfig собирает публичные параметры виджета.
func (s *Service) CheckoutConfig(ctx context.Context) (*CheckoutConfig, error) {
	keyID, err := s.GatewayPublicKeyID(ctx)
	if err != nil {
		return nil, err
	}
	return &CheckoutConfig{KeyID: keyID, Currency: s.defaultCurrency}, nil
}
