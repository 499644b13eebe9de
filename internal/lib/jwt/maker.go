package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken возвращается для подделанных, просроченных и
// неподходящих по содержимому токенов.
var ErrInvalidToken = errors.New("invalid token")

// Maker выпускает и проверяет токены-возможности.
type Maker struct {
	secretKey string        // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration // Время жизни токена.
	now       func() time.Time
}

// NewMaker создаёт Maker на основе секретного ключа и TTL.
func NewMaker(secretKey string, ttl time.Duration) *Maker {
	return &Maker{
		secretKey: secretKey,
		tokenTTL:  ttl,
		now:       time.Now,
	}
}

// TTL возвращает время жизни выпускаемых токенов.
func (m *Maker) TTL() time.Duration {
	return m.tokenTTL
}

// GenerateCapabilityToken выпускает токен с возможностью capability для subject.
func (m *Maker) GenerateCapabilityToken(subject, capability string) (string, time.Time, error) {
	const op = "jwt.GenerateCapabilityToken"
	if m.secretKey == "" {
		return "", time.Time{}, fmt.Errorf("%s: empty secret key", op)
	}
	now := m.now()
	expiresAt := now.Add(m.tokenTTL)
	claims := CapabilityClaims{
		Capability: capability,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.secretKey))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	return signed, expiresAt, nil
}

// ParseCapabilityToken проверяет подпись и срок токена и наличие в нём
// возможности capability.
func (m *Maker) ParseCapabilityToken(tokenStr, capability string) (*CapabilityClaims, error) {
	const op = "jwt.ParseCapabilityToken"
	claims := &CapabilityClaims{}
	if err := parse(tokenStr, m.secretKey, claims); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if claims.Capability != capability {
		return nil, fmt.Errorf("%s: capability %q not granted: %w", op, capability, ErrInvalidToken)
	}
	return claims, nil
}

// SessionVerifier проверяет сессионные токены провайдера аутентификации.
type SessionVerifier struct {
	secretKey string
}

// NewSessionVerifier создаёт SessionVerifier с общим секретом провайдера.
func NewSessionVerifier(secretKey string) *SessionVerifier {
	return &SessionVerifier{secretKey: secretKey}
}

// ParseSession проверяет токен и возвращает его claims.
// Токен без subject считается недействительным.
func (v *SessionVerifier) ParseSession(tokenStr string) (*SessionClaims, error) {
	const op = "jwt.ParseSession"
	claims := &SessionClaims{}
	if err := parse(tokenStr, v.secretKey, claims); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%s: empty subject: %w", op, ErrInvalidToken)
	}
	return claims, nil
}

func parse(tokenStr, secretKey string, claims jwt.Claims) error {
	if secretKey == "" {
		return fmt.Errorf("empty secret key: %w", ErrInvalidToken)
	}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(_ *jwt.Token) (any, error) {
		return []byte(secretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
