package admin

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/magabrotheeeer/interview-billing/internal/lib/jwt"
	"github.com/magabrotheeeer/interview-billing/internal/lib/password"
	"github.com/magabrotheeeer/interview-billing/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) ListPayments(ctx context.Context, limit, offset int) ([]*models.Payment, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Payment), args.Error(1)
}

type MockSettings struct {
	mock.Mock
}

func (m *MockSettings) SetGatewayPublicKeyID(ctx context.Context, keyID string) error {
	args := m.Called(ctx, keyID)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestService_Login(t *testing.T) {
	hash, err := password.Hash("s3cret")
	require.NoError(t, err)
	maker := jwt.NewMaker("admin_secret", 15*time.Minute)

	t.Run("valid password issues admin capability", func(t *testing.T) {
		s := New(hash, maker, nil, nil, newNoopLogger())
		session, err := s.Login(context.Background(), "s3cret")
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(15*time.Minute), session.ExpiresAt, 5*time.Second)

		claims, err := maker.ParseCapabilityToken(session.Token, jwt.CapabilityAdmin)
		require.NoError(t, err)
		assert.Equal(t, "admin", claims.Subject)
	})

	t.Run("wrong password", func(t *testing.T) {
		s := New(hash, maker, nil, nil, newNoopLogger())
		_, err := s.Login(context.Background(), "guess")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("disabled without hash", func(t *testing.T) {
		s := New("", maker, nil, nil, newNoopLogger())
		_, err := s.Login(context.Background(), "s3cret")
		require.ErrorIs(t, err, ErrDisabled)
	})

	t.Run("token signing failure", func(t *testing.T) {
		s := New(hash, jwt.NewMaker("", time.Minute), nil, nil, newNoopLogger())
		_, err := s.Login(context.Background(), "s3cret")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestService_ListPayments(t *testing.T) {
	tests := []struct {
		name       string
		limit      int
		offset     int
		wantLimit  int
		wantOffset int
	}{
		{"defaults", 0, -5, 50, 0},
		{"passes through", 20, 40, 20, 40},
		{"caps limit", 1000, 0, 200, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockPaymentRepository)
			repo.On("ListPayments", mock.Anything, tt.wantLimit, tt.wantOffset).
				Return([]*models.Payment{{ID: "p1"}}, nil).Once()

			s := New("", nil, repo, nil, newNoopLogger())
			got, err := s.ListPayments(context.Background(), tt.limit, tt.offset)
			require.NoError(t, err)
			assert.Len(t, got, 1)
			repo.AssertExpectations(t)
		})
	}

	repo := new(MockPaymentRepository)
	repo.On("ListPayments", mock.Anything, 50, 0).Return(nil, errors.New("db down")).Once()
	_, err := New("", nil, repo, nil, newNoopLogger()).ListPayments(context.Background(), 0, 0)
	require.Error(t, err)
}

func TestService_SetGatewayPublicKeyID(t *testing.T) {
	st := new(MockSettings)
	st.On("SetGatewayPublicKeyID", mock.Anything, "rzp_live_1").Return(nil).Once()
	st.On("SetGatewayPublicKeyID", mock.Anything, "rzp_live_2").Return(errors.New("db down")).Once()

	s := New("", nil, nil, st, newNoopLogger())
	require.NoError(t, s.SetGatewayPublicKeyID(context.Background(), "rzp_live_1"))
	require.Error(t, s.SetGatewayPublicKeyID(context.Background(), "rzp_live_2"))
	st.AssertExpectations(t)
}
