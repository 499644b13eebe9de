package settings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/magabrotheeeer/interview-billing/internal/cache"
	"github.com/magabrotheeeer/interview-billing/internal/config"
	"github.com/magabrotheeeer/interview-billing/internal/storage/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetSetting(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockRepository) SetSetting(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string, result any) (bool, error) {
	args := m.Called(ctx, key, result)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Invalidate(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newRedisCache(t *testing.T) *cache.Cache {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	c, err := cache.InitServer(context.Background(), config.RedisConnection{AddressRedis: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestService_GatewayPublicKeyID_FallsBackToConfig(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetSetting", mock.Anything, KeyGatewayPublicKeyID).
		Return("", fmt.Errorf("wrap: %w", repository.ErrNotFound)).Once()

	s := New(repo, newRedisCache(t), "rzp_test_cfg", "INR", newNoopLogger())

	got, err := s.CheckoutConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &CheckoutConfig{KeyID: "rzp_test_cfg", Currency: "INR"}, got)

	again, err := s.GatewayPublicKeyID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "rzp_test_cfg", again)
	repo.AssertNumberOfCalls(t, "GetSetting", 1)
}

func TestService_SetGatewayPublicKeyID_InvalidatesCache(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetSetting", mock.Anything, KeyGatewayPublicKeyID).Return("rzp_live_old", nil).Once()
	repo.On("SetSetting", mock.Anything, KeyGatewayPublicKeyID, "rzp_live_new").Return(nil).Once()
	repo.On("GetSetting", mock.Anything, KeyGatewayPublicKeyID).Return("rzp_live_new", nil).Once()

	s := New(repo, newRedisCache(t), "rzp_test_cfg", "INR", newNoopLogger())
	ctx := context.Background()

	got, err := s.GatewayPublicKeyID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "rzp_live_old", got)

	require.NoError(t, s.SetGatewayPublicKeyID(ctx, "rzp_live_new"))

	got, err = s.GatewayPublicKeyID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "rzp_live_new", got)
	repo.AssertExpectations(t)
}

func TestService_GatewayPublicKeyID_CacheErrorsAreNotFatal(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetSetting", mock.Anything, KeyGatewayPublicKeyID).Return("rzp_live_1", nil).Once()
	c := new(MockCache)
	c.On("Get", mock.Anything, "settings:"+KeyGatewayPublicKeyID, mock.Anything).Return(false, errors.New("redis down")).Once()
	c.On("Set", mock.Anything, "settings:"+KeyGatewayPublicKeyID, "rzp_live_1", cacheTTL).Return(errors.New("redis down")).Once()

	s := New(repo, c, "", "INR", newNoopLogger())
	got, err := s.GatewayPublicKeyID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "rzp_live_1", got)
	c.AssertExpectations(t)
}

func TestService_Errors(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetSetting", mock.Anything, KeyGatewayPublicKeyID).Return("", errors.New("db down")).Once()
	repo.On("SetSetting", mock.Anything, KeyGatewayPublicKeyID, "x").Return(errors.New("db down")).Once()
	c := new(MockCache)
	c.On("Get", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)

	s := New(repo, c, "", "INR", newNoopLogger())
	_, err := s.CheckoutConfig(context.Background())
	require.Error(t, err)
	require.Error(t, s.SetGatewayPublicKeyID(context.Background(), "x"))
	c.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
}
