package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/interview-billing/internal/cache"
	"github.com/magabrotheeeer/interview-billing/internal/config"
	"github.com/magabrotheeeer/interview-billing/internal/lib/jwt"
	"github.com/magabrotheeeer/interview-billing/internal/lib/month"
	"github.com/magabrotheeeer/interview-billing/internal/lib/userid"
	"github.com/magabrotheeeer/interview-billing/internal/migrations"
	"github.com/magabrotheeeer/interview-billing/internal/models"
	"github.com/magabrotheeeer/interview-billing/internal/paymentprovider"
	"github.com/magabrotheeeer/interview-billing/internal/storage/repository"
)

const (
	e2eExternalID = "user_2abcDEF123"
	e2eSecret     = "test_secret"
)

func setupStorage(t *testing.T) *repository.Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("billing"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storage, err := repository.New(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })
	require.NoError(t, migrations.Run(storage.DB))
	return storage
}

func newFakeGateway(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req paymentprovider.OrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":       "order_E2E",
			"entity":   "order",
			"amount":   req.Amount,
			"currency": req.Currency,
			"receipt":  req.Receipt,
			"status":   "created",
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if out != nil {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), out), rr.Body.String())
	}
	return rr.Code
}

type entitlementEnvelope struct {
	Data struct {
		Entitlement struct {
			HasPro   bool   `json:"has_pro"`
			PlanType string `json:"plan_type"`
		} `json:"entitlement"`
	} `json:"data"`
}

func TestCheckoutFlow_EndToEnd(t *testing.T) {
	ctx := context.Background()
	storage := setupStorage(t)
	mr := miniredis.RunT(t)
	redisCache, err := cache.InitServer(ctx, config.RedisConnection{AddressRedis: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = redisCache.Close() })

	cfg := &config.Config{
		Gateway: config.Gateway{
			APIURL:      newFakeGateway(t).URL,
			KeyID:       "rzp_test_key",
			KeySecret:   e2eSecret,
			PublicKeyID: "rzp_test_public",
			Timeout:     time.Second,
		},
		Session: config.Session{JWTSecretKey: sessionSecret},
		Admin:   config.Admin{TokenSecretKey: "admin-secret", TokenTTL: time.Minute},
		Quota:   config.Quota{FreeInterviewsPerMonth: 3},
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := chi.NewRouter()
	RegisterRoutes(router, log, newServices(cfg, storage, redisCache, nil, log), RateLimit{RPS: 1000, Burst: 1000})

	internalID := userid.Derive(e2eExternalID)
	_, err = storage.UpsertProfile(ctx, models.Profile{ID: internalID, ExternalID: e2eExternalID, Email: "user@example.com"})
	require.NoError(t, err)

	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, jwt.SessionClaims{
		Email: "user@example.com",
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   e2eExternalID,
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	session, err := token.SignedString([]byte(sessionSecret))
	require.NoError(t, err)

	var before entitlementEnvelope
	require.Equal(t, http.StatusOK, doJSON(t, router, http.MethodGet, "/api/v1/entitlement", session, nil, &before))
	assert.False(t, before.Data.Entitlement.HasPro)

	// 999 INR в минимальных единицах
	var gatewayOrder paymentprovider.Order
	require.Equal(t, http.StatusOK, doJSON(t, router, http.MethodPost, "/api/v1/orders", "",
		map[string]any{"amount": 99900, "currency": "INR", "receipt": "rcpt_e2e"}, &gatewayOrder))
	assert.Equal(t, "order_E2E", gatewayOrder.ID)
	assert.Equal(t, int64(99900), gatewayOrder.Amount)

	verifyBody := map[string]any{
		"razorpay_order_id":   gatewayOrder.ID,
		"razorpay_payment_id": "pay_E2E",
		"razorpay_signature":  paymentprovider.ExpectedSignature(e2eSecret, gatewayOrder.ID, "pay_E2E"),
		"plan_type":           "pro",
		"amount":              999,
		"currency":            "INR",
		"user_email":          "user@example.com",
		"user_id":             e2eExternalID,
	}
	var verified map[string]any
	require.Equal(t, http.StatusOK, doJSON(t, router, http.MethodPost, "/api/v1/payments/verify", "", verifyBody, &verified))
	assert.Equal(t, map[string]any{"success": true}, verified)

	payments, err := storage.ListPaymentsByUser(ctx, internalID, 10, 0)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, models.PaymentStatusCompleted, payments[0].Status)
	assert.Equal(t, int64(999), payments[0].Amount)

	sub, err := storage.GetLatestActiveSubscription(ctx, internalID)
	require.NoError(t, err)
	assert.Equal(t, models.PlanPro, sub.PlanType)
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
	assert.WithinDuration(t, month.PeriodEnd(sub.CurrentPeriodStart.UTC(), 1), sub.CurrentPeriodEnd, time.Millisecond)

	var after entitlementEnvelope
	require.Equal(t, http.StatusOK, doJSON(t, router, http.MethodGet, "/api/v1/entitlement", session, nil, &after))
	assert.True(t, after.Data.Entitlement.HasPro)
	assert.Equal(t, "pro", after.Data.Entitlement.PlanType)

	t.Run("повторная проверка не создаёт платёж", func(t *testing.T) {
		var replay map[string]any
		require.Equal(t, http.StatusOK, doJSON(t, router, http.MethodPost, "/api/v1/payments/verify", "", verifyBody, &replay))
		assert.Equal(t, true, replay["replayed"])

		payments, err := storage.ListPaymentsByUser(ctx, internalID, 10, 0)
		require.NoError(t, err)
		assert.Len(t, payments, 1)
	})

	t.Run("подпись с изменённым битом отклоняется", func(t *testing.T) {
		tampered := map[string]any{}
		for k, v := range verifyBody {
			tampered[k] = v
		}
		sig := []byte(verifyBody["razorpay_signature"].(string))
		if sig[0] == '0' {
			sig[0] = '1'
		} else {
			sig[0] = '0'
		}
		tampered["razorpay_signature"] = string(sig)
		tampered["razorpay_payment_id"] = "pay_E2E"

		var res map[string]any
		assert.Equal(t, http.StatusBadRequest, doJSON(t, router, http.MethodPost, "/api/v1/payments/verify", "", tampered, &res))
		assert.Equal(t, "invalid payment signature", res["error"])
	})

	t.Run("pro без лимита интервью", func(t *testing.T) {
		var res struct {
			Data struct {
				Unlimited bool `json:"unlimited"`
			} `json:"data"`
		}
		require.Equal(t, http.StatusOK, doJSON(t, router, http.MethodPost, "/api/v1/interviews/start", session, nil, &res))
		assert.True(t, res.Data.Unlimited)
	})
}
