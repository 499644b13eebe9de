package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/magabrotheeeer/interview-billing/internal/migrations"
	"github.com/magabrotheeeer/interview-billing/internal/models"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDatabase(t *testing.T) (*Storage, func()) {
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

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storage, err := New(dsn)
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB))
	require.NoError(t, CheckDatabaseReady(storage))

	cleanup := func() {
		_ = storage.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
	return storage, cleanup
}

// testDataFactory создаёт строки напрямую, минуя методы хранилища.
type testDataFactory struct {
	storage *Storage
}

func (f *testDataFactory) createProfile(t *testing.T, email string) models.Profile {
	t.Helper()
	p := models.Profile{ID: uuid.NewString(), ExternalID: "ext_" + uuid.NewString(), Email: email}
	_, err := f.storage.DB.Exec(`INSERT INTO profiles (id, external_id, email, full_name) VALUES ($1, $2, $3, $4)`,
		p.ID, p.ExternalID, p.Email, p.FullName)
	require.NoError(t, err)
	return p
}

func (f *testDataFactory) createSubscription(t *testing.T, userID string, plan models.PlanType, status string,
	start, end time.Time) string {
	t.Helper()
	id := uuid.NewString()
	_, err := f.storage.DB.Exec(`INSERT INTO user_subscriptions
		(id, user_id, plan_type, status, current_period_start, current_period_end)
		VALUES ($1, $2, $3, $4, $5, $6)`, id, userID, string(plan), status, start, end)
	require.NoError(t, err)
	return id
}

func (f *testDataFactory) count(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, f.storage.DB.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
	return n
}

func newPayment(userID, gatewayPaymentID string) models.Payment {
	return models.Payment{
		UserID:            userID,
		RazorpayOrderID:   "order_1",
		RazorpayPaymentID: gatewayPaymentID,
		RazorpaySignature: "sig",
		Amount:            999,
		Currency:          "INR",
		PlanType:          models.PlanPro,
		Status:            models.PaymentStatusCompleted,
	}
}

func newSubscription(userID string, start time.Time) models.Subscription {
	return models.Subscription{
		UserID:             userID,
		PlanType:           models.PlanPro,
		Status:             models.SubscriptionStatusActive,
		CurrentPeriodStart: start,
		CurrentPeriodEnd:   start.AddDate(0, 1, 0),
	}
}
