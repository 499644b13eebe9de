package paymentlist

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/interview-billing/internal/http/middlewarectx"
	"github.com/magabrotheeeer/interview-billing/internal/models"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ListPaymentsByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Payment, error) {
	args := m.Called(ctx, userID, limit, offset)
	if res := args.Get(0); res != nil {
		return res.([]*models.Payment), args.Error(1)
	}
	return nil, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestPaymentListHandler(t *testing.T) {
	const userID = "user-1"

	tests := []struct {
		name           string
		url            string
		userID         string
		setupMock      func(*MockRepository)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:   "страница по умолчанию",
			url:    "/api/v1/payments",
			userID: userID,
			setupMock: func(m *MockRepository) {
				m.On("ListPaymentsByUser", mock.Anything, userID, 50, 0).
					Return([]*models.Payment{{ID: "p1", UserID: userID, Amount: 999}}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"list_count":1`,
		},
		{
			name:   "лимит ограничен сверху",
			url:    "/api/v1/payments?limit=1000&offset=20",
			userID: userID,
			setupMock: func(m *MockRepository) {
				m.On("ListPaymentsByUser", mock.Anything, userID, 200, 20).Return([]*models.Payment{}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"list_count":0`,
		},
		{
			name:           "без сессии",
			url:            "/api/v1/payments",
			setupMock:      func(*MockRepository) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"unauthorized"}`,
		},
		{
			name:   "ошибка хранилища",
			url:    "/api/v1/payments",
			userID: userID,
			setupMock: func(m *MockRepository) {
				m.On("ListPaymentsByUser", mock.Anything, userID, 50, 0).Return(nil, errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"internal error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			tt.setupMock(repo)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			if tt.userID != "" {
				req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserID, tt.userID))
			}
			rr := httptest.NewRecorder()
			New(newNoopLogger(), repo).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.expectedBody)
			repo.AssertExpectations(t)
		})
	}
}
