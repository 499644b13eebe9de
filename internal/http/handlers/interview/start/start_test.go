package start

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/interview-billing/internal/http/middlewarectx"
	"github.com/magabrotheeeer/interview-billing/internal/services/quota"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) StartInterview(ctx context.Context, userID string) (*quota.Usage, error) {
	args := m.Called(ctx, userID)
	if res := args.Get(0); res != nil {
		return res.(*quota.Usage), args.Error(1)
	}
	return nil, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestStartHandler(t *testing.T) {
	const userID = "user-1"

	tests := []struct {
		name           string
		userID         string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:   "бесплатное интервью списано",
			userID: userID,
			setupMock: func(m *MockService) {
				m.On("StartInterview", mock.Anything, userID).
					Return(&quota.Usage{Used: 1, Limit: 3, Remaining: 2}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","data":{"unlimited":false,"used":1,"limit":3,"remaining":2}}`,
		},
		{
			name:   "квота исчерпана",
			userID: userID,
			setupMock: func(m *MockService) {
				m.On("StartInterview", mock.Anything, userID).
					Return(&quota.Usage{Used: 3, Limit: 3}, fmt.Errorf("quota.StartInterview: %w", quota.ErrQuotaExceeded))
			},
			expectedStatus: http.StatusPaymentRequired,
			expectedBody: `{"status":"Error","error":"free interview quota exceeded, upgrade to pro",
				"data":{"unlimited":false,"used":3,"limit":3,"remaining":0}}`,
		},
		{
			name:   "ошибка redis",
			userID: userID,
			setupMock: func(m *MockService) {
				m.On("StartInterview", mock.Anything, userID).Return(nil, errors.New("redis down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"internal error"}`,
		},
		{
			name:           "без сессии",
			setupMock:      func(*MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"unauthorized"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/interviews/start", nil)
			if tt.userID != "" {
				req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserID, tt.userID))
			}
			rr := httptest.NewRecorder()
			New(newNoopLogger(), svc).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.JSONEq(t, tt.expectedBody, rr.Body.String())
			svc.AssertExpectations(t)
		})
	}
}
