// Package paymentlist отдаёт историю платежей текущего пользователя.
package paymentlist

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/magabrotheeeer/interview-billing/internal/http/middlewarectx"
	"github.com/magabrotheeeer/interview-billing/internal/http/response"
	"github.com/magabrotheeeer/interview-billing/internal/lib/sl"
	"github.com/magabrotheeeer/interview-billing/internal/models"
	"github.com/magabrotheeeer/interview-billing/internal/services/admin"
)

// PaymentRepository источник платежей пользователя.
type PaymentRepository interface {
	ListPaymentsByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Payment, error)
}

// Handler обработчик GET /payments.
type Handler struct {
	log      *slog.Logger
	payments PaymentRepository
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, payments PaymentRepository) *Handler {
	return &Handler{
		log:      log,
		payments: payments,
	}
}

// ServeHTTP godoc
// @Summary История платежей
// @Tags Payments
// @Produce  json
// @Security BearerAuth
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /payments [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := middlewarectx.UserIDFrom(r.Context())
	if !ok {
		log.Error("user id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, offset = admin.Page(limit, offset)

	payments, err := h.payments.ListPaymentsByUser(r.Context(), userID, limit, offset)
	if err != nil {
		log.Error("failed to list payments", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("list payments", "count", len(payments))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"list_count": len(payments),
		"payments":   payments,
	}))
}
