// Package verify обрабатывает подтверждение оплаты после закрытия виджета шлюза.
package verify

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"
	"github.com/magabrotheeeer/interview-billing/internal/http/response"
	"github.com/magabrotheeeer/interview-billing/internal/lib/sl"
	"github.com/magabrotheeeer/interview-billing/internal/models"
	"github.com/magabrotheeeer/interview-billing/internal/services/verifier"
)

// Request данные виджета и заявленная клиентом личность.
type Request struct {
	RazorpayOrderID   string `json:"razorpay_order_id" validate:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	RazorpaySignature string `json:"razorpay_signature" validate:"required,hexadecimal"`
	PlanType          string `json:"plan_type" validate:"required,oneof=pro enterprise"`
	Amount            int64  `json:"amount" validate:"required,gt=0"`
	Currency          string `json:"currency" validate:"omitempty,len=3"`
	UserEmail         string `json:"user_email" validate:"omitempty,email"`
	UserID            string `json:"user_id" validate:"required"`
}

// Service проверяет платежи.
type Service interface {
	Verify(ctx context.Context, in verifier.Input) verifier.Result
}

// Handler обработчик POST /payments/verify.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Подтвердить оплату
// @Description Проверяет подпись шлюза, записывает платёж и активирует подписку на месяц
// @Tags Checkout
// @Accept  json
// @Produce  json
// @Param request body Request true "Ответ виджета оплаты"
// @Success 200 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse "Неверная подпись"
// @Failure 404 {object} response.ErrorResponse "Профиль не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка"
// @Router /payments/verify [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.checkout.verify"
	log := h.log.With(slog.String("op", op))

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	switch res := h.service.Verify(r.Context(), verifier.Input{
		OrderID:   req.RazorpayOrderID,
		PaymentID: req.RazorpayPaymentID,
		Signature: req.RazorpaySignature,
		PlanType:  models.PlanType(req.PlanType),
		Amount:    req.Amount,
		Currency:  req.Currency,
		UserEmail: req.UserEmail,
		UserID:    req.UserID,
	}).(type) {
	case verifier.Succeeded:
		render.JSON(w, r, response.Success(res.Replayed))
	case verifier.Failed:
		w.WriteHeader(res.StatusCode)
		render.JSON(w, r, response.Error(res.Reason))
	default:
		log.Error("unexpected verification result")
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
	}
}
