// Package ordercreate обрабатывает создание заказа в платёжном шлюзе.
package ordercreate

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"
	"github.com/magabrotheeeer/interview-billing/internal/http/response"
	"github.com/magabrotheeeer/interview-billing/internal/lib/sl"
	"github.com/magabrotheeeer/interview-billing/internal/services/order"
)

// Request тело запроса. Amount в минимальных единицах валюты.
type Request struct {
	Amount   int64  `json:"amount" validate:"required,gt=0"`
	Currency string `json:"currency" validate:"omitempty,len=3"`
	Receipt  string `json:"receipt" validate:"max=40"`
}

// Service создаёт заказы.
type Service interface {
	Create(ctx context.Context, in order.Input) order.Result
}

// Handler обработчик POST /orders.
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
// @Summary Создать заказ
// @Description Создаёт заказ в платёжном шлюзе и возвращает ответ шлюза без изменений
// @Tags Checkout
// @Accept  json
// @Produce  json
// @Param request body Request true "Сумма в минимальных единицах, валюта, квитанция"
// @Success 200 {object} paymentprovider.Order "Заказ шлюза"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Шлюз не настроен"
// @Failure 502 {object} response.ErrorResponse "Шлюз отклонил заказ"
// @Router /orders [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.checkout.ordercreate"
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

	switch res := h.service.Create(r.Context(), order.Input{
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
	}).(type) {
	case order.Created:
		render.JSON(w, r, res.Order)
	case order.Failed:
		w.WriteHeader(res.StatusCode)
		render.JSON(w, r, response.Error(res.Reason))
	default:
		log.Error("unexpected order result")
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
	}
}
