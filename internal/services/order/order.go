// Package order создаёт заказы в платёжном шлюзе перед открытием виджета оплаты.
package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/magabrotheeeer/interview-billing/internal/lib/metrics"
	"github.com/magabrotheeeer/interview-billing/internal/lib/sl"
	"github.com/magabrotheeeer/interview-billing/internal/paymentprovider"
)

// DefaultCurrency используется, если валюта не передана.
const DefaultCurrency = "INR"

// Gateway создаёт заказы в платёжном шлюзе.
type Gateway interface {
	CreateOrder(ctx context.Context, req paymentprovider.OrderRequest) (*paymentprovider.Order, error)
}

// Input параметры заказа. Amount в минимальных единицах валюты.
type Input struct {
	Amount   int64
	Currency string
	Receipt  string
}

// Result итог создания заказа: Created или Failed.
type Result interface {
	isResult()
}

// Created заказ создан, Order содержит ответ шлюза.
type Created struct {
	Order *paymentprovider.Order
}

// Failed заказ не создан. StatusCode это HTTP-статус для клиента.
type Failed struct {
	StatusCode int
	Reason     string
}

func (Created) isResult() {}
func (Failed) isResult()  {}

// Service сервис создания заказов.
type Service struct {
	gateway Gateway
	log     *slog.Logger
	now     func() time.Time
}

// New создаёт сервис заказов.
func New(gateway Gateway, log *slog.Logger) *Service {
	return &Service{
		gateway: gateway,
		log:     log,
		now:     time.Now,
	}
}

// Create создаёт заказ в шлюзе. Ошибки шлюза не повторяются.
func (s *Service) Create(ctx context.Context, in Input) Result {
	const op = "order.Create"
	log := s.log.With(slog.String("op", op))

	if in.Amount <= 0 {
		metrics.Orders.WithLabelValues("invalid").Inc()
		return Failed{StatusCode: http.StatusBadRequest, Reason: "amount must be a positive integer"}
	}
	if in.Currency == "" {
		in.Currency = DefaultCurrency
	}
	if in.Receipt == "" {
		in.Receipt = fmt.Sprintf("rcpt_%d", s.now().UnixMilli())
	}

	order, err := s.gateway.CreateOrder(ctx, paymentprovider.OrderRequest{
		Amount:   in.Amount,
		Currency: in.Currency,
		Receipt:  in.Receipt,
	})
	if err != nil {
		if errors.Is(err, paymentprovider.ErrNotConfigured) {
			log.Error("payment gateway credentials missing", sl.Err(err))
			metrics.Orders.WithLabelValues("not_configured").Inc()
			return Failed{StatusCode: http.StatusInternalServerError, Reason: "payment gateway is not configured"}
		}
		var apiErr *paymentprovider.APIError
		if errors.As(err, &apiErr) {
			log.Error("gateway rejected order", slog.Int("status", apiErr.StatusCode), sl.Err(err))
		} else {
			log.Error("failed to create order", sl.Err(err))
		}
		metrics.Orders.WithLabelValues("gateway_error").Inc()
		return Failed{StatusCode: http.StatusBadGateway, Reason: "failed to create order"}
	}

	log.Info("order created", slog.String("order_id", order.ID), slog.Int64("amount", order.Amount))
	metrics.Orders.WithLabelValues("created").Inc()
	return Created{Order: order}
}
