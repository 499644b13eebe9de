// Package checkoutconfig отдаёт виджету оплаты публичный ключ шлюза.
package checkoutconfig

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/magabrotheeeer/interview-billing/internal/http/response"
	"github.com/magabrotheeeer/interview-billing/internal/lib/sl"
	"github.com/magabrotheeeer/interview-billing/internal/services/settings"
)

// Service источник настроек оплаты.
type Service interface {
	CheckoutConfig(ctx context.Context) (*settings.CheckoutConfig, error)
}

// Handler обработчик GET /checkout/config.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Настройки виджета оплаты
// @Tags Checkout
// @Produce  json
// @Success 200 {object} settings.CheckoutConfig
// @Failure 503 {object} response.ErrorResponse "Ключ не настроен"
// @Router /checkout/config [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.checkout.config"
	log := h.log.With(slog.String("op", op))

	cfg, err := h.service.CheckoutConfig(r.Context())
	if err != nil {
		log.Error("failed to load checkout config", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}
	if cfg.KeyID == "" {
		log.Warn("gateway public key id is not configured")
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("payment gateway is not configured"))
		return
	}
	render.JSON(w, r, cfg)
}
