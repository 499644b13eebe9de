// Package settings меняет публичный ключ шлюза, который получает виджет оплаты.
package settings

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"
	"github.com/magabrotheeeer/interview-billing/internal/http/middlewarectx"
	"github.com/magabrotheeeer/interview-billing/internal/http/response"
	"github.com/magabrotheeeer/interview-billing/internal/lib/sl"
)

// Request тело запроса.
type Request struct {
	KeyID string `json:"key_id" validate:"required,min=8,max=64"`
}

// Service административный сервис.
type Service interface {
	SetGatewayPublicKeyID(ctx context.Context, keyID string) error
}

// Handler обработчик PUT /admin/settings/gateway-key.
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
// @Summary Задать публичный ключ шлюза
// @Tags Admin
// @Accept  json
// @Produce  json
// @Security AdminToken
// @Param request body Request true "Публичный ключ"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /admin/settings/gateway-key [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.settings"
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

	if err := h.service.SetGatewayPublicKeyID(r.Context(), req.KeyID); err != nil {
		log.Error("failed to update gateway key", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	subject, _ := r.Context().Value(middlewarectx.Subject).(string)
	log.Info("gateway public key changed", slog.String("by", subject))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{"key_id": req.KeyID}))
}
