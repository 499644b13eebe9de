// Package entitlement отдаёт текущий доступ пользователя.
package entitlement

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/magabrotheeeer/interview-billing/internal/http/middlewarectx"
	"github.com/magabrotheeeer/interview-billing/internal/http/response"
	"github.com/magabrotheeeer/interview-billing/internal/lib/sl"
	"github.com/magabrotheeeer/interview-billing/internal/services/entitlement"
	"github.com/magabrotheeeer/interview-billing/internal/services/quota"
)

// Service читает доступ.
type Service interface {
	Get(ctx context.Context, userID string) (*entitlement.Entitlement, error)
}

// QuotaService отдаёт расход бесплатных интервью.
type QuotaService interface {
	Usage(ctx context.Context, userID string) (*quota.Usage, error)
}

// Handler обработчик GET /entitlement.
type Handler struct {
	log     *slog.Logger
	service Service
	quota   QuotaService
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, quotas QuotaService) *Handler {
	return &Handler{
		log:     log,
		service: service,
		quota:   quotas,
	}
}

// ServeHTTP godoc
// @Summary Текущий доступ пользователя
// @Description has_pro вычисляется на каждый запрос по последней активной подписке
// @Tags Entitlement
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /entitlement [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.entitlement.get"
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

	ent, err := h.service.Get(r.Context(), userID)
	if err != nil {
		log.Error("failed to read entitlement", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	data := map[string]any{"entitlement": ent}
	// квота вторична, её сбой не ломает ответ
	if usage, err := h.quota.Usage(r.Context(), userID); err != nil {
		log.Warn("failed to read quota usage", sl.Err(err))
	} else {
		data["interviews"] = usage
	}
	render.JSON(w, r, response.StatusOKWithData(data))
}
