// Package start списывает бесплатное интервью перед его запуском.
package start

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/magabrotheeeer/interview-billing/internal/http/middlewarectx"
	"github.com/magabrotheeeer/interview-billing/internal/http/response"
	"github.com/magabrotheeeer/interview-billing/internal/lib/sl"
	"github.com/magabrotheeeer/interview-billing/internal/services/quota"
)

// Service квоты интервью.
type Service interface {
	StartInterview(ctx context.Context, userID string) (*quota.Usage, error)
}

// Handler обработчик POST /interviews/start.
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
// @Summary Начать пробное интервью
// @Description Бесплатный тариф ограничен числом интервью в месяц, pro без ограничений
// @Tags Interviews
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Failure 402 {object} response.Response "Квота исчерпана"
// @Failure 500 {object} response.ErrorResponse
// @Router /interviews/start [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.interview.start"
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

	usage, err := h.service.StartInterview(r.Context(), userID)
	switch {
	case errors.Is(err, quota.ErrQuotaExceeded):
		w.WriteHeader(http.StatusPaymentRequired)
		render.JSON(w, r, response.Response{
			Status: response.StatusError,
			Error:  "free interview quota exceeded, upgrade to pro",
			Data:   usage,
		})
		return
	case err != nil:
		log.Error("failed to start interview", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(usage))
}
