// Package health проверка готовности сервиса.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"github.com/magabrotheeeer/interview-billing/internal/http/response"
	"github.com/magabrotheeeer/interview-billing/internal/lib/sl"
)

// Pinger зависимость, доступность которой проверяется.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler обработчик GET /health.
type Handler struct {
	log      *slog.Logger
	checks   map[string]Pinger
	deadline time.Duration
}

// New создает новый экземпляр Handler. checks ключ это имя зависимости в ответе.
func New(log *slog.Logger, checks map[string]Pinger) *Handler {
	return &Handler{
		log:      log,
		checks:   checks,
		deadline: 2 * time.Second,
	}
}

// ServeHTTP godoc
// @Summary Проверка готовности
// @Tags Health
// @Produce  json
// @Success 200 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"
	log := h.log.With(slog.String("op", op))

	ctx, cancel := context.WithTimeout(r.Context(), h.deadline)
	defer cancel()

	status := http.StatusOK
	report := make(map[string]string, len(h.checks))
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			log.Error("dependency is unavailable", slog.String("dependency", name), sl.Err(err))
			report[name] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		report[name] = "ok"
	}

	w.WriteHeader(status)
	if status != http.StatusOK {
		render.JSON(w, r, response.Response{Status: response.StatusError, Error: "unhealthy", Data: report})
		return
	}
	render.JSON(w, r, response.StatusOKWithData(report))
}
