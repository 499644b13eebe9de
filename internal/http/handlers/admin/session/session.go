// Package session выдаёт временный административный токен по паролю.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"
	"github.com/magabrotheeeer/interview-billing/internal/http/response"
	"github.com/magabrotheeeer/interview-billing/internal/lib/sl"
	"github.com/magabrotheeeer/interview-billing/internal/services/admin"
)

// Request тело запроса.
type Request struct {
	Password string `json:"password" validate:"required"`
}

// Service административный вход.
type Service interface {
	Login(ctx context.Context, password string) (*admin.Session, error)
}

// Handler обработчик POST /admin/session.
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
// @Summary Административный вход
// @Description Возвращает JWT с возможностью admin и ограниченным сроком жизни
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param request body Request true "Пароль администратора"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse "Неверный пароль"
// @Failure 404 {object} response.ErrorResponse "Вход отключён"
// @Router /admin/session [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.session"
	log := h.log.With(slog.String("op", op))

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	sess, err := h.service.Login(r.Context(), req.Password)
	switch {
	case errors.Is(err, admin.ErrDisabled):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("not found"))
		return
	case errors.Is(err, admin.ErrInvalidCredentials):
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid credentials"))
		return
	case err != nil:
		log.Error("failed to issue admin token", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(sess))
}
