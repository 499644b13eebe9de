// Package main Interview Billing API
//
// @title           Interview Billing API
// @version         1.0
// @description     Оплата подписки, проверка платежей и доступ к pro тарифу
//
// @host      localhost:8080
// @BasePath  /api/v1
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Сессионный JWT провайдера аутентификации: "Bearer <token>".
//
// @securityDefinitions.apikey AdminToken
// @in header
// @name Authorization
// @description Токен из POST /admin/session: "Bearer <token>".
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/magabrotheeeer/interview-billing/docs"
	"github.com/magabrotheeeer/interview-billing/internal/app/billing"
	"github.com/magabrotheeeer/interview-billing/internal/config"
	"github.com/magabrotheeeer/interview-billing/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	logger := sl.SetupLogger(cfg.Env, os.Stdout)

	logger.Info("starting billing-api", slog.String("env", cfg.Env))
	logger.Debug("config loaded", slog.String("config", cfg.String()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := billing.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize app", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("app stopped with error", sl.Err(err))
		os.Exit(1)
	}

	logger.Info("billing-api stopped gracefully")
}
