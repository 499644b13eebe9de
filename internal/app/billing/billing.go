package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/interview-billing/internal/cache"
	"github.com/magabrotheeeer/interview-billing/internal/config"
	"github.com/magabrotheeeer/interview-billing/internal/http/handlers/health"
	"github.com/magabrotheeeer/interview-billing/internal/lib/jwt"
	"github.com/magabrotheeeer/interview-billing/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/interview-billing/internal/lib/sl"
	"github.com/magabrotheeeer/interview-billing/internal/migrations"
	"github.com/magabrotheeeer/interview-billing/internal/paymentprovider"
	"github.com/magabrotheeeer/interview-billing/internal/services/admin"
	entitlementservice "github.com/magabrotheeeer/interview-billing/internal/services/entitlement"
	"github.com/magabrotheeeer/interview-billing/internal/services/order"
	"github.com/magabrotheeeer/interview-billing/internal/services/quota"
	"github.com/magabrotheeeer/interview-billing/internal/services/settings"
	"github.com/magabrotheeeer/interview-billing/internal/services/verifier"
	"github.com/magabrotheeeer/interview-billing/internal/storage/repository"
)

const shutdownTimeout = 15 * time.Second

// App HTTP API биллинга.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New поднимает зависимости, накатывает миграции и собирает роутер.
// Брокер сообщений необязателен: без него квитанции не отправляются.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.billing.New"

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.DB); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	a := &App{
		logger: logger,
		db:     db,
		cache:  cacheRedis,
	}

	var publisher verifier.Publisher
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		logger.Warn("rabbitmq unavailable, receipts are disabled", sl.Err(err))
	} else {
		ch, err := rabbitmq.SetupChannel(conn, rabbitmq.NotificationQueues())
		if err != nil {
			logger.Warn("failed to setup rabbitmq channel, receipts are disabled", sl.Err(err))
			_ = conn.Close()
		} else {
			a.conn, a.ch = conn, ch
			publisher = rabbitmq.NewPublisher(ch)
		}
	}

	if cfg.KeySecret == "" {
		logger.Warn("gateway secret is not set, orders and verification will fail")
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, newServices(cfg, db, cacheRedis, publisher, logger),
		RateLimit{RPS: cfg.RateLimitRPS, Burst: cfg.RateLimitBurst})

	a.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return a, nil
}

// Run обслуживает запросы до отмены ctx, затем корректно останавливает сервер.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err = a.server.Shutdown(timeoutCtx)
	}
	a.close()
	return err
}

func (a *App) close() {
	if a.ch != nil {
		if err := a.ch.Close(); err != nil {
			a.logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			a.logger.Error("failed to close connection", sl.Err(err))
		}
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close redis", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
}

func newServices(cfg *config.Config, db *repository.Storage, cacheRedis *cache.Cache, publisher verifier.Publisher, logger *slog.Logger) Services {
	gateway := paymentprovider.NewClient(cfg.APIURL, cfg.KeyID, cfg.KeySecret, cfg.Gateway.Timeout)
	entitlements := entitlementservice.New(db, logger)
	settingsService := settings.New(db, cacheRedis, cfg.PublicKeyID, order.DefaultCurrency, logger)
	capabilities := jwt.NewMaker(cfg.TokenSecretKey, cfg.TokenTTL)

	return Services{
		Orders:       order.New(gateway, logger),
		Verifier:     verifier.New(cfg.KeySecret, db, publisher, logger),
		Checkout:     settingsService,
		Entitlements: entitlements,
		Quota:        quota.New(entitlements, cacheRedis, cfg.FreeInterviewsPerMonth, logger),
		Payments:     db,
		Admin:        admin.New(cfg.PasswordHash, capabilities, db, settingsService, logger),
		Sessions:     jwt.NewSessionVerifier(cfg.JWTSecretKey),
		Capabilities: capabilities,
		Health: map[string]health.Pinger{
			"postgres": db,
			"redis":    cacheRedis,
		},
	}
}
