// Package billing собирает HTTP API биллинга: маршруты, зависимости и сервер.
package billing

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	adminpayments "github.com/magabrotheeeer/interview-billing/internal/http/handlers/admin/paymentlist"
	"github.com/magabrotheeeer/interview-billing/internal/http/handlers/admin/session"
	adminsettings "github.com/magabrotheeeer/interview-billing/internal/http/handlers/admin/settings"
	"github.com/magabrotheeeer/interview-billing/internal/http/handlers/checkout/checkoutconfig"
	"github.com/magabrotheeeer/interview-billing/internal/http/handlers/checkout/ordercreate"
	"github.com/magabrotheeeer/interview-billing/internal/http/handlers/checkout/verify"
	"github.com/magabrotheeeer/interview-billing/internal/http/handlers/entitlement"
	"github.com/magabrotheeeer/interview-billing/internal/http/handlers/health"
	"github.com/magabrotheeeer/interview-billing/internal/http/handlers/interview/start"
	"github.com/magabrotheeeer/interview-billing/internal/http/handlers/payment/paymentlist"
	"github.com/magabrotheeeer/interview-billing/internal/http/middlewarectx"
	"github.com/magabrotheeeer/interview-billing/internal/lib/jwt"
)

// QuotaService квоты бесплатных интервью.
type QuotaService interface {
	entitlement.QuotaService
	start.Service
}

// AdminService административные операции.
type AdminService interface {
	session.Service
	adminpayments.Service
	adminsettings.Service
}

// Services зависимости обработчиков.
type Services struct {
	Orders       ordercreate.Service
	Verifier     verify.Service
	Checkout     checkoutconfig.Service
	Entitlements entitlement.Service
	Quota        QuotaService
	Payments     paymentlist.PaymentRepository
	Admin        AdminService
	Sessions     middlewarectx.SessionVerifier
	Capabilities middlewarectx.CapabilityParser
	Health       map[string]health.Pinger
}

// RateLimit параметры ограничения частоты запросов к API.
type RateLimit struct {
	RPS   float64
	Burst int
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, svc Services, limit RateLimit) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(logger, limit.RPS, limit.Burst))

		// Оплата. Личность пользователя заявляется в теле запроса.
		r.Post("/orders", ordercreate.New(logger, svc.Orders).ServeHTTP)
		r.Post("/payments/verify", verify.New(logger, svc.Verifier).ServeHTTP)
		r.Get("/checkout/config", checkoutconfig.New(logger, svc.Checkout).ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(svc.Sessions, logger))
			r.Get("/entitlement", entitlement.New(logger, svc.Entitlements, svc.Quota).ServeHTTP)
			r.Get("/payments", paymentlist.New(logger, svc.Payments).ServeHTTP)
			r.Post("/interviews/start", start.New(logger, svc.Quota).ServeHTTP)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/session", session.New(logger, svc.Admin).ServeHTTP)
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireCapability(svc.Capabilities, jwt.CapabilityAdmin, logger))
				r.Get("/payments", adminpayments.New(logger, svc.Admin).ServeHTTP)
				r.Put("/settings/gateway-key", adminsettings.New(logger, svc.Admin).ServeHTTP)
			})
		})
	})

	r.Get("/health", health.New(logger, svc.Health).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
