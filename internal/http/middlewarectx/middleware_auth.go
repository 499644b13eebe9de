package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/magabrotheeeer/interview-billing/internal/http/response"
	"github.com/magabrotheeeer/interview-billing/internal/lib/jwt"
	"github.com/magabrotheeeer/interview-billing/internal/lib/sl"
	"github.com/magabrotheeeer/interview-billing/internal/lib/userid"
)

// SessionVerifier проверяет сессионный токен пользователя.
type SessionVerifier interface {
	ParseSession(token string) (*jwt.SessionClaims, error)
}

// JWTMiddleware проверяет сессионный JWT в заголовке Authorization и кладёт
// в контекст внешний и внутренний идентификаторы пользователя и email.
func JWTMiddleware(verifier SessionVerifier, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			tokenStr, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				log.Warn("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}

			claims, err := verifier.ParseSession(tokenStr)
			if err != nil {
				log.Warn("invalid or expired token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}

			ctx := context.WithValue(r.Context(), ExternalID, claims.Subject)
			ctx = context.WithValue(ctx, UserID, userid.Derive(claims.Subject))
			ctx = context.WithValue(ctx, Email, claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CapabilityParser проверяет токены-возможности.
type CapabilityParser interface {
	ParseCapabilityToken(token, capability string) (*jwt.CapabilityClaims, error)
}

// RequireCapability пропускает запрос, только если Bearer-токен содержит
// возможность capability и не истёк.
func RequireCapability(parser CapabilityParser, capability string, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.RequireCapability"
			log := log.With(
				slog.String("op", op),
				slog.String("capability", capability),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			tokenStr, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				log.Warn("missing capability token")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}

			claims, err := parser.ParseCapabilityToken(tokenStr, capability)
			if err != nil {
				log.Warn("capability token rejected", sl.Err(err))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("access denied"))
				return
			}

			ctx := context.WithValue(r.Context(), Subject, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
