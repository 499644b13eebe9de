// Package verifier подтверждает оплату по подписи, которую виджет шлюза
// возвращает клиенту, и выдаёт пользователю подписку.
package verifier

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/magabrotheeeer/interview-billing/internal/lib/metrics"
	"github.com/magabrotheeeer/interview-billing/internal/lib/month"
	"github.com/magabrotheeeer/interview-billing/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/interview-billing/internal/lib/sl"
	"github.com/magabrotheeeer/interview-billing/internal/lib/userid"
	"github.com/magabrotheeeer/interview-billing/internal/models"
	"github.com/magabrotheeeer/interview-billing/internal/paymentprovider"
	"github.com/magabrotheeeer/interview-billing/internal/storage/repository"
)

// Repository хранилище профилей и платежей.
type Repository interface {
	GetProfileByID(ctx context.Context, id string) (*models.Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error)
	RecordVerifiedPayment(ctx context.Context, payment models.Payment, sub models.Subscription) (*repository.VerifiedPayment, error)
}

// Publisher отправляет уведомления в брокер.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// Input данные, которые клиент получил от виджета, плюс заявленная им личность.
type Input struct {
	OrderID   string
	PaymentID string
	Signature string
	PlanType  models.PlanType
	Amount    int64
	Currency  string
	UserEmail string
	UserID    string
}

// Result итог проверки: Succeeded или Failed.
type Result interface {
	isResult()
}

// Succeeded платёж записан, подписка активна. Replayed означает, что этот
// платёж уже был подтверждён раньше и период не продлевался.
type Succeeded struct {
	Payment      models.Payment
	Subscription models.Subscription
	Replayed     bool
}

// Failed проверка не прошла, ничего не записано.
type Failed struct {
	StatusCode int
	Reason     string
}

func (Succeeded) isResult() {}
func (Failed) isResult()    {}

const periodMonths = 1

// Service верификатор платежей.
type Service struct {
	secret    string
	repo      Repository
	publisher Publisher
	log       *slog.Logger
	now       func() time.Time
}

// New создаёт верификатор. publisher может быть nil, тогда квитанции не отправляются.
func New(secret string, repo Repository, publisher Publisher, log *slog.Logger) *Service {
	return &Service{
		secret:    secret,
		repo:      repo,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// Verify проверяет подпись, находит пользователя и записывает платёж с подпиской.
func (s *Service) Verify(ctx context.Context, in Input) Result {
	const op = "verifier.Verify"
	log := s.log.With(
		slog.String("op", op),
		slog.String("order_id", in.OrderID),
		slog.String("payment_id", in.PaymentID),
	)

	if s.secret == "" {
		log.Error("gateway secret is not configured")
		return s.fail("not_configured", http.StatusInternalServerError, "payment verification is not configured")
	}
	if !in.PlanType.Paid() {
		return s.fail("invalid", http.StatusBadRequest, "unsupported plan type")
	}

	if !paymentprovider.VerifySignature(s.secret, in.OrderID, in.PaymentID, in.Signature) {
		log.Warn("payment signature mismatch")
		return s.fail("signature_mismatch", http.StatusBadRequest, "invalid payment signature")
	}

	profile, err := s.resolveProfile(ctx, log, in)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Error("no profile for verified payment", slog.String("user_id", in.UserID))
			return s.fail("user_not_found", http.StatusNotFound, "user profile not found")
		}
		log.Error("failed to resolve profile", sl.Err(err))
		return s.fail("storage_error", http.StatusInternalServerError, "internal error")
	}

	currency := in.Currency
	if currency == "" {
		currency = "INR"
	}
	now := s.now().UTC()
	res, err := s.repo.RecordVerifiedPayment(ctx,
		models.Payment{
			UserID:            profile.ID,
			RazorpayOrderID:   in.OrderID,
			RazorpayPaymentID: in.PaymentID,
			RazorpaySignature: in.Signature,
			Amount:            in.Amount,
			Currency:          currency,
			PlanType:          in.PlanType,
			Status:            models.PaymentStatusCompleted,
		},
		models.Subscription{
			UserID:             profile.ID,
			PlanType:           in.PlanType,
			Status:             models.SubscriptionStatusActive,
			CurrentPeriodStart: now,
			CurrentPeriodEnd:   month.PeriodEnd(now, periodMonths),
		},
	)
	if err != nil {
		log.Error("failed to record payment", sl.Err(err))
		return s.fail("storage_error", http.StatusInternalServerError, "internal error")
	}

	if res.Replayed {
		log.Info("payment already verified")
		metrics.Verifications.WithLabelValues("replayed").Inc()
	} else {
		log.Info("payment verified",
			slog.String("user_id", profile.ID),
			slog.String("plan_type", string(in.PlanType)),
			slog.Time("period_end", res.Subscription.CurrentPeriodEnd),
		)
		metrics.Verifications.WithLabelValues("succeeded").Inc()
		s.publishReceipt(ctx, log, profile, res)
	}

	return Succeeded{Payment: res.Payment, Subscription: res.Subscription, Replayed: res.Replayed}
}

// resolveProfile ищет профиль по выведенному идентификатору, затем по заявленному email.
func (s *Service) resolveProfile(ctx context.Context, log *slog.Logger, in Input) (*models.Profile, error) {
	var lastErr error = repository.ErrNotFound
	if in.UserID != "" {
		profile, err := s.repo.GetProfileByID(ctx, userid.Derive(in.UserID))
		if err == nil {
			return profile, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}
	if in.UserEmail != "" {
		profile, err := s.repo.GetProfileByEmail(ctx, in.UserEmail)
		if err == nil {
			log.Warn("profile resolved by email fallback",
				slog.String("user_id", in.UserID), slog.String("profile_id", profile.ID))
			return profile, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func (s *Service) publishReceipt(ctx context.Context, log *slog.Logger, profile *models.Profile, res *repository.VerifiedPayment) {
	if s.publisher == nil || profile.Email == "" {
		return
	}
	msg := models.ReceiptMessage{
		Email:     profile.Email,
		PaymentID: res.Payment.RazorpayPaymentID,
		OrderID:   res.Payment.RazorpayOrderID,
		PlanType:  res.Payment.PlanType,
		Amount:    res.Payment.Amount,
		Currency:  res.Payment.Currency,
		PeriodEnd: res.Subscription.CurrentPeriodEnd,
	}
	if err := s.publisher.Publish(ctx, rabbitmq.RoutingKeyReceipt, msg); err != nil {
		log.Error("failed to publish receipt", sl.Err(err))
	}
}

func (s *Service) fail(label string, status int, reason string) Failed {
	metrics.Verifications.WithLabelValues(label).Inc()
	return Failed{StatusCode: status, Reason: reason}
}
