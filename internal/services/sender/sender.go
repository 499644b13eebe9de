// Package sender отправляет письма по сообщениям из очереди уведомлений.
package sender

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/interview-billing/internal/lib/sl"
	"github.com/magabrotheeeer/interview-billing/internal/lib/smtp"
	"github.com/magabrotheeeer/interview-billing/internal/models"
)

// Transport соединение с SMTP сервером.
type Transport interface {
	Connect() (smtp.Client, error)
	GetSMTPUser() string
}

// Service сервис отправки писем.
type Service struct {
	transport Transport
	log       *slog.Logger
}

// New создает новый экземпляр Service.
func New(transport Transport, log *slog.Logger) *Service {
	return &Service{
		transport: transport,
		log:       log,
	}
}

// SendReceipt отправляет квитанцию об оплате.
func (s *Service) SendReceipt(body []byte) error {
	var message models.ReceiptMessage
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal receipt message", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := "Payment received"
	bodyText := fmt.Sprintf("Hello!\n\nWe received your payment of %d %s for the %s plan.\n"+
		"Payment ID: %s\nOrder ID: %s\n\nYour plan is active until %s.",
		message.Amount, message.Currency, message.PlanType,
		message.PaymentID, message.OrderID, message.PeriodEnd.Format("02 Jan 2006"))

	return s.sendEmail([]string{message.Email}, subject, bodyText)
}

// SendExpiring предупреждает об окончании оплаченного периода.
func (s *Service) SendExpiring(body []byte) error {
	var message models.ExpiringMessage
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal expiring message", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	name := message.FullName
	if name == "" {
		name = "there"
	}
	subject := "Your plan expires soon"
	bodyText := fmt.Sprintf("Hello, %s!\n\nYour %s plan ends on %s.\n"+
		"Renew it in advance to keep unlimited mock interviews.",
		name, message.PlanType, message.PeriodEnd.Format("02 Jan 2006 15:04 MST"))

	return s.sendEmail([]string{message.Email}, subject, bodyText)
}

func (s *Service) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", s.transport.GetSMTPUser()), sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", slog.Any("to", to), slog.String("subject", subject))
	return nil
}
