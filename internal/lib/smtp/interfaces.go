// Package smtp содержит SMTP-транспорт для отправки уведомлений.
package smtp

import "io"

// Client подмножество *smtp.Client, которое нужно отправителю писем.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}
