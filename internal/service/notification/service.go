package notification

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"

	"github.com/brils-gym/booking-api/internal/model"
)

// Notifier delivers booking confirmations. Implementations must be
// best-effort: the coordinator never fails a booking over a notification.
type Notifier interface {
	AppointmentBooked(email string, echo *model.BookingEcho) error
	AppointmentCancelled(email string, echo *model.CancelEcho) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Service sends confirmation emails over SMTP.
type Service struct {
	dialer *gomail.Dialer
	from   string
}

func NewService(cfg SMTPConfig) *Service {
	return &Service{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *Service) AppointmentBooked(email string, echo *model.BookingEcho) error {
	subject := "Your booking is confirmed"
	body := fmt.Sprintf(
		"Your session on %s from %s to %s is booked. See you at the gym!",
		echo.Date, echo.StartTime, echo.EndTime,
	)
	return s.send(email, subject, body)
}

func (s *Service) AppointmentCancelled(email string, echo *model.CancelEcho) error {
	subject := "Your booking was cancelled"
	body := fmt.Sprintf(
		"Your session on %s from %s to %s has been cancelled.",
		echo.Date, echo.StartTime, echo.EndTime,
	)
	return s.send(email, subject, body)
}

func (s *Service) send(to, subject, body string) error {
	if to == "" {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		log.Warn().Err(err).Str("to", to).Msg("failed to send notification email")
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
