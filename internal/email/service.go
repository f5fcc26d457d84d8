package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/joshwoodland/boredcertified/internal/config"
)

// Sender delivers clinical documents to patients and clinicians.
type Sender interface {
	SendTaperPlan(ctx context.Context, to, patientName, medicationName, markdown string) error
	SendCustom(ctx context.Context, to, subject, body string) error
}

type service struct {
	dialer *gomail.Dialer
	from   string
}

func NewService(cfg config.EmailConfig) Sender {
	return &service{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *service) SendTaperPlan(ctx context.Context, to, patientName, medicationName, markdown string) error {
	subject := fmt.Sprintf("Taper schedule for %s (%s)", patientName, medicationName)
	body := fmt.Sprintf(
		"The following taper schedule was prepared for %s.\n\n%s\n\nFollow up with the prescribing clinician before making any change.",
		patientName, markdown,
	)
	return s.SendCustom(ctx, to, subject, body)
}

func (s *service) SendCustom(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
