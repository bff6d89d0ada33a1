package mailer

import (
	"fmt"
	"os"
	"strconv"

	"residence-access/logger"

	"github.com/wneessen/go-mail"
)

// Mailer delivers one-time codes over SMTP.
type Mailer struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// New builds a mailer from SMTP_* environment variables.
func New() *Mailer {
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil || port <= 0 {
		port = 587
	}

	return &Mailer{
		host:     os.Getenv("SMTP_HOST"),
		port:     port,
		username: os.Getenv("SMTP_USERNAME"),
		password: os.Getenv("SMTP_PASSWORD"),
		from:     os.Getenv("SMTP_FROM"),
	}
}

// SendOTP emails a one-time code to the given address.
func (m *Mailer) SendOTP(to, code string) error {
	if m.host == "" {
		return fmt.Errorf("SMTP_HOST environment variable is not set")
	}

	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject("Your verification code")
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(
		"Your verification code is %s.\n\nIt expires in 5 minutes. If you did not request this code, ignore this email.\n", code))

	client, err := mail.NewClient(m.host,
		mail.WithPort(m.port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.username),
		mail.WithPassword(m.password),
	)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}

	if err := client.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}

	logger.Info("Verification code sent to " + to)
	return nil
}
