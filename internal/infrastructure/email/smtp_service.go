package email

import (
	"context"
	"fmt"
	"html"
	"net/smtp"
	"strings"

	"storefront-backend/pkg/logger"
)

// SMTPConfig points the mailer at a relay. Username empty means no AUTH,
// which suits local catchers such as MailHog.
type SMTPConfig struct {
	Host     string
	Port     string
	From     string
	Username string
	Password string
}

// ResetPasswordData fills the reset email
type ResetPasswordData struct {
	Email     string
	Name      string
	ResetURL  string
	ExpiresIn string
}

type EmailService interface {
	SendResetPasswordEmail(ctx context.Context, data ResetPasswordData) error
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type smtpEmailService struct {
	addr string
	from string
	auth smtp.Auth
	send sendFunc
}

func NewSMTPEmailService(cfg SMTPConfig) EmailService {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &smtpEmailService{
		addr: cfg.Host + ":" + cfg.Port,
		from: cfg.From,
		auth: auth,
		send: smtp.SendMail,
	}
}

func (s *smtpEmailService) SendResetPasswordEmail(ctx context.Context, data ResetPasswordData) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	link := html.EscapeString(data.ResetURL)
	body := fmt.Sprintf(`<h1>Password Reset Request</h1>
<p>Hi %s,</p>
<p>You requested a password reset. Please click on the link below to reset your password:</p>
<a href="%s">%s</a>
<p>The link expires in %s.</p>
<p>If you did not request this, please ignore this email.</p>`,
		html.EscapeString(data.Name), link, link, data.ExpiresIn)

	msg := buildMessage(s.from, data.Email, "Password Reset Request", body)
	if err := s.send(s.addr, s.auth, s.from, []string{data.Email}, msg); err != nil {
		logger.Info("failed to send email", map[string]interface{}{
			"error":     err.Error(),
			"smtp_addr": s.addr,
		})
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func buildMessage(from, to, subject, htmlBody string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}
