// Package mail delivers the account-verification and password-reset emails.
// The Mailer interface is injected wherever email is needed so handlers and
// tests never touch a process-wide transporter.
package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"
)

type Mailer interface {
	SendVerification(ctx context.Context, to, token string) error
	SendPasswordReset(ctx context.Context, to, token string) error
}

type SMTPConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	From        string
	FrontendURL string
}

type SMTPMailer struct {
	client *gomail.Client
	cfg    SMTPConfig
}

func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.User),
		gomail.WithPassword(cfg.Password),
	}
	if cfg.Port == 465 {
		opts = append(opts, gomail.WithSSL())
	}
	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, err
	}
	return &SMTPMailer{client: client, cfg: cfg}, nil
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, htmlBody string) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlBody)
	return m.client.DialAndSendWithContext(ctx, msg)
}

func (m *SMTPMailer) SendVerification(ctx context.Context, to, token string) error {
	verifyURL := fmt.Sprintf("%s/verify-email?token=%s", m.cfg.FrontendURL, token)
	body := fmt.Sprintf(`<p>Hello,</p>
<p>Thanks for registering with the Inventory API!</p>
<p>Please verify your email address by clicking the following link:</p>
<p><a href=%q>Verify my email</a></p>
<p>This link expires in 24 hours. If you did not sign up, ignore this email.</p>`, verifyURL)
	return m.send(ctx, to, "Verify your email address", body)
}

func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, token string) error {
	resetURL := fmt.Sprintf("%s/reset-password?token=%s", m.cfg.FrontendURL, token)
	body := fmt.Sprintf(`<p>Hello,</p>
<p>You are receiving this email because a password reset was requested for your account.</p>
<p>Click the following link to complete the process:</p>
<p><a href=%q>Reset password</a></p>
<p>This link expires in 1 hour. If you did not request this, ignore this email and your password will remain unchanged.</p>`, resetURL)
	return m.send(ctx, to, "Your password reset request", body)
}
