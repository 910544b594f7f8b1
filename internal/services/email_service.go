package services

import (
	"fmt"
	"log"

	"gopkg.in/gomail.v2"
)

// EmailService is the notification sink for the security flows. Delivery
// failure is logged, never surfaced back through a flow: by the time a send
// runs, the credential is already persisted and a resend stays available.
type EmailService interface {
	SendRegistrationPin(email, firstName, pin string) error
	SendTwoFactorPin(email, pin string) error
	SendRecoveryPin(email, pin string) error
	SendPasswordChanged(email string) error
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailService{
		dialer: dialer,
		from:   fromEmail,
	}
}

func (s *emailService) SendRegistrationPin(email, firstName, pin string) error {
	body := fmt.Sprintf(`
		<h2>Welcome to Agroterra, %s!</h2>
		<p>Use the following code to confirm your registration: <strong>%s</strong></p>
		<p>The code expires shortly. If it does, just register again.</p>
	`, firstName, pin)
	return s.send(email, "Confirm your registration", body)
}

func (s *emailService) SendTwoFactorPin(email, pin string) error {
	body := fmt.Sprintf(`
		<h3>Your sign-in code</h3>
		<p>Enter this code to finish signing in: <strong>%s</strong></p>
		<p>If you did not try to sign in, change your password.</p>
	`, pin)
	return s.send(email, "Your sign-in code", body)
}

func (s *emailService) SendRecoveryPin(email, pin string) error {
	body := fmt.Sprintf(`
		<h3>Password reset requested</h3>
		<p>We received a request to reset the password for your account.</p>
		<p>Use the following code to continue: <strong>%s</strong></p>
		<p>If you did not request this change, you can ignore this email.</p>
	`, pin)
	return s.send(email, "Password reset code", body)
}

func (s *emailService) SendPasswordChanged(email string) error {
	body := `
		<h3>Your password was changed</h3>
		<p>If this was not you, contact support immediately.</p>
	`
	return s.send(email, "Password changed", body)
}

func (s *emailService) send(to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send %q email: %w", subject, err)
	}
	return nil
}

// dispatchEmail fires a send in the background. The credential backing the
// PIN is already durable, so a failed delivery only costs the user a resend.
func dispatchEmail(tag string, send func() error) {
	go func() {
		if err := send(); err != nil {
			log.Printf("[email][%s] send failed: %v", tag, err)
		}
	}()
}
