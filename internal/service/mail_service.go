package service

import (
	"fmt"
	"log"

	"terravest/config"

	"gopkg.in/gomail.v2"
)

// MailService sends transactional email over SMTP. Sends are best effort:
// callers log and move on when delivery fails, so a dead mail server never
// blocks registration or password resets.
type MailService struct {
	cfg config.MailConfig
}

func NewMailService(cfg config.MailConfig) *MailService {
	return &MailService{cfg: cfg}
}

func (s *MailService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		log.Printf("[Mail] send failed to=%s subject=%q: %v", to, subject, err)
		return err
	}
	return nil
}

func (s *MailService) SendVerificationCode(to, name, code string) error {
	body := fmt.Sprintf("Hi %s,\n\nYour email verification code is %s. It expires in 30 minutes.\n\nIf you did not create an account, you can ignore this message.", name, code)
	return s.send(to, "Verify your email address", body)
}

func (s *MailService) SendPasswordResetCode(to, name, code string) error {
	body := fmt.Sprintf("Hi %s,\n\nYour password reset code is %s. It expires in 30 minutes.\n\nIf you did not request a reset, you can ignore this message.", name, code)
	return s.send(to, "Password reset code", body)
}

func (s *MailService) SendPinResetCode(to, name, code string) error {
	body := fmt.Sprintf("Hi %s,\n\nYour transaction PIN reset code is %s. It expires in 30 minutes.\n\nIf you did not request this, contact support immediately.", name, code)
	return s.send(to, "Transaction PIN reset code", body)
}

// ForwardContactMessage relays a contact-form submission to the admin inbox.
func (s *MailService) ForwardContactMessage(fromName, fromEmail, subject, message string) error {
	body := fmt.Sprintf("From: %s <%s>\n\n%s", fromName, fromEmail, message)
	return s.send(s.cfg.AdminAddress, "Contact form: "+subject, body)
}

// SendContactAutoReply acknowledges a contact-form submission to the sender.
func (s *MailService) SendContactAutoReply(to, name string) error {
	body := fmt.Sprintf("Hi %s,\n\nThanks for getting in touch. We have received your message and will get back to you as soon as possible.", name)
	return s.send(to, "We received your message", body)
}
