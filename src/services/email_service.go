package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/username/clubfolio/src/config"
	"github.com/username/clubfolio/src/logger"
)

func NewEmailService() EmailService {
	provider := strings.ToLower(config.Cfg.EmailServiceProvider)
	logger.L.Info("Initializing email service", "provider", provider)

	switch provider {
	case "mailgun":
		if config.Cfg.MailgunDomain == "" || config.Cfg.MailgunPrivateAPIKey == "" || config.Cfg.SenderEmail == "" {
			logger.L.Warn("Mailgun configuration incomplete. Falling back to MockEmailService.")
			return newMockEmailService()
		}
		mg := mailgun.NewMailgun(config.Cfg.MailgunDomain, config.Cfg.MailgunPrivateAPIKey)
		logger.L.Info("Mailgun client initialized", "domain", config.Cfg.MailgunDomain)
		return &MailgunEmailService{
			mg:                       mg,
			senderEmail:              config.Cfg.SenderEmail,
			senderName:               config.Cfg.SenderName,
			verificationEmailBaseURL: config.Cfg.VerificationEmailBaseURL,
			passwordResetBaseURL:     config.Cfg.PasswordResetBaseURL,
		}
	default:
		logger.L.Info("Defaulting to MockEmailService.")
		return newMockEmailService()
	}
}

type MailgunEmailService struct {
	mg                       mailgun.Mailgun
	senderEmail              string
	senderName               string
	verificationEmailBaseURL string
	passwordResetBaseURL     string
}

func (s *MailgunEmailService) SendVerificationEmail(toEmail, username, token string) error {
	sender := fmt.Sprintf("%s <%s>", s.senderName, s.senderEmail)
	subject := "Verify your Clubfolio email address"
	verificationLink := fmt.Sprintf("%s?token=%s", s.verificationEmailBaseURL, token)
	body := fmt.Sprintf(
		"Hi %s,\n\nWelcome to the club. Please verify your email address by clicking this link:\n%s\n\nThe Clubfolio Team",
		username, verificationLink)

	message := s.mg.NewMessage(sender, subject, body, toEmail)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, id, err := s.mg.Send(ctx, message)
	if err != nil {
		logger.L.Error("Failed to send verification email via Mailgun", "to", toEmail, "error", err)
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	logger.L.Info("Verification email sent", "to", toEmail, "messageID", id)
	return nil
}

func (s *MailgunEmailService) SendPasswordResetEmail(toEmail, username, token string) error {
	sender := fmt.Sprintf("%s <%s>", s.senderName, s.senderEmail)
	subject := "Reset your Clubfolio password"
	resetLink := fmt.Sprintf("%s?token=%s", s.passwordResetBaseURL, token)
	body := fmt.Sprintf(
		"Hi %s,\n\nA password reset was requested for your account. Use this link within the next hour:\n%s\n\nIf you did not request this, you can ignore this email.\n\nThe Clubfolio Team",
		username, resetLink)

	message := s.mg.NewMessage(sender, subject, body, toEmail)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, id, err := s.mg.Send(ctx, message)
	if err != nil {
		logger.L.Error("Failed to send password reset email via Mailgun", "to", toEmail, "error", err)
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	logger.L.Info("Password reset email sent", "to", toEmail, "messageID", id)
	return nil
}

// MockEmailService logs instead of sending. Used in development and when
// the mail provider is not configured.
type MockEmailService struct {
	verificationEmailBaseURL string
	passwordResetBaseURL     string
}

func newMockEmailService() *MockEmailService {
	return &MockEmailService{
		verificationEmailBaseURL: config.Cfg.VerificationEmailBaseURL,
		passwordResetBaseURL:     config.Cfg.PasswordResetBaseURL,
	}
}

func (s *MockEmailService) SendVerificationEmail(toEmail, username, token string) error {
	logger.L.Info("MOCK: verification email",
		"to", toEmail, "username", username,
		"link", fmt.Sprintf("%s?token=%s", s.verificationEmailBaseURL, token))
	return nil
}

func (s *MockEmailService) SendPasswordResetEmail(toEmail, username, token string) error {
	logger.L.Info("MOCK: password reset email",
		"to", toEmail, "username", username,
		"link", fmt.Sprintf("%s?token=%s", s.passwordResetBaseURL, token))
	return nil
}
