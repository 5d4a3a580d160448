package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

type EmailService struct {
	client    *resend.Client
	fromEmail string
	isDev     bool
	appURL    string
	appName   string
}

// NewEmailService only creates a Resend client outside development. In
// development every email is logged instead of sent.
func NewEmailService(apiKey, fromEmail, appURL, appName string, isDev bool) *EmailService {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		isDev:     isDev,
		appURL:    appURL,
		appName:   appName,
	}
}

func (s *EmailService) SendStoryPublishedEmail(ctx context.Context, email, title, storyID string) error {
	storyURL := fmt.Sprintf("%s/stories/%s", s.appURL, storyID)
	subject, body := storyPublishedEmailTemplate(title, storyURL, s.appName)
	return s.send(ctx, "story_published", email, subject, body)
}

func (s *EmailService) SendWelcomeEmail(ctx context.Context, email string) error {
	subject, body := welcomeEmailTemplate(s.appURL, s.appName)
	return s.send(ctx, "welcome", email, subject, body)
}

func (s *EmailService) send(ctx context.Context, kind, to, subject, body string) error {
	if s.isDev {
		slog.Info("email sent (dev mode)", "type", kind, "to", to, "subject", subject)
		return nil
	}

	if s.client == nil {
		return fmt.Errorf("email service not configured (missing RESEND_API_KEY)")
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	}

	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return err
	}
	slog.Info("email sent", "type", kind, "to", to)
	return nil
}
