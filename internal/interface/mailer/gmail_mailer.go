package mailer

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"farewatch-service/internal/domain/entity"
	"farewatch-service/internal/domain/repository"
	"farewatch-service/pkg/logger"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailMailer sends notifications through the Gmail API
type GmailMailer struct {
	gmailService *gmail.Service
	from         string
	logger       logger.Logger
}

// NewGmailMailer creates a new Gmail mailer
func NewGmailMailer(ctx context.Context, tokenSource oauth2.TokenSource, from string, logger logger.Logger) (*GmailMailer, error) {
	service, err := gmail.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, err
	}

	return &GmailMailer{
		gmailService: service,
		from:         from,
		logger:       logger,
	}, nil
}

// Send delivers one notification. Failures are the caller's to log;
// the mailer never retries.
func (m *GmailMailer) Send(ctx context.Context, notification *entity.Notification) error {
	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", m.from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", notification.To))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", notification.Subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(notification.Body)

	raw := base64.URLEncoding.EncodeToString([]byte(msg.String()))

	_, err := m.gmailService.Users.Messages.Send("me", &gmail.Message{Raw: raw}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}

	m.logger.Info("Email sent",
		"to", notification.To,
		"type", string(notification.Type),
		"subject", notification.Subject)

	return nil
}

var _ repository.Notifier = (*GmailMailer)(nil)
