package notification

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/tastyaana/tiffin/internal/domain/subscription"
	sharedconfig "github.com/tastyaana/tiffin/internal/shared/config"
	"github.com/tastyaana/tiffin/internal/shared/logger"
)

// EmailNotificationSink sends delivery outcome and expiry notifications over
// SMTP to the operations address. The core does not own customer contact
// details, so customer-facing notifications are relayed by the ops tooling
// that consumes these mails.
type EmailNotificationSink struct {
	config sharedconfig.EmailConfig
	dialer *gomail.Dialer
	logger logger.Interface
}

func NewEmailNotificationSink(config sharedconfig.EmailConfig, logger logger.Interface) *EmailNotificationSink {
	dialer := gomail.NewDialer(config.SMTPHost, config.SMTPPort, config.SMTPUser, config.SMTPPassword)

	return &EmailNotificationSink{
		config: config,
		dialer: dialer,
		logger: logger,
	}
}

func (s *EmailNotificationSink) NotifyDeliveryCompleted(ctx context.Context, event subscription.DeliveryCompletedEvent) error {
	subject := fmt.Sprintf("Delivery %s completed", event.DeliveryNumber)
	body := fmt.Sprintf(`Delivery completed.

Delivery number: %s
Subscription:    %s
Date:            %s (%s shift)
Meals remaining: %d
`, event.DeliveryNumber, event.SubscriptionSID, event.Date.String(), event.Shift.String(), event.MealsRemaining)

	return s.send(subject, body)
}

func (s *EmailNotificationSink) NotifyDeliveryIssue(ctx context.Context, event subscription.DeliveryIssueEvent) error {
	subject := fmt.Sprintf("Delivery %s needs attention: %s", event.DeliveryNumber, event.Status)
	body := fmt.Sprintf(`A delivery hit a problem and needs follow-up.

Delivery number: %s
Subscription:    %s
Date:            %s (%s shift)
Status:          %s
Note:            %s
`, event.DeliveryNumber, event.SubscriptionSID, event.Date.String(), event.Shift.String(), event.Status, event.Note)

	return s.send(subject, body)
}

func (s *EmailNotificationSink) NotifySubscriptionExpired(ctx context.Context, event subscription.SubscriptionExpiredEvent) error {
	subject := fmt.Sprintf("Subscription %s expired", event.SubscriptionSID)
	body := fmt.Sprintf(`A subscription ran out of meals and was expired.

Subscription: %s
User ID:      %d
Expired at:   %s
`, event.SubscriptionSID, event.UserID, event.OccurredAt.Format("2006-01-02 15:04:05 MST"))

	return s.send(subject, body)
}

func (s *EmailNotificationSink) send(subject, plainBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.config.FromAddress, s.config.FromName))
	m.SetHeader("To", s.config.OpsAddress)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", plainBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// LogNotificationSink is the fallback used when email is disabled. Events
// still land in the structured log so nothing is silently dropped.
type LogNotificationSink struct {
	logger logger.Interface
}

func NewLogNotificationSink(logger logger.Interface) *LogNotificationSink {
	return &LogNotificationSink{logger: logger}
}

func (s *LogNotificationSink) NotifyDeliveryCompleted(ctx context.Context, event subscription.DeliveryCompletedEvent) error {
	s.logger.Infow("delivery completed",
		"delivery_number", event.DeliveryNumber,
		"subscription_sid", event.SubscriptionSID,
		"date", event.Date.String(),
		"shift", event.Shift.String(),
		"meals_remaining", event.MealsRemaining)
	return nil
}

func (s *LogNotificationSink) NotifyDeliveryIssue(ctx context.Context, event subscription.DeliveryIssueEvent) error {
	s.logger.Warnw("delivery issue reported",
		"delivery_number", event.DeliveryNumber,
		"subscription_sid", event.SubscriptionSID,
		"date", event.Date.String(),
		"shift", event.Shift.String(),
		"status", event.Status,
		"note", event.Note)
	return nil
}

func (s *LogNotificationSink) NotifySubscriptionExpired(ctx context.Context, event subscription.SubscriptionExpiredEvent) error {
	s.logger.Infow("subscription expired",
		"subscription_sid", event.SubscriptionSID,
		"user_id", event.UserID)
	return nil
}
