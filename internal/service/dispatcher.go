package service

import (
	"clariasense/internal/logger"
	"clariasense/internal/models"
	"clariasense/internal/repository"
	"context"
	"fmt"
)

// AlertDispatcher mails every subscriber when a violation record is created.
type AlertDispatcher struct {
	subscribers repository.SubscriberRepo
	mailer      *mailer
	log         *logger.Logger
}

func NewAlertDispatcher(subscribers repository.SubscriberRepo, m *mailer, log *logger.Logger) *AlertDispatcher {
	return &AlertDispatcher{subscribers: subscribers, mailer: m, log: logger.OrNop(log)}
}

// HandleViolation queues one "out of parameters" email per subscriber.
func (d *AlertDispatcher) HandleViolation(ctx context.Context, v models.ThresholdViolation) (FanOutReport, error) {
	subs, err := d.subscribers.List(ctx)
	if err != nil {
		return FanOutReport{}, fmt.Errorf("read subscribers: %w", err)
	}
	recipients := subscriberEmails(subs)
	if len(recipients) == 0 {
		d.log.Infow("dispatch_no_subscribers", "violation", v.ID)
		return FanOutReport{}, nil
	}

	return d.mailer.fanOut(ctx, "violation", recipients, func(email string) (models.MailMessage, error) {
		return renderViolationMail(d.mailer.baseURL, email, v)
	})
}
