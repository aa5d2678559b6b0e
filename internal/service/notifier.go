package service

import (
	"clariasense/internal/logger"
	"clariasense/internal/metrics"
	"clariasense/internal/models"
	"clariasense/internal/repository"
	"context"
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

const (
	defaultRefillThreshold = 14.0
	defaultRefillCooldown  = time.Hour
)

// RefillNotifier mails every subscriber when the tank distance passes the
// threshold, at most once per cooldown window.
type RefillNotifier struct {
	sensors     repository.SensorStore
	subscribers repository.SubscriberRepo
	mailer      *mailer
	threshold   float64
	cooldown    time.Duration
	log         *logger.Logger
	metrics     *metrics.Metrics
	now         func() time.Time
}

func NewRefillNotifier(
	sensors repository.SensorStore,
	subscribers repository.SubscriberRepo,
	m *mailer,
	threshold float64,
	cooldown time.Duration,
	log *logger.Logger,
	mt *metrics.Metrics,
) *RefillNotifier {
	if threshold <= 0 {
		threshold = defaultRefillThreshold
	}
	if cooldown <= 0 {
		cooldown = defaultRefillCooldown
	}
	return &RefillNotifier{
		sensors:     sensors,
		subscribers: subscribers,
		mailer:      m,
		threshold:   threshold,
		cooldown:    cooldown,
		log:         logger.OrNop(log),
		metrics:     mt,
		now:         time.Now,
	}
}

func (n *RefillNotifier) skip(outcome RefillOutcome) (RefillResult, error) {
	n.metrics.RefillSkipped(string(outcome))
	return RefillResult{Outcome: outcome}, nil
}

// HandleDistance reacts to a new distance value. The cooldown is claimed
// with a compare-and-swap before recipients are read, so concurrent calls
// inside one window produce at most one batch.
func (n *RefillNotifier) HandleDistance(ctx context.Context, distance float64) (RefillResult, error) {
	if math.IsNaN(distance) || math.IsInf(distance, 0) || distance <= n.threshold {
		return n.skip(RefillBelowThreshold)
	}

	now := n.now()
	st, err := n.sensors.LoadCooldown(ctx)
	if err != nil {
		return RefillResult{}, fmt.Errorf("load cooldown: %w", err)
	}
	if st.Active(now, n.cooldown) {
		n.log.Infow("refill_cooling_down", "last_sent", humanize.Time(st.LastNotification), "distance", distance)
		return n.skip(RefillCoolingDown)
	}

	if _, ok, err := n.sensors.SwapCooldown(ctx, st.Version, now); err != nil {
		return RefillResult{}, fmt.Errorf("claim cooldown: %w", err)
	} else if !ok {
		n.log.Infow("refill_cooldown_claimed_elsewhere", "distance", distance)
		return n.skip(RefillRaceLost)
	}

	subs, err := n.subscribers.List(ctx)
	if err != nil {
		return RefillResult{}, fmt.Errorf("read subscribers: %w", err)
	}
	recipients := subscriberEmails(subs)
	if len(recipients) == 0 {
		n.log.Infow("refill_no_subscribers")
		return n.skip(RefillNoRecipients)
	}

	report, err := n.mailer.fanOut(ctx, "refill", recipients, func(email string) (models.MailMessage, error) {
		return renderRefillMail(n.mailer.baseURL, email)
	})
	n.log.Infow("refill_alert_sent", "distance", distance, "next_allowed", humanize.Time(now.Add(n.cooldown)))
	return RefillResult{Outcome: RefillAlerted, Report: report}, err
}
