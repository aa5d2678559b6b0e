package service

import (
	"clariasense/internal/logger"
	"clariasense/internal/metrics"
	"clariasense/internal/models"
	"clariasense/internal/repository"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const defaultMaxParallelWrites = 8

// mailer renders one message per recipient and writes the jobs to the mail
// queue concurrently.
type mailer struct {
	repo     repository.MailRepo
	baseURL  string
	parallel int
	log      *logger.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

func newMailer(repo repository.MailRepo, baseURL string, parallel int, log *logger.Logger, m *metrics.Metrics) *mailer {
	if parallel <= 0 {
		parallel = defaultMaxParallelWrites
	}
	return &mailer{
		repo:     repo,
		baseURL:  baseURL,
		parallel: parallel,
		log:      logger.OrNop(log),
		metrics:  m,
		now:      time.Now,
	}
}

// fanOut writes one job per recipient and waits for all of them. A failed
// write does not stop the others; failures come back joined.
func (m *mailer) fanOut(ctx context.Context, kind string, recipients []string, render func(email string) (models.MailMessage, error)) (FanOutReport, error) {
	report := FanOutReport{Recipients: len(recipients)}

	var (
		mu   sync.Mutex
		errs []error
		g    errgroup.Group
	)
	g.SetLimit(m.parallel)

	for _, email := range recipients {
		g.Go(func() error {
			err := m.enqueue(ctx, email, render)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed++
				errs = append(errs, err)
				m.log.Errorw("mail_enqueue_failed", "kind", kind, "to", email, "err", err)
				return nil
			}
			report.Written++
			return nil
		})
	}
	_ = g.Wait()

	m.metrics.MailJobs(kind, report.Written, report.Failed)
	m.log.Infow("mail_fan_out_done", "kind", kind, "recipients", report.Recipients, "written", report.Written, "failed", report.Failed)
	return report, errors.Join(errs...)
}

func (m *mailer) enqueue(ctx context.Context, email string, render func(string) (models.MailMessage, error)) error {
	msg, err := render(email)
	if err != nil {
		return err
	}
	job := models.MailJob{
		ID:        uuid.NewString(),
		To:        []string{email},
		Message:   msg,
		CreatedAt: m.now().UTC(),
	}
	if err := m.repo.Enqueue(ctx, job); err != nil {
		return fmt.Errorf("enqueue mail to %s: %w", email, err)
	}
	return nil
}

// subscriberEmails extracts non-empty addresses.
func subscriberEmails(subs []models.Subscriber) []string {
	out := make([]string, 0, len(subs))
	for _, s := range subs {
		if s.Email != "" {
			out = append(out, s.Email)
		}
	}
	return out
}
