package service

import (
	"clariasense/internal/logger"
	"clariasense/internal/models"
	"clariasense/internal/repository"
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
)

type SubscriptionService struct {
	repo repository.SubscriberRepo
	log  *logger.Logger
	now  func() time.Time
}

func NewSubscriptionService(repo repository.SubscriberRepo, log *logger.Logger) *SubscriptionService {
	return &SubscriptionService{repo: repo, log: logger.OrNop(log), now: time.Now}
}

// validateEmail normalizes s and checks it is a bare address.
func validateEmail(s string) (string, error) {
	email := models.NormalizeEmail(s)
	if email == "" {
		return "", ErrEmailRequired
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// Subscribe adds email to the list. created is false when it was already there.
func (s *SubscriptionService) Subscribe(ctx context.Context, email string) (models.Subscriber, bool, error) {
	normalized, err := validateEmail(email)
	if err != nil {
		return models.Subscriber{}, false, err
	}
	sub := models.Subscriber{
		ID:           uuid.NewString(),
		Email:        normalized,
		SubscribedAt: s.now().UTC(),
	}
	created, err := s.repo.Add(ctx, sub)
	if err != nil {
		return models.Subscriber{}, false, fmt.Errorf("subscribe: %w", err)
	}
	if created {
		s.log.Infow("subscriber_added", "email", normalized)
	}
	return sub, created, nil
}

// Unsubscribe removes every subscriber matching the normalized email.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, email string) error {
	normalized := models.NormalizeEmail(email)
	if normalized == "" {
		return ErrEmailRequired
	}
	n, err := s.repo.DeleteByEmail(ctx, normalized)
	if err != nil {
		return fmt.Errorf("unsubscribe: %w", err)
	}
	if n == 0 {
		return ErrSubscriberNotFound
	}
	s.log.Infow("subscriber_removed", "email", normalized, "count", n)
	return nil
}
