package service

import (
	"clariasense/internal/repository"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const defaultTokenTTL = 12 * time.Hour

// DeviceAuthService handles device provisioning and token logic.
type DeviceAuthService struct {
	repo       repository.DeviceRepo
	signingKey []byte
	tokenTTL   time.Duration
}

func NewDeviceAuthService(repo repository.DeviceRepo, signingKey string, ttl time.Duration) *DeviceAuthService {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &DeviceAuthService{repo: repo, signingKey: []byte(signingKey), tokenTTL: ttl}
}

// Claims defines device JWT claims.
type Claims struct {
	jwt.RegisteredClaims
	Device string `json:"device"`
}

// Provision stores a bcrypt hash of secret for name, replacing any previous one.
func (s *DeviceAuthService) Provision(ctx context.Context, name, secret string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("device name is empty")
	}
	hash, err := hashSecret(secret)
	if err != nil {
		return fmt.Errorf("provision %q: %w", name, err)
	}
	return s.repo.Upsert(ctx, name, hash)
}

// GenerateToken validates the device secret and returns a signed JWT.
func (s *DeviceAuthService) GenerateToken(ctx context.Context, name, secret string) (string, error) {
	d, err := s.repo.GetByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return "", err
	}
	if d == nil {
		return "", ErrDeviceNotFound
	}
	if err := verifySecret(d.SecretHash, secret); err != nil {
		return "", ErrInvalidSecret
	}
	return s.issueToken(d.Name)
}

// ParseToken validates accessToken and returns the device name.
func (s *DeviceAuthService) ParseToken(accessToken string) (string, error) {
	token, err := jwt.ParseWithClaims(accessToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Device == "" {
		return "", ErrInvalidToken
	}
	return claims.Device, nil
}

func hashSecret(secret string) (string, error) {
	if strings.TrimSpace(secret) == "" {
		return "", errors.New("secret is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}
	return string(hash), nil
}

func verifySecret(hash, secret string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
}

func (s *DeviceAuthService) issueToken(device string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   device,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Device: device,
	})
	return token.SignedString(s.signingKey)
}
