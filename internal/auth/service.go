// Package auth checks the platform credentials before an export starts.
package auth

import (
	"context"
	"dataset-exporter/pkg/models"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	ErrMissingCredentials = errors.New("SERVER_ADDRESS and API_TOKEN must be set")
	ErrInvalidServer      = errors.New("invalid server address")
)

// ValidateCredentials checks that both values are present and the server
// address is an absolute http(s) URL
func ValidateCredentials(creds models.Credentials) error {
	if strings.TrimSpace(creds.ServerAddress) == "" || strings.TrimSpace(creds.APIToken) == "" {
		return ErrMissingCredentials
	}

	parsed, err := url.Parse(strings.TrimSpace(creds.ServerAddress))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidServer, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: URL must use http or https scheme", ErrInvalidServer)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidServer)
	}
	return nil
}

// Service verifies credentials against the platform
type Service struct {
	provider Provider
}

func NewService(provider Provider) *Service {
	return &Service{provider: provider}
}

// Verify makes one authenticated call and returns the token's owner
func (s *Service) Verify(ctx context.Context) (*models.User, error) {
	user, err := s.provider.GetCurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("credential check failed: %w", err)
	}
	return user, nil
}
