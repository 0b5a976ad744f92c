package auth

import (
	"context"
	"dataset-exporter/pkg/models"
)

// Provider answers who owns the configured API token
type Provider interface {
	GetCurrentUser(ctx context.Context) (*models.User, error)
}
