package auth

import (
	"context"
	"dataset-exporter/internal/platform"
	"dataset-exporter/internal/platform/platformtest"
	"dataset-exporter/pkg/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCredentials(t *testing.T) {
	tests := []struct {
		name    string
		creds   models.Credentials
		wantErr error
	}{
		{"valid", models.Credentials{ServerAddress: "https://app.example.com", APIToken: "t"}, nil},
		{"valid with path", models.Credentials{ServerAddress: "http://localhost:8000/", APIToken: "t"}, nil},
		{"missing token", models.Credentials{ServerAddress: "https://app.example.com"}, ErrMissingCredentials},
		{"missing server", models.Credentials{APIToken: "t"}, ErrMissingCredentials},
		{"blank token", models.Credentials{ServerAddress: "https://app.example.com", APIToken: "  "}, ErrMissingCredentials},
		{"no scheme", models.Credentials{ServerAddress: "app.example.com", APIToken: "t"}, ErrInvalidServer},
		{"ftp scheme", models.Credentials{ServerAddress: "ftp://app.example.com", APIToken: "t"}, ErrInvalidServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCredentials(tt.creds)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestService_Verify(t *testing.T) {
	server := platformtest.NewServer("good-token")
	defer server.Close()

	service := NewService(platform.NewService(server.Credentials()))
	user, err := service.Verify(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "exporter", user.Login)
}

func TestService_Verify_BadToken(t *testing.T) {
	server := platformtest.NewServer("good-token")
	defer server.Close()

	client := platform.NewService(models.Credentials{ServerAddress: server.URL, APIToken: "bad"})
	_, err := NewService(client).Verify(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, platform.ErrUnauthorized)
	assert.Contains(t, err.Error(), "credential check failed")
}
