package stripe

import (
	"context"
	"testing"
	"time"

	"github.com/boxport/boxport-backend/pkg/config"
)

func TestNewClientRejectsMissingKey(t *testing.T) {
	_, err := NewClient(context.Background(), config.StripeConfig{Env: "test"}, nil)
	if err == nil {
		t.Fatal("expected error for missing api key")
	}
}

func TestNewClientValidatesKeyEnvironment(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		key     string
		wantErr bool
	}{
		{name: "test key in test env", env: "test", key: "sk_test_123"},
		{name: "live key in test env", env: "test", key: "sk_live_123", wantErr: true},
		{name: "live key in live env", env: "live", key: "sk_live_123"},
		{name: "test key in live env", env: "live", key: "sk_test_123", wantErr: true},
		{name: "unknown env", env: "staging", key: "sk_test_123", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(context.Background(), config.StripeConfig{Env: tt.env, APIKey: tt.key}, nil)
			if tt.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestNewClientBuildsAPIClientWithTimeout(t *testing.T) {
	client, err := NewClient(context.Background(), config.StripeConfig{
		Env:            "test",
		APIKey:         "sk_test_123",
		RequestTimeout: 10 * time.Second,
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.API() == nil {
		t.Fatal("expected an initialized api client")
	}
}

func TestPublishableKeyExposed(t *testing.T) {
	client, err := NewClient(context.Background(), config.StripeConfig{
		Env:            "test",
		APIKey:         "sk_test_123",
		PublishableKey: "pk_test_456",
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.PublishableKey() != "pk_test_456" {
		t.Fatalf("unexpected publishable key %q", client.PublishableKey())
	}
}
