package telemetry

import (
	"context"
	"testing"
)

func TestSetupDisabled(t *testing.T) {
	for _, opts := range []Options{
		{ServiceName: "petd", Endpoint: "http://localhost:4318", Enabled: false},
		{ServiceName: "petd", Endpoint: "  ", Enabled: true},
	} {
		shutdown, err := Setup(context.Background(), opts)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := shutdown(context.Background()); err != nil {
			t.Fatalf("expected no-op shutdown, got %v", err)
		}
	}
}

func TestSetupEnabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), Options{ServiceName: "petd", Endpoint: "http://127.0.0.1:4318", Enabled: true})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("expected clean shutdown, got %v", err)
	}
}
