package logging

import (
	"context"
	"strings"
	"testing"
)

func TestGenerateRequestID(t *testing.T) {
	first := GenerateRequestID()
	second := GenerateRequestID()

	if !strings.HasPrefix(first, "req_") {
		t.Errorf("expected req_ prefix, got %q", first)
	}
	if len(first) != len("req_")+12 {
		t.Errorf("unexpected ID length: %q", first)
	}
	if first == second {
		t.Error("expected unique IDs")
	}
}

func TestRequestIDContextRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req_abc123")
	if got := GetRequestID(ctx); got != "req_abc123" {
		t.Errorf("expected req_abc123, got %q", got)
	}
}

func TestGetRequestID_Missing(t *testing.T) {
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("expected empty ID on bare context, got %q", got)
	}
}
