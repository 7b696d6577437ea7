package util

import (
	"strings"
	"testing"
)

func TestTruncateLog(t *testing.T) {
	if got := TruncateLog("publish failed", 100); got != "publish failed" {
		t.Errorf("short string should pass through, got %q", got)
	}

	long := strings.Repeat("x", 300)
	got := TruncateLog(long, 50)
	if !strings.HasPrefix(got, strings.Repeat("x", 50)) {
		t.Errorf("expected truncated prefix, got %q", got)
	}
	if !strings.Contains(got, "300 bytes total") {
		t.Errorf("expected total size marker, got %q", got)
	}
}

func TestTruncateBytes(t *testing.T) {
	long := []byte(strings.Repeat("y", DefaultLogMaxLen+10))
	got := TruncateBytes(long)
	if len(got) <= DefaultLogMaxLen {
		t.Errorf("expected marker appended beyond max length, got len %d", len(got))
	}
	if !strings.Contains(got, "truncated") {
		t.Errorf("expected truncation marker, got %q", got[:60])
	}
}
