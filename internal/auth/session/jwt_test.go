package session

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssuePairAndValidate(t *testing.T) {
	svc := NewService("test-secret")

	pair, err := svc.IssuePair("user-1", "u@example.com")
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}

	claims, err := svc.ValidateAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "u@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if _, err := svc.ValidateRefresh(pair.RefreshToken); err != nil {
		t.Fatalf("ValidateRefresh: %v", err)
	}
}

func TestValidateAccess_RejectsRefreshToken(t *testing.T) {
	svc := NewService("test-secret")
	pair, _ := svc.IssuePair("user-1", "u@example.com")

	if _, err := svc.ValidateAccess(pair.RefreshToken); err == nil {
		t.Fatal("refresh token should not validate as access token")
	}
	if _, err := svc.ValidateRefresh(pair.AccessToken); err == nil {
		t.Fatal("access token should not validate as refresh token")
	}
}

func TestValidate_RejectsWrongSecret(t *testing.T) {
	pair, _ := NewService("secret-a").IssuePair("user-1", "u@example.com")

	if _, err := NewService("secret-b").Validate(pair.AccessToken); err == nil {
		t.Fatal("token signed with another secret should be rejected")
	}
}

func TestValidate_RejectsExpiredToken(t *testing.T) {
	svc := NewService("test-secret")
	expired, err := svc.sign("user-1", "u@example.com", "access",
		time.Now().Add(-2*time.Hour), time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	_, err = svc.Validate(expired)
	if err == nil {
		t.Fatal("expired token should be rejected")
	}
	if !strings.Contains(err.Error(), jwt.ErrTokenExpired.Error()) {
		t.Fatalf("expected expiry error, got %v", err)
	}
}
