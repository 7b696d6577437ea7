// Package session issues and validates the JWT pairs that authenticate
// API requests.
package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token lifetimes.
const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// Claims carried inside both access and refresh tokens.
type Claims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	Type   string `json:"typ"` // "access" or "refresh"
	jwt.RegisteredClaims
}

// Service signs and validates session tokens with an HMAC secret.
type Service struct {
	secret []byte
}

// NewService creates a session service from the signing secret.
func NewService(secret string) *Service {
	return &Service{secret: []byte(secret)}
}

// TokenPair is what login and register hand back to clients.
type TokenPair struct {
	AccessToken  string `json:"access"`
	RefreshToken string `json:"refresh"`
	ExpiresAt    int64  `json:"expires_at"`
}

// IssuePair creates an access/refresh token pair for the user.
func (s *Service) IssuePair(userID, email string) (*TokenPair, error) {
	now := time.Now()
	accessExpiry := now.Add(AccessTokenTTL)

	access, err := s.sign(userID, email, "access", now, accessExpiry)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := s.sign(userID, email, "refresh", now, now.Add(RefreshTokenTTL))
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    accessExpiry.Unix(),
	}, nil
}

func (s *Service) sign(userID, email, typ string, issued, expires time.Time) (string, error) {
	claims := &Claims{
		UserID: userID,
		Email:  email,
		Type:   typ,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate parses a token string and returns its claims if the signature
// and expiry check out.
func (s *Service) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// ValidateAccess validates a token and requires it to be an access token.
func (s *Service) ValidateAccess(tokenString string) (*Claims, error) {
	claims, err := s.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Type != "access" {
		return nil, fmt.Errorf("token type %q is not an access token", claims.Type)
	}
	return claims, nil
}

// ValidateRefresh validates a token and requires it to be a refresh token.
func (s *Service) ValidateRefresh(tokenString string) (*Claims, error) {
	claims, err := s.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Type != "refresh" {
		return nil, fmt.Errorf("token type %q is not a refresh token", claims.Type)
	}
	return claims, nil
}
