package token

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/postforge/postforge/internal/auth/canva"
	"github.com/postforge/postforge/internal/db/models"
)

// Manager handles the Canva token lifecycle including auto-refresh.
type Manager struct {
	db    *gorm.DB
	cache map[string]*CachedToken
	mu    sync.RWMutex
}

// CachedToken holds an in-memory token with its metadata.
type CachedToken struct {
	AccessToken string
	ExpiresAt   time.Time
	Email       string
}

// NewManager creates a new token manager.
func NewManager(db *gorm.DB) *Manager {
	m := &Manager{
		db:    db,
		cache: make(map[string]*CachedToken),
	}
	m.loadAllTokens()
	return m
}

// loadAllTokens loads every connected user's tokens into memory.
func (m *Manager) loadAllTokens() {
	var users []models.User
	m.db.Where("canva_refresh_token <> ''").Find(&users)

	m.mu.Lock()
	defer m.mu.Unlock()

	// Full rebuild keeps cache consistent with the connected set in the DB.
	m.cache = make(map[string]*CachedToken, len(users))
	for _, u := range users {
		var expiresAt time.Time
		if u.CanvaTokenExpires != nil {
			expiresAt = *u.CanvaTokenExpires
		}
		m.cache[u.ID] = &CachedToken{
			AccessToken: u.CanvaAccessToken,
			ExpiresAt:   expiresAt,
			Email:       u.Email,
		}
	}
	log.Printf("📦 Loaded %d Canva connections into cache", len(users))
}

// ReloadAllTokens reloads the token cache from the database (public API).
func (m *Manager) ReloadAllTokens() {
	m.loadAllTokens()
}

// GetToken returns a valid Canva access token for a specific user,
// refreshing synchronously when it is expired or expiring soon.
func (m *Manager) GetToken(userID string) (*CachedToken, error) {
	m.mu.RLock()
	token, exists := m.cache[userID]
	m.mu.RUnlock()

	if !exists {
		// Not in cache, try loading from database
		var user models.User
		if err := m.db.Where("id = ? AND canva_refresh_token <> ''", userID).First(&user).Error; err != nil {
			return nil, fmt.Errorf("no Canva connection for user: %s", userID)
		}

		var expiresAt time.Time
		if user.CanvaTokenExpires != nil {
			expiresAt = *user.CanvaTokenExpires
		}
		token = &CachedToken{
			AccessToken: user.CanvaAccessToken,
			ExpiresAt:   expiresAt,
			Email:       user.Email,
		}
		m.mu.Lock()
		m.cache[userID] = token
		m.mu.Unlock()
		log.Printf("📦 Loaded Canva tokens for %s into cache on-demand", user.Email)
	}

	if token.ExpiresAt.Before(time.Now().Add(5 * time.Minute)) {
		// Token expiring soon, refresh synchronously
		log.Printf("⚠️ Canva token for %s is expired/expiring, refreshing...", token.Email)
		m.refreshToken(userID)

		// Re-read from cache
		m.mu.RLock()
		token = m.cache[userID]
		m.mu.RUnlock()

		if token == nil || token.ExpiresAt.Before(time.Now().Add(time.Minute)) {
			return nil, fmt.Errorf("token refresh failed")
		}
	}

	return token, nil
}

// RefreshUserToken forces a refresh for a specific user.
func (m *Manager) RefreshUserToken(userID string) error {
	m.refreshToken(userID)

	// Verify refresh success
	m.mu.RLock()
	token, exists := m.cache[userID]
	m.mu.RUnlock()

	if !exists {
		return fmt.Errorf("no Canva connection in cache")
	}
	if token.ExpiresAt.Before(time.Now().Add(time.Minute)) {
		return fmt.Errorf("refresh failed, token still expired")
	}
	return nil
}

// Disconnect removes a user's Canva tokens from the database and cache.
func (m *Manager) Disconnect(userID string) error {
	err := m.db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]any{
		"canva_access_token":     "",
		"canva_refresh_token":    "",
		"canva_token_expires_at": nil,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to clear Canva tokens: %w", err)
	}

	m.mu.Lock()
	delete(m.cache, userID)
	m.mu.Unlock()

	log.Printf("🔌 Canva disconnected for user %s", userID)
	return nil
}

func maskToken(t string) string {
	if len(t) < 20 {
		return t
	}
	return "..." + t[len(t)-12:]
}

// StartRefreshLoop starts background token refresh.
func (m *Manager) StartRefreshLoop() {
	ticker := time.NewTicker(15 * time.Minute)
	go func() {
		for range ticker.C {
			m.refreshExpiringTokens()
		}
	}()
	log.Println("🔄 Canva token refresh loop started (interval: 15min)")
}

// refreshExpiringTokens refreshes all tokens expiring within 20 minutes.
func (m *Manager) refreshExpiringTokens() {
	var users []models.User
	threshold := time.Now().Add(20 * time.Minute)
	m.db.Where("canva_refresh_token <> '' AND canva_token_expires_at < ?", threshold).Find(&users)

	for _, u := range users {
		m.refreshToken(u.ID)
	}
}

// refreshToken refreshes a single user's Canva token.
func (m *Manager) refreshToken(userID string) {
	var user models.User
	if err := m.db.First(&user, "id = ?", userID).Error; err != nil {
		log.Printf("⚠️ Failed to find user %s: %v", userID, err)
		return
	}
	if user.CanvaRefreshToken == "" {
		return
	}

	// Use OAuth2 token source for refresh
	token := &oauth2.Token{
		RefreshToken: user.CanvaRefreshToken,
	}

	config := canva.GetOAuthConfig("")
	tokenSource := config.TokenSource(context.Background(), token)

	newToken, err := tokenSource.Token()
	if err != nil {
		log.Printf("❌ Canva refresh failed for %s: %v", user.Email, err)

		if isPermanentRefreshError(err) {
			// Permanent auth failures clear the connection and require re-consent.
			user.CanvaAccessToken = ""
			user.CanvaRefreshToken = ""
			user.CanvaTokenExpires = nil
			m.db.Save(&user)

			m.mu.Lock()
			delete(m.cache, userID)
			m.mu.Unlock()

			log.Printf("🔒 Canva connection for %s removed. Please reconnect.", user.Email)
			return
		}

		// Transient failure: keep the connection and retry later.
		log.Printf("⏳ Transient Canva refresh failure for %s, connection kept", user.Email)
		return
	}

	// Update database
	expiry := newToken.Expiry
	user.CanvaAccessToken = newToken.AccessToken
	user.CanvaTokenExpires = &expiry
	// Persist rotated refresh token if provided (Canva rotates on every refresh)
	if newToken.RefreshToken != "" && newToken.RefreshToken != user.CanvaRefreshToken {
		log.Printf("🔄 Rotating Canva refresh token for: %s", user.Email)
		user.CanvaRefreshToken = newToken.RefreshToken
	}
	if err := m.db.Save(&user).Error; err != nil {
		log.Printf("⚠️ Failed to save refreshed Canva token: %v", err)
		return
	}

	// Update cache
	m.mu.Lock()
	m.cache[userID] = &CachedToken{
		AccessToken: newToken.AccessToken,
		ExpiresAt:   newToken.Expiry,
		Email:       user.Email,
	}
	m.mu.Unlock()

	log.Printf("✅ Refreshed Canva token for: %s (expires: %s, token: %s)",
		user.Email, newToken.Expiry.Format(time.RFC3339), maskToken(newToken.AccessToken))
}

func isPermanentRefreshError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	permanentMarkers := []string{
		"invalid_grant",
		"invalid_client",
		"unauthorized_client",
		"token has been expired or revoked",
		"revoked",
	}
	for _, marker := range permanentMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
