package token

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/postforge/postforge/internal/db/models"
)

func newTestTokenDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestReloadAllTokens_RebuildsCache(t *testing.T) {
	db := newTestTokenDB(t)
	expires := time.Now().Add(time.Hour)
	user := models.User{
		ID:                "user-1",
		Email:             "test@example.com",
		CanvaAccessToken:  "token-1",
		CanvaRefreshToken: "refresh-1",
		CanvaTokenExpires: &expires,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	mgr := NewManager(db)
	if len(mgr.cache) != 1 {
		t.Fatalf("expected 1 cached connection, got %d", len(mgr.cache))
	}

	if err := db.Model(&models.User{}).Where("id = ?", user.ID).Update("canva_refresh_token", "").Error; err != nil {
		t.Fatalf("disconnect user: %v", err)
	}

	mgr.ReloadAllTokens()
	if len(mgr.cache) != 0 {
		t.Fatalf("expected cache to be rebuilt and empty, got %d", len(mgr.cache))
	}
}

func TestGetToken_ValidTokenServedFromCache(t *testing.T) {
	db := newTestTokenDB(t)
	expires := time.Now().Add(time.Hour)
	user := models.User{
		ID:                "user-2",
		Email:             "cached@example.com",
		CanvaAccessToken:  "token-2",
		CanvaRefreshToken: "refresh-2",
		CanvaTokenExpires: &expires,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	mgr := NewManager(db)
	tok, err := mgr.GetToken(user.ID)
	if err != nil {
		t.Fatalf("GetToken failed: %v", err)
	}
	if tok.AccessToken != "token-2" {
		t.Fatalf("expected cached access token, got %q", tok.AccessToken)
	}
}

func TestGetToken_NoConnection(t *testing.T) {
	db := newTestTokenDB(t)
	if err := db.Create(&models.User{ID: "user-3", Email: "bare@example.com"}).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	mgr := NewManager(db)
	if _, err := mgr.GetToken("user-3"); err == nil {
		t.Fatal("expected error for user without Canva connection")
	}
}

func TestDisconnect_ClearsTokensAndCache(t *testing.T) {
	db := newTestTokenDB(t)
	expires := time.Now().Add(time.Hour)
	user := models.User{
		ID:                "user-4",
		Email:             "gone@example.com",
		CanvaAccessToken:  "token-4",
		CanvaRefreshToken: "refresh-4",
		CanvaTokenExpires: &expires,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	mgr := NewManager(db)
	if err := mgr.Disconnect(user.ID); err != nil {
		t.Fatalf("Disconnect failed: %v", err)
	}

	var reloaded models.User
	if err := db.First(&reloaded, "id = ?", user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if reloaded.CanvaAccessToken != "" || reloaded.CanvaRefreshToken != "" || reloaded.CanvaTokenExpires != nil {
		t.Fatal("expected Canva tokens cleared on user record")
	}
	if _, err := mgr.GetToken(user.ID); err == nil {
		t.Fatal("expected GetToken to fail after disconnect")
	}
}

func TestIsPermanentRefreshError(t *testing.T) {
	tests := []struct {
		name      string
		errText   string
		permanent bool
	}{
		{name: "invalid grant", errText: "oauth2: cannot fetch token: 400 Bad Request {\"error\":\"invalid_grant\"}", permanent: true},
		{name: "revoked", errText: "token has been expired or revoked", permanent: true},
		{name: "timeout", errText: "context deadline exceeded", permanent: false},
		{name: "temporary", errText: "temporarily_unavailable", permanent: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := isPermanentRefreshError(assertErr(tt.errText))
			if got != tt.permanent {
				t.Fatalf("expected %v, got %v", tt.permanent, got)
			}
		})
	}
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
