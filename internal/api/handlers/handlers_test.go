package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/postforge/postforge/internal/api/middleware"
	"github.com/postforge/postforge/internal/db/models"
)

func newHandlersTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	err = database.AutoMigrate(
		&models.User{},
		&models.CompanyProfile{},
		&models.BrandVoice{},
		&models.SocialAccount{},
		&models.Post{},
		&models.PostPlatform{},
		&models.AIGeneratedContent{},
		&models.ContentTemplate{},
		&models.PostPerformance{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return database
}

func seedUser(t *testing.T, database *gorm.DB, email string) *models.User {
	t.Helper()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	user := models.User{
		ID:           uuid.New().String(),
		Email:        email,
		Username:     strings.SplitN(email, "@", 2)[0],
		PasswordHash: string(hash),
	}
	if err := database.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return &user
}

// authedRequest builds a request carrying the user identity the way the
// auth middleware would after validating a token.
func authedRequest(method, target, body string, user *models.User) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	return req.WithContext(middleware.WithUser(req.Context(), user.ID, user.Email))
}
