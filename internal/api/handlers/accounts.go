package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/postforge/postforge/internal/api/middleware"
	"github.com/postforge/postforge/internal/auth/session"
	"github.com/postforge/postforge/internal/db"
	"github.com/postforge/postforge/internal/db/models"
)

type registerRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterHandler creates a new user account and returns a token pair.
func RegisterHandler(database *gorm.DB, sessions *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
		if req.Email == "" || !strings.Contains(req.Email, "@") {
			respondError(w, http.StatusBadRequest, "A valid email is required")
			return
		}
		if len(req.Password) < 8 {
			respondError(w, http.StatusBadRequest, "Password must be at least 8 characters")
			return
		}

		var existing models.User
		if err := database.Where("email = ?", req.Email).First(&existing).Error; err == nil {
			respondError(w, http.StatusConflict, "An account with this email already exists")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to hash password")
			return
		}

		username := req.Username
		if username == "" {
			username = strings.SplitN(req.Email, "@", 2)[0]
		}

		user := models.User{
			ID:           uuid.New().String(),
			Email:        req.Email,
			Username:     username,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			PasswordHash: string(hash),
			Timezone:     "UTC",
		}
		if err := database.Create(&user).Error; err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to create account")
			return
		}

		pair, err := sessions.IssuePair(user.ID, user.Email)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to issue tokens")
			return
		}

		log.Printf("✅ Registered new account: %s", user.Email)
		respondJSON(w, http.StatusCreated, map[string]any{
			"user":   user,
			"tokens": pair,
		})
	}
}

// LoginHandler verifies credentials and returns a token pair.
func LoginHandler(database *gorm.DB, sessions *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		var user models.User
		err := database.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Login failed")
			return
		}

		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
			respondError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}

		pair, err := sessions.IssuePair(user.ID, user.Email)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to issue tokens")
			return
		}

		respondJSON(w, http.StatusOK, map[string]any{
			"user":   user,
			"tokens": pair,
		})
	}
}

// RefreshSessionHandler exchanges a valid refresh token for a new token pair.
func RefreshSessionHandler(database *gorm.DB, sessions *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			RefreshToken string `json:"refresh"`
		}
		if err := decodeJSON(r, &req); err != nil || req.RefreshToken == "" {
			respondError(w, http.StatusBadRequest, "Refresh token is required")
			return
		}

		claims, err := sessions.ValidateRefresh(req.RefreshToken)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "Invalid or expired refresh token")
			return
		}

		// The account may have been deleted since the token was issued.
		var user models.User
		if err := database.First(&user, "id = ?", claims.UserID).Error; err != nil {
			respondError(w, http.StatusUnauthorized, "Account no longer exists")
			return
		}

		pair, err := sessions.IssuePair(user.ID, user.Email)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to issue tokens")
			return
		}
		respondJSON(w, http.StatusOK, pair)
	}
}

// LogoutHandler acknowledges a logout. Sessions are stateless JWTs, so the
// client discards its tokens; the server has nothing to revoke.
func LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
	}
}

// ProfileHandler returns the authenticated user's profile.
func ProfileHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var user models.User
		if err := database.First(&user, "id = ?", middleware.UserID(r.Context())).Error; err != nil {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"user":            user,
			"full_name":       user.FullName(),
			"canva_connected": user.HasCanvaConnection(),
		})
	}
}

// UpdateProfileHandler applies a partial update to the user's profile fields.
func UpdateProfileHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var user models.User
		if err := database.First(&user, "id = ?", middleware.UserID(r.Context())).Error; err != nil {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}

		var req struct {
			Username         *string `json:"username"`
			FirstName        *string `json:"first_name"`
			LastName         *string `json:"last_name"`
			CompanyName      *string `json:"company_name"`
			Timezone         *string `json:"timezone"`
			SubscriptionPlan *string `json:"subscription_plan"`
		}
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.Username != nil {
			user.Username = *req.Username
		}
		if req.FirstName != nil {
			user.FirstName = *req.FirstName
		}
		if req.LastName != nil {
			user.LastName = *req.LastName
		}
		if req.CompanyName != nil {
			user.CompanyName = *req.CompanyName
		}
		if req.Timezone != nil {
			user.Timezone = *req.Timezone
		}
		if req.SubscriptionPlan != nil {
			if !models.ValidPlan(*req.SubscriptionPlan) {
				respondError(w, http.StatusBadRequest, "Unknown subscription plan: "+*req.SubscriptionPlan)
				return
			}
			user.SubscriptionPlan = *req.SubscriptionPlan
		}

		if err := database.Save(&user).Error; err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to update profile")
			return
		}
		respondJSON(w, http.StatusOK, user)
	}
}

// ChangePasswordHandler verifies the current password and stores a new hash.
func ChangePasswordHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			CurrentPassword string `json:"current_password"`
			NewPassword     string `json:"new_password"`
		}
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if len(req.NewPassword) < 8 {
			respondError(w, http.StatusBadRequest, "New password must be at least 8 characters")
			return
		}

		var user models.User
		if err := database.First(&user, "id = ?", middleware.UserID(r.Context())).Error; err != nil {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}

		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)) != nil {
			respondError(w, http.StatusUnauthorized, "Current password is incorrect")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to hash password")
			return
		}
		user.PasswordHash = string(hash)
		if err := database.Save(&user).Error; err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to update password")
			return
		}

		log.Printf("🔑 Password changed for %s", user.Email)
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// UserStatsHandler returns dashboard counters for the authenticated user.
func UserStatsHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats := db.UserStats(database, middleware.UserID(r.Context()))
		respondJSON(w, http.StatusOK, stats)
	}
}
