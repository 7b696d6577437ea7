package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/postforge/postforge/internal/api/middleware"
	"github.com/postforge/postforge/internal/db/models"
	"github.com/postforge/postforge/internal/secrets"
)

// ListSocialAccountsHandler returns the user's connected platform accounts.
// Token material never leaves the database.
func ListSocialAccountsHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var accounts []models.SocialAccount
		if err := database.Where("user_id = ?", middleware.UserID(r.Context())).
			Order("platform ASC").Find(&accounts).Error; err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to load social accounts")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"accounts": accounts,
			"count":    len(accounts),
		})
	}
}

// ConnectSocialAccountHandler stores a platform connection. Tokens arrive in
// plaintext from the platform OAuth dance and are sealed before storage.
func ConnectSocialAccountHandler(database *gorm.DB, box *secrets.Box) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())

		var req struct {
			Platform          string     `json:"platform"`
			PlatformUserID    string     `json:"platform_user_id"`
			PlatformUsername  string     `json:"platform_username"`
			DisplayName       string     `json:"display_name"`
			ProfilePictureURL string     `json:"profile_picture_url"`
			AccessToken       string     `json:"access_token"`
			RefreshToken      string     `json:"refresh_token"`
			ExpiresAt         *time.Time `json:"expires_at"`
			Settings          string     `json:"settings"`
		}
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.AccessToken == "" {
			respondError(w, http.StatusBadRequest, "access_token is required")
			return
		}

		sealedAccess, err := box.Seal(req.AccessToken)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to encrypt token")
			return
		}
		sealedRefresh, err := box.Seal(req.RefreshToken)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to encrypt token")
			return
		}

		account := models.SocialAccount{
			UserID:                userID,
			Platform:              req.Platform,
			PlatformUserID:        req.PlatformUserID,
			PlatformUsername:      req.PlatformUsername,
			DisplayName:           req.DisplayName,
			ProfilePictureURL:     req.ProfilePictureURL,
			AccessTokenEncrypted:  sealedAccess,
			RefreshTokenEncrypted: sealedRefresh,
			ExpiresAt:             req.ExpiresAt,
			IsActive:              true,
			Settings:              req.Settings,
		}
		if err := account.Validate(); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		// Reconnecting an existing account updates it in place.
		var existing models.SocialAccount
		err = database.Where("user_id = ? AND platform = ? AND platform_user_id = ?",
			userID, req.Platform, req.PlatformUserID).First(&existing).Error
		if err == nil {
			account.ID = existing.ID
			account.CreatedAt = existing.CreatedAt
		} else {
			account.ID = uuid.New().String()
		}

		if err := database.Save(&account).Error; err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to save social account")
			return
		}

		log.Printf("✅ Connected %s account %s for user %s", account.Platform, account.PlatformUsername, userID)
		respondJSON(w, http.StatusCreated, account)
	}
}

// DisconnectSocialAccountHandler removes a connected account and cancels the
// pending platform entries that pointed at it.
func DisconnectSocialAccountHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		accountID := chi.URLParam(r, "accountID")

		var account models.SocialAccount
		if err := database.Where("id = ? AND user_id = ?", accountID, userID).First(&account).Error; err != nil {
			respondError(w, http.StatusNotFound, "Social account not found")
			return
		}

		err := database.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.PostPlatform{}).
				Where("social_account_id = ? AND status = ?", accountID, models.PlatformStatusPending).
				Update("status", models.PlatformStatusCancelled).Error; err != nil {
				return err
			}
			return tx.Delete(&account).Error
		})
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to disconnect account")
			return
		}

		log.Printf("🔌 Disconnected %s account for user %s", account.Platform, userID)
		respondJSON(w, http.StatusOK, map[string]string{"status": "disconnected"})
	}
}
