package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/postforge/postforge/internal/api/middleware"
	"github.com/postforge/postforge/internal/db/models"
)

// ListBrandVoicesHandler returns all of the user's brand voices.
func ListBrandVoicesHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var voices []models.BrandVoice
		if err := database.Where("user_id = ?", middleware.UserID(r.Context())).
			Order("created_at ASC").Find(&voices).Error; err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to load brand voices")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"voices": voices,
			"count":  len(voices),
		})
	}
}

// GetBrandVoiceHandler returns a single brand voice by id.
func GetBrandVoiceHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var voice models.BrandVoice
		err := database.
			Where("id = ? AND user_id = ?", chi.URLParam(r, "voiceID"), middleware.UserID(r.Context())).
			First(&voice).Error
		if err != nil {
			respondError(w, http.StatusNotFound, "Brand voice not found")
			return
		}
		respondJSON(w, http.StatusOK, voice)
	}
}

// CreateBrandVoiceHandler creates a brand voice. Setting is_default clears
// the flag on every other voice the user owns.
func CreateBrandVoiceHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())

		var voice models.BrandVoice
		if err := decodeJSON(r, &voice); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		voice.ID = uuid.New().String()
		voice.UserID = userID
		if voice.Tone == "" {
			voice.Tone = "professional"
		}
		if err := voice.Validate(); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		var dup int64
		database.Model(&models.BrandVoice{}).
			Where("user_id = ? AND name = ?", userID, voice.Name).Count(&dup)
		if dup > 0 {
			respondError(w, http.StatusConflict, "A brand voice with this name already exists")
			return
		}

		err := database.Transaction(func(tx *gorm.DB) error {
			if voice.IsDefault {
				if err := tx.Model(&models.BrandVoice{}).
					Where("user_id = ?", userID).Update("is_default", false).Error; err != nil {
					return err
				}
			}
			return tx.Create(&voice).Error
		})
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to create brand voice")
			return
		}
		respondJSON(w, http.StatusCreated, voice)
	}
}

// UpdateBrandVoiceHandler applies a partial update to a brand voice.
func UpdateBrandVoiceHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		voiceID := chi.URLParam(r, "voiceID")

		var voice models.BrandVoice
		if err := database.Where("id = ? AND user_id = ?", voiceID, userID).First(&voice).Error; err != nil {
			respondError(w, http.StatusNotFound, "Brand voice not found")
			return
		}

		var req struct {
			Name               *string `json:"name"`
			Tone               *string `json:"tone"`
			Industry           *string `json:"industry"`
			TargetAudience     *string `json:"target_audience"`
			CustomInstructions *string `json:"custom_instructions"`
			IsDefault          *bool   `json:"is_default"`
		}
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.Name != nil {
			voice.Name = *req.Name
		}
		if req.Tone != nil {
			voice.Tone = *req.Tone
		}
		if req.Industry != nil {
			voice.Industry = *req.Industry
		}
		if req.TargetAudience != nil {
			voice.TargetAudience = *req.TargetAudience
		}
		if req.CustomInstructions != nil {
			voice.CustomInstructions = *req.CustomInstructions
		}
		if req.IsDefault != nil {
			voice.IsDefault = *req.IsDefault
		}

		if err := voice.Validate(); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		err := database.Transaction(func(tx *gorm.DB) error {
			if voice.IsDefault {
				if err := tx.Model(&models.BrandVoice{}).
					Where("user_id = ? AND id <> ?", userID, voice.ID).
					Update("is_default", false).Error; err != nil {
					return err
				}
			}
			return tx.Save(&voice).Error
		})
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to update brand voice")
			return
		}
		respondJSON(w, http.StatusOK, voice)
	}
}

// DeleteBrandVoiceHandler removes a brand voice.
func DeleteBrandVoiceHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		voiceID := chi.URLParam(r, "voiceID")

		result := database.Where("id = ? AND user_id = ?", voiceID, userID).Delete(&models.BrandVoice{})
		if result.Error != nil {
			respondError(w, http.StatusInternalServerError, "Failed to delete brand voice")
			return
		}
		if result.RowsAffected == 0 {
			respondError(w, http.StatusNotFound, "Brand voice not found")
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}
