package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/postforge/postforge/internal/api/middleware"
	"github.com/postforge/postforge/internal/db/models"
)

const maxLogoUploadBytes = 10 << 20 // 10 MB

// GetCompanyProfileHandler returns the user's profile, creating a default
// one on first access so the frontend never deals with a missing profile.
func GetCompanyProfileHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())

		var profile models.CompanyProfile
		err := database.Where("user_id = ?", userID).First(&profile).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			profile = models.CompanyProfile{
				ID:     uuid.New().String(),
				UserID: userID,
			}
			profile.ApplyDefaults()
			profile.BrandingEnabled = true
			profile.GradientEnabled = true
			if err := database.Create(&profile).Error; err != nil {
				respondError(w, http.StatusInternalServerError, "Failed to create profile")
				return
			}
			log.Printf("📦 Created default company profile for user %s", userID)
		} else if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to load profile")
			return
		}

		respondJSON(w, http.StatusOK, profile)
	}
}

// UpdateCompanyProfileHandler applies a partial update, validating every
// bounded field before anything is persisted.
func UpdateCompanyProfileHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())

		var profile models.CompanyProfile
		err := database.Where("user_id = ?", userID).First(&profile).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			profile = models.CompanyProfile{
				ID:     uuid.New().String(),
				UserID: userID,
			}
			profile.ApplyDefaults()
			profile.BrandingEnabled = true
			profile.GradientEnabled = true
		} else if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to load profile")
			return
		}

		var req struct {
			CompanyName           *string   `json:"company_name"`
			Industry              *string   `json:"industry"`
			CompanySize           *string   `json:"company_size"`
			Website               *string   `json:"website"`
			Location              *string   `json:"location"`
			Slogan                *string   `json:"slogan"`
			SloganSizePercent     *int      `json:"slogan_size_percent"`
			BrandingEnabled       *bool     `json:"branding_enabled"`
			BrandingMode          *string   `json:"branding_mode"`
			LogoPosition          *string   `json:"logo_position"`
			SloganPosition        *string   `json:"slogan_position"`
			LogoSizePercent       *int      `json:"logo_size_percent"`
			GradientEnabled       *bool     `json:"gradient_enabled"`
			GradientColor         *string   `json:"gradient_color"`
			GradientHeightPercent *int      `json:"gradient_height_percent"`
			GradientPosition      *string   `json:"gradient_position"`
			BusinessDescription   *string   `json:"business_description"`
			TargetAudience        *string   `json:"target_audience"`
			UniqueSellingPoints   *string   `json:"unique_selling_points"`
			SocialMediaGoals      *string   `json:"social_media_goals"`
			PreferredTone         *string   `json:"preferred_tone"`
			ContentTopics         *[]string `json:"content_topics"`
			Keywords              *[]string `json:"keywords"`
			AvoidTopics           *[]string `json:"avoid_topics"`
			PrimaryLanguage       *string   `json:"primary_language"`
			PostsToGenerate       *int      `json:"posts_to_generate"`
		}
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
			return
		}

		if req.CompanyName != nil {
			profile.CompanyName = *req.CompanyName
		}
		if req.Industry != nil {
			profile.Industry = *req.Industry
		}
		if req.CompanySize != nil {
			profile.CompanySize = *req.CompanySize
		}
		if req.Website != nil {
			profile.Website = *req.Website
		}
		if req.Location != nil {
			profile.Location = *req.Location
		}
		if req.Slogan != nil {
			profile.Slogan = *req.Slogan
		}
		if req.SloganSizePercent != nil {
			profile.SloganSizePercent = *req.SloganSizePercent
		}
		if req.BrandingEnabled != nil {
			profile.BrandingEnabled = *req.BrandingEnabled
		}
		if req.BrandingMode != nil {
			profile.BrandingMode = *req.BrandingMode
		}
		if req.LogoPosition != nil {
			profile.LogoPosition = *req.LogoPosition
		}
		if req.SloganPosition != nil {
			profile.SloganPosition = *req.SloganPosition
		}
		if req.LogoSizePercent != nil {
			profile.LogoSizePercent = *req.LogoSizePercent
		}
		if req.GradientEnabled != nil {
			profile.GradientEnabled = *req.GradientEnabled
		}
		if req.GradientColor != nil {
			profile.GradientColor = *req.GradientColor
		}
		if req.GradientHeightPercent != nil {
			profile.GradientHeightPercent = *req.GradientHeightPercent
		}
		if req.GradientPosition != nil {
			profile.GradientPosition = *req.GradientPosition
		}
		if req.BusinessDescription != nil {
			profile.BusinessDescription = *req.BusinessDescription
		}
		if req.TargetAudience != nil {
			profile.TargetAudience = *req.TargetAudience
		}
		if req.UniqueSellingPoints != nil {
			profile.UniqueSellingPoints = *req.UniqueSellingPoints
		}
		if req.SocialMediaGoals != nil {
			profile.SocialMediaGoals = *req.SocialMediaGoals
		}
		if req.PreferredTone != nil {
			profile.PreferredTone = *req.PreferredTone
		}
		if req.ContentTopics != nil {
			profile.ContentTopics = models.EncodeStringList(*req.ContentTopics)
		}
		if req.Keywords != nil {
			profile.Keywords = models.EncodeStringList(*req.Keywords)
		}
		if req.AvoidTopics != nil {
			profile.AvoidTopics = models.EncodeStringList(*req.AvoidTopics)
		}
		if req.PrimaryLanguage != nil {
			profile.PrimaryLanguage = *req.PrimaryLanguage
		}
		if req.PostsToGenerate != nil {
			profile.PostsToGenerate = *req.PostsToGenerate
		}

		if err := profile.Validate(); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		if err := database.Save(&profile).Error; err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to save profile")
			return
		}
		respondJSON(w, http.StatusOK, profile)
	}
}

// UploadLogoHandler stores an uploaded logo under mediaDir and records its
// path on the profile.
func UploadLogoHandler(database *gorm.DB, mediaDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())

		if err := r.ParseMultipartForm(maxLogoUploadBytes); err != nil {
			respondError(w, http.StatusBadRequest, "Upload too large or malformed")
			return
		}
		file, header, err := r.FormFile("logo")
		if err != nil {
			respondError(w, http.StatusBadRequest, "Missing logo file")
			return
		}
		defer file.Close()

		ext := strings.ToLower(filepath.Ext(header.Filename))
		if ext != ".png" && ext != ".jpg" && ext != ".jpeg" {
			respondError(w, http.StatusBadRequest, "Logo must be a PNG or JPEG image")
			return
		}

		var profile models.CompanyProfile
		if err := database.Where("user_id = ?", userID).First(&profile).Error; err != nil {
			respondError(w, http.StatusNotFound, "Company profile not found")
			return
		}

		logoDir := filepath.Join(mediaDir, "logos", userID)
		if err := os.MkdirAll(logoDir, 0o755); err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to prepare upload directory")
			return
		}

		logoPath := filepath.Join(logoDir, "logo"+ext)
		dst, err := os.Create(logoPath)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to store logo")
			return
		}
		defer dst.Close()
		if _, err := io.Copy(dst, io.LimitReader(file, maxLogoUploadBytes)); err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to store logo")
			return
		}

		profile.LogoPath = logoPath
		if err := database.Save(&profile).Error; err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to save profile")
			return
		}

		log.Printf("📦 Logo uploaded for user %s (%s)", userID, header.Filename)
		respondJSON(w, http.StatusOK, map[string]string{
			"logo_path": profile.LogoPath,
			"status":    "ok",
		})
	}
}

// profileGradientColor resolves the gradient color: explicit setting first,
// then the primary color from brand analysis, then the default blue. The
// default counts as "not set", so an analyzed palette wins over it.
func profileGradientColor(profile *models.CompanyProfile) string {
	if profile.GradientColor != "" && profile.GradientColor != models.DefaultGradientColor {
		return profile.GradientColor
	}
	if color := primaryColorFromAnalysis(profile.BrandAnalysis); color != "" {
		return color
	}
	return models.DefaultGradientColor
}

func primaryColorFromAnalysis(analysis string) string {
	if analysis == "" {
		return ""
	}
	var data struct {
		PrimaryColor string `json:"primary_color"`
	}
	if err := json.Unmarshal([]byte(analysis), &data); err != nil {
		return ""
	}
	return data.PrimaryColor
}
