package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/postforge/postforge/internal/api/middleware"
	"github.com/postforge/postforge/internal/db/models"
)

// ListTemplatesHandler returns the user's content templates plus the shared
// ones (empty user_id), optionally filtered by category.
func ListTemplatesHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := database.Where("user_id = ? OR user_id = ''", middleware.UserID(r.Context()))
		if category := r.URL.Query().Get("category"); category != "" {
			query = query.Where("category = ?", category)
		}

		var templates []models.ContentTemplate
		if err := query.Order("usage_count DESC").Find(&templates).Error; err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to load templates")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"templates": templates,
			"count":     len(templates),
		})
	}
}

// CreateTemplateHandler creates a content template.
func CreateTemplateHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var tpl models.ContentTemplate
		if err := decodeJSON(r, &tpl); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		tpl.ID = uuid.New().String()
		tpl.UserID = middleware.UserID(r.Context())
		tpl.UsageCount = 0
		tpl.IsActive = true

		if err := tpl.Validate(); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := database.Create(&tpl).Error; err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to create template")
			return
		}
		respondJSON(w, http.StatusCreated, tpl)
	}
}

// GetTemplateHandler returns a single template by id. Shared templates
// (empty user_id) are readable by everyone.
func GetTemplateHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var tpl models.ContentTemplate
		err := database.
			Where("id = ? AND (user_id = ? OR user_id = '')", chi.URLParam(r, "templateID"), middleware.UserID(r.Context())).
			First(&tpl).Error
		if err != nil {
			respondError(w, http.StatusNotFound, "Template not found")
			return
		}
		respondJSON(w, http.StatusOK, tpl)
	}
}

// UpdateTemplateHandler applies a partial update to one of the user's own
// templates. Shared templates stay read-only through the API.
func UpdateTemplateHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var tpl models.ContentTemplate
		err := database.
			Where("id = ? AND user_id = ?", chi.URLParam(r, "templateID"), middleware.UserID(r.Context())).
			First(&tpl).Error
		if err != nil {
			respondError(w, http.StatusNotFound, "Template not found")
			return
		}

		var req struct {
			Name            *string `json:"name"`
			Category        *string `json:"category"`
			TemplateContent *string `json:"template_content"`
			Description     *string `json:"description"`
			Variables       *string `json:"variables"`
			IsActive        *bool   `json:"is_active"`
		}
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.Name != nil {
			tpl.Name = *req.Name
		}
		if req.Category != nil {
			tpl.Category = *req.Category
		}
		if req.TemplateContent != nil {
			tpl.TemplateContent = *req.TemplateContent
		}
		if req.Description != nil {
			tpl.Description = *req.Description
		}
		if req.Variables != nil {
			tpl.Variables = *req.Variables
		}
		if req.IsActive != nil {
			tpl.IsActive = *req.IsActive
		}

		if err := tpl.Validate(); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := database.Save(&tpl).Error; err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to update template")
			return
		}
		respondJSON(w, http.StatusOK, tpl)
	}
}

// RenderTemplateHandler previews a template with the given variables and
// bumps its usage counter.
func RenderTemplateHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		templateID := chi.URLParam(r, "templateID")

		var tpl models.ContentTemplate
		if err := database.
			Where("id = ? AND (user_id = ? OR user_id = '')", templateID, userID).
			First(&tpl).Error; err != nil {
			respondError(w, http.StatusNotFound, "Template not found")
			return
		}

		var req struct {
			Variables map[string]string `json:"variables"`
		}
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		rendered := tpl.Render(req.Variables)

		now := time.Now()
		database.Model(&tpl).Updates(map[string]any{
			"usage_count": gorm.Expr("usage_count + 1"),
			"last_used":   now,
		})

		respondJSON(w, http.StatusOK, map[string]string{
			"content": rendered,
		})
	}
}

// DeleteTemplateHandler removes one of the user's own templates. Shared
// templates cannot be deleted through the API.
func DeleteTemplateHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result := database.
			Where("id = ? AND user_id = ?", chi.URLParam(r, "templateID"), middleware.UserID(r.Context())).
			Delete(&models.ContentTemplate{})
		if result.Error != nil {
			respondError(w, http.StatusInternalServerError, "Failed to delete template")
			return
		}
		if result.RowsAffected == 0 {
			respondError(w, http.StatusNotFound, "Template not found")
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}
