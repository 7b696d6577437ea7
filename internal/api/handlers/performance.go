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

// GetPostPerformanceHandler returns the performance rows for a post's
// platform entries.
func GetPostPerformanceHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, err := userPost(database, r)
		if err != nil {
			respondError(w, http.StatusNotFound, "Post not found")
			return
		}

		var entries []models.PostPlatform
		database.Where("post_id = ?", post.ID).Find(&entries)

		ids := make([]string, 0, len(entries))
		for _, e := range entries {
			ids = append(ids, e.ID)
		}

		var performance []models.PostPerformance
		if len(ids) > 0 {
			database.Where("post_platform_id IN ?", ids).Find(&performance)
		}

		respondJSON(w, http.StatusOK, map[string]any{
			"post_id":     post.ID,
			"performance": performance,
		})
	}
}

// ListPerformanceHandler returns every performance row across the user's
// posts, newest first.
func ListPerformanceHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var performance []models.PostPerformance
		err := database.
			Joins("JOIN post_platforms ON post_platforms.id = post_performance.post_platform_id").
			Joins("JOIN posts ON posts.id = post_platforms.post_id").
			Where("posts.user_id = ?", middleware.UserID(r.Context())).
			Order("post_performance.updated_at DESC").
			Find(&performance).Error
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to load performance data")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"performance": performance,
			"count":       len(performance),
		})
	}
}

// UpsertPerformanceHandler records engagement metrics for a platform entry.
// The engagement rate is recomputed server-side from the raw counters.
func UpsertPerformanceHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		platformID := chi.URLParam(r, "platformID")

		// The platform entry must belong to one of the user's posts.
		var entry models.PostPlatform
		err := database.
			Joins("JOIN posts ON posts.id = post_platforms.post_id").
			Where("post_platforms.id = ? AND posts.user_id = ?", platformID, userID).
			First(&entry).Error
		if err != nil {
			respondError(w, http.StatusNotFound, "Platform entry not found")
			return
		}

		var req struct {
			Likes             *int    `json:"likes"`
			Comments          *int    `json:"comments"`
			Shares            *int    `json:"shares"`
			Saves             *int    `json:"saves"`
			Reach             *int    `json:"reach"`
			Impressions       *int    `json:"impressions"`
			VideoViews        *int    `json:"video_views"`
			LinkClicks        *int    `json:"link_clicks"`
			AdditionalMetrics *string `json:"additional_metrics"`
		}
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		var perf models.PostPerformance
		err = database.Where("post_platform_id = ?", platformID).First(&perf).Error
		if err != nil {
			perf = models.PostPerformance{
				ID:             uuid.New().String(),
				PostPlatformID: platformID,
			}
		}

		if req.Likes != nil {
			perf.Likes = *req.Likes
		}
		if req.Comments != nil {
			perf.Comments = *req.Comments
		}
		if req.Shares != nil {
			perf.Shares = *req.Shares
		}
		if req.Saves != nil {
			perf.Saves = *req.Saves
		}
		if req.Reach != nil {
			perf.Reach = *req.Reach
		}
		if req.Impressions != nil {
			perf.Impressions = *req.Impressions
		}
		if req.VideoViews != nil {
			perf.VideoViews = *req.VideoViews
		}
		if req.LinkClicks != nil {
			perf.LinkClicks = *req.LinkClicks
		}
		if req.AdditionalMetrics != nil {
			perf.AdditionalMetrics = *req.AdditionalMetrics
		}

		perf.RecalculateEngagementRate()
		now := time.Now()
		perf.LastFetchedAt = &now

		if err := database.Save(&perf).Error; err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to save performance")
			return
		}
		respondJSON(w, http.StatusOK, perf)
	}
}
