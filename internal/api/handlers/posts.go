package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/postforge/postforge/internal/api/middleware"
	"github.com/postforge/postforge/internal/branding"
	"github.com/postforge/postforge/internal/db"
	"github.com/postforge/postforge/internal/db/models"
	"github.com/postforge/postforge/internal/platforms"
	"github.com/postforge/postforge/internal/scheduler"
)

const maxPostImageBytes = 10 << 20 // 10 MB

// userPost loads a post scoped to the authenticated user.
func userPost(database *gorm.DB, r *http.Request) (*models.Post, error) {
	var post models.Post
	err := database.Where("id = ? AND user_id = ?",
		chi.URLParam(r, "postID"), middleware.UserID(r.Context())).First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// ListPostsHandler returns the user's posts, optionally filtered by status
// or generation batch.
func ListPostsHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := database.Where("user_id = ?", middleware.UserID(r.Context()))
		if status := r.URL.Query().Get("status"); status != "" {
			query = query.Where("status = ?", status)
		}
		if batchID := r.URL.Query().Get("batch_id"); batchID != "" {
			query = query.Where("batch_id = ?", batchID)
		}

		limit := 50
		if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 && l <= 200 {
			limit = l
		}
		offset := 0
		if o, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && o > 0 {
			offset = o
		}

		var posts []models.Post
		if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&posts).Error; err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to load posts")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"posts": posts,
			"count": len(posts),
		})
	}
}

// CreatePostHandler creates a draft post.
func CreatePostHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Title       string   `json:"title"`
			Content     string   `json:"content"`
			Hashtags    []string `json:"hashtags"`
			Description string   `json:"description"`
			ImageURL    string   `json:"image_url"`
			BrandVoice  string   `json:"brand_voice_id"`
		}
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if strings.TrimSpace(req.Content) == "" {
			respondError(w, http.StatusBadRequest, "content is required")
			return
		}

		post := models.Post{
			ID:               uuid.New().String(),
			UserID:           middleware.UserID(r.Context()),
			Title:            req.Title,
			Content:          req.Content,
			Hashtags:         models.EncodeStringList(req.Hashtags),
			Description:      req.Description,
			ImageURL:         req.ImageURL,
			BrandVoiceID:     req.BrandVoice,
			Status:           models.PostStatusDraft,
			RequiresApproval: true,
		}
		if err := database.Create(&post).Error; err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to create post")
			return
		}
		respondJSON(w, http.StatusCreated, post)
	}
}

// GetPostHandler returns one post with its platform entries.
func GetPostHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, err := userPost(database, r)
		if err != nil {
			respondError(w, http.StatusNotFound, "Post not found")
			return
		}

		var platforms []models.PostPlatform
		database.Where("post_id = ?", post.ID).Find(&platforms)

		respondJSON(w, http.StatusOK, map[string]any{
			"post":      post,
			"platforms": platforms,
		})
	}
}

// UpdatePostHandler edits a post's content fields. Published posts are
// immutable.
func UpdatePostHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, err := userPost(database, r)
		if err != nil {
			respondError(w, http.StatusNotFound, "Post not found")
			return
		}
		if post.Status == models.PostStatusPublished {
			respondError(w, http.StatusConflict, "Published posts cannot be edited")
			return
		}

		var req struct {
			Title       *string   `json:"title"`
			Content     *string   `json:"content"`
			Hashtags    *[]string `json:"hashtags"`
			Description *string   `json:"description"`
			ImageURL    *string   `json:"image_url"`
		}
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.Title != nil {
			post.Title = *req.Title
		}
		if req.Content != nil {
			if strings.TrimSpace(*req.Content) == "" {
				respondError(w, http.StatusBadRequest, "content cannot be empty")
				return
			}
			post.Content = *req.Content
		}
		if req.Hashtags != nil {
			post.Hashtags = models.EncodeStringList(*req.Hashtags)
		}
		if req.Description != nil {
			post.Description = *req.Description
		}
		if req.ImageURL != nil {
			post.ImageURL = *req.ImageURL
		}

		if err := database.Save(post).Error; err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to update post")
			return
		}
		respondJSON(w, http.StatusOK, post)
	}
}

// DeletePostHandler removes a post and its platform entries.
func DeletePostHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, err := userPost(database, r)
		if err != nil {
			respondError(w, http.StatusNotFound, "Post not found")
			return
		}

		err = database.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("post_id = ?", post.ID).Delete(&models.PostPlatform{}).Error; err != nil {
				return err
			}
			return tx.Delete(post).Error
		})
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to delete post")
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// CancelPostHandler cancels a scheduled post before it goes out. The post
// and its pending platform entries flip to cancelled; cleanup removes them
// after the retention window.
func CancelPostHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, err := userPost(database, r)
		if err != nil {
			respondError(w, http.StatusNotFound, "Post not found")
			return
		}
		if post.Status == models.PostStatusPublished {
			respondError(w, http.StatusConflict, "Published posts cannot be cancelled")
			return
		}

		err = database.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.PostPlatform{}).
				Where("post_id = ? AND status = ?", post.ID, models.PlatformStatusPending).
				Update("status", models.PlatformStatusCancelled).Error; err != nil {
				return err
			}
			post.Status = models.PostStatusCancelled
			return tx.Save(post).Error
		})
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to cancel post")
			return
		}

		log.Printf("🚫 Post %s cancelled", post.ID)
		respondJSON(w, http.StatusOK, post)
	}
}

// PendingPostsHandler lists posts awaiting approval.
func PendingPostsHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var posts []models.Post
		err := database.
			Where("user_id = ? AND status = ?", middleware.UserID(r.Context()), models.PostStatusPendingApproval).
			Order("created_at ASC").Find(&posts).Error
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to load pending posts")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"posts": posts,
			"count": len(posts),
		})
	}
}

// BulkApproveHandler approves a set of pending posts in one call.
func BulkApproveHandler(database *gorm.DB) http.HandlerFunc {
	return bulkStatusHandler(database, models.PostStatusApproved, true)
}

// BulkRejectHandler rejects a set of pending posts, cancelling them.
func BulkRejectHandler(database *gorm.DB) http.HandlerFunc {
	return bulkStatusHandler(database, models.PostStatusCancelled, false)
}

func bulkStatusHandler(database *gorm.DB, target string, approve bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())

		var req struct {
			PostIDs []string `json:"post_ids"`
		}
		if err := decodeJSON(r, &req); err != nil || len(req.PostIDs) == 0 {
			respondError(w, http.StatusBadRequest, "post_ids is required")
			return
		}

		now := time.Now()
		updates := map[string]any{"status": target}
		if approve {
			updates["approved_by_id"] = userID
			updates["approved_at"] = now
		}

		result := database.Model(&models.Post{}).
			Where("id IN ? AND user_id = ? AND status = ?", req.PostIDs, userID, models.PostStatusPendingApproval).
			Updates(updates)
		if result.Error != nil {
			respondError(w, http.StatusInternalServerError, "Failed to update posts")
			return
		}

		// Keep the batch counters in sync when these posts came from one.
		if approve && result.RowsAffected > 0 {
			var batchIDs []string
			database.Model(&models.Post{}).
				Where("id IN ? AND batch_id <> ''", req.PostIDs).
				Distinct().Pluck("batch_id", &batchIDs)
			for _, batchID := range batchIDs {
				var approved int64
				database.Model(&models.Post{}).
					Where("batch_id = ? AND status = ?", batchID, models.PostStatusApproved).
					Count(&approved)
				database.Model(&models.AIGeneratedContent{}).
					Where("id = ?", batchID).
					Updates(map[string]any{
						"approved_posts": approved,
						"status":         models.BatchStatusApproved,
					})
			}
		}

		respondJSON(w, http.StatusOK, map[string]any{
			"updated": result.RowsAffected,
			"status":  target,
		})
	}
}

// GeneratePostsHandler creates a batch of draft posts from the user's
// content templates and company profile. The batch size follows the
// profile's posts_to_generate unless the request overrides it (still
// subject to the same bounds).
func GeneratePostsHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())

		var profile models.CompanyProfile
		if err := database.Where("user_id = ?", userID).First(&profile).Error; err != nil {
			respondError(w, http.StatusBadRequest, "Set up a company profile before generating posts")
			return
		}

		var req struct {
			Count        int    `json:"count"`
			Prompt       string `json:"prompt"`
			BrandVoiceID string `json:"brand_voice_id"`
			Language     string `json:"language"`
		}
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		count := profile.PostsToGenerate
		if req.Count != 0 {
			if req.Count < 1 || req.Count > 30 {
				respondError(w, http.StatusBadRequest,
					fmt.Sprintf("count must be between 1 and 30, got %d", req.Count))
				return
			}
			count = req.Count
		}

		language := req.Language
		if language == "" {
			language = profile.PrimaryLanguage
		}

		var templates []models.ContentTemplate
		database.Where("user_id = ? OR user_id = ''", userID).Find(&templates)
		if len(templates) == 0 {
			respondError(w, http.StatusBadRequest, "No content templates available for generation")
			return
		}

		batch := models.AIGeneratedContent{
			ID:               uuid.New().String(),
			UserID:           userID,
			GenerationPrompt: req.Prompt,
			Language:         language,
			Status:           models.BatchStatusPendingApproval,
			TotalPosts:       count,
		}

		vars := map[string]string{
			"company":  profile.CompanyName,
			"industry": profile.Industry,
			"audience": profile.TargetAudience,
			"slogan":   profile.Slogan,
		}
		topics := models.DecodeStringList(profile.ContentTopics)

		posts := make([]models.Post, 0, count)
		for i := 0; i < count; i++ {
			tpl := templates[i%len(templates)]
			if len(topics) > 0 {
				vars["topic"] = topics[i%len(topics)]
			}
			posts = append(posts, models.Post{
				ID:               uuid.New().String(),
				UserID:           userID,
				Content:          tpl.Render(vars),
				AIGenerated:      true,
				BatchID:          batch.ID,
				BrandVoiceID:     req.BrandVoiceID,
				AIPrompt:         req.Prompt,
				Status:           models.PostStatusPendingApproval,
				RequiresApproval: true,
			})
		}

		err := database.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&batch).Error; err != nil {
				return err
			}
			return tx.Create(&posts).Error
		})
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to create generation batch")
			return
		}

		log.Printf("📦 Generated batch %s with %d post(s) for user %s", batch.ID, count, userID)
		respondJSON(w, http.StatusCreated, map[string]any{
			"batch": batch,
			"posts": posts,
		})
	}
}

// SchedulePostHandler schedules an approved or draft post for publishing to
// the given connected accounts at a future time.
func SchedulePostHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		post, err := userPost(database, r)
		if err != nil {
			respondError(w, http.StatusNotFound, "Post not found")
			return
		}
		if post.Status == models.PostStatusPublished {
			respondError(w, http.StatusConflict, "Post is already published")
			return
		}

		var req struct {
			ScheduledTime    time.Time `json:"scheduled_time"`
			SocialAccountIDs []string  `json:"social_account_ids"`
		}
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if !req.ScheduledTime.After(time.Now()) {
			respondError(w, http.StatusBadRequest, "scheduled_time must be in the future")
			return
		}
		if len(req.SocialAccountIDs) == 0 {
			respondError(w, http.StatusBadRequest, "social_account_ids is required")
			return
		}

		var accounts []models.SocialAccount
		if err := database.
			Where("id IN ? AND user_id = ? AND is_active = ?", req.SocialAccountIDs, userID, true).
			Find(&accounts).Error; err != nil || len(accounts) != len(req.SocialAccountIDs) {
			respondError(w, http.StatusBadRequest, "One or more social accounts not found or inactive")
			return
		}

		// Content must fit every target platform's constraints.
		hashtags := len(post.HashtagList())
		hasImage := post.ImageURL != "" || post.CustomImagePath != "" || post.DesignURL != ""
		for _, account := range accounts {
			if err := platforms.ValidateContent(account.Platform, post.Content, hashtags, hasImage); err != nil {
				respondError(w, http.StatusBadRequest, err.Error())
				return
			}
		}

		err = database.Transaction(func(tx *gorm.DB) error {
			for _, account := range accounts {
				entry := models.PostPlatform{
					ID:              uuid.New().String(),
					PostID:          post.ID,
					SocialAccountID: account.ID,
					Status:          models.PlatformStatusPending,
				}
				if err := tx.Create(&entry).Error; err != nil {
					return err
				}
			}
			post.ScheduledTime = &req.ScheduledTime
			post.Status = models.PostStatusScheduled
			return tx.Save(post).Error
		})
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to schedule post")
			return
		}

		log.Printf("📅 Post %s scheduled for %s on %d platform(s)",
			post.ID, req.ScheduledTime.Format(time.RFC3339), len(accounts))
		respondJSON(w, http.StatusOK, post)
	}
}

// PublishNowHandler publishes a post immediately, bypassing the schedule.
// The post still needs platform entries; posts never scheduled get them
// from the request the same way scheduling does.
func PublishNowHandler(database *gorm.DB, sched *scheduler.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		post, err := userPost(database, r)
		if err != nil {
			respondError(w, http.StatusNotFound, "Post not found")
			return
		}
		if post.Status == models.PostStatusPublished {
			respondError(w, http.StatusConflict, "Post is already published")
			return
		}

		var req struct {
			SocialAccountIDs []string `json:"social_account_ids"`
		}
		// Body is optional when the post already has pending platforms.
		_ = decodeJSON(r, &req)

		if len(req.SocialAccountIDs) > 0 {
			var accounts []models.SocialAccount
			if err := database.
				Where("id IN ? AND user_id = ? AND is_active = ?", req.SocialAccountIDs, userID, true).
				Find(&accounts).Error; err != nil || len(accounts) != len(req.SocialAccountIDs) {
				respondError(w, http.StatusBadRequest, "One or more social accounts not found or inactive")
				return
			}
			for _, account := range accounts {
				entry := models.PostPlatform{
					ID:              uuid.New().String(),
					PostID:          post.ID,
					SocialAccountID: account.ID,
					Status:          models.PlatformStatusPending,
				}
				if err := database.Create(&entry).Error; err != nil {
					respondError(w, http.StatusInternalServerError, "Failed to attach platforms")
					return
				}
			}
		}

		if err := sched.PublishPost(r.Context(), post); err != nil {
			respondError(w, http.StatusBadGateway, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, post)
	}
}

// UploadPostImageHandler attaches an uploaded image to a post.
func UploadPostImageHandler(database *gorm.DB, mediaDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		post, err := userPost(database, r)
		if err != nil {
			respondError(w, http.StatusNotFound, "Post not found")
			return
		}

		if err := r.ParseMultipartForm(maxPostImageBytes); err != nil {
			respondError(w, http.StatusBadRequest, "Upload too large or malformed")
			return
		}
		file, header, err := r.FormFile("image")
		if err != nil {
			respondError(w, http.StatusBadRequest, "Missing image file")
			return
		}
		defer file.Close()

		ext := strings.ToLower(filepath.Ext(header.Filename))
		if ext != ".png" && ext != ".jpg" && ext != ".jpeg" {
			respondError(w, http.StatusBadRequest, "Image must be PNG or JPEG")
			return
		}

		imageDir := filepath.Join(mediaDir, "posts", userID)
		if err := os.MkdirAll(imageDir, 0o755); err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to prepare upload directory")
			return
		}

		imagePath := filepath.Join(imageDir, post.ID+ext)
		dst, err := os.Create(imagePath)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to store image")
			return
		}
		defer dst.Close()
		if _, err := io.Copy(dst, io.LimitReader(file, maxPostImageBytes)); err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to store image")
			return
		}

		post.CustomImagePath = imagePath
		post.ImageURL = mediaURL(mediaDir, imagePath)
		if err := database.Save(post).Error; err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to update post")
			return
		}
		respondJSON(w, http.StatusOK, post)
	}
}

// ApplyBrandingHandler composites the company branding onto the post's
// image and points the post at the branded copy.
func ApplyBrandingHandler(database *gorm.DB, compositor *branding.Compositor, mediaDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		post, err := userPost(database, r)
		if err != nil {
			respondError(w, http.StatusNotFound, "Post not found")
			return
		}
		if post.CustomImagePath == "" {
			respondError(w, http.StatusBadRequest, "Post has no image to brand; upload one first")
			return
		}

		var profile models.CompanyProfile
		err = database.Where("user_id = ?", userID).First(&profile).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(w, http.StatusBadRequest, "Set up a company profile before applying branding")
			return
		}
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to load profile")
			return
		}
		if !profile.BrandingEnabled {
			respondError(w, http.StatusBadRequest, "Branding is disabled on the company profile")
			return
		}

		profile.GradientColor = profileGradientColor(&profile)

		ext := filepath.Ext(post.CustomImagePath)
		brandedPath := filepath.Join(mediaDir, "posts", userID, post.ID+"_branded"+ext)
		if err := compositor.Apply(post.CustomImagePath, brandedPath, &profile); err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to apply branding: "+err.Error())
			return
		}

		post.CustomImagePath = brandedPath
		post.ImageURL = mediaURL(mediaDir, brandedPath)
		if err := database.Save(post).Error; err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to update post")
			return
		}

		log.Printf("🎨 Branding applied to post %s", post.ID)
		respondJSON(w, http.StatusOK, post)
	}
}

// mediaURL converts an on-disk media path into the URL the file server
// exposes it under.
func mediaURL(mediaDir, path string) string {
	rel, err := filepath.Rel(mediaDir, path)
	if err != nil {
		return ""
	}
	return "/media/" + filepath.ToSlash(rel)
}

// PostStatsHandler returns post counters grouped by status.
func PostStatsHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats := db.PostStats(database, middleware.UserID(r.Context()))
		respondJSON(w, http.StatusOK, stats)
	}
}
