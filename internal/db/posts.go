package db

import (
	"time"

	"github.com/postforge/postforge/internal/db/models"
	"gorm.io/gorm"
)

// DueWindow is how far back the scheduler looks for due posts. Posts whose
// scheduled time fell inside [now-DueWindow, now] are picked up, so a slow
// or restarted sweep never silently drops a post.
const DueWindow = 2 * time.Minute

// DueScheduledPosts returns posts that are scheduled and due as of now.
func DueScheduledPosts(database *gorm.DB, now time.Time) ([]models.Post, error) {
	var posts []models.Post
	windowStart := now.Add(-DueWindow)
	err := database.
		Where("status = ? AND scheduled_time <= ? AND scheduled_time >= ?",
			models.PostStatusScheduled, now, windowStart).
		Find(&posts).Error
	return posts, err
}

// PendingPlatforms returns the platform entries of a post still waiting to
// be published.
func PendingPlatforms(database *gorm.DB, postID string) ([]models.PostPlatform, error) {
	var entries []models.PostPlatform
	err := database.
		Where("post_id = ? AND status = ?", postID, models.PlatformStatusPending).
		Find(&entries).Error
	return entries, err
}

// DeleteCancelledPostsBefore removes cancelled posts not touched since
// cutoff, cascading to their platform entries. Returns the number of posts
// deleted.
func DeleteCancelledPostsBefore(database *gorm.DB, cutoff time.Time) (int64, error) {
	var stale []models.Post
	if err := database.
		Where("status = ? AND updated_at <= ?", models.PostStatusCancelled, cutoff).
		Find(&stale).Error; err != nil {
		return 0, err
	}
	if len(stale) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(stale))
	for _, p := range stale {
		ids = append(ids, p.ID)
	}

	if err := database.Where("post_id IN ?", ids).Delete(&models.PostPlatform{}).Error; err != nil {
		return 0, err
	}
	result := database.Where("id IN ?", ids).Delete(&models.Post{})
	return result.RowsAffected, result.Error
}

// PostStats aggregates a user's post counts by status.
func PostStats(database *gorm.DB, userID string) map[string]int64 {
	countByStatus := func(status string) int64 {
		var n int64
		database.Model(&models.Post{}).Where("user_id = ? AND status = ?", userID, status).Count(&n)
		return n
	}
	var total, aiGenerated int64
	database.Model(&models.Post{}).Where("user_id = ?", userID).Count(&total)
	database.Model(&models.Post{}).Where("user_id = ? AND ai_generated = ?", userID, true).Count(&aiGenerated)

	return map[string]int64{
		"total_posts":        total,
		"pending_approval":   countByStatus(models.PostStatusPendingApproval),
		"approved_posts":     countByStatus(models.PostStatusApproved),
		"scheduled_posts":    countByStatus(models.PostStatusScheduled),
		"published_posts":    countByStatus(models.PostStatusPublished),
		"draft_posts":        countByStatus(models.PostStatusDraft),
		"ai_generated_posts": aiGenerated,
		"manual_posts":       total - aiGenerated,
	}
}

// UserStats aggregates account-level counters for the profile dashboard.
func UserStats(database *gorm.DB, userID string) map[string]any {
	stats := map[string]any{}
	for k, v := range PostStats(database, userID) {
		stats[k] = v
	}

	var connected, voices, profiles int64
	database.Model(&models.SocialAccount{}).
		Where("user_id = ? AND is_active = ?", userID, true).Count(&connected)
	database.Model(&models.BrandVoice{}).Where("user_id = ?", userID).Count(&voices)
	database.Model(&models.CompanyProfile{}).Where("user_id = ?", userID).Count(&profiles)

	stats["connected_accounts"] = connected
	stats["brand_voices"] = voices
	stats["has_company_profile"] = profiles > 0
	return stats
}
