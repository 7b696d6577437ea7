package scheduler

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/postforge/postforge/internal/db"
	"github.com/postforge/postforge/internal/db/models"
	"github.com/postforge/postforge/internal/publisher"
	"github.com/postforge/postforge/internal/secrets"
	"github.com/postforge/postforge/internal/util"
)

const (
	publishInterval  = 60 * time.Second
	cleanupInterval  = 24 * time.Hour
	defaultRetention = 30 // days cancelled posts are kept
)

// Scheduler drives the periodic publish and cleanup loops.
type Scheduler struct {
	db        *gorm.DB
	registry  *publisher.Registry
	box       *secrets.Box
	retention time.Duration
}

func New(database *gorm.DB, registry *publisher.Registry, box *secrets.Box) *Scheduler {
	return &Scheduler{
		db:        database,
		registry:  registry,
		box:       box,
		retention: retentionFromEnv(),
	}
}

// retentionFromEnv reads CLEANUP_RETENTION_DAYS, falling back to the default.
func retentionFromEnv() time.Duration {
	days := defaultRetention
	if v := os.Getenv("CLEANUP_RETENTION_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			days = n
		}
	}
	return time.Duration(days) * 24 * time.Hour
}

// Start launches the publish loop (every 60s) and the daily cleanup loop.
// Both stop when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	go s.runPublishLoop(ctx)
	go s.runCleanupLoop(ctx)
	log.Printf("🔄 Scheduler started (publish: %s, cleanup: %s, retention: %s)",
		publishInterval, cleanupInterval, s.retention)
}

func (s *Scheduler) runPublishLoop(ctx context.Context) {
	ticker := time.NewTicker(publishInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Println("🛑 Publish loop stopped")
			return
		case <-ticker.C:
			s.PublishDuePosts(ctx)
		}
	}
}

func (s *Scheduler) runCleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Println("🛑 Cleanup loop stopped")
			return
		case <-ticker.C:
			s.CleanupCancelledPosts()
		}
	}
}

// PublishDuePosts publishes every scheduled post whose time has arrived.
// Posts older than the due window are skipped so a long outage doesn't
// flood platforms with stale content.
func (s *Scheduler) PublishDuePosts(ctx context.Context) (published, failed int) {
	posts, err := db.DueScheduledPosts(s.db, time.Now())
	if err != nil {
		log.Printf("❌ Failed to query due posts: %v", err)
		return 0, 0
	}
	if len(posts) == 0 {
		return 0, 0
	}

	log.Printf("📤 Publishing %d due post(s)", len(posts))
	for i := range posts {
		if err := s.PublishPost(ctx, &posts[i]); err != nil {
			failed++
		} else {
			published++
		}
	}
	return published, failed
}

// PublishPost publishes one post to all of its pending platforms. The post
// ends up published when at least one platform accepted it, failed when
// every platform rejected it or none were attached.
func (s *Scheduler) PublishPost(ctx context.Context, post *models.Post) error {
	platforms, err := db.PendingPlatforms(s.db, post.ID)
	if err != nil {
		return fmt.Errorf("failed to load platforms for post %s: %w", post.ID, err)
	}

	if len(platforms) == 0 {
		s.markPostFailed(post)
		log.Printf("⚠️ Post %s has no pending platforms, marking failed", post.ID)
		return fmt.Errorf("post %s has no pending platforms", post.ID)
	}

	successes := 0
	for i := range platforms {
		if err := s.publishToPlatform(ctx, post, &platforms[i]); err != nil {
			log.Printf("❌ Post %s failed on platform entry %s: %v", post.ID, platforms[i].ID, err)
			continue
		}
		successes++
	}

	now := time.Now()
	if successes > 0 {
		post.Status = models.PostStatusPublished
		post.PublishedAt = &now
		if err := s.db.Save(post).Error; err != nil {
			log.Printf("⚠️ Failed to save published post %s: %v", post.ID, err)
		}
		log.Printf("✅ Post %s published to %d/%d platform(s)", post.ID, successes, len(platforms))
		return nil
	}

	s.markPostFailed(post)
	return fmt.Errorf("post %s failed on all %d platform(s)", post.ID, len(platforms))
}

func (s *Scheduler) markPostFailed(post *models.Post) {
	post.Status = models.PostStatusFailed
	if err := s.db.Save(post).Error; err != nil {
		log.Printf("⚠️ Failed to save failed post %s: %v", post.ID, err)
	}
}

// publishToPlatform publishes to a single connected account and records the
// outcome on the PostPlatform row.
func (s *Scheduler) publishToPlatform(ctx context.Context, post *models.Post, pp *models.PostPlatform) error {
	var account models.SocialAccount
	if err := s.db.First(&account, "id = ?", pp.SocialAccountID).Error; err != nil {
		s.markPlatformFailed(pp, "social account not found")
		return fmt.Errorf("social account %s not found", pp.SocialAccountID)
	}
	if !account.IsActive {
		s.markPlatformFailed(pp, "social account is inactive")
		return fmt.Errorf("social account %s is inactive", account.ID)
	}
	if account.IsTokenExpired() {
		s.markPlatformFailed(pp, "platform token expired, reconnect the account")
		return fmt.Errorf("token expired for %s account %s", account.Platform, account.ID)
	}

	accessToken, err := s.box.Open(account.AccessTokenEncrypted)
	if err != nil {
		s.markPlatformFailed(pp, "failed to decrypt platform token")
		return fmt.Errorf("failed to decrypt token for account %s: %w", account.ID, err)
	}

	pub, err := s.registry.Get(account.Platform)
	if err != nil {
		s.markPlatformFailed(pp, err.Error())
		return err
	}

	result, err := pub.Publish(ctx, publisher.Request{
		Content:        pp.EffectiveContent(post),
		ImageURL:       postImageURL(post),
		AccessToken:    accessToken,
		PlatformUserID: account.PlatformUserID,
	})
	if err != nil {
		s.markPlatformFailed(pp, util.TruncateLog(err.Error(), util.DefaultLogMaxLen))
		return err
	}

	now := time.Now()
	pp.Status = models.PlatformStatusPublished
	pp.PlatformPostID = result.PlatformPostID
	pp.PlatformPostURL = result.PlatformPostURL
	pp.PublishedAt = &now
	pp.ErrorMessage = ""
	if err := s.db.Save(pp).Error; err != nil {
		log.Printf("⚠️ Failed to save platform result for %s: %v", pp.ID, err)
	}

	// Touch the account so stale connections are easy to spot.
	s.db.Model(&account).Update("last_used_at", now)
	return nil
}

func (s *Scheduler) markPlatformFailed(pp *models.PostPlatform, message string) {
	now := time.Now()
	pp.Status = models.PlatformStatusFailed
	pp.ErrorMessage = message
	pp.RetryCount++
	pp.LastRetryAt = &now
	if err := s.db.Save(pp).Error; err != nil {
		log.Printf("⚠️ Failed to save platform failure for %s: %v", pp.ID, err)
	}
}

// postImageURL picks the image for publishing: an explicit image URL wins,
// then the Canva design export.
func postImageURL(post *models.Post) string {
	if post.ImageURL != "" {
		return post.ImageURL
	}
	return post.DesignURL
}

// CleanupCancelledPosts deletes cancelled posts past the retention window.
func (s *Scheduler) CleanupCancelledPosts() {
	cutoff := time.Now().Add(-s.retention)
	deleted, err := db.DeleteCancelledPostsBefore(s.db, cutoff)
	if err != nil {
		log.Printf("❌ Cleanup failed: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("🧹 Cleaned up %d cancelled post(s) older than %s", deleted, s.retention)
	}
}
