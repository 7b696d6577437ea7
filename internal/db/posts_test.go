package db

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/postforge/postforge/internal/db/models"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := database.AutoMigrate(&models.Post{}, &models.PostPlatform{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return database
}

func schedulePost(t *testing.T, database *gorm.DB, id string, status string, at time.Time) {
	t.Helper()
	post := models.Post{
		ID:            id,
		UserID:        "user-1",
		Content:       "hello",
		Status:        status,
		ScheduledTime: &at,
	}
	if err := database.Create(&post).Error; err != nil {
		t.Fatalf("create post %s: %v", id, err)
	}
}

func TestDueScheduledPosts_WindowBounds(t *testing.T) {
	database := newTestDB(t)
	now := time.Now()

	schedulePost(t, database, "due-now", models.PostStatusScheduled, now.Add(-30*time.Second))
	schedulePost(t, database, "too-old", models.PostStatusScheduled, now.Add(-3*time.Minute))
	schedulePost(t, database, "future", models.PostStatusScheduled, now.Add(10*time.Minute))
	schedulePost(t, database, "wrong-status", models.PostStatusDraft, now.Add(-30*time.Second))

	due, err := DueScheduledPosts(database, now)
	if err != nil {
		t.Fatalf("DueScheduledPosts: %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("expected exactly 1 due post, got %d", len(due))
	}
	if due[0].ID != "due-now" {
		t.Fatalf("expected due-now, got %s", due[0].ID)
	}
}

func TestDeleteCancelledPostsBefore_CascadesToPlatforms(t *testing.T) {
	database := newTestDB(t)
	old := time.Now().Add(-40 * 24 * time.Hour)

	post := models.Post{ID: "stale", UserID: "user-1", Content: "x", Status: models.PostStatusCancelled}
	if err := database.Create(&post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	// Backdate past the set of gorm auto-timestamps.
	if err := database.Model(&models.Post{}).Where("id = ?", "stale").
		UpdateColumn("updated_at", old).Error; err != nil {
		t.Fatalf("backdate post: %v", err)
	}
	entry := models.PostPlatform{ID: "pp-1", PostID: "stale", SocialAccountID: "acc-1"}
	if err := database.Create(&entry).Error; err != nil {
		t.Fatalf("create platform entry: %v", err)
	}

	deleted, err := DeleteCancelledPostsBefore(database, time.Now().Add(-30*24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteCancelledPostsBefore: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deleted post, got %d", deleted)
	}

	var remaining int64
	database.Model(&models.PostPlatform{}).Where("post_id = ?", "stale").Count(&remaining)
	if remaining != 0 {
		t.Fatalf("expected platform entries to cascade, %d left", remaining)
	}
}

func TestDeleteCancelledPostsBefore_KeepsRecentCancellations(t *testing.T) {
	database := newTestDB(t)

	post := models.Post{ID: "fresh", UserID: "user-1", Content: "x", Status: models.PostStatusCancelled}
	if err := database.Create(&post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}

	deleted, err := DeleteCancelledPostsBefore(database, time.Now().Add(-30*24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteCancelledPostsBefore: %v", err)
	}
	if deleted != 0 {
		t.Fatalf("expected 0 deleted posts, got %d", deleted)
	}
}
