package models

import (
	"encoding/json"
	"time"
)

// Post lifecycle states.
const (
	PostStatusDraft           = "draft"
	PostStatusPendingApproval = "pending_approval"
	PostStatusApproved        = "approved"
	PostStatusScheduled       = "scheduled"
	PostStatusPublished       = "published"
	PostStatusFailed          = "failed"
	PostStatusCancelled       = "cancelled"
)

// Per-platform publishing states.
const (
	PlatformStatusPending   = "pending"
	PlatformStatusPublished = "published"
	PlatformStatusFailed    = "failed"
	PlatformStatusCancelled = "cancelled"
)

// Generation batch states.
const (
	BatchStatusGenerating      = "generating"
	BatchStatusPendingApproval = "pending_approval"
	BatchStatusApproved        = "approved"
	BatchStatusRejected        = "rejected"
)

// Post is a social media post with scheduling and multi-platform support.
type Post struct {
	ID     string `gorm:"primaryKey" json:"id"` // UUID
	UserID string `gorm:"index" json:"user_id"`

	Title       string `json:"title,omitempty"`
	Content     string `json:"content"`
	Hashtags    string `json:"hashtags,omitempty"` // JSON list
	Description string `json:"description,omitempty"`

	DesignURL       string `json:"design_url,omitempty"`
	DesignThumbnail string `json:"design_thumbnail,omitempty"`
	CanvaDesignID   string `json:"canva_design_id,omitempty"`
	CustomImagePath string `json:"custom_image_path,omitempty"`
	ImageURL        string `json:"image_url,omitempty"`
	DesignSpecs     string `json:"design_specs,omitempty"` // JSON blob

	AIGenerated  bool   `gorm:"default:false" json:"ai_generated"`
	BatchID      string `gorm:"index" json:"batch_id,omitempty"`
	BrandVoiceID string `json:"brand_voice_id,omitempty"`
	AIPrompt     string `json:"ai_prompt,omitempty"`

	RequiresApproval bool       `gorm:"default:true" json:"requires_approval"`
	ApprovedByID     string     `json:"approved_by,omitempty"`
	ApprovedAt       *time.Time `json:"approved_at,omitempty"`

	ScheduledTime *time.Time `gorm:"index" json:"scheduled_time,omitempty"`
	Status        string     `gorm:"index;default:draft" json:"status"`

	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Post) TableName() string { return "posts" }

// IsScheduled reports whether the post is scheduled for a future time.
func (p *Post) IsScheduled() bool {
	return p.Status == PostStatusScheduled && p.ScheduledTime != nil && p.ScheduledTime.After(time.Now())
}

// HashtagList decodes the JSON-encoded hashtag column.
func (p *Post) HashtagList() []string {
	return DecodeStringList(p.Hashtags)
}

// PostPlatform links a post to a social account with per-platform state.
type PostPlatform struct {
	ID              string `gorm:"primaryKey" json:"id"` // UUID
	PostID          string `gorm:"uniqueIndex:idx_post_account;index" json:"post_id"`
	SocialAccountID string `gorm:"uniqueIndex:idx_post_account" json:"social_account_id"`

	PlatformContent      string `json:"platform_content,omitempty"`
	PlatformSpecificData string `json:"platform_specific_data,omitempty"` // JSON blob

	Status          string `gorm:"default:pending" json:"status"`
	PlatformPostID  string `json:"platform_post_id,omitempty"`
	PlatformPostURL string `json:"platform_post_url,omitempty"`

	ErrorMessage string     `json:"error_message,omitempty"`
	RetryCount   int        `gorm:"default:0" json:"retry_count"`
	LastRetryAt  *time.Time `json:"last_retry_at,omitempty"`

	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (PostPlatform) TableName() string { return "post_platforms" }

// EffectiveContent returns the platform override when present, else the
// post's main content.
func (pp *PostPlatform) EffectiveContent(post *Post) string {
	if pp.PlatformContent != "" {
		return pp.PlatformContent
	}
	return post.Content
}

// AIGeneratedContent is a generation batch driving the approval workflow.
type AIGeneratedContent struct {
	ID     string `gorm:"primaryKey" json:"id"` // UUID
	UserID string `gorm:"index" json:"user_id"`

	CompanyInfo      string `json:"company_info,omitempty"` // JSON blob
	GenerationPrompt string `json:"generation_prompt"`
	Language         string `gorm:"default:az" json:"language"`

	Status        string `gorm:"default:generating" json:"status"`
	TotalPosts    int    `gorm:"default:10" json:"total_posts"`
	ApprovedPosts int    `gorm:"default:0" json:"approved_posts"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AIGeneratedContent) TableName() string { return "ai_generated_content" }

// EncodeStringList serializes a string slice for storage in a JSON column.
// Nil and empty slices encode to the empty string.
func EncodeStringList(items []string) string {
	if len(items) == 0 {
		return ""
	}
	data, err := json.Marshal(items)
	if err != nil {
		return ""
	}
	return string(data)
}

// DecodeStringList parses a JSON-encoded string list column. Malformed or
// empty values decode to nil.
func DecodeStringList(raw string) []string {
	if raw == "" {
		return nil
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}
	return items
}
