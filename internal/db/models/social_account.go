package models

import (
	"fmt"
	"time"
)

// Supported publishing platforms.
const (
	PlatformLinkedIn  = "linkedin"
	PlatformTelegram  = "telegram"
	PlatformInstagram = "instagram"
	PlatformTwitter   = "twitter"
	PlatformFacebook  = "facebook"
	PlatformYouTube   = "youtube"
	PlatformTikTok    = "tiktok"
)

var platforms = []string{
	PlatformLinkedIn, PlatformTelegram, PlatformInstagram,
	PlatformTwitter, PlatformFacebook, PlatformYouTube, PlatformTikTok,
}

// SocialAccount is a connected platform account. Access and refresh tokens
// are stored encrypted (AES-GCM); use the secrets package to seal/open them.
type SocialAccount struct {
	ID                string `gorm:"primaryKey" json:"id"` // UUID
	UserID            string `gorm:"uniqueIndex:idx_social_user_platform_uid" json:"user_id"`
	Platform          string `gorm:"uniqueIndex:idx_social_user_platform_uid" json:"platform"`
	PlatformUserID    string `gorm:"uniqueIndex:idx_social_user_platform_uid" json:"platform_user_id"`
	PlatformUsername  string `json:"platform_username,omitempty"`
	DisplayName       string `json:"display_name,omitempty"`
	ProfilePictureURL string `json:"profile_picture_url,omitempty"`

	AccessTokenEncrypted  string `json:"-"`
	RefreshTokenEncrypted string `json:"-"`

	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	IsActive   bool       `gorm:"default:true" json:"is_active"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	Settings   string     `json:"settings,omitempty"` // JSON blob, platform-specific

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SocialAccount) TableName() string { return "social_accounts" }

// IsTokenExpired reports whether the stored access token is past its expiry.
// Accounts without an expiry never expire.
func (a *SocialAccount) IsTokenExpired() bool {
	if a.ExpiresAt == nil {
		return false
	}
	return !time.Now().Before(*a.ExpiresAt)
}

// ValidPlatform reports whether platform is one of the supported platforms.
func ValidPlatform(platform string) bool {
	return contains(platforms, platform)
}

// Validate checks the platform enum and required identifiers.
func (a *SocialAccount) Validate() error {
	if !ValidPlatform(a.Platform) {
		return fmt.Errorf("platform %q is not supported", a.Platform)
	}
	if a.PlatformUserID == "" {
		return fmt.Errorf("platform_user_id is required")
	}
	return nil
}
