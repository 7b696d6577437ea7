package models

import (
	"fmt"
	"time"
)

// Logo positions match the six layout slots the compositor understands.
const (
	PositionTopCenter    = "top-center"
	PositionTopLeft      = "top-left"
	PositionTopRight     = "top-right"
	PositionBottomCenter = "bottom-center"
	PositionBottomLeft   = "bottom-left"
	PositionBottomRight  = "bottom-right"
)

// Branding modes
const (
	BrandingModeStandard = "standard"
	BrandingModeCustom   = "custom"
)

// Gradient placements
const (
	GradientTop    = "top"
	GradientBottom = "bottom"
	GradientBoth   = "both"
)

// DefaultGradientColor is the stock blue applied when nothing is configured.
// A profile still carrying it counts as "no explicit color chosen".
const DefaultGradientColor = "#3B82F6"

var industries = []string{
	"technology", "healthcare", "finance", "education", "retail",
	"manufacturing", "consulting", "real_estate", "food_beverage",
	"travel_tourism", "automotive", "fashion", "sports_fitness",
	"entertainment", "non_profit", "other",
}

var companySizes = []string{
	"1-10", "11-50", "51-200", "201-500", "501-1000", "1000+",
}

var tones = []string{
	"professional", "casual", "friendly", "authoritative", "humorous", "inspirational",
}

// CompanyProfile is the per-company branding and content configuration.
// One profile per user. JSON-list knobs (topics, keywords) are stored as
// serialized JSON strings, same as other blob columns in this package.
type CompanyProfile struct {
	ID     string `gorm:"primaryKey" json:"id"` // UUID
	UserID string `gorm:"uniqueIndex" json:"user_id"`

	CompanyName   string `json:"company_name"`
	Industry      string `json:"industry"`
	CompanySize   string `json:"company_size"`
	Website       string `json:"website,omitempty"`
	Location      string `json:"location,omitempty"`
	LogoPath      string `json:"logo_path,omitempty"`
	BrandAnalysis string `json:"brand_analysis,omitempty"` // JSON blob from logo analysis

	// Visual branding applied to generated images
	Slogan            string `json:"slogan,omitempty"`
	SloganSizePercent int    `gorm:"default:4" json:"slogan_size_percent"` // % of image height, [2,8]
	BrandingEnabled   bool   `gorm:"default:true" json:"branding_enabled"`
	BrandingMode      string `gorm:"default:standard" json:"branding_mode"`
	LogoPosition      string `gorm:"default:top-center" json:"logo_position"`
	SloganPosition    string `gorm:"default:bottom-center" json:"slogan_position"`
	LogoSizePercent   int    `gorm:"default:13" json:"logo_size_percent"` // % of image height, [2,25]

	// Gradient overlay behind logo/slogan
	GradientEnabled       bool   `gorm:"default:true" json:"gradient_enabled"`
	GradientColor         string `gorm:"default:#3B82F6" json:"gradient_color"`
	GradientHeightPercent int    `gorm:"default:25" json:"gradient_height_percent"` // [10,50]
	GradientPosition      string `gorm:"default:both" json:"gradient_position"`

	BusinessDescription string `json:"business_description"`
	TargetAudience      string `json:"target_audience"`
	UniqueSellingPoints string `json:"unique_selling_points"`
	SocialMediaGoals    string `json:"social_media_goals"`
	PreferredTone       string `gorm:"default:professional" json:"preferred_tone"`

	ContentTopics string `json:"content_topics,omitempty"` // JSON list
	Keywords      string `json:"keywords,omitempty"`       // JSON list
	AvoidTopics   string `json:"avoid_topics,omitempty"`   // JSON list

	PrimaryLanguage string `gorm:"default:az" json:"primary_language"`
	PostsToGenerate int    `gorm:"default:10" json:"posts_to_generate"` // [1,30]

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CompanyProfile) TableName() string { return "company_profiles" }

// Validate enforces the field-level bounds the profile carries. It is called
// before every create/update so out-of-range values never reach the database.
func (p *CompanyProfile) Validate() error {
	if p.PostsToGenerate < 1 || p.PostsToGenerate > 30 {
		return fmt.Errorf("posts_to_generate must be between 1 and 30, got %d", p.PostsToGenerate)
	}
	if p.SloganSizePercent < 2 || p.SloganSizePercent > 8 {
		return fmt.Errorf("slogan_size_percent must be between 2 and 8, got %d", p.SloganSizePercent)
	}
	if p.LogoSizePercent < 2 || p.LogoSizePercent > 25 {
		return fmt.Errorf("logo_size_percent must be between 2 and 25, got %d", p.LogoSizePercent)
	}
	if p.GradientHeightPercent < 10 || p.GradientHeightPercent > 50 {
		return fmt.Errorf("gradient_height_percent must be between 10 and 50, got %d", p.GradientHeightPercent)
	}
	if !ValidLogoPosition(p.LogoPosition) {
		return fmt.Errorf("logo_position %q is not a valid position", p.LogoPosition)
	}
	if p.SloganPosition != PositionTopCenter && p.SloganPosition != PositionBottomCenter {
		return fmt.Errorf("slogan_position %q must be top-center or bottom-center", p.SloganPosition)
	}
	if p.BrandingMode != BrandingModeStandard && p.BrandingMode != BrandingModeCustom {
		return fmt.Errorf("branding_mode %q must be standard or custom", p.BrandingMode)
	}
	if p.GradientPosition != GradientTop && p.GradientPosition != GradientBottom && p.GradientPosition != GradientBoth {
		return fmt.Errorf("gradient_position %q must be top, bottom or both", p.GradientPosition)
	}
	if p.Industry != "" && !contains(industries, p.Industry) {
		return fmt.Errorf("industry %q is not a known industry", p.Industry)
	}
	if p.CompanySize != "" && !contains(companySizes, p.CompanySize) {
		return fmt.Errorf("company_size %q is not a known size bracket", p.CompanySize)
	}
	if p.PreferredTone != "" && !contains(tones, p.PreferredTone) {
		return fmt.Errorf("preferred_tone %q is not a known tone", p.PreferredTone)
	}
	return nil
}

// ApplyDefaults fills zero-valued knobs with their documented defaults.
// Needed because gorm column defaults don't apply to structs built in code.
func (p *CompanyProfile) ApplyDefaults() {
	if p.SloganSizePercent == 0 {
		p.SloganSizePercent = 4
	}
	if p.LogoSizePercent == 0 {
		p.LogoSizePercent = 13
	}
	if p.GradientHeightPercent == 0 {
		p.GradientHeightPercent = 25
	}
	if p.BrandingMode == "" {
		p.BrandingMode = BrandingModeStandard
	}
	if p.LogoPosition == "" {
		p.LogoPosition = PositionTopCenter
	}
	if p.SloganPosition == "" {
		p.SloganPosition = PositionBottomCenter
	}
	if p.GradientColor == "" {
		p.GradientColor = DefaultGradientColor
	}
	if p.GradientPosition == "" {
		p.GradientPosition = GradientBoth
	}
	if p.PreferredTone == "" {
		p.PreferredTone = "professional"
	}
	if p.PrimaryLanguage == "" {
		p.PrimaryLanguage = "az"
	}
	if p.PostsToGenerate == 0 {
		p.PostsToGenerate = 10
	}
}

// ValidLogoPosition reports whether pos is one of the six layout slots.
func ValidLogoPosition(pos string) bool {
	switch pos {
	case PositionTopCenter, PositionTopLeft, PositionTopRight,
		PositionBottomCenter, PositionBottomLeft, PositionBottomRight:
		return true
	}
	return false
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
