package models

import (
	"fmt"
	"time"
)

// BrandVoice is a reusable prompt configuration for content generation.
// Name is unique per user; at most one voice per user is the default.
type BrandVoice struct {
	ID                 string    `gorm:"primaryKey" json:"id"` // UUID
	UserID             string    `gorm:"uniqueIndex:idx_voice_user_name" json:"user_id"`
	Name               string    `gorm:"uniqueIndex:idx_voice_user_name" json:"name"`
	Tone               string    `gorm:"default:professional" json:"tone"`
	Industry           string    `json:"industry,omitempty"`
	TargetAudience     string    `json:"target_audience,omitempty"`
	CustomInstructions string    `json:"custom_instructions,omitempty"`
	IsDefault          bool      `gorm:"default:false" json:"is_default"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (BrandVoice) TableName() string { return "brand_voices" }

// Validate checks the tone enum.
func (v *BrandVoice) Validate() error {
	if v.Name == "" {
		return fmt.Errorf("name is required")
	}
	if v.Tone != "" && !contains(tones, v.Tone) {
		return fmt.Errorf("tone %q is not a known tone", v.Tone)
	}
	return nil
}
