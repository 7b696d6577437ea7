package models

import (
	"fmt"
	"strings"
	"time"
)

var templateCategories = []string{
	"announcement", "educational", "promotional", "engagement", "news", "personal",
}

// ContentTemplate is a reusable post template with {variable} placeholders.
type ContentTemplate struct {
	ID     string `gorm:"primaryKey" json:"id"` // UUID
	UserID string `gorm:"uniqueIndex:idx_template_user_name" json:"user_id"`
	Name   string `gorm:"uniqueIndex:idx_template_user_name" json:"name"`

	Category        string `json:"category"`
	TemplateContent string `json:"template_content"`
	Description     string `json:"description,omitempty"`
	Variables       string `json:"variables,omitempty"` // JSON list of placeholder names

	UsageCount int        `gorm:"default:0" json:"usage_count"`
	LastUsed   *time.Time `json:"last_used,omitempty"`
	IsActive   bool       `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ContentTemplate) TableName() string { return "content_templates" }

// Validate checks the category enum and required fields.
func (t *ContentTemplate) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !contains(templateCategories, t.Category) {
		return fmt.Errorf("category %q is not a known category", t.Category)
	}
	if t.TemplateContent == "" {
		return fmt.Errorf("template_content is required")
	}
	return nil
}

// Render substitutes {name} placeholders with the provided values.
// Unknown placeholders are left untouched.
func (t *ContentTemplate) Render(vars map[string]string) string {
	content := t.TemplateContent
	for name, value := range vars {
		content = strings.ReplaceAll(content, "{"+name+"}", value)
	}
	return content
}
