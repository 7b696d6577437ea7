package models

import "time"

// PostPerformance tracks engagement metrics for one published platform post.
type PostPerformance struct {
	ID             string `gorm:"primaryKey" json:"id"` // UUID
	PostPlatformID string `gorm:"uniqueIndex" json:"post_platform_id"`

	Likes    int `gorm:"default:0" json:"likes"`
	Comments int `gorm:"default:0" json:"comments"`
	Shares   int `gorm:"default:0" json:"shares"`
	Saves    int `gorm:"default:0" json:"saves"`

	Reach       int `gorm:"default:0" json:"reach"`
	Impressions int `gorm:"default:0" json:"impressions"`

	// (likes + comments + shares) / reach * 100; nil when reach is zero
	EngagementRate *float64 `json:"engagement_rate,omitempty"`

	VideoViews          int      `gorm:"default:0" json:"video_views"`
	VideoCompletionRate *float64 `json:"video_completion_rate,omitempty"`
	LinkClicks          int      `gorm:"default:0" json:"link_clicks"`

	AdditionalMetrics string     `json:"additional_metrics,omitempty"` // JSON blob
	LastFetchedAt     *time.Time `json:"last_fetched_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PostPerformance) TableName() string { return "post_performance" }

// RecalculateEngagementRate recomputes the engagement rate from the raw
// counters. Call before persisting updated metrics.
func (p *PostPerformance) RecalculateEngagementRate() {
	if p.Reach <= 0 {
		p.EngagementRate = nil
		return
	}
	rate := float64(p.Likes+p.Comments+p.Shares) / float64(p.Reach) * 100
	p.EngagementRate = &rate
}
