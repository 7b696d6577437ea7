package models

// RequestLog stores API request logs for the monitor endpoints.
type RequestLog struct {
	ID        string `gorm:"primaryKey" json:"id"`
	Timestamp int64  `gorm:"index" json:"timestamp"`
	Method    string `json:"method"`
	URL       string `json:"url"`
	Status    int    `json:"status"`
	Duration  int64  `json:"duration"` // milliseconds
	UserID    string `gorm:"index" json:"user_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// RequestStats holds aggregated request log counters.
type RequestStats struct {
	TotalRequests int64 `json:"total_requests"`
	SuccessCount  int64 `json:"success_count"`
	ErrorCount    int64 `json:"error_count"`
}
