package models

import "time"

// Subscription plans
const (
	PlanFree       = "free"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"
)

// User is an application account. Canva OAuth tokens live directly on the
// user row; they are nullable until the user connects Canva.
type User struct {
	ID           string `gorm:"primaryKey"` // UUID
	Email        string `gorm:"uniqueIndex" json:"email"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	PasswordHash string `json:"-"`

	CompanyName        string `json:"company_name,omitempty"`
	BrandVoiceSettings string `json:"-"` // JSON blob
	Timezone           string `gorm:"default:UTC" json:"timezone"`
	SubscriptionPlan   string `gorm:"default:free" json:"subscription_plan"`
	IsEmailVerified    bool   `gorm:"default:false" json:"is_email_verified"`

	// Canva integration
	CanvaAccessToken  string     `json:"-"`
	CanvaRefreshToken string     `json:"-"`
	CanvaTokenExpires *time.Time `gorm:"column:canva_token_expires_at" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// FullName returns "First Last", falling back to the username.
func (u *User) FullName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return u.Username
	}
	return name
}

// HasCanvaConnection reports whether a Canva token pair is stored.
func (u *User) HasCanvaConnection() bool {
	return u.CanvaAccessToken != "" && u.CanvaRefreshToken != ""
}

// ValidPlan reports whether plan is one of the known subscription plans.
func ValidPlan(plan string) bool {
	switch plan {
	case PlanFree, PlanPro, PlanEnterprise:
		return true
	}
	return false
}
