package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the durable account record. It is created on trial selection (for
// Google sign-ups that arrive through the pending-OAuth bridge) or already
// exists for returning Google logins.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email        string    `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Username     string    `gorm:"not null;size:64;uniqueIndex" json:"username"`
	FirstName    *string   `gorm:"size:100" json:"firstName,omitempty"`
	LastName     *string   `gorm:"size:100" json:"lastName,omitempty"`
	FullName     *string   `gorm:"size:200" json:"fullName,omitempty"`
	GoogleAvatar *string   `gorm:"size:512" json:"googleAvatar,omitempty"`
	Role         string    `gorm:"size:20;default:'user'" json:"role"`

	// Billing and entitlements
	Tier               string  `gorm:"size:20;default:'starter'" json:"tier"`
	Credits            int     `gorm:"not null;default:0" json:"credits"`
	CreditsUnlimited   bool    `gorm:"default:false" json:"-"`
	SubscriptionStatus string  `gorm:"size:20;default:'none'" json:"subscriptionStatus"`
	SubscriptionPlan   string  `gorm:"size:20;default:'none'" json:"subscriptionPlan"`
	StripeCustomerID   *string `gorm:"size:255;index" json:"-"`
	CardOnFile         bool    `gorm:"default:false" json:"cardOnFile"`

	// Trial state
	NeedsTrialSelection  bool       `gorm:"default:false" json:"needsTrialSelection"`
	TrialVariant         *string    `gorm:"size:32" json:"trialVariant,omitempty"`
	TrialStartedAt       *time.Time `json:"trialStartedAt,omitempty"`
	TrialEndsAt          *time.Time `json:"trialEndsAt,omitempty"`
	TrialImagesRemaining int        `gorm:"default:0" json:"trialImagesRemaining"`
	TrialVideosRemaining int        `gorm:"default:0" json:"trialVideosRemaining"`

	AccountStatus string     `gorm:"size:20;default:'active'" json:"accountStatus"`
	EmailVerified bool       `gorm:"default:false" json:"emailVerified"`
	LastLoginAt   *time.Time `json:"lastLoginAt,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsAdmin reports whether gate middlewares should bypass credit and
// entitlement checks for this user.
func (u *User) IsAdmin() bool {
	return u.Role == "admin"
}
