package models

import (
	"time"

	"github.com/google/uuid"
)

// Post is a scheduled piece of social content.
type Post struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Content      string     `gorm:"type:text;not null" json:"content"`
	Platform     string     `gorm:"size:32;not null" json:"platform"`
	Status       string     `gorm:"size:20;default:'draft'" json:"status"`
	ScheduledFor *time.Time `json:"scheduledFor,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	User         User       `gorm:"foreignKey:UserID" json:"-"`
}

// Campaign groups posts across accounts. Creation is entitlement-gated.
type Campaign struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Name      string    `gorm:"size:200;not null" json:"name"`
	Status    string    `gorm:"size:20;default:'draft'" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
}
