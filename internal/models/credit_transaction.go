package models

import (
	"time"

	"github.com/google/uuid"
)

// Credit transaction types.
const (
	TxnDebit      = "debit"
	TxnTrialGrant = "trial_grant"
	TxnPurchase   = "purchase"
)

// CreditTransaction is an append-only ledger entry. Amount is signed: debits
// are negative, grants positive. StripeSessionID carries the checkout session
// id for payment-driven grants; its unique index is what makes webhook
// redelivery safe.
type CreditTransaction struct {
	ID              uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Amount          int       `gorm:"not null" json:"amount"`
	Type            string    `gorm:"size:20;not null" json:"type"`
	Description     string    `gorm:"size:255" json:"description"`
	StripeSessionID *string   `gorm:"size:255;uniqueIndex" json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	User            User      `gorm:"foreignKey:UserID" json:"-"`
}
