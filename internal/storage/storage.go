// Package storage is the persistence boundary. The GORM implementation backs
// production; the memory implementation backs tests.
package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/myaimediamgr/backend/internal/models"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrInsufficientCredits means a debit would underflow the balance. The
	// conditional update rejects it before any mutation.
	ErrInsufficientCredits = errors.New("insufficient credits")
	// ErrDuplicateTransaction means a ledger entry with the same Stripe
	// session id already exists, meaning the grant was already applied.
	ErrDuplicateTransaction = errors.New("duplicate credit transaction")
	ErrEmailTaken           = errors.New("email already registered")
)

type Store interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, id uuid.UUID, fields map[string]any) error

	// DebitCredits atomically decrements the balance if and only if it covers
	// the amount, and records the matching ledger entry.
	DebitCredits(ctx context.Context, id uuid.UUID, amount int, reason string) error
	// AddCreditTransaction appends a ledger entry and applies its amount to
	// the balance in one transaction. Entries carrying an already-seen Stripe
	// session id fail with ErrDuplicateTransaction and change nothing.
	AddCreditTransaction(ctx context.Context, txn *models.CreditTransaction) error

	CreatePost(ctx context.Context, post *models.Post) error
	ListPosts(ctx context.Context, userID uuid.UUID) ([]models.Post, error)
	CreateCampaign(ctx context.Context, campaign *models.Campaign) error
	ListCampaigns(ctx context.Context, userID uuid.UUID) ([]models.Campaign, error)
}
