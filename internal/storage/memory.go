package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/myaimediamgr/backend/internal/models"
)

// Memory is an in-process Store with the same conditional-update semantics as
// the GORM implementation. It backs service and handler tests.
type Memory struct {
	mu         sync.Mutex
	users      map[uuid.UUID]*models.User
	txns       []models.CreditTransaction
	sessionIDs map[string]bool
	posts      []models.Post
	campaigns  []models.Campaign
}

func NewMemory() *Memory {
	return &Memory{
		users:      make(map[uuid.UUID]*models.User),
		sessionIDs: make(map[string]bool),
	}
}

func (m *Memory) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *Memory) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) UsernameExists(_ context.Context, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return ErrEmailTaken
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *Memory) UpdateUser(_ context.Context, id uuid.UUID, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	applyUserFields(u, fields)
	return nil
}

func (m *Memory) DebitCredits(_ context.Context, id uuid.UUID, amount int, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	if u.Credits < amount {
		return ErrInsufficientCredits
	}
	u.Credits -= amount
	m.txns = append(m.txns, models.CreditTransaction{
		ID:          uuid.New(),
		UserID:      id,
		Amount:      -amount,
		Type:        models.TxnDebit,
		Description: reason,
	})
	return nil
}

func (m *Memory) AddCreditTransaction(_ context.Context, txn *models.CreditTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if txn.StripeSessionID != nil {
		if m.sessionIDs[*txn.StripeSessionID] {
			return ErrDuplicateTransaction
		}
	}
	u, ok := m.users[txn.UserID]
	if !ok {
		return ErrNotFound
	}
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	if txn.StripeSessionID != nil {
		m.sessionIDs[*txn.StripeSessionID] = true
	}
	u.Credits += txn.Amount
	m.txns = append(m.txns, *txn)
	return nil
}

func (m *Memory) CreatePost(_ context.Context, post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	m.posts = append(m.posts, *post)
	return nil
}

func (m *Memory) ListPosts(_ context.Context, userID uuid.UUID) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Post
	for _, p := range m.posts {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) CreateCampaign(_ context.Context, campaign *models.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if campaign.ID == uuid.Nil {
		campaign.ID = uuid.New()
	}
	m.campaigns = append(m.campaigns, *campaign)
	return nil
}

func (m *Memory) ListCampaigns(_ context.Context, userID uuid.UUID) ([]models.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Campaign
	for _, c := range m.campaigns {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

// Transactions returns a copy of the ledger for test assertions.
func (m *Memory) Transactions() []models.CreditTransaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.CreditTransaction, len(m.txns))
	copy(out, m.txns)
	return out
}

func applyUserFields(u *models.User, fields map[string]any) {
	for key, val := range fields {
		switch key {
		case "credits":
			if v, ok := val.(int); ok {
				u.Credits = v
			}
		case "tier":
			if v, ok := val.(string); ok {
				u.Tier = v
			}
		case "subscription_status":
			if v, ok := val.(string); ok {
				u.SubscriptionStatus = v
			}
		case "subscription_plan":
			if v, ok := val.(string); ok {
				u.SubscriptionPlan = v
			}
		case "needs_trial_selection":
			if v, ok := val.(bool); ok {
				u.NeedsTrialSelection = v
			}
		case "trial_variant":
			if v, ok := val.(string); ok {
				u.TrialVariant = &v
			}
		case "trial_started_at":
			if v, ok := val.(time.Time); ok {
				u.TrialStartedAt = &v
			}
		case "trial_ends_at":
			if v, ok := val.(time.Time); ok {
				u.TrialEndsAt = &v
			}
		case "trial_images_remaining":
			if v, ok := val.(int); ok {
				u.TrialImagesRemaining = v
			}
		case "trial_videos_remaining":
			if v, ok := val.(int); ok {
				u.TrialVideosRemaining = v
			}
		case "google_avatar":
			if v, ok := val.(string); ok {
				u.GoogleAvatar = &v
			}
		case "last_login_at":
			if v, ok := val.(time.Time); ok {
				u.LastLoginAt = &v
			}
		case "email_verified":
			if v, ok := val.(bool); ok {
				u.EmailVerified = v
			}
		case "card_on_file":
			if v, ok := val.(bool); ok {
				u.CardOnFile = v
			}
		case "stripe_customer_id":
			if v, ok := val.(string); ok {
				u.StripeCustomerID = &v
			}
		}
	}
}
