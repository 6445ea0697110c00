package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/myaimediamgr/backend/internal/auth"
	"github.com/myaimediamgr/backend/internal/dto"
	"github.com/myaimediamgr/backend/internal/models"
	"github.com/myaimediamgr/backend/internal/plans"
	"github.com/myaimediamgr/backend/internal/storage"
)

var (
	ErrBadVariant     = errors.New("unknown trial variant")
	ErrAuthRequired   = errors.New("authentication required")
	ErrInvalidPending = errors.New("invalid pending oauth record")
	ErrUserNotFound   = errors.New("user not found")
)

// TrialService commits trial selections, including the one place a
// pending-OAuth record becomes a durable user.
type TrialService struct {
	store storage.Store
}

func NewTrialService(store storage.Store) *TrialService {
	return &TrialService{store: store}
}

// TrialSelection is the outcome of a successful Select. Created is true when
// the pending-OAuth promotion path minted a brand-new user, in which case the
// caller must issue a session cookie.
type TrialSelection struct {
	User    *models.User
	Created bool
	Variant plans.TrialVariant
	EndsAt  time.Time
}

func (s *TrialService) Status(ctx context.Context, userID uuid.UUID) (*dto.TrialStatusResponse, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &dto.TrialStatusResponse{
		Variant:         user.TrialVariant,
		StartedAt:       user.TrialStartedAt,
		EndsAt:          user.TrialEndsAt,
		ImagesRemaining: user.TrialImagesRemaining,
		VideosRemaining: user.TrialVideosRemaining,
		EmailVerified:   user.EmailVerified,
		CardOnFile:      user.CardOnFile,
	}, nil
}

// Select commits a trial variant for the caller. The identity is either an
// authenticated user or a pending-OAuth record; anything else is rejected
// before any state changes.
func (s *TrialService) Select(ctx context.Context, ident auth.Identity, planID, variantKey string) (*TrialSelection, error) {
	variant, ok := plans.ResolveVariant(planID, variantKey)
	if !ok {
		return nil, ErrBadVariant
	}

	now := time.Now()
	end := now.Add(time.Duration(variant.Days) * 24 * time.Hour)

	switch ident.Kind {
	case auth.Authenticated:
		err := s.store.UpdateUser(ctx, ident.UserID, map[string]any{
			"trial_variant":          variant.Key,
			"trial_started_at":       now,
			"trial_ends_at":          end,
			"trial_images_remaining": variant.Images,
			"trial_videos_remaining": variant.Videos,
			"needs_trial_selection":  false,
			"credits":                variant.Credits,
			"subscription_status":    "trial",
		})
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, fmt.Errorf("failed to commit trial: %w", err)
		}
		user, err := s.store.GetUser(ctx, ident.UserID)
		if err != nil {
			return nil, err
		}
		return &TrialSelection{User: user, Variant: variant, EndsAt: end}, nil

	case auth.PendingOAuth:
		return s.promotePending(ctx, ident.Pending, variant, now, end)

	default:
		return nil, ErrAuthRequired
	}
}

// promotePending is the only path that turns a pending-OAuth record into a
// durable user. A record whose email already has an account cannot be promoted
// again, so replays fail softly.
func (s *TrialService) promotePending(ctx context.Context, pending *auth.PendingRecord, variant plans.TrialVariant, now, end time.Time) (*TrialSelection, error) {
	if pending == nil || pending.Email == "" {
		return nil, ErrInvalidPending
	}

	if _, err := s.store.GetUserByEmail(ctx, pending.Email); err == nil {
		return nil, ErrInvalidPending
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	base := pending.BaseUsername
	if base == "" {
		base = emailLocalPart(pending.Email)
	}
	username, err := auth.GenerateUniqueUsername(ctx, s.store, base)
	if err != nil {
		return nil, fmt.Errorf("username generation failed: %w", err)
	}

	user := &models.User{
		ID:                   uuid.New(),
		Email:                pending.Email,
		Username:             username,
		FirstName:            optional(pending.FirstName),
		LastName:             optional(pending.LastName),
		FullName:             optional(pending.FullName),
		GoogleAvatar:         optional(pending.Avatar),
		Role:                 "user",
		Tier:                 plans.Starter,
		Credits:              variant.Credits,
		AccountStatus:        "active",
		SubscriptionStatus:   "trial",
		NeedsTrialSelection:  false,
		EmailVerified:        true,
		TrialVariant:         &variant.Key,
		TrialStartedAt:       &now,
		TrialEndsAt:          &end,
		TrialImagesRemaining: variant.Images,
		TrialVideosRemaining: variant.Videos,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrEmailTaken) {
			// Lost a race with another promotion for the same email.
			return nil, ErrInvalidPending
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &TrialSelection{User: user, Created: true, Variant: variant, EndsAt: end}, nil
}

// SelectLite grants the no-card lite trial to an existing user: trial_lite
// status plus a 50-credit trial_grant ledger entry.
func (s *TrialService) SelectLite(ctx context.Context, userID uuid.UUID) (time.Time, error) {
	variant := plans.TrialVariants[plans.VariantNoCard7]
	now := time.Now()
	end := now.Add(time.Duration(variant.Days) * 24 * time.Hour)

	err := s.store.UpdateUser(ctx, userID, map[string]any{
		"subscription_status":    "trial_lite",
		"trial_variant":          variant.Key,
		"trial_started_at":       now,
		"trial_ends_at":          end,
		"trial_images_remaining": variant.Images,
		"trial_videos_remaining": variant.Videos,
		"needs_trial_selection":  false,
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return time.Time{}, ErrUserNotFound
		}
		return time.Time{}, fmt.Errorf("failed to start lite trial: %w", err)
	}

	err = s.store.AddCreditTransaction(ctx, &models.CreditTransaction{
		UserID:      userID,
		Amount:      variant.Credits,
		Type:        models.TxnTrialGrant,
		Description: "Lite Trial credits (7d, no card)",
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to grant lite trial credits: %w", err)
	}
	return end, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func emailLocalPart(email string) string {
	for i := 0; i < len(email); i++ {
		if email[i] == '@' {
			return email[:i]
		}
	}
	return email
}
