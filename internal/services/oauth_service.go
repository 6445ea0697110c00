package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/myaimediamgr/backend/internal/auth"
	"github.com/myaimediamgr/backend/internal/models"
	"github.com/myaimediamgr/backend/internal/storage"
)

// OAuthService is the pending-OAuth bridge: it decides whether a verified
// Google profile maps to an existing account (login) or to an ephemeral
// pending record that must pass through trial selection first.
type OAuthService struct {
	store storage.Store
}

func NewOAuthService(store storage.Store) *OAuthService {
	return &OAuthService{store: store}
}

// LoginResult carries exactly one of User (existing account) or Pending
// (new signup awaiting trial selection).
type LoginResult struct {
	User    *models.User
	Pending *auth.PendingRecord
}

// HandleGoogleLogin reconciles a verified Google profile against storage.
// Existing users get their avatar and last-login refreshed; a recorded trial
// plan clears a stale needs-trial-selection flag. Unknown emails produce a
// pending record and no database row.
func (s *OAuthService) HandleGoogleLogin(ctx context.Context, profile *auth.GoogleUser) (*LoginResult, error) {
	if profile == nil || profile.Email == "" {
		return nil, fmt.Errorf("no email in google profile")
	}

	user, err := s.store.GetUserByEmail(ctx, profile.Email)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		return &LoginResult{Pending: &auth.PendingRecord{
			Email:        profile.Email,
			FirstName:    profile.GivenName,
			LastName:     profile.FamilyName,
			FullName:     profile.Name,
			Avatar:       profile.Picture,
			BaseUsername: emailLocalPart(profile.Email),
		}}, nil
	}

	fields := map[string]any{
		"google_avatar": profile.Picture,
		"last_login_at": time.Now(),
	}
	if user.TrialVariant != nil && user.NeedsTrialSelection {
		fields["needs_trial_selection"] = false
	}
	if err := s.store.UpdateUser(ctx, user.ID, fields); err != nil {
		return nil, fmt.Errorf("failed to refresh user on login: %w", err)
	}

	user, err = s.store.GetUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user}, nil
}
