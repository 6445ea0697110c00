package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/myaimediamgr/backend/internal/auth"
	"github.com/myaimediamgr/backend/internal/config"
	"github.com/myaimediamgr/backend/internal/diag"
	"github.com/myaimediamgr/backend/internal/services"
)

const (
	stateCookieTTL = 5 * time.Minute
	returnToTTL    = 5 * time.Minute
)

type AuthHandler struct {
	cfg    *config.Config
	google auth.GoogleClient
	svc    *services.OAuthService
	events *diag.Ring
}

func NewAuthHandler(cfg *config.Config, google auth.GoogleClient, svc *services.OAuthService, events *diag.Ring) *AuthHandler {
	return &AuthHandler{cfg: cfg, google: google, svc: svc, events: events}
}

// GoogleStart begins the OAuth code flow: a random state pinned in a short
// cookie, an optional sanitized return-to path, then off to Google.
func (h *AuthHandler) GoogleStart(c *fiber.Ctx) error {
	state, err := randomState()
	if err != nil {
		slog.Error("failed to generate oauth state", "error", err)
		return c.Redirect("/auth?error=google", fiber.StatusTemporaryRedirect)
	}

	h.setCookie(c, auth.StateCookie, state, stateCookieTTL)

	if ret := c.Query("return"); strings.HasPrefix(ret, "/") && !strings.HasPrefix(ret, "//") {
		h.setCookie(c, auth.ReturnToCookie, ret, returnToTTL)
	}

	return c.Redirect(h.google.AuthCodeURL(state), fiber.StatusTemporaryRedirect)
}

// GoogleCallback finishes the flow. Existing accounts get a session cookie;
// unknown emails get a pending cookie and are sent to trial selection.
func (h *AuthHandler) GoogleCallback(c *fiber.Ctx) error {
	state := c.Query("state")
	cookieState := c.Cookies(auth.StateCookie)
	h.clearCookie(c, auth.StateCookie)

	if state == "" || state != cookieState {
		h.record("state_mismatch", "", "callback state did not match cookie")
		return c.Redirect("/auth?error=state_mismatch", fiber.StatusTemporaryRedirect)
	}

	if errParam := c.Query("error"); errParam != "" {
		h.record("provider_error", "", errParam)
		return c.Redirect("/auth?error=google", fiber.StatusTemporaryRedirect)
	}

	code := c.Query("code")
	if code == "" {
		return c.Redirect("/auth?error=google", fiber.StatusTemporaryRedirect)
	}

	profile, err := h.google.FetchUser(c.UserContext(), code)
	if err != nil {
		slog.Error("google code exchange failed", "error", err)
		h.record("exchange_failed", "", err.Error())
		return c.Redirect("/auth?error=google", fiber.StatusTemporaryRedirect)
	}

	result, err := h.svc.HandleGoogleLogin(c.UserContext(), profile)
	if err != nil {
		slog.Error("google login failed", "email", profile.Email, "error", err)
		h.record("login_failed", profile.Email, err.Error())
		return c.Redirect("/auth?error=google", fiber.StatusTemporaryRedirect)
	}

	if result.Pending != nil {
		value, err := auth.EncodePending(h.cfg.JWTSecret, h.cfg.PendingExpiry, result.Pending)
		if err != nil {
			slog.Error("failed to encode pending record", "error", err)
			return c.Redirect("/auth?error=google", fiber.StatusTemporaryRedirect)
		}
		h.setCookie(c, auth.PendingCookie, value, h.cfg.PendingExpiry)
		h.clearCookie(c, auth.ReturnToCookie)
		h.record("pending_issued", result.Pending.Email, "")
		return c.Redirect("/trial-selection", fiber.StatusTemporaryRedirect)
	}

	user := result.User
	token, err := auth.SignSession(h.cfg.JWTSecret, h.cfg.SessionExpiry, user)
	if err != nil {
		slog.Error("failed to sign session", "user_id", user.ID, "error", err)
		return c.Redirect("/auth?error=google", fiber.StatusTemporaryRedirect)
	}
	h.setCookie(c, auth.SessionCookie, token, h.cfg.SessionExpiry)
	h.clearCookie(c, auth.PendingCookie)
	h.record("login", user.Email, "")

	returnTo := c.Cookies(auth.ReturnToCookie)
	h.clearCookie(c, auth.ReturnToCookie)

	switch {
	case user.IsAdmin():
		return c.Redirect("/", fiber.StatusTemporaryRedirect)
	case user.NeedsTrialSelection:
		return c.Redirect("/trial-selection", fiber.StatusTemporaryRedirect)
	case !user.EmailVerified:
		return c.Redirect("/verify-email?email="+user.Email, fiber.StatusTemporaryRedirect)
	case returnTo != "":
		return c.Redirect(returnTo, fiber.StatusTemporaryRedirect)
	default:
		return c.Redirect("/", fiber.StatusTemporaryRedirect)
	}
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.clearCookie(c, auth.SessionCookie)
	h.clearCookie(c, auth.PendingCookie)
	return c.JSON(fiber.Map{"ok": true})
}

// OAuthEvents exposes the diagnostics ring. Admin-gated in routes.
func (h *AuthHandler) OAuthEvents(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"events": h.events.Events()})
}

func (h *AuthHandler) record(eventType, email, detail string) {
	if h.events != nil {
		h.events.Add(diag.Event{Type: eventType, Email: email, Detail: detail})
	}
}

func (h *AuthHandler) setCookie(c *fiber.Ctx, name, value string, ttl time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (h *AuthHandler) clearCookie(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
