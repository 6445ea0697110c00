package handlers

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/myaimediamgr/backend/internal/auth"
	"github.com/myaimediamgr/backend/internal/config"
	"github.com/myaimediamgr/backend/internal/diag"
	"github.com/myaimediamgr/backend/internal/dto"
	"github.com/myaimediamgr/backend/internal/services"
)

type TrialHandler struct {
	cfg    *config.Config
	svc    *services.TrialService
	events *diag.Ring
}

func NewTrialHandler(cfg *config.Config, svc *services.TrialService, events *diag.Ring) *TrialHandler {
	return &TrialHandler{cfg: cfg, svc: svc, events: events}
}

func (h *TrialHandler) Status(c *fiber.Ctx) error {
	ident := auth.IdentityFrom(c)
	status, err := h.svc.Status(c.UserContext(), ident.UserID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: dto.CodeAuthRequired})
		}
		slog.Error("trial status lookup failed", "user_id", ident.UserID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: dto.CodeInternal})
	}
	return c.JSON(status)
}

// Select commits a trial variant. For a pending-OAuth caller this is also the
// moment the account is created and the session cookie issued.
func (h *TrialHandler) Select(c *fiber.Ctx) error {
	var req dto.TrialSelectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: dto.CodeBadRequest, Message: "Invalid request body",
		})
	}

	ident := auth.IdentityFrom(c)
	sel, err := h.svc.Select(c.UserContext(), ident, req.PlanID, req.Variant)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBadVariant):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: dto.CodeBadVariant, Message: "Unknown trial variant",
			})
		case errors.Is(err, services.ErrInvalidPending):
			clearAuthCookie(c, h.cfg, auth.PendingCookie)
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: dto.CodeInvalidPending, Message: "Sign-in session expired. Please sign in again.",
			})
		case errors.Is(err, services.ErrAuthRequired), errors.Is(err, services.ErrUserNotFound):
			// An unreadable pending cookie resolves to anonymous; tell the
			// client which of the two it was.
			if c.Cookies(auth.PendingCookie) != "" {
				clearAuthCookie(c, h.cfg, auth.PendingCookie)
				return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
					Error: dto.CodeInvalidPending, Message: "Sign-in session expired. Please sign in again.",
				})
			}
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: dto.CodeAuthRequired})
		default:
			slog.Error("trial selection failed", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: dto.CodeInternal})
		}
	}

	if sel.Created {
		token, err := auth.SignSession(h.cfg.JWTSecret, h.cfg.SessionExpiry, sel.User)
		if err != nil {
			slog.Error("failed to sign session after promotion", "user_id", sel.User.ID, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: dto.CodeInternal})
		}
		setAuthCookie(c, h.cfg, auth.SessionCookie, token, h.cfg.SessionExpiry)
		clearAuthCookie(c, h.cfg, auth.PendingCookie)
		if h.events != nil {
			h.events.Add(diag.Event{Type: "promoted", Email: sel.User.Email})
		}
	}

	return c.JSON(dto.TrialSelectResponse{
		OK:           true,
		Variant:      sel.Variant.Key,
		EndsAt:       sel.EndsAt.Format(time.RFC3339),
		RedirectPath: "/",
	})
}

func (h *TrialHandler) SelectLite(c *fiber.Ctx) error {
	ident := auth.IdentityFrom(c)
	end, err := h.svc.SelectLite(c.UserContext(), ident.UserID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: dto.CodeAuthRequired})
		}
		slog.Error("lite trial failed", "user_id", ident.UserID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: dto.CodeInternal})
	}
	return c.JSON(dto.LiteTrialResponse{OK: true, TrialEndsAt: end.Format(time.RFC3339)})
}

func setAuthCookie(c *fiber.Ctx, cfg *config.Config, name, value string, ttl time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func clearAuthCookie(c *fiber.Ctx, cfg *config.Config, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
