package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/myaimediamgr/backend/internal/config"
	"github.com/myaimediamgr/backend/internal/handlers"
	"github.com/myaimediamgr/backend/internal/middleware"
	"github.com/myaimediamgr/backend/internal/plans"
	"github.com/myaimediamgr/backend/internal/storage"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	store storage.Store,
	authHandler *handlers.AuthHandler,
	trialHandler *handlers.TrialHandler,
	billingHandler *handlers.BillingHandler,
	contentHandler *handlers.ContentHandler,
	userHandler *handlers.UserHandler,
) {
	api := app.Group("/api")

	// Stripe authenticates by signature, not session, and retries in bursts;
	// registered ahead of the limiter so redeliveries are never 429'd.
	api.Post("/stripe/webhook", billingHandler.Webhook)

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	// Resolve the caller identity once for everything below.
	api.Use(middleware.Identity(cfg))

	api.Get("/health", handlers.Health)

	api.Get("/legal/privacy", handlers.PrivacyPolicy)
	api.Get("/legal/terms", handlers.TermsOfService)
	api.Get("/legal/data-deletion", handlers.DataDeletion)

	// Auth-specific rate limit: 10 req/min per IP (stricter)
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Get("/google", authHandler.GoogleStart)
	auth.Get("/google/callback", authHandler.GoogleCallback)
	auth.Post("/logout", authHandler.Logout)

	// Trial selection accepts the full identity union; status and lite
	// require an existing account.
	trial := api.Group("/trial")
	trial.Get("/status", middleware.RequireAuth(), trialHandler.Status)
	trial.Post("/select", trialHandler.Select)
	trial.Post("/lite", middleware.RequireAuth(), trialHandler.SelectLite)

	billing := api.Group("/billing", middleware.RequireAuth())
	billing.Post("/micropack", billingHandler.Micropack)
	billing.Post("/pro-trial", billingHandler.ProTrial)

	// Content routes carry the gates individually so the public routes above
	// stay unaffected.
	requireAuth := middleware.RequireAuth()
	trialGate := middleware.EnforceTrialGating(store)
	api.Get("/posts", requireAuth, trialGate, contentHandler.ListPosts)
	api.Post("/posts", requireAuth, trialGate, middleware.RequireCredits(store, 1, "post.create"), contentHandler.CreatePost)
	api.Get("/campaigns", requireAuth, trialGate, middleware.RequireEntitlement(store, plans.MultiAccountPosting), contentHandler.ListCampaigns)
	api.Post("/campaigns", requireAuth, trialGate, middleware.RequireEntitlement(store, plans.MultiAccountPosting), contentHandler.CreateCampaign)
	api.Get("/developer/keys", requireAuth, middleware.RequireEntitlement(store, plans.APIAccess), contentHandler.DeveloperKeys)

	api.Get("/user", middleware.RequireAuth(), userHandler.Current)
	api.Get("/profile", middleware.RequireAuth(), userHandler.Current)

	admin := api.Group("/admin", middleware.AdminRequired(store, cfg))
	admin.Get("/oauth-events", authHandler.OAuthEvents)
}
