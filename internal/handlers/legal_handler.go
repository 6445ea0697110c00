package handlers

import "github.com/gofiber/fiber/v2"

// Legal pages are served as plain text so they render without the SPA.

func PrivacyPolicy(c *fiber.Ctx) error {
	return c.SendString(`Privacy Policy

We collect your email address, name, and profile picture from Google when you
sign in. We use this information to operate your account, bill purchases
through Stripe, and schedule your social media content. We do not sell your
personal data. Contact support to request a copy or deletion of your data.`)
}

func TermsOfService(c *fiber.Ctx) error {
	return c.SendString(`Terms of Service

By using this service you agree to use it lawfully, keep your account secure,
and pay for the plan or credit packs you purchase. Trials are limited-time and
may be restricted in features. We may suspend accounts that abuse the service.`)
}

func DataDeletion(c *fiber.Ctx) error {
	return c.SendString(`Data Deletion

To delete your account and all associated data, contact support from the email
address on your account. Deletion completes within 30 days and removes your
profile, posts, campaigns, and billing ledger.`)
}
