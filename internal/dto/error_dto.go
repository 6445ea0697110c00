package dto

// Stable error codes returned to API clients.
const (
	CodeAuthRequired        = "AUTH_REQUIRED"
	CodeBadVariant          = "BAD_VARIANT"
	CodeInvalidPending      = "INVALID_PENDING"
	CodeInsufficientCredits = "INSUFFICIENT_CREDITS"
	CodeFeatureNotEntitled  = "FEATURE_NOT_ENTITLED"
	CodeTrialExpired        = "TRIAL_EXPIRED"
	CodeLiteTrialRestricted = "LITE_TRIAL_RESTRICTED"
	CodeWebhookSignature    = "WEBHOOK_SIGNATURE_INVALID"
	CodeForbidden           = "FORBIDDEN"
	CodeNotFound            = "NOT_FOUND"
	CodeBadRequest          = "BAD_REQUEST"
	CodeInternal            = "INTERNAL"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// CreditsErrorResponse is the 402 payload for a rejected debit.
type CreditsErrorResponse struct {
	Error      string `json:"error"`
	FeatureKey string `json:"featureKey,omitempty"`
	Required   int    `json:"required"`
	Balance    int    `json:"balance"`
}

// EntitlementErrorResponse is the 403 payload for a plan without a feature.
type EntitlementErrorResponse struct {
	Error   string `json:"error"`
	Feature string `json:"feature"`
	Plan    string `json:"plan"`
}
