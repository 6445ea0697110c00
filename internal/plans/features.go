// Package plans holds the static plan/entitlement and trial-variant catalogs.
// Both are lookup-only; nothing here mutates at runtime.
package plans

// Plan keys.
const (
	Starter    = "starter"
	Pro        = "pro"
	Enterprise = "enterprise"
)

// Non-credit feature keys.
const (
	MultiAccountPosting = "multiAccountPosting"
	TeamSeats           = "teamSeats"
	AnalyticsLevel      = "analyticsLevel"
	BrandLibraryTier    = "brandLibraryTier"
	APIAccess           = "apiAccess"
	SSO                 = "sso"
	RolesPermissions    = "rolesPermissions"
	AuditLogs           = "auditLogs"
	PrioritySupport     = "prioritySupport"
)

// Features maps each plan to its feature values. Booleans are entitlement
// flags; other values (seat counts, tier names) count as entitled when set.
var Features = map[string]map[string]any{
	Starter: {
		MultiAccountPosting: false,
		TeamSeats:           1,
		AnalyticsLevel:      "basic",
		BrandLibraryTier:    "basic",
		APIAccess:           false,
		SSO:                 false,
		RolesPermissions:    false,
		AuditLogs:           false,
		PrioritySupport:     false,
	},
	Pro: {
		MultiAccountPosting: true,
		TeamSeats:           5,
		AnalyticsLevel:      "standard",
		BrandLibraryTier:    "standard",
		APIAccess:           true,
		SSO:                 false,
		RolesPermissions:    true,
		AuditLogs:           true,
		PrioritySupport:     true,
	},
	Enterprise: {
		MultiAccountPosting: true,
		TeamSeats:           "unlimited",
		AnalyticsLevel:      "advanced",
		BrandLibraryTier:    "advanced",
		APIAccess:           true,
		SSO:                 true,
		RolesPermissions:    true,
		AuditLogs:           true,
		PrioritySupport:     "priority",
	},
}

// HasEntitlement reports whether a plan includes a feature. Boolean values are
// taken as-is; any other non-nil value means entitled. Unknown plans and
// unknown features are not entitled.
func HasEntitlement(plan, feature string) bool {
	features, ok := Features[plan]
	if !ok {
		return false
	}
	val, ok := features[feature]
	if !ok {
		return false
	}
	if b, isBool := val.(bool); isBool {
		return b
	}
	return val != nil
}
