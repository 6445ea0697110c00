package plans

// Trial variant keys.
const (
	VariantNoCard7    = "nocard7"
	VariantCard14     = "card14"
	VariantProTrial14 = "pro14_1usd"
)

// DefaultVariant is used when trial selection names no variant and no lite
// plan id.
const DefaultVariant = VariantCard14

// TrialVariant is one named trial configuration.
type TrialVariant struct {
	Key     string
	Days    int
	Images  int
	Videos  int
	Credits int
}

// TrialVariants is the static trial catalog.
var TrialVariants = map[string]TrialVariant{
	VariantNoCard7: {
		Key:     VariantNoCard7,
		Days:    7,
		Images:  10,
		Videos:  2,
		Credits: 50,
	},
	VariantCard14: {
		Key:     VariantCard14,
		Days:    14,
		Images:  30,
		Videos:  8,
		Credits: 150,
	},
	VariantProTrial14: {
		Key:     VariantProTrial14,
		Days:    14,
		Images:  60,
		Videos:  15,
		Credits: 210,
	},
}

// ResolveVariant applies the selection defaults: an explicit variant wins,
// otherwise the "lite" plan id maps to the no-card variant, otherwise the
// catalog default. The returned bool is false for unknown variant keys.
func ResolveVariant(planID, variant string) (TrialVariant, bool) {
	key := variant
	if key == "" {
		if planID == "lite" {
			key = VariantNoCard7
		} else {
			key = DefaultVariant
		}
	}
	v, ok := TrialVariants[key]
	return v, ok
}
