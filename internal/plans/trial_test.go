package plans

import "testing"

func TestResolveVariantExplicitWins(t *testing.T) {
	v, ok := ResolveVariant("lite", VariantProTrial14)
	if !ok {
		t.Fatal("expected explicit variant to resolve")
	}
	if v.Key != VariantProTrial14 {
		t.Fatalf("expected %s, got %s", VariantProTrial14, v.Key)
	}
}

func TestResolveVariantLitePlan(t *testing.T) {
	v, ok := ResolveVariant("lite", "")
	if !ok || v.Key != VariantNoCard7 {
		t.Fatalf("expected %s for lite plan, got %s (ok=%v)", VariantNoCard7, v.Key, ok)
	}
	if v.Days != 7 || v.Credits != 50 {
		t.Fatalf("unexpected nocard7 shape: %+v", v)
	}
}

func TestResolveVariantDefault(t *testing.T) {
	v, ok := ResolveVariant("", "")
	if !ok || v.Key != VariantCard14 {
		t.Fatalf("expected default %s, got %s (ok=%v)", VariantCard14, v.Key, ok)
	}
}

func TestResolveVariantUnknown(t *testing.T) {
	if _, ok := ResolveVariant("", "gold30"); ok {
		t.Fatal("unknown variant must not resolve")
	}
}
