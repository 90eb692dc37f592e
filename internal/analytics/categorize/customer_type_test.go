package categorize

import (
	"testing"

	"github.com/spitfire8790/landiqr/internal/analytics/domain"
)

func TestResolveCustomerTypeDynamicWinsOverLegacy(t *testing.T) {
	mapping := domain.CustomerTypeMapping{
		State:  domain.MappingResolved,
		Labels: map[string]string{"3": "Paid Subscription"},
	}

	if got := ResolveCustomerType("3", mapping); got != "Paid Subscription" {
		t.Fatalf("expected dynamic label, got %q", got)
	}
}

func TestResolveCustomerTypeLegacyFallback(t *testing.T) {
	if got := ResolveCustomerType("3", domain.CustomerTypeMapping{}); got != "Centrally Funded Licence" {
		t.Fatalf("expected legacy label, got %q", got)
	}
}

func TestResolveCustomerTypeLoadingMappingFallsThrough(t *testing.T) {
	// A mapping still loading must not shadow the legacy table.
	mapping := domain.CustomerTypeMapping{
		State:  domain.MappingLoading,
		Labels: map[string]string{"3": "Paid Subscription"},
	}

	if got := ResolveCustomerType("3", mapping); got != "Centrally Funded Licence" {
		t.Fatalf("expected legacy label while loading, got %q", got)
	}
}

func TestResolveCustomerTypeUnknownID(t *testing.T) {
	if got := ResolveCustomerType("42", domain.CustomerTypeMapping{}); got != UnknownCustomerType {
		t.Fatalf("expected sentinel, got %q", got)
	}
	if got := ResolveCustomerType("", domain.CustomerTypeMapping{}); got != UnknownCustomerType {
		t.Fatalf("expected sentinel for empty id, got %q", got)
	}
}

func TestDisplayCategoryCollapsesTrialVariants(t *testing.T) {
	for _, label := range []string{"Trial Licence", "Extended Trial Licence"} {
		got, ok := DisplayCategory(label)
		if !ok || got != "Trial" {
			t.Fatalf("expected %q to collapse into Trial, got %q ok=%v", label, got, ok)
		}
	}
}

func TestDisplayCategoryPassThrough(t *testing.T) {
	for _, label := range []string{"Centrally Funded Licence", "Paid Subscription", "Access Revoked"} {
		got, ok := DisplayCategory(label)
		if !ok || got != label {
			t.Fatalf("expected %q to pass through, got %q ok=%v", label, got, ok)
		}
	}
}

func TestDisplayCategoryDropsEverythingElse(t *testing.T) {
	for _, label := range []string{UnknownCustomerType, "Local Government", "Giraffe/WSP", ""} {
		if _, ok := DisplayCategory(label); ok {
			t.Fatalf("expected %q to be dropped from the display view", label)
		}
	}
}
