package categorize

import "testing"

func TestCategorizeJobTitleOverrideWinsOverKeywords(t *testing.T) {
	if got := CategorizeJobTitle("CEO"); got != "Executive Leadership" {
		t.Fatalf("expected override for CEO, got %q", got)
	}
	// "consultant" keyword-matches nothing but is pinned to Other by
	// the override table; keyword scan must not run for it.
	if got := CategorizeJobTitle("Consultant"); got != JobTitleOther {
		t.Fatalf("expected override to Other for Consultant, got %q", got)
	}
	if got := CategorizeJobTitle("Regional Planner"); got != "Planning" {
		t.Fatalf("expected keyword match Planning, got %q", got)
	}
}

func TestCategorizeJobTitleKeywordScanIsOrdered(t *testing.T) {
	// "GIS Project Lead" contains both "gis" and "project"; GIS &
	// Spatial sits above Project & Program Management in the table.
	if got := CategorizeJobTitle("GIS Project Lead"); got != "GIS & Spatial" {
		t.Fatalf("expected first matching category, got %q", got)
	}
}

func TestCategorizeJobTitleCaseInsensitive(t *testing.T) {
	if got := CategorizeJobTitle("  SENIOR TOWN PLANNER  "); got != "Planning" {
		t.Fatalf("expected Planning, got %q", got)
	}
}

func TestCategorizeJobTitleBlankIsOther(t *testing.T) {
	for _, title := range []string{"", "   "} {
		if got := CategorizeJobTitle(title); got != JobTitleOther {
			t.Fatalf("expected Other for blank title, got %q", got)
		}
	}
}

func TestCategorizeJobTitleUnmatched(t *testing.T) {
	if got := CategorizeJobTitle("Beekeeper"); got != JobTitleOther {
		t.Fatalf("expected Other, got %q", got)
	}
}
