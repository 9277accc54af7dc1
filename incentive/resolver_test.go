package incentive_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/incentive-engine/incentive"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func rolePolicy(id string, pubType incentive.PublicationType, from time.Time, to *time.Time) *incentive.IncentivePolicy {
	return &incentive.IncentivePolicy{
		ID:              incentive.PolicyID(id),
		PublicationType: pubType,
		ValidFrom:       from,
		ValidTo:         to,
		Distribution: incentive.Distribution{
			Method: incentive.RoleBased,
			RolePercentages: &incentive.RolePercentages{
				FirstAuthorPct:   d("35"),
				CorrespondingPct: d("30"),
			},
		},
	}
}

func timePtr(t time.Time) *time.Time { return &t }

// =============================================================================
// RESOLUTION
// =============================================================================

func TestResolve_PicksPolicyContainingDate(t *testing.T) {
	// GIVEN: Two sequential versions for research papers
	// WHEN: Resolving with a date inside the second window
	// THEN: The second version is returned

	policies := []*incentive.IncentivePolicy{
		rolePolicy("v1", incentive.PubResearchPaper, date(2024, time.January, 1), timePtr(date(2025, time.January, 1))),
		rolePolicy("v2", incentive.PubResearchPaper, date(2025, time.January, 1), nil),
	}

	p, err := incentive.Resolve(policies, incentive.PubResearchPaper, date(2025, time.June, 15))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID != "v2" {
		t.Errorf("expected v2, got %s", p.ID)
	}
}

func TestResolve_WindowIsHalfOpen(t *testing.T) {
	// validTo is exclusive: the boundary day belongs to the next version.
	policies := []*incentive.IncentivePolicy{
		rolePolicy("v1", incentive.PubResearchPaper, date(2024, time.January, 1), timePtr(date(2025, time.January, 1))),
		rolePolicy("v2", incentive.PubResearchPaper, date(2025, time.January, 1), nil),
	}

	p, err := incentive.Resolve(policies, incentive.PubResearchPaper, date(2025, time.January, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID != "v2" {
		t.Errorf("boundary date should resolve to v2, got %s", p.ID)
	}
}

func TestResolve_IgnoresOtherPublicationTypes(t *testing.T) {
	policies := []*incentive.IncentivePolicy{
		rolePolicy("books", incentive.PubBook, date(2024, time.January, 1), nil),
	}

	_, err := incentive.Resolve(policies, incentive.PubResearchPaper, date(2025, time.June, 15))
	if !errors.Is(err, incentive.ErrPolicyNotFound) {
		t.Fatalf("expected ErrPolicyNotFound, got %v", err)
	}
}

func TestResolve_NoActiveWindow_PolicyNotFound(t *testing.T) {
	policies := []*incentive.IncentivePolicy{
		rolePolicy("expired", incentive.PubResearchPaper, date(2020, time.January, 1), timePtr(date(2021, time.January, 1))),
	}

	_, err := incentive.Resolve(policies, incentive.PubResearchPaper, date(2025, time.June, 15))

	var notFound *incentive.PolicyNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected PolicyNotFoundError, got %v", err)
	}
	if notFound.PublicationType != incentive.PubResearchPaper {
		t.Errorf("error should carry the publication type")
	}
}

// =============================================================================
// WRITE-TIME VALIDATION
// =============================================================================

func TestValidateForCreate_RejectsOverlappingWindow(t *testing.T) {
	// GIVEN: An open-ended active policy for research papers
	// WHEN: Authoring a new policy whose window intersects it
	// THEN: Creation is rejected with ErrPolicyOverlap

	existing := []*incentive.IncentivePolicy{
		rolePolicy("active", incentive.PubResearchPaper, date(2024, time.January, 1), nil),
	}
	candidate := rolePolicy("new", incentive.PubResearchPaper, date(2025, time.June, 1), nil)

	err := incentive.ValidateForCreate(existing, candidate)
	if !errors.Is(err, incentive.ErrPolicyOverlap) {
		t.Fatalf("expected ErrPolicyOverlap, got %v", err)
	}
}

func TestValidateForCreate_AllowsAdjacentWindows(t *testing.T) {
	// [2024, 2025) followed by [2025, nil) do not overlap.
	existing := []*incentive.IncentivePolicy{
		rolePolicy("v1", incentive.PubResearchPaper, date(2024, time.January, 1), timePtr(date(2025, time.January, 1))),
	}
	candidate := rolePolicy("v2", incentive.PubResearchPaper, date(2025, time.January, 1), nil)

	if err := incentive.ValidateForCreate(existing, candidate); err != nil {
		t.Fatalf("adjacent windows should be accepted: %v", err)
	}
}

func TestValidateForCreate_AllowsOverlapAcrossTypes(t *testing.T) {
	// Windows only conflict within the same publication type.
	existing := []*incentive.IncentivePolicy{
		rolePolicy("books", incentive.PubBook, date(2024, time.January, 1), nil),
	}
	candidate := rolePolicy("papers", incentive.PubResearchPaper, date(2024, time.January, 1), nil)

	if err := incentive.ValidateForCreate(existing, candidate); err != nil {
		t.Fatalf("different publication types should not conflict: %v", err)
	}
}

func TestValidateForCreate_RejectsRolePctOver100(t *testing.T) {
	candidate := rolePolicy("bad", incentive.PubResearchPaper, date(2025, time.January, 1), nil)
	candidate.Distribution.RolePercentages.FirstAuthorPct = d("60")
	candidate.Distribution.RolePercentages.CorrespondingPct = d("50")

	err := incentive.ValidateForCreate(nil, candidate)
	if !errors.Is(err, incentive.ErrInvalidPercentages) {
		t.Fatalf("expected ErrInvalidPercentages, got %v", err)
	}
}

func TestValidateForCreate_RejectsPositionPctNotSumming100(t *testing.T) {
	candidate := &incentive.IncentivePolicy{
		ID:              "bad-positions",
		PublicationType: incentive.PubConferencePaper,
		ValidFrom:       date(2025, time.January, 1),
		Distribution: incentive.Distribution{
			Method: incentive.PositionBased,
			PositionPercentages: &incentive.PositionPercentages{
				Ranks: [5]decimal.Decimal{d("40"), d("25"), d("15"), d("12"), d("7")},
			},
		},
	}

	err := incentive.ValidateForCreate(nil, candidate)
	if !errors.Is(err, incentive.ErrInvalidPercentages) {
		t.Fatalf("expected ErrInvalidPercentages, got %v", err)
	}
}

func TestValidateForCreate_RejectsBothPercentageTables(t *testing.T) {
	// Distribution is a tagged variant: exactly one table per method.
	candidate := rolePolicy("both", incentive.PubResearchPaper, date(2025, time.January, 1), nil)
	candidate.Distribution.PositionPercentages = &incentive.PositionPercentages{
		Ranks: [5]decimal.Decimal{d("40"), d("25"), d("15"), d("12"), d("8")},
	}

	err := incentive.ValidateForCreate(nil, candidate)
	if !errors.Is(err, incentive.ErrInvalidPercentages) {
		t.Fatalf("expected ErrInvalidPercentages, got %v", err)
	}
}
