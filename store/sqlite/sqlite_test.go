package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/incentive-engine/incentive"
	"github.com/warp/incentive-engine/publication"
	"github.com/warp/incentive-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func jan(year int) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// POLICY VERSIONING
// =============================================================================

func TestCreatePolicy_RoundTrips(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	original := publication.ResearchPaperPolicy("paper-v1", jan(2025))
	require.NoError(t, store.CreatePolicy(ctx, original))

	loaded, err := store.GetPolicy(ctx, "paper-v1")
	require.NoError(t, err)
	assert.Equal(t, original.PublicationType, loaded.PublicationType)
	assert.Equal(t, len(original.TierTable), len(loaded.TierTable))
	assert.NoError(t, loaded.Validate())
}

func TestCreatePolicy_RejectsOverlap(t *testing.T) {
	// GIVEN: An open-ended stored paper policy
	// WHEN: Creating a second paper policy whose window intersects it
	// THEN: The write is rejected; the stored set stays consistent

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreatePolicy(ctx, publication.ResearchPaperPolicy("paper-v1", jan(2025))))

	err := store.CreatePolicy(ctx, publication.ResearchPaperPolicy("paper-v2", jan(2026)))
	assert.ErrorIs(t, err, incentive.ErrPolicyOverlap)

	policies, err := store.ListPolicies(ctx, incentive.PubResearchPaper)
	require.NoError(t, err)
	assert.Len(t, policies, 1)
}

func TestCreatePolicy_SequentialVersions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	v1 := publication.ResearchPaperPolicy("paper-v1", jan(2024))
	end := jan(2025)
	v1.ValidTo = &end
	require.NoError(t, store.CreatePolicy(ctx, v1))

	v2 := publication.ResearchPaperPolicy("paper-v2", jan(2025))
	v2.Version = 2
	require.NoError(t, store.CreatePolicy(ctx, v2))

	// Resolution picks the right version per date.
	p, err := store.ResolvePolicy(ctx, incentive.PubResearchPaper, jan(2024).AddDate(0, 5, 0))
	require.NoError(t, err)
	assert.Equal(t, incentive.PolicyID("paper-v1"), p.ID)

	p, err = store.ResolvePolicy(ctx, incentive.PubResearchPaper, jan(2025).AddDate(0, 5, 0))
	require.NoError(t, err)
	assert.Equal(t, incentive.PolicyID("paper-v2"), p.ID)
}

func TestCreatePolicy_RejectsInvalidPercentages(t *testing.T) {
	store := newTestStore(t)

	bad := publication.ResearchPaperPolicy("bad", jan(2025))
	bad.Distribution.RolePercentages.FirstAuthorPct = incentive.MustParseDecimal("80")
	bad.Distribution.RolePercentages.CorrespondingPct = incentive.MustParseDecimal("30")

	err := store.CreatePolicy(context.Background(), bad)
	assert.ErrorIs(t, err, incentive.ErrInvalidPercentages)
}

func TestResolvePolicy_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.ResolvePolicy(context.Background(), incentive.PubGrant, jan(2025))
	assert.ErrorIs(t, err, incentive.ErrPolicyNotFound)
}

// =============================================================================
// ATOMIC APPROVAL WRITES
// =============================================================================

func TestSaveApproval_PersistsAllocationsAtomically(t *testing.T) {
	// GIVEN: A computed allocation for a three-author paper
	// WHEN: Saving the approval
	// THEN: The read-back carries the same totals and per-author shares

	store := newTestStore(t)
	ctx := context.Background()

	policy := publication.ResearchPaperPolicy("paper-v1", jan(2025))
	require.NoError(t, store.CreatePolicy(ctx, policy))

	authors := []incentive.Author{
		{ID: "first", Roles: []incentive.Role{incentive.RoleFirst}, Position: 1, IsInternal: true},
		{ID: "corr", Roles: []incentive.Role{incentive.RoleCorresponding}, Position: 2, IsInternal: true},
		{ID: "co", Roles: []incentive.Role{incentive.RoleCoAuthor}, Position: 3, IsInternal: true},
	}
	base := incentive.BaseResult{
		TotalAmount: incentive.MustParseDecimal("50000"),
		TotalPoints: incentive.MustParseDecimal("50"),
	}
	result, err := incentive.Distribute(base, authors, policy.Distribution)
	require.NoError(t, err)

	record := sqlite.ApprovalRecord{
		ID:              "appr-1",
		ContributionID:  "contrib-1",
		PublicationType: incentive.PubResearchPaper,
		ReferenceDate:   jan(2025).AddDate(0, 2, 0),
		PolicyID:        policy.ID,
		Result:          result,
	}
	require.NoError(t, store.SaveApproval(ctx, record))

	loaded, err := store.GetApproval(ctx, "appr-1")
	require.NoError(t, err)
	require.NotNil(t, loaded.Result)
	assert.Equal(t, policy.ID, loaded.PolicyID)
	assert.True(t, result.TotalDistributed.Equal(loaded.Result.TotalDistributed))
	assert.True(t, result.TotalForfeited.Equal(loaded.Result.TotalForfeited))
	require.Len(t, loaded.Result.Allocations, 3)

	// Byline order survives the round trip.
	assert.Equal(t, incentive.AuthorID("first"), loaded.Result.Allocations[0].AuthorID)
	assert.True(t, incentive.MustParseDecimal("17500").Equal(loaded.Result.Allocations[0].IncentiveAmount))
}

func TestSaveApproval_FlaggedWithoutAllocation(t *testing.T) {
	// A non-fatal engine failure records a null allocation flagged for
	// manual follow-up; the approval row itself still lands.

	store := newTestStore(t)
	ctx := context.Background()

	record := sqlite.ApprovalRecord{
		ID:              "appr-flagged",
		ContributionID:  "contrib-2",
		PublicationType: incentive.PubBook,
		ReferenceDate:   jan(2025),
		FlaggedReason:   "no active incentive policy",
	}
	require.NoError(t, store.SaveApproval(ctx, record))

	loaded, err := store.GetApproval(ctx, "appr-flagged")
	require.NoError(t, err)
	assert.Nil(t, loaded.Result)
	assert.Equal(t, "no active incentive policy", loaded.FlaggedReason)
}

func TestGetApproval_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetApproval(context.Background(), "missing")
	assert.ErrorIs(t, err, sqlite.ErrApprovalNotFound)
}

func TestListApprovalsByContribution(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"a1", "a2"} {
		require.NoError(t, store.SaveApproval(ctx, sqlite.ApprovalRecord{
			ID:              id,
			ContributionID:  "contrib-3",
			PublicationType: incentive.PubIPR,
			ReferenceDate:   jan(2025),
			FlaggedReason:   "incomplete contribution metadata",
		}))
	}

	ids, err := store.ListApprovalsByContribution(ctx, "contrib-3")
	require.NoError(t, err)
	assert.Len(t, ids, 2)
}
