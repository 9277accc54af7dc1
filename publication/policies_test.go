package publication_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/incentive-engine/incentive"
	"github.com/warp/incentive-engine/publication"
)

func jan2025() time.Time {
	return time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
}

func TestStandardSchedule_AllPoliciesValid(t *testing.T) {
	// Every preset must pass the same validation admin-authored JSON does.
	for _, p := range publication.StandardSchedule(jan2025()) {
		assert.NoError(t, p.Validate(), string(p.ID))
	}
}

func TestStandardSchedule_OnePolicyPerType(t *testing.T) {
	schedule := publication.StandardSchedule(jan2025())
	require.Len(t, schedule, 6)

	seen := map[incentive.PublicationType]bool{}
	for _, p := range schedule {
		assert.False(t, seen[p.PublicationType], "duplicate type %s", p.PublicationType)
		seen[p.PublicationType] = true
	}
}

func TestStandardSchedule_ResolvesForEveryType(t *testing.T) {
	schedule := publication.StandardSchedule(jan2025())
	when := time.Date(2025, time.July, 10, 0, 0, 0, 0, time.UTC)

	for _, pubType := range []incentive.PublicationType{
		incentive.PubResearchPaper, incentive.PubBook, incentive.PubBookChapter,
		incentive.PubConferencePaper, incentive.PubGrant, incentive.PubIPR,
	} {
		_, err := incentive.Resolve(schedule, pubType, when)
		assert.NoError(t, err, string(pubType))
	}
}

func TestGrantPolicy_RangeSupersedesTier(t *testing.T) {
	// GIVEN: The grant preset with its NAAS range table
	// WHEN: Computing a grant with a NAAS rating of 8.2
	// THEN: The top band applies regardless of the quartile

	policy := publication.GrantPolicy("grant", jan2025())
	naas := incentive.MustParseDecimal("8.2")

	result, err := incentive.ComputeBaseAmount(&incentive.Contribution{
		ID:              "g-1",
		PublicationType: incentive.PubGrant,
		Quartile:        publication.TierQ2,
		NAASRating:      &naas,
	}, policy)
	require.NoError(t, err)

	assert.True(t, incentive.MustParseDecimal("75000").Equal(result.TotalAmount),
		"got %s", result.TotalAmount)
}
