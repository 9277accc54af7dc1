package incentive_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/incentive-engine/incentive"
)

// =============================================================================
// TEST FIXTURES
// =============================================================================

func paperPolicy() *incentive.IncentivePolicy {
	return &incentive.IncentivePolicy{
		ID:              "paper-2025",
		Name:            "Research Paper Incentives 2025",
		PublicationType: incentive.PubResearchPaper,
		ValidFrom:       time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		TierTable: []incentive.Tier{
			{Key: "Top 1%", Payout: incentive.NewPayout(100000, 100)},
			{Key: "Q1", Payout: incentive.NewPayout(50000, 50)},
			{Key: "Q2", Payout: incentive.NewPayout(30000, 30)},
			{Key: "Q3", Payout: incentive.NewPayout(15000, 15)},
			{Key: "Q4", Payout: incentive.NewPayout(7500, 8)},
		},
		CategoryBonusTable: map[string]incentive.Payout{
			"scopus":        incentive.NewPayout(5000, 5),
			"wos":           incentive.NewPayout(5000, 5),
			"pubmed":        incentive.NewPayout(2500, 2),
			"ugc_care":      incentive.NewPayout(1000, 1),
		},
		ConditionalBonuses: incentive.ConditionalBonuses{
			International:    d("3000"),
			PerConsortiumOrg: d("500"),
			BestPaperAward:   d("2000"),
		},
		Distribution: incentive.Distribution{
			Method: incentive.RoleBased,
			RolePercentages: &incentive.RolePercentages{
				FirstAuthorPct:   d("35"),
				CorrespondingPct: d("30"),
			},
		},
	}
}

func sjrRangePolicy() *incentive.IncentivePolicy {
	p := paperPolicy()
	two := d("2")
	five := d("5")
	p.RangeTables = []incentive.RangeTable{{
		Metric: incentive.MetricSJR,
		Bands: []incentive.RangeBand{
			{Min: d("0"), Max: &two, Payout: incentive.NewPayout(10000, 10)},
			{Min: two, Max: &five, Payout: incentive.NewPayout(25000, 25)},
			{Min: five, Max: nil, Payout: incentive.NewPayout(60000, 60)},
		},
	}}
	return p
}

func paper(quartile string, categories ...string) *incentive.Contribution {
	return &incentive.Contribution{
		ID:                 "contrib-1",
		PublicationType:    incentive.PubResearchPaper,
		Quartile:           quartile,
		IndexingCategories: categories,
	}
}

// =============================================================================
// TIER LOOKUP
// =============================================================================

func TestComputeBaseAmount_TierLookup(t *testing.T) {
	result, err := incentive.ComputeBaseAmount(paper("Q1"), paperPolicy())
	require.NoError(t, err)

	assertDecimal(t, "50000", result.TotalAmount)
	assertDecimal(t, "50", result.TotalPoints)
}

func TestComputeBaseAmount_UnknownQuartile_IncompleteMetadata(t *testing.T) {
	_, err := incentive.ComputeBaseAmount(paper("Q7"), paperPolicy())
	assert.ErrorIs(t, err, incentive.ErrIncompleteMetadata)
}

func TestComputeBaseAmount_NoQuartileNoMetric_IncompleteMetadata(t *testing.T) {
	_, err := incentive.ComputeBaseAmount(paper(""), paperPolicy())
	assert.ErrorIs(t, err, incentive.ErrIncompleteMetadata)
}

// =============================================================================
// RANGE LOOKUP
// =============================================================================

func TestComputeBaseAmount_RangeSupersedesTier(t *testing.T) {
	// GIVEN: Policy with an SJR range table AND a tier table
	// WHEN: The contribution carries an SJR value and a quartile
	// THEN: The range lookup wins; the quartile is ignored

	c := paper("Q1")
	sjr := d("3.4")
	c.SJR = &sjr

	result, err := incentive.ComputeBaseAmount(c, sjrRangePolicy())
	require.NoError(t, err)

	assertDecimal(t, "25000", result.TotalAmount)
	assertDecimal(t, "25", result.TotalPoints)
}

func TestComputeBaseAmount_RangeFallsBackToTier_WhenMetricAbsent(t *testing.T) {
	// Range table defined but the contribution has no SJR: tier lookup runs.
	result, err := incentive.ComputeBaseAmount(paper("Q2"), sjrRangePolicy())
	require.NoError(t, err)

	assertDecimal(t, "30000", result.TotalAmount)
}

func TestComputeBaseAmount_ValueOutsideAllRanges_NoMatchingRange(t *testing.T) {
	// A value below every band fails loudly rather than defaulting.
	c := paper("")
	sjr := d("-1")
	c.SJR = &sjr

	_, err := incentive.ComputeBaseAmount(c, sjrRangePolicy())
	assert.ErrorIs(t, err, incentive.ErrNoMatchingRange)
}

func TestComputeBaseAmount_RangeBoundaries_HalfOpen(t *testing.T) {
	// Bands are [min, max): 2.0 belongs to the second band, not the first.
	c := paper("")
	sjr := d("2")
	c.SJR = &sjr

	result, err := incentive.ComputeBaseAmount(c, sjrRangePolicy())
	require.NoError(t, err)
	assertDecimal(t, "25000", result.TotalAmount)
}

// =============================================================================
// BONUSES
// =============================================================================

func TestComputeBaseAmount_CategoryBonuses_Additive(t *testing.T) {
	// GIVEN: A Q1 paper indexed in scopus, wos, and pubmed
	// WHEN: Computing the base amount
	// THEN: All three bonuses are summed, not maxed

	result, err := incentive.ComputeBaseAmount(paper("Q1", "scopus", "wos", "pubmed"), paperPolicy())
	require.NoError(t, err)

	// 50000 + 5000 + 5000 + 2500
	assertDecimal(t, "62500", result.TotalAmount)
	// 50 + 5 + 5 + 2
	assertDecimal(t, "62", result.TotalPoints)
}

func TestComputeBaseAmount_UnknownCategory_Ignored(t *testing.T) {
	result, err := incentive.ComputeBaseAmount(paper("Q1", "not_a_known_index"), paperPolicy())
	require.NoError(t, err)
	assertDecimal(t, "50000", result.TotalAmount)
}

func TestComputeBaseAmount_ConditionalBonuses_MoneyOnly(t *testing.T) {
	// GIVEN: International paper, 4 consortium orgs, best-paper award
	// WHEN: Computing the base amount
	// THEN: Money includes every bonus; points stay at the tier value

	c := paper("Q1")
	c.IsInternational = true
	c.NumberOfConsortiumOrgs = 4
	c.HasBestPaperAward = true

	result, err := incentive.ComputeBaseAmount(c, paperPolicy())
	require.NoError(t, err)

	// 50000 + 3000 + 4*500 + 2000
	assertDecimal(t, "57000", result.TotalAmount)
	assertDecimal(t, "50", result.TotalPoints)
}

func TestComputeBaseAmount_Deterministic(t *testing.T) {
	c := paper("Q1", "scopus", "wos")
	c.IsInternational = true

	first, err := incentive.ComputeBaseAmount(c, paperPolicy())
	require.NoError(t, err)
	second, err := incentive.ComputeBaseAmount(c, paperPolicy())
	require.NoError(t, err)

	assert.True(t, first.TotalAmount.Equal(second.TotalAmount))
	assert.True(t, first.TotalPoints.Equal(second.TotalPoints))
}
