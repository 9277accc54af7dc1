/*
policies.go - Pre-built incentive policy configurations

PURPOSE:
  Provides ready-to-use policy configurations for each publication type,
  modeled on the institution's 2025 incentive schedule. Administrators
  normally author policies as JSON through the factory package; these
  presets seed demo data and fixtures.

AVAILABLE POLICIES:
  ResearchPaperPolicy:
    - Quartile tier table (Top 1% down to Q4)
    - Optional SJR range table
    - Additive indexing bonuses, international/consortium/award bonuses
    - role_based: first 35%, corresponding 30%, derived 35% co-author pool

  ConferencePaperPolicy:
    - position_based [40,25,15,12,8] over byline ranks 1..5
    - Best-paper award bonus

  BookPolicy / BookChapterPolicy:
    - Flat tier tables, role_based splits

  GrantPolicy:
    - NAAS-style range table over the sanctioned amount rating
    - Per-consortium-org bonus for multi-institution grants

  IPRPolicy:
    - Flat grant amounts per filing tier, position_based

DISTRIBUTION NOTES:
  The co-author pool percentage is always derived (100 - first -
  corresponding), never configured. Two-author contributions with no
  co-author role split 50/50 regardless of these percentages.

SEE ALSO:
  - types.go: Tier and category constants
  - factory/policy.go: JSON-based policy authoring
*/
package publication

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/incentive-engine/incentive"
)

func pct(s string) decimal.Decimal { return incentive.MustParseDecimal(s) }

// =============================================================================
// RESEARCH PAPER POLICY
// =============================================================================

// ResearchPaperPolicy creates the standard journal-paper policy: quartile
// tiers, additive indexing bonuses, and a role-based author split.
func ResearchPaperPolicy(id string, validFrom time.Time) *incentive.IncentivePolicy {
	return &incentive.IncentivePolicy{
		ID:              incentive.PolicyID(id),
		Name:            "Research Paper Incentives",
		PublicationType: incentive.PubResearchPaper,
		ValidFrom:       validFrom,
		TierTable: []incentive.Tier{
			{Key: TierTop1, Payout: incentive.NewPayout(100000, 100)},
			{Key: TierTop5, Payout: incentive.NewPayout(75000, 75)},
			{Key: TierQ1, Payout: incentive.NewPayout(50000, 50)},
			{Key: TierQ2, Payout: incentive.NewPayout(30000, 30)},
			{Key: TierQ3, Payout: incentive.NewPayout(15000, 15)},
			{Key: TierQ4, Payout: incentive.NewPayout(7500, 8)},
		},
		CategoryBonusTable: map[string]incentive.Payout{
			IndexScopus:  incentive.NewPayout(5000, 5),
			IndexWoS:     incentive.NewPayout(5000, 5),
			IndexPubMed:  incentive.NewPayout(2500, 2),
			IndexUGCCare: incentive.NewPayout(1000, 1),
			IndexESCI:    incentive.NewPayout(1500, 1),
		},
		ConditionalBonuses: incentive.ConditionalBonuses{
			International:    pct("3000"),
			PerConsortiumOrg: pct("500"),
			BestPaperAward:   pct("2000"),
		},
		Distribution: incentive.Distribution{
			Method: incentive.RoleBased,
			RolePercentages: &incentive.RolePercentages{
				FirstAuthorPct:   pct("35"),
				CorrespondingPct: pct("30"),
			},
		},
		Version: 1,
	}
}

// ResearchPaperPolicyWithSJR is the paper policy with an SJR range table
// that supersedes quartile lookup when the contribution reports an SJR.
func ResearchPaperPolicyWithSJR(id string, validFrom time.Time) *incentive.IncentivePolicy {
	p := ResearchPaperPolicy(id, validFrom)
	one := pct("1")
	three := pct("3")
	six := pct("6")
	p.RangeTables = []incentive.RangeTable{{
		Metric: incentive.MetricSJR,
		Bands: []incentive.RangeBand{
			{Min: pct("0"), Max: &one, Payout: incentive.NewPayout(10000, 10)},
			{Min: one, Max: &three, Payout: incentive.NewPayout(30000, 30)},
			{Min: three, Max: &six, Payout: incentive.NewPayout(60000, 60)},
			{Min: six, Max: nil, Payout: incentive.NewPayout(100000, 100)},
		},
	}}
	return p
}

// =============================================================================
// CONFERENCE PAPER POLICY
// =============================================================================

// ConferencePaperPolicy creates a position-based conference policy:
// byline ranks 1..5 split [40,25,15,12,8]; rank 6 onward receives nothing.
func ConferencePaperPolicy(id string, validFrom time.Time) *incentive.IncentivePolicy {
	return &incentive.IncentivePolicy{
		ID:              incentive.PolicyID(id),
		Name:            "Conference Contribution Incentives",
		PublicationType: incentive.PubConferencePaper,
		ValidFrom:       validFrom,
		TierTable: []incentive.Tier{
			{Key: TierTop5, Payout: incentive.NewPayout(25000, 25)},
			{Key: TierQ1, Payout: incentive.NewPayout(15000, 15)},
			{Key: TierQ2, Payout: incentive.NewPayout(8000, 8)},
		},
		CategoryBonusTable: map[string]incentive.Payout{
			IndexScopus: incentive.NewPayout(2000, 2),
			IndexWoS:    incentive.NewPayout(2000, 2),
		},
		ConditionalBonuses: incentive.ConditionalBonuses{
			International:  pct("2000"),
			BestPaperAward: pct("5000"),
		},
		Distribution: incentive.Distribution{
			Method: incentive.PositionBased,
			PositionPercentages: &incentive.PositionPercentages{
				Ranks: [5]decimal.Decimal{pct("40"), pct("25"), pct("15"), pct("12"), pct("8")},
			},
		},
		Version: 1,
	}
}

// =============================================================================
// BOOK POLICIES
// =============================================================================

// BookPolicy creates the authored-book policy. Books use the tier table as
// a publisher-class ranking rather than a journal quartile.
func BookPolicy(id string, validFrom time.Time) *incentive.IncentivePolicy {
	return &incentive.IncentivePolicy{
		ID:              incentive.PolicyID(id),
		Name:            "Book Incentives",
		PublicationType: incentive.PubBook,
		ValidFrom:       validFrom,
		TierTable: []incentive.Tier{
			{Key: TierQ1, Payout: incentive.NewPayout(40000, 40)},
			{Key: TierQ2, Payout: incentive.NewPayout(20000, 20)},
			{Key: TierQ3, Payout: incentive.NewPayout(10000, 10)},
		},
		CategoryBonusTable: map[string]incentive.Payout{
			IndexScopus: incentive.NewPayout(5000, 5),
		},
		ConditionalBonuses: incentive.ConditionalBonuses{
			International: pct("5000"),
		},
		Distribution: incentive.Distribution{
			Method: incentive.RoleBased,
			RolePercentages: &incentive.RolePercentages{
				FirstAuthorPct:   pct("50"),
				CorrespondingPct: pct("20"),
			},
		},
		Version: 1,
	}
}

// BookChapterPolicy creates the book-chapter policy.
func BookChapterPolicy(id string, validFrom time.Time) *incentive.IncentivePolicy {
	p := BookPolicy(id, validFrom)
	p.Name = "Book Chapter Incentives"
	p.PublicationType = incentive.PubBookChapter
	p.TierTable = []incentive.Tier{
		{Key: TierQ1, Payout: incentive.NewPayout(10000, 10)},
		{Key: TierQ2, Payout: incentive.NewPayout(6000, 6)},
		{Key: TierQ3, Payout: incentive.NewPayout(3000, 3)},
	}
	p.ConditionalBonuses = incentive.ConditionalBonuses{International: pct("1500")}
	return p
}

// =============================================================================
// GRANT POLICY
// =============================================================================

// GrantPolicy creates the sponsored-grant policy. Grants rate on a NAAS
// style score; the range table supersedes tier lookup whenever the rating
// is reported. Consortium grants earn a per-organization bonus.
func GrantPolicy(id string, validFrom time.Time) *incentive.IncentivePolicy {
	four := pct("4")
	eight := pct("8")
	return &incentive.IncentivePolicy{
		ID:              incentive.PolicyID(id),
		Name:            "Sponsored Grant Incentives",
		PublicationType: incentive.PubGrant,
		ValidFrom:       validFrom,
		TierTable: []incentive.Tier{
			{Key: TierQ1, Payout: incentive.NewPayout(50000, 50)},
			{Key: TierQ2, Payout: incentive.NewPayout(25000, 25)},
		},
		RangeTables: []incentive.RangeTable{{
			Metric: incentive.MetricNAAS,
			Bands: []incentive.RangeBand{
				{Min: pct("0"), Max: &four, Payout: incentive.NewPayout(15000, 15)},
				{Min: four, Max: &eight, Payout: incentive.NewPayout(35000, 35)},
				{Min: eight, Max: nil, Payout: incentive.NewPayout(75000, 75)},
			},
		}},
		ConditionalBonuses: incentive.ConditionalBonuses{
			PerConsortiumOrg: pct("2500"),
		},
		Distribution: incentive.Distribution{
			Method: incentive.RoleBased,
			RolePercentages: &incentive.RolePercentages{
				// Principal investigator maps to the first-author role,
				// co-PI to corresponding.
				FirstAuthorPct:   pct("50"),
				CorrespondingPct: pct("25"),
			},
		},
		Version: 1,
	}
}

// =============================================================================
// IPR POLICY
// =============================================================================

// IPRPolicy creates the patent/IPR filing policy.
func IPRPolicy(id string, validFrom time.Time) *incentive.IncentivePolicy {
	return &incentive.IncentivePolicy{
		ID:              incentive.PolicyID(id),
		Name:            "IPR Filing Incentives",
		PublicationType: incentive.PubIPR,
		ValidFrom:       validFrom,
		TierTable: []incentive.Tier{
			{Key: TierQ1, Payout: incentive.NewPayout(30000, 30)}, // granted
			{Key: TierQ2, Payout: incentive.NewPayout(10000, 10)}, // published
			{Key: TierQ3, Payout: incentive.NewPayout(5000, 5)},   // filed
		},
		ConditionalBonuses: incentive.ConditionalBonuses{
			International: pct("10000"),
		},
		Distribution: incentive.Distribution{
			Method: incentive.PositionBased,
			PositionPercentages: &incentive.PositionPercentages{
				Ranks: [5]decimal.Decimal{pct("50"), pct("20"), pct("15"), pct("10"), pct("5")},
			},
		},
		Version: 1,
	}
}

// =============================================================================
// FULL SCHEDULE
// =============================================================================

// StandardSchedule returns one preset policy per publication type, all
// effective from the given date. Used to seed demo scenarios and tests.
func StandardSchedule(validFrom time.Time) []*incentive.IncentivePolicy {
	return []*incentive.IncentivePolicy{
		ResearchPaperPolicy("paper-std", validFrom),
		ConferencePaperPolicy("conference-std", validFrom),
		BookPolicy("book-std", validFrom),
		BookChapterPolicy("chapter-std", validFrom),
		GrantPolicy("grant-std", validFrom),
		IPRPolicy("ipr-std", validFrom),
	}
}
