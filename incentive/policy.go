/*
policy.go - Incentive policy definitions and percentage tables

PURPOSE:
  Defines the rules that govern how a contribution's quality metadata is
  turned into money and points, and how that total is split among authors.
  An IncentivePolicy is one immutable configuration version; edits create a
  new version with a new validity window.

KEY CONCEPTS:
  - TierTable: Ordered discrete quality tiers ("Top 1%", "Q1".."Q4")
  - RangeTable: Non-overlapping numeric ranges for continuous metrics
    (SJR, NAAS rating); supersedes tier lookup for its metric
  - CategoryBonusTable: Flat add-on per indexing category, summed not maxed
  - ConditionalBonuses: International / consortium / best-paper add-ons,
    money only - points are never inflated by bonuses
  - Distribution: Tagged variant, role_based XOR position_based

DISTRIBUTION METHODS:
  role_based:
    - First and corresponding author percentages are configured
    - Co-author pool percentage is derived (100 - first - corresponding),
      never stored
    - A person holding both primary roles receives both percentages

  position_based:
    - Percentages for byline ranks 1..5, summing to exactly 100
    - Rank >= 6 is implicitly 0 (no incentive, no points)

VERSIONING:
  At most one policy may be active for a (publicationType, date) pair.
  Validity windows are half-open [ValidFrom, ValidTo); a nil ValidTo means
  open-ended. Overlap rejection happens at authoring time (resolver.go),
  never during allocation.

SEE ALSO:
  - resolver.go: Resolution and write-time validation
  - calculator.go: Table lookups
  - distribute.go: Percentage application
*/
package incentive

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// POLICY - One immutable configuration version
// =============================================================================

// IncentivePolicy is the complete ruleset for one publication type over one
// validity window. Policies are append-only: once an allocation references a
// version, that version is never edited.
type IncentivePolicy struct {
	ID              PolicyID
	Name            string
	PublicationType PublicationType

	// Half-open validity window [ValidFrom, ValidTo). Nil ValidTo means
	// open-ended.
	ValidFrom time.Time
	ValidTo   *time.Time

	// Lookup tables for the base amount calculator.
	TierTable          []Tier
	RangeTables        []RangeTable
	CategoryBonusTable map[string]Payout
	ConditionalBonuses ConditionalBonuses

	// Distribution rules for the author distribution engine.
	Distribution Distribution

	Version int
}

// =============================================================================
// LOOKUP TABLES
// =============================================================================

// Tier maps one discrete quality tier key to its payout.
type Tier struct {
	Key    string // e.g. "Top 1%", "Q1", "Q4"
	Payout Payout
}

// RangeMetric names the continuous quality metric a RangeTable keys on.
type RangeMetric string

const (
	MetricSJR  RangeMetric = "sjr"
	MetricNAAS RangeMetric = "naas"
)

// RangeTable maps non-overlapping half-open numeric ranges [Min, Max) of one
// metric to payouts. When a policy defines a RangeTable for a metric and the
// contribution carries a value for it, range lookup supersedes tier lookup.
type RangeTable struct {
	Metric RangeMetric
	Bands  []RangeBand
}

// RangeBand is one [Min, Max) band. A nil Max means unbounded above.
type RangeBand struct {
	Min    decimal.Decimal
	Max    *decimal.Decimal
	Payout Payout
}

// Contains reports whether v falls inside the band.
func (b RangeBand) Contains(v decimal.Decimal) bool {
	if v.LessThan(b.Min) {
		return false
	}
	if b.Max != nil && v.GreaterThanOrEqual(*b.Max) {
		return false
	}
	return true
}

// ConditionalBonuses are flat monetary add-ons. They never carry points.
type ConditionalBonuses struct {
	International    decimal.Decimal
	PerConsortiumOrg decimal.Decimal
	BestPaperAward   decimal.Decimal
}

// =============================================================================
// DISTRIBUTION - Tagged variant: role_based XOR position_based
// =============================================================================

type DistributionMethod string

const (
	RoleBased     DistributionMethod = "role_based"
	PositionBased DistributionMethod = "position_based"
)

// Distribution selects the allocation algorithm and carries exactly one
// percentage table. The unused table must be nil; Validate enforces this.
type Distribution struct {
	Method              DistributionMethod
	RolePercentages     *RolePercentages
	PositionPercentages *PositionPercentages
}

// RolePercentages configures the role_based method. The co-author pool
// percentage is derived as 100 - FirstAuthorPct - CorrespondingPct and is
// never stored.
type RolePercentages struct {
	FirstAuthorPct   decimal.Decimal
	CorrespondingPct decimal.Decimal
}

// CoAuthorPoolPct returns the derived co-author pool percentage, clamped at
// zero. A negative derivation is a policy validation failure caught at
// authoring time, not at allocation time.
func (rp RolePercentages) CoAuthorPoolPct() decimal.Decimal {
	pool := hundred.Sub(rp.FirstAuthorPct).Sub(rp.CorrespondingPct)
	if pool.IsNegative() {
		return decimal.Zero
	}
	return pool
}

// PositionPercentages configures the position_based method: percentages for
// byline ranks 1..5. Rank >= 6 is implicitly zero.
type PositionPercentages struct {
	Ranks [5]decimal.Decimal
}

// ForPosition returns the percentage for a 1-based rank.
func (pp PositionPercentages) ForPosition(position int) decimal.Decimal {
	if position < 1 || position > len(pp.Ranks) {
		return decimal.Zero
	}
	return pp.Ranks[position-1]
}

var hundred = decimal.NewFromInt(100)

// =============================================================================
// POLICY VALIDATION
// =============================================================================

// Validate checks the policy's internal invariants. It does NOT check window
// overlap against other policies; that requires the existing policy set and
// lives in ValidateForCreate.
func (p *IncentivePolicy) Validate() error {
	if !KnownPublicationType(p.PublicationType) {
		return &PercentageError{Reason: "unknown publication type: " + string(p.PublicationType)}
	}
	if p.ValidTo != nil && !p.ValidFrom.Before(*p.ValidTo) {
		return &PercentageError{Reason: "validFrom must precede validTo"}
	}

	switch p.Distribution.Method {
	case RoleBased:
		return p.validateRolePercentages()
	case PositionBased:
		return p.validatePositionPercentages()
	default:
		return &PercentageError{Reason: "unknown distribution method: " + string(p.Distribution.Method)}
	}
}

func (p *IncentivePolicy) validateRolePercentages() error {
	if p.Distribution.PositionPercentages != nil {
		return &PercentageError{Reason: "role_based policy must not carry position percentages"}
	}
	rp := p.Distribution.RolePercentages
	if rp == nil {
		return &PercentageError{Reason: "role_based policy requires role percentages"}
	}
	if rp.FirstAuthorPct.IsNegative() || rp.CorrespondingPct.IsNegative() {
		return &PercentageError{Reason: "role percentages must not be negative"}
	}
	if rp.FirstAuthorPct.Add(rp.CorrespondingPct).GreaterThan(hundred) {
		return &PercentageError{
			Reason: "firstAuthorPct + correspondingPct exceeds 100",
			Sum:    rp.FirstAuthorPct.Add(rp.CorrespondingPct),
		}
	}
	return nil
}

func (p *IncentivePolicy) validatePositionPercentages() error {
	if p.Distribution.RolePercentages != nil {
		return &PercentageError{Reason: "position_based policy must not carry role percentages"}
	}
	pp := p.Distribution.PositionPercentages
	if pp == nil {
		return &PercentageError{Reason: "position_based policy requires position percentages"}
	}
	sum := decimal.Zero
	for _, pct := range pp.Ranks {
		if pct.IsNegative() {
			return &PercentageError{Reason: "position percentages must not be negative"}
		}
		sum = sum.Add(pct)
	}
	if !sum.Equal(hundred) {
		return &PercentageError{Reason: "position percentages for ranks 1..5 must sum to 100", Sum: sum}
	}
	return nil
}

// =============================================================================
// VALIDITY WINDOWS
// =============================================================================

// ActiveAt reports whether the policy's half-open window contains t.
func (p *IncentivePolicy) ActiveAt(t time.Time) bool {
	if t.Before(p.ValidFrom) {
		return false
	}
	if p.ValidTo != nil && !t.Before(*p.ValidTo) {
		return false
	}
	return true
}

// Overlaps reports whether two half-open validity windows intersect.
func (p *IncentivePolicy) Overlaps(o *IncentivePolicy) bool {
	// [a1, a2) and [b1, b2) intersect iff a1 < b2 and b1 < a2,
	// with a nil end treated as +infinity.
	if o.ValidTo != nil && !p.ValidFrom.Before(*o.ValidTo) {
		return false
	}
	if p.ValidTo != nil && !o.ValidFrom.Before(*p.ValidTo) {
		return false
	}
	return true
}
