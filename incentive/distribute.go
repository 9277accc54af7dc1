/*
distribute.go - Author distribution engine

PURPOSE:
  Splits a gross (amount, points) total across a contribution's authors
  according to the policy's distribution method. Handles external
  (non-employee) participants, students, multi-role authors, and the
  degenerate author-count cases. Pure function; calling it twice with
  identical input yields identical output.

ELIGIBILITY RULES:
  - External authors never receive money or points.
  - Students receive money but never points.
  - Position >= 6 (position_based) receives nothing.

FORFEITURE vs REDISTRIBUTION:
  These are two deliberately distinct code paths, not one flag:
  - Primary-role shares (first/corresponding, or any ranked position) held
    by an external author are FORFEITED outright. Other authors never
    absorb them.
  - The co-author pool REDISTRIBUTES: an external co-author contributes no
    denominator weight, so the pool splits equally among internal
    co-authors only. With zero internal co-authors the whole pool is
    forfeited.

ROUNDING:
  Money rounds half-up to the currency's smallest unit (two decimals).
  Rounding residue is reported as forfeiture, never assigned to any one
  author. If half-up rounding overshoots the gross total by a fraction of
  a unit, the overshoot is shaved off the largest share so conservation
  holds and forfeiture stays non-negative.

SEE ALSO:
  - policy.go: Percentage tables
  - calculator.go: Produces the BaseResult consumed here
*/
package incentive

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var fifty = decimal.NewFromInt(50)

// Distribute splits the gross totals across authors under the given
// distribution rules. Malformed author lists are rejected with
// ErrInvalidAuthorSet before any arithmetic runs; partial allocations are
// never returned.
func Distribute(base BaseResult, authors []Author, dist Distribution) (*AllocationResult, error) {
	if err := validateAuthors(authors, dist); err != nil {
		return nil, err
	}

	// Degenerate case: a sole internal author takes everything; a sole
	// external author produces a valid, fully-forfeited result.
	if len(authors) == 1 {
		return soleAuthorResult(base, authors[0]), nil
	}

	var shares []decimal.Decimal
	switch dist.Method {
	case RoleBased:
		shares = roleBasedShares(authors, *dist.RolePercentages)
	case PositionBased:
		shares = positionBasedShares(authors, *dist.PositionPercentages)
	}

	return assemble(base, authors, shares), nil
}

// =============================================================================
// VALIDATION
// =============================================================================

func validateAuthors(authors []Author, dist Distribution) error {
	if len(authors) == 0 {
		return &InvalidAuthorSetError{Reason: "author list is empty"}
	}

	seen := make(map[AuthorID]bool, len(authors))
	positions := make(map[int]bool, len(authors))
	for _, a := range authors {
		if a.ID == "" {
			return &InvalidAuthorSetError{Reason: "author without identity"}
		}
		if seen[a.ID] {
			return &InvalidAuthorSetError{Reason: fmt.Sprintf("duplicate author %s", a.ID)}
		}
		seen[a.ID] = true

		if a.Position <= 0 {
			return &InvalidAuthorSetError{Reason: fmt.Sprintf("author %s has position %d", a.ID, a.Position)}
		}
		if positions[a.Position] {
			return &InvalidAuthorSetError{Reason: fmt.Sprintf("duplicate position %d", a.Position)}
		}
		positions[a.Position] = true

		for _, r := range a.Roles {
			switch r {
			case RoleFirst, RoleCorresponding, RoleCoAuthor:
			default:
				return &InvalidAuthorSetError{Reason: fmt.Sprintf("author %s claims unknown role %q", a.ID, r)}
			}
		}
	}

	switch dist.Method {
	case RoleBased:
		if dist.RolePercentages == nil {
			return &InvalidAuthorSetError{Reason: "role_based distribution without role percentages"}
		}
		for _, a := range authors {
			if len(a.Roles) == 0 {
				return &InvalidAuthorSetError{Reason: fmt.Sprintf("author %s claims no role", a.ID)}
			}
		}
	case PositionBased:
		if dist.PositionPercentages == nil {
			return &InvalidAuthorSetError{Reason: "position_based distribution without position percentages"}
		}
	default:
		return &InvalidAuthorSetError{Reason: fmt.Sprintf("unknown distribution method %q", dist.Method)}
	}

	return nil
}

// =============================================================================
// SOLE AUTHOR
// =============================================================================

func soleAuthorResult(base BaseResult, a Author) *AllocationResult {
	alloc := AuthorAllocation{
		AuthorID:        a.ID,
		IncentiveAmount: decimal.Zero,
		Points:          decimal.Zero,
	}
	if a.IsInternal {
		alloc.IncentiveAmount = roundMoney(base.TotalAmount)
		if !a.IsStudent {
			alloc.Points = roundPoints(base.TotalPoints)
		}
	}

	return &AllocationResult{
		Allocations:            []AuthorAllocation{alloc},
		TotalComputed:          base.TotalAmount,
		TotalDistributed:       alloc.IncentiveAmount,
		TotalForfeited:         base.TotalAmount.Sub(alloc.IncentiveAmount),
		TotalPoints:            base.TotalPoints,
		TotalPointsDistributed: alloc.Points,
	}
}

// =============================================================================
// ROLE-BASED SHARES
// =============================================================================

// roleBasedShares returns each author's combined percentage. Eligibility
// (external/student zeroing) is applied later in assemble; an external
// author's computed percentage is what gets forfeited or redistributed.
func roleBasedShares(authors []Author, rp RolePercentages) []decimal.Decimal {
	shares := make([]decimal.Decimal, len(authors))

	// Two-author product rule: first + corresponding and nobody holding a
	// co-author role means a straight 50/50 split, regardless of the
	// configured percentages. Deliberately checked before the general
	// algorithm; do not fold into the percentage arithmetic.
	if len(authors) == 2 && !authors[0].HasRole(RoleCoAuthor) && !authors[1].HasRole(RoleCoAuthor) {
		shares[0] = fifty
		shares[1] = fifty
		return shares
	}

	// Primary roles: a multi-role author receives the sum of every
	// percentage they hold. If a primary role is held by an external
	// author, that percentage is forfeited outright in assemble - it is
	// never redistributed.
	for i, a := range authors {
		pct := decimal.Zero
		if a.HasRole(RoleFirst) {
			pct = pct.Add(rp.FirstAuthorPct)
		}
		if a.HasRole(RoleCorresponding) {
			pct = pct.Add(rp.CorrespondingPct)
		}
		shares[i] = pct
	}

	// Co-author pool: split equally among INTERNAL co-authors only.
	// External co-authors carry no denominator weight, so their notional
	// share redistributes to the remaining internal co-authors. With no
	// internal co-author the entire pool is forfeited (share stays unset).
	internalCoAuthors := 0
	for _, a := range authors {
		if a.HasRole(RoleCoAuthor) && a.IsInternal {
			internalCoAuthors++
		}
	}
	if internalCoAuthors > 0 {
		perCoAuthor := rp.CoAuthorPoolPct().Div(decimal.NewFromInt(int64(internalCoAuthors)))
		for i, a := range authors {
			if a.HasRole(RoleCoAuthor) && a.IsInternal {
				shares[i] = shares[i].Add(perCoAuthor)
			}
		}
	}

	return shares
}

// =============================================================================
// POSITION-BASED SHARES
// =============================================================================

// positionBasedShares returns each author's percentage by byline rank.
// Ranks 1..5 come from the table; rank >= 6 is zero. External forfeiture
// mirrors the role-based primary-role rule: no redistribution.
func positionBasedShares(authors []Author, pp PositionPercentages) []decimal.Decimal {
	shares := make([]decimal.Decimal, len(authors))
	for i, a := range authors {
		shares[i] = pp.ForPosition(a.Position)
	}
	return shares
}

// =============================================================================
// RESULT ASSEMBLY
// =============================================================================

// assemble applies eligibility and rounding to the percentage shares and
// reconciles the distribution totals.
func assemble(base BaseResult, authors []Author, shares []decimal.Decimal) *AllocationResult {
	allocations := make([]AuthorAllocation, len(authors))
	distributed := decimal.Zero
	pointsDistributed := decimal.Zero
	largest := -1

	for i, a := range authors {
		alloc := AuthorAllocation{
			AuthorID:        a.ID,
			IncentiveAmount: decimal.Zero,
			Points:          decimal.Zero,
		}
		if a.IsInternal && shares[i].IsPositive() {
			alloc.IncentiveAmount = roundMoney(base.TotalAmount.Mul(shares[i]).Div(hundred))
			if !a.IsStudent {
				alloc.Points = roundPoints(base.TotalPoints.Mul(shares[i]).Div(hundred))
			}
			if largest < 0 || alloc.IncentiveAmount.GreaterThan(allocations[largest].IncentiveAmount) {
				largest = i
			}
		}
		allocations[i] = alloc
		distributed = distributed.Add(alloc.IncentiveAmount)
		pointsDistributed = pointsDistributed.Add(alloc.Points)
	}

	// Half-up rounding can overshoot the gross total by a fraction of a
	// unit. Shave the overshoot off the largest share so conservation
	// holds and forfeiture stays non-negative. Positive residue stays as
	// reported forfeiture.
	if distributed.GreaterThan(base.TotalAmount) && largest >= 0 {
		over := distributed.Sub(base.TotalAmount)
		allocations[largest].IncentiveAmount = allocations[largest].IncentiveAmount.Sub(over)
		distributed = distributed.Sub(over)
	}

	return &AllocationResult{
		Allocations:            allocations,
		TotalComputed:          base.TotalAmount,
		TotalDistributed:       distributed,
		TotalForfeited:         base.TotalAmount.Sub(distributed),
		TotalPoints:            base.TotalPoints,
		TotalPointsDistributed: pointsDistributed,
	}
}

// roundMoney rounds to the currency's smallest unit. decimal.Round is
// half-away-from-zero, which is half-up for the non-negative amounts the
// engine produces.
func roundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func roundPoints(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
