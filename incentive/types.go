/*
Package incentive provides the core incentive distribution engine.

PURPOSE:
  This package contains the types and algorithms that turn an approved
  research output (paper, book, grant, IPR filing, ...) into a monetary
  incentive and point total, and split that total across the output's
  authors under configurable distribution rules.

KEY CONCEPTS IN THIS FILE (types.go):
  - Payout: A paired monetary amount and point value
  - Contribution: The research output being incentivized
  - Author: One participant, with roles, rank, and eligibility flags
  - AllocationResult: Per-author shares plus distribution totals

DESIGN PRINCIPLES:
  1. Purity: Every entry point is a pure function of its inputs
  2. Precision: Uses decimal.Decimal to avoid floating-point errors
  3. Conservation: Distributed + forfeited always equals the computed total
  4. Auditability: Forfeitures are reported, never silently absorbed

USAGE:
  policy, err := incentive.Resolve(policies, incentive.PubResearchPaper, date)
  base, err := incentive.ComputeBaseAmount(contribution, policy)
  result, err := incentive.Distribute(base, contribution.Authors, policy.Distribution)

SEE ALSO:
  - policy.go: Policy definitions and percentage tables
  - resolver.go: Time-versioned policy resolution
  - calculator.go: Base amount computation
  - distribute.go: Author allocation arithmetic
*/
package incentive

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// PAYOUT - Monetary amount paired with a point value
// =============================================================================

// Payout couples a monetary amount with a point value. Policy tables map
// lookup keys to Payouts; the engine sums and splits them together.
type Payout struct {
	Amount decimal.Decimal
	Points decimal.Decimal
}

func NewPayout(amount, points float64) Payout {
	return Payout{
		Amount: decimal.NewFromFloat(amount),
		Points: decimal.NewFromFloat(points),
	}
}

func ZeroPayout() Payout {
	return Payout{Amount: decimal.Zero, Points: decimal.Zero}
}

func (p Payout) Add(o Payout) Payout {
	return Payout{Amount: p.Amount.Add(o.Amount), Points: p.Points.Add(o.Points)}
}

func (p Payout) MulInt(n int) Payout {
	f := decimal.NewFromInt(int64(n))
	return Payout{Amount: p.Amount.Mul(f), Points: p.Points.Mul(f)}
}

func (p Payout) IsZero() bool {
	return p.Amount.IsZero() && p.Points.IsZero()
}

// MustParseDecimal parses a decimal string, returning zero on failure.
// Intended for table literals where the input is a compile-time constant.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type AuthorID string
type PolicyID string
type ContributionID string

// =============================================================================
// PUBLICATION TYPES
// =============================================================================

// PublicationType identifies what kind of research output is being
// incentivized. Each type resolves to its own policy timeline.
type PublicationType string

const (
	PubResearchPaper   PublicationType = "research_paper"
	PubBook            PublicationType = "book"
	PubBookChapter     PublicationType = "book_chapter"
	PubConferencePaper PublicationType = "conference_paper"
	PubGrant           PublicationType = "grant"
	PubIPR             PublicationType = "ipr"
)

// KnownPublicationType reports whether t is one of the supported types.
func KnownPublicationType(t PublicationType) bool {
	switch t {
	case PubResearchPaper, PubBook, PubBookChapter, PubConferencePaper, PubGrant, PubIPR:
		return true
	}
	return false
}

// =============================================================================
// AUTHOR - One participant on a contribution
// =============================================================================

// Role is a function an author performs on a contribution. An author holds a
// SET of roles (first and corresponding may be the same person), so shares
// from multiple roles add up without special-casing in the arithmetic.
type Role string

const (
	RoleFirst         Role = "first"
	RoleCorresponding Role = "corresponding"
	RoleCoAuthor      Role = "co_author"
)

// Author is one participant on a contribution.
//
// Position is the 1-based rank among all authors in byline order.
// IsInternal distinguishes registered employees/students of the institution
// (eligible for incentives and points) from outside collaborators (never
// eligible). IsStudent suppresses points but not money.
type Author struct {
	ID         AuthorID
	Roles      []Role
	Position   int
	IsInternal bool
	IsStudent  bool
}

// HasRole reports whether the author holds the given role.
func (a Author) HasRole(r Role) bool {
	for _, role := range a.Roles {
		if role == r {
			return true
		}
	}
	return false
}

// =============================================================================
// CONTRIBUTION - The research output being incentivized
// =============================================================================

// Contribution carries the quality metadata and author list of an approved
// research output. Immutable for allocation purposes once approved.
type Contribution struct {
	ID              ContributionID
	PublicationType PublicationType

	// Quality metadata. Quartile is a discrete tier key ("Q1".."Q4",
	// "Top 1%", ...); SJR and NAASRating are continuous metrics that may
	// use range-based lookup instead.
	Quartile           string
	SJR                *decimal.Decimal
	NAASRating         *decimal.Decimal
	IndexingCategories []string

	// Flags feeding conditional bonuses.
	IsInternational      bool
	NumberOfConsortiumOrgs int
	HasBestPaperAward    bool

	// Ordered, non-empty author list in byline order.
	Authors []Author
}

// =============================================================================
// BASE RESULT - Output of the base amount calculator
// =============================================================================

// BaseResult is the gross total before distribution across authors.
type BaseResult struct {
	TotalAmount decimal.Decimal
	TotalPoints decimal.Decimal
}

// =============================================================================
// ALLOCATION RESULT - Output of the distribution engine
// =============================================================================

// AuthorAllocation is one author's computed share.
type AuthorAllocation struct {
	AuthorID        AuthorID
	IncentiveAmount decimal.Decimal
	Points          decimal.Decimal
}

// AllocationResult is the full outcome of one distribution run. The caller
// persists it alongside the approval event; the engine never stores it.
//
// Invariant: TotalForfeited == TotalComputed - TotalDistributed, and is
// never negative. Forfeiture is reported, not hidden, so finance reviewers
// can reconcile.
type AllocationResult struct {
	Allocations      []AuthorAllocation
	TotalComputed    decimal.Decimal
	TotalDistributed decimal.Decimal
	TotalForfeited   decimal.Decimal

	TotalPoints            decimal.Decimal
	TotalPointsDistributed decimal.Decimal
}
