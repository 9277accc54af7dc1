/*
errors.go - Centralized error types for the incentive engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers (approval workflow, admin API) branch on these to decide whether
  a failure blocks the approval transition or is recorded as a null
  allocation pending manual follow-up.

ERROR CATEGORIES:
  1. Resolution errors   - No active policy for a type/date (non-fatal)
  2. Calculation errors  - Contribution lacks data the policy needs (non-fatal)
  3. Allocation errors   - Malformed author set (fatal, blocks approval)
  4. Authoring errors    - Overlapping windows, bad percentages (fatal at
                           the administrative boundary, never reach the engine)

USAGE:
  if errors.Is(err, incentive.ErrPolicyNotFound) {
      // proceed with a null allocation, flag for manual handling
  }

SEE ALSO:
  - resolver.go: Uses resolution and authoring errors
  - calculator.go: Uses calculation errors
  - distribute.go: Uses allocation errors
*/
package incentive

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrPolicyNotFound is returned when no policy window contains the
	// reference date for the publication type. Non-fatal: the caller may
	// proceed with a null allocation.
	ErrPolicyNotFound = errors.New("no active incentive policy")

	// ErrIncompleteMetadata is returned when the contribution lacks the
	// data the policy's lookup needs (e.g. no quartile and no range metric).
	ErrIncompleteMetadata = errors.New("incomplete contribution metadata")

	// ErrNoMatchingRange is returned when a range-table metric value falls
	// outside every configured band. This is never silently defaulted.
	ErrNoMatchingRange = errors.New("value outside all configured ranges")

	// ErrInvalidAuthorSet is returned for malformed author lists. Fatal:
	// a partial allocation would be worse than none.
	ErrInvalidAuthorSet = errors.New("invalid author set")

	// ErrPolicyOverlap is returned at authoring time when a candidate
	// policy's validity window intersects an existing policy of the same
	// publication type.
	ErrPolicyOverlap = errors.New("policy validity window overlaps existing policy")

	// ErrInvalidPercentages is returned at authoring time when a percentage
	// table violates its invariants.
	ErrInvalidPercentages = errors.New("invalid percentage configuration")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// PolicyNotFoundError reports which lookup failed.
type PolicyNotFoundError struct {
	PublicationType PublicationType
	ReferenceDate   time.Time
}

func (e *PolicyNotFoundError) Error() string {
	return fmt.Sprintf("no active policy for %s at %s",
		e.PublicationType, e.ReferenceDate.Format("2006-01-02"))
}

func (e *PolicyNotFoundError) Unwrap() error { return ErrPolicyNotFound }

// IncompleteMetadataError names the metadata the policy needed.
type IncompleteMetadataError struct {
	ContributionID ContributionID
	Missing        string
}

func (e *IncompleteMetadataError) Error() string {
	return fmt.Sprintf("contribution %s: missing %s", e.ContributionID, e.Missing)
}

func (e *IncompleteMetadataError) Unwrap() error { return ErrIncompleteMetadata }

// NoMatchingRangeError reports the out-of-range metric value.
type NoMatchingRangeError struct {
	Metric RangeMetric
	Value  decimal.Decimal
}

func (e *NoMatchingRangeError) Error() string {
	return fmt.Sprintf("%s value %s outside all configured ranges", e.Metric, e.Value)
}

func (e *NoMatchingRangeError) Unwrap() error { return ErrNoMatchingRange }

// InvalidAuthorSetError reports why an author list was rejected.
type InvalidAuthorSetError struct {
	Reason string
}

func (e *InvalidAuthorSetError) Error() string {
	return "invalid author set: " + e.Reason
}

func (e *InvalidAuthorSetError) Unwrap() error { return ErrInvalidAuthorSet }

// PolicyOverlapError reports the conflicting policy.
type PolicyOverlapError struct {
	PublicationType PublicationType
	ExistingID      PolicyID
}

func (e *PolicyOverlapError) Error() string {
	return fmt.Sprintf("validity window for %s overlaps policy %s",
		e.PublicationType, e.ExistingID)
}

func (e *PolicyOverlapError) Unwrap() error { return ErrPolicyOverlap }

// PercentageError reports a percentage-table invariant violation.
type PercentageError struct {
	Reason string
	Sum    decimal.Decimal
}

func (e *PercentageError) Error() string {
	if e.Sum.IsZero() {
		return e.Reason
	}
	return fmt.Sprintf("%s (sum: %s)", e.Reason, e.Sum)
}

func (e *PercentageError) Unwrap() error { return ErrInvalidPercentages }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNonFatal returns true if the caller may record a null allocation and
// proceed with the approval, surfacing the condition for manual follow-up.
func IsNonFatal(err error) bool {
	return errors.Is(err, ErrPolicyNotFound) ||
		errors.Is(err, ErrIncompleteMetadata) ||
		errors.Is(err, ErrNoMatchingRange)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidAuthorSet) ||
		errors.Is(err, ErrInvalidPercentages)
}

// IsNotFound returns true if the error indicates a missing policy.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPolicyNotFound)
}
