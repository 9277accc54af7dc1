/*
resolver.go - Time-versioned policy resolution

PURPOSE:
  Selects the single policy version applicable to a publication type and
  reference date, and enforces the non-overlap invariant when policies are
  authored. Resolution is read-only and side-effect free.

INVARIANT:
  At most one policy may be active for a given (publicationType, date).
  The write-time check (ValidateForCreate) is the ONLY place overlap is
  enforced; by the time Resolve runs, the policy set is assumed consistent.
  If the set is nonetheless ambiguous (two windows containing the date),
  Resolve picks the latest ValidFrom deterministically rather than failing,
  since allocation must stay reproducible for reconciliation audits.

REFERENCE DATE:
  Whether the submission date or the approval date is used is the caller's
  decision. The resolver only sees a time.Time.

SEE ALSO:
  - policy.go: Window and percentage invariants
  - store/sqlite: Persists versions; calls ValidateForCreate before insert
*/
package incentive

import (
	"time"
)

// Resolve returns the unique policy whose validity window contains the
// reference date for the given publication type.
func Resolve(policies []*IncentivePolicy, pubType PublicationType, referenceDate time.Time) (*IncentivePolicy, error) {
	var match *IncentivePolicy
	for _, p := range policies {
		if p.PublicationType != pubType || !p.ActiveAt(referenceDate) {
			continue
		}
		if match == nil || p.ValidFrom.After(match.ValidFrom) {
			match = p
		}
	}
	if match == nil {
		return nil, &PolicyNotFoundError{PublicationType: pubType, ReferenceDate: referenceDate}
	}
	return match, nil
}

// ValidateForCreate checks a candidate policy against its own invariants and
// against the existing policy set. Invoked when policies are authored, not
// during resolution. Rejects:
//   - percentage tables violating their invariants (policy.Validate)
//   - validity windows overlapping an existing policy of the same type
func ValidateForCreate(existing []*IncentivePolicy, candidate *IncentivePolicy) error {
	if err := candidate.Validate(); err != nil {
		return err
	}
	for _, p := range existing {
		if p.PublicationType != candidate.PublicationType || p.ID == candidate.ID {
			continue
		}
		if candidate.Overlaps(p) {
			return &PolicyOverlapError{
				PublicationType: candidate.PublicationType,
				ExistingID:      p.ID,
			}
		}
	}
	return nil
}
