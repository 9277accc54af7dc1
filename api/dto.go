/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's decimal-based domain model from the external API contract:
  amounts cross the wire as strings so clients never see float artifacts.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Policies:
    PolicyDTO (wraps factory.PolicyJSON)

  Allocations:
    ContributionRequest, AuthorRequest, AllocationResultDTO,
    AuthorAllocationDTO, ApprovalDTO

VALIDATION:
  Validation is done in handlers and the engine, not in DTOs. DTOs are
  pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/policy.go: PolicyJSON type
*/
package api

import (
	"github.com/shopspring/decimal"
	"github.com/warp/incentive-engine/factory"
	"github.com/warp/incentive-engine/incentive"
)

// =============================================================================
// POLICY TYPES
// =============================================================================

// PolicyDTO represents a policy version in API responses.
type PolicyDTO struct {
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	PublicationType string             `json:"publication_type"`
	Config          factory.PolicyJSON `json:"config"`
	Version         int                `json:"version"`
}

// =============================================================================
// CONTRIBUTION / ALLOCATION TYPES
// =============================================================================

// AuthorRequest is one author entry supplied by the workflow layer, in
// byline order.
type AuthorRequest struct {
	ID         string   `json:"id"`
	Roles      []string `json:"roles,omitempty"`
	Position   int      `json:"position"`
	IsInternal bool     `json:"is_internal"`
	IsStudent  bool     `json:"is_student,omitempty"`
}

// ContributionRequest carries the contribution metadata and author list
// assembled from the stored filing record.
type ContributionRequest struct {
	ContributionID     string          `json:"contribution_id"`
	PublicationType    string          `json:"publication_type"`
	ReferenceDate      string          `json:"reference_date,omitempty"` // 2006-01-02; defaults to today
	Quartile           string          `json:"quartile,omitempty"`
	SJR                *float64        `json:"sjr,omitempty"`
	NAASRating         *float64        `json:"naas_rating,omitempty"`
	IndexingCategories []string        `json:"indexing_categories,omitempty"`
	IsInternational    bool            `json:"is_international,omitempty"`
	ConsortiumOrgs     int             `json:"consortium_orgs,omitempty"`
	HasBestPaperAward  bool            `json:"has_best_paper_award,omitempty"`
	Authors            []AuthorRequest `json:"authors"`
}

// AuthorAllocationDTO is one author's computed share.
type AuthorAllocationDTO struct {
	AuthorID        string `json:"author_id"`
	IncentiveAmount string `json:"incentive_amount"`
	Points          string `json:"points"`
}

// AllocationResultDTO is the full distribution outcome.
type AllocationResultDTO struct {
	PolicyID         string                `json:"policy_id"`
	Allocations      []AuthorAllocationDTO `json:"allocations"`
	TotalComputed    string                `json:"total_computed"`
	TotalDistributed string                `json:"total_distributed"`
	TotalForfeited   string                `json:"total_forfeited"`
	TotalPoints      string                `json:"total_points"`
}

// ApprovalDTO is a persisted approval event.
type ApprovalDTO struct {
	ID              string               `json:"id"`
	ContributionID  string               `json:"contribution_id"`
	PublicationType string               `json:"publication_type"`
	ReferenceDate   string               `json:"reference_date"`
	Allocation      *AllocationResultDTO `json:"allocation,omitempty"`
	FlaggedReason   string               `json:"flagged_reason,omitempty"`
	CreatedAt       string               `json:"created_at"`
}

// ErrorResponse is the standard error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toContribution(req ContributionRequest) *incentive.Contribution {
	c := &incentive.Contribution{
		ID:                     incentive.ContributionID(req.ContributionID),
		PublicationType:        incentive.PublicationType(req.PublicationType),
		Quartile:               req.Quartile,
		IndexingCategories:     req.IndexingCategories,
		IsInternational:        req.IsInternational,
		NumberOfConsortiumOrgs: req.ConsortiumOrgs,
		HasBestPaperAward:      req.HasBestPaperAward,
	}
	if req.SJR != nil {
		sjr := decimal.NewFromFloat(*req.SJR)
		c.SJR = &sjr
	}
	if req.NAASRating != nil {
		naas := decimal.NewFromFloat(*req.NAASRating)
		c.NAASRating = &naas
	}
	for _, a := range req.Authors {
		author := incentive.Author{
			ID:         incentive.AuthorID(a.ID),
			Position:   a.Position,
			IsInternal: a.IsInternal,
			IsStudent:  a.IsStudent,
		}
		for _, r := range a.Roles {
			author.Roles = append(author.Roles, incentive.Role(r))
		}
		c.Authors = append(c.Authors, author)
	}
	return c
}

func toAllocationDTO(policyID incentive.PolicyID, result *incentive.AllocationResult) *AllocationResultDTO {
	dto := &AllocationResultDTO{
		PolicyID:         string(policyID),
		TotalComputed:    result.TotalComputed.String(),
		TotalDistributed: result.TotalDistributed.String(),
		TotalForfeited:   result.TotalForfeited.String(),
		TotalPoints:      result.TotalPoints.String(),
	}
	for _, a := range result.Allocations {
		dto.Allocations = append(dto.Allocations, AuthorAllocationDTO{
			AuthorID:        string(a.AuthorID),
			IncentiveAmount: a.IncentiveAmount.String(),
			Points:          a.Points.String(),
		})
	}
	return dto
}
