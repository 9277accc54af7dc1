/*
handlers.go - HTTP API handlers for the incentive engine

PURPOSE:
  Exposes the incentive distribution engine to the approval workflow.
  Handles HTTP request/response, JSON serialization, and delegates to the
  pure engine functions plus the sqlite store.

ENDPOINTS:
  Policies:
    GET    /api/policies                 List policy versions
    POST   /api/policies                 Author a new version (validated)
    GET    /api/policies/{id}            Get one version
    GET    /api/policies/resolve         Resolve active version for type/date

  Allocations:
    POST   /api/allocations/preview      Compute without persisting
    POST   /api/approvals                Compute and persist atomically
    GET    /api/approvals/{id}           Read back for finance views

  Scenarios:
    GET    /api/scenarios                List demo scenarios
    POST   /api/scenarios/load           Load a demo scenario

ERROR HANDLING:
  - 400: Invalid author sets, malformed input (blocks the approval)
  - 404: Missing policy/approval
  - 409: Policy window overlap at authoring time
  - 500: Internal errors

  Non-fatal engine failures (no active policy, incomplete metadata, value
  outside all ranges) do NOT fail POST /api/approvals: the approval is
  recorded with a null allocation and a flagged_reason for manual
  follow-up, matching the product's observed behavior.

SECURITY NOTE:
  No authentication middleware. The portal fronting this service owns
  authn/authz.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - scenarios.go: Demo scenario loaders
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/warp/incentive-engine/factory"
	"github.com/warp/incentive-engine/incentive"
	"github.com/warp/incentive-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store         *sqlite.Store
	PolicyFactory *factory.PolicyFactory
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{
		Store:         store,
		PolicyFactory: factory.NewPolicyFactory(),
	}
}

// =============================================================================
// POLICY HANDLERS
// =============================================================================

// ListPolicies returns every stored policy version, optionally filtered by
// ?type=.
func (h *Handler) ListPolicies(w http.ResponseWriter, r *http.Request) {
	pubType := incentive.PublicationType(r.URL.Query().Get("type"))

	policies, err := h.Store.ListPolicies(r.Context(), pubType)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list policies", err)
		return
	}

	dtos := make([]PolicyDTO, 0, len(policies))
	for _, p := range policies {
		dtos = append(dtos, h.policyDTO(p))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetPolicy returns one policy version.
func (h *Handler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	id := incentive.PolicyID(chi.URLParam(r, "id"))

	policy, err := h.Store.GetPolicy(r.Context(), id)
	if err != nil {
		if incentive.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "policy not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load policy", err)
		return
	}
	writeJSON(w, http.StatusOK, h.policyDTO(policy))
}

// CreatePolicy authors a new policy version from a JSON document. This is
// the administrative write boundary: overlapping validity windows and bad
// percentage tables are rejected here and never reach the engine.
func (h *Handler) CreatePolicy(w http.ResponseWriter, r *http.Request) {
	var pj factory.PolicyJSON
	if err := json.NewDecoder(r.Body).Decode(&pj); err != nil {
		writeError(w, http.StatusBadRequest, "invalid policy JSON", err)
		return
	}

	policy, err := h.PolicyFactory.FromJSON(pj)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid policy configuration", err)
		return
	}

	if err := h.Store.CreatePolicy(r.Context(), policy); err != nil {
		switch {
		case errors.Is(err, incentive.ErrPolicyOverlap):
			writeError(w, http.StatusConflict, "validity window overlaps an existing policy", err)
		case errors.Is(err, incentive.ErrInvalidPercentages):
			writeError(w, http.StatusBadRequest, "invalid percentage configuration", err)
		default:
			writeError(w, http.StatusInternalServerError, "failed to save policy", err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, h.policyDTO(policy))
}

// ResolvePolicy resolves the active version for ?type= and ?date=.
func (h *Handler) ResolvePolicy(w http.ResponseWriter, r *http.Request) {
	pubType := incentive.PublicationType(r.URL.Query().Get("type"))
	referenceDate, err := parseReferenceDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date", err)
		return
	}

	policy, err := h.Store.ResolvePolicy(r.Context(), pubType, referenceDate)
	if err != nil {
		if incentive.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "no active policy", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to resolve policy", err)
		return
	}
	writeJSON(w, http.StatusOK, h.policyDTO(policy))
}

// =============================================================================
// ALLOCATION HANDLERS
// =============================================================================

// PreviewAllocation runs the full pipeline (resolve, compute, distribute)
// without persisting anything. Used by the portal to show reviewers the
// projected split before approval.
func (h *Handler) PreviewAllocation(w http.ResponseWriter, r *http.Request) {
	var req ContributionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	referenceDate, err := parseReferenceDate(req.ReferenceDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid reference_date", err)
		return
	}

	policyID, result, err := h.computeAllocation(r, req, referenceDate)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAllocationDTO(policyID, result))
}

// ApproveContribution runs the pipeline and persists the approval together
// with its allocation as one atomic unit. Non-fatal engine failures record
// a flagged approval with a null allocation instead of failing the
// transition; InvalidAuthorSet blocks it.
func (h *Handler) ApproveContribution(w http.ResponseWriter, r *http.Request) {
	var req ContributionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	referenceDate, err := parseReferenceDate(req.ReferenceDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid reference_date", err)
		return
	}

	record := sqlite.ApprovalRecord{
		ID:              fmt.Sprintf("appr-%s-%d", req.ContributionID, time.Now().UnixNano()),
		ContributionID:  incentive.ContributionID(req.ContributionID),
		PublicationType: incentive.PublicationType(req.PublicationType),
		ReferenceDate:   referenceDate,
	}

	policyID, result, err := h.computeAllocation(r, req, referenceDate)
	switch {
	case err == nil:
		record.PolicyID = policyID
		record.Result = result
	case incentive.IsNonFatal(err):
		record.FlaggedReason = err.Error()
	default:
		writeEngineError(w, err)
		return
	}

	if err := h.Store.SaveApproval(r.Context(), record); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to persist approval", err)
		return
	}
	writeJSON(w, http.StatusCreated, h.approvalDTO(&record))
}

// GetApproval returns a persisted approval for finance/reporting views.
func (h *Handler) GetApproval(w http.ResponseWriter, r *http.Request) {
	record, err := h.Store.GetApproval(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, sqlite.ErrApprovalNotFound) {
			writeError(w, http.StatusNotFound, "approval not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load approval", err)
		return
	}
	writeJSON(w, http.StatusOK, h.approvalDTO(record))
}

// computeAllocation is the engine pipeline shared by preview and approval:
// resolve the policy, compute the base amount, distribute across authors.
func (h *Handler) computeAllocation(r *http.Request, req ContributionRequest, referenceDate time.Time) (incentive.PolicyID, *incentive.AllocationResult, error) {
	contribution := toContribution(req)
	policy, err := h.Store.ResolvePolicy(r.Context(), contribution.PublicationType, referenceDate)
	if err != nil {
		return "", nil, err
	}

	base, err := incentive.ComputeBaseAmount(contribution, policy)
	if err != nil {
		return "", nil, err
	}

	result, err := incentive.Distribute(base, contribution.Authors, policy.Distribution)
	if err != nil {
		return "", nil, err
	}
	return policy.ID, result, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) policyDTO(p *incentive.IncentivePolicy) PolicyDTO {
	return PolicyDTO{
		ID:              string(p.ID),
		Name:            p.Name,
		PublicationType: string(p.PublicationType),
		Config:          h.PolicyFactory.ToJSON(p),
		Version:         p.Version,
	}
}

func (h *Handler) approvalDTO(record *sqlite.ApprovalRecord) ApprovalDTO {
	dto := ApprovalDTO{
		ID:              record.ID,
		ContributionID:  string(record.ContributionID),
		PublicationType: string(record.PublicationType),
		ReferenceDate:   record.ReferenceDate.Format("2006-01-02"),
		FlaggedReason:   record.FlaggedReason,
		CreatedAt:       record.CreatedAt.Format(time.RFC3339),
	}
	if record.Result != nil {
		dto.Allocation = toAllocationDTO(record.PolicyID, record.Result)
	}
	return dto
}

// parseReferenceDate parses a 2006-01-02 date, defaulting to the current
// UTC day when empty. Which date to use (submission vs approval) is the
// workflow layer's decision; empty means "approve now".
func parseReferenceDate(s string) (time.Time, error) {
	if s == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse("2006-01-02", s)
}

func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case incentive.IsNotFound(err):
		writeError(w, http.StatusNotFound, "no active policy", err)
	case errors.Is(err, incentive.ErrIncompleteMetadata), errors.Is(err, incentive.ErrNoMatchingRange):
		writeError(w, http.StatusUnprocessableEntity, "contribution metadata insufficient for policy", err)
	case incentive.IsClientError(err):
		writeError(w, http.StatusBadRequest, "invalid input", err)
	default:
		writeError(w, http.StatusInternalServerError, "allocation failed", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
