/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:
  Provides pre-built scenarios that populate the database with realistic
  policy schedules and sample approvals for demos and manual testing.

AVAILABLE SCENARIOS:
  standard-schedule:  One preset policy per publication type
  policy-transition:  Two sequential paper policy versions, so resolution
                      by date can be demonstrated across the boundary
  sample-approvals:   Standard schedule plus a few persisted approvals
                      (multi-author paper, flagged book with no metadata)

NOTE:
  Scenario loading writes into the live database. Only use in
  development/demo environments.

SEE ALSO:
  - handlers.go: Shares the Handler context
  - publication/policies.go: The presets loaded here
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/warp/incentive-engine/incentive"
	"github.com/warp/incentive-engine/publication"
	"github.com/warp/incentive-engine/store/sqlite"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

// Scenario describes one loadable demo dataset.
type Scenario struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var scenarios = []Scenario{
	{
		ID:          "standard-schedule",
		Name:        "Standard Schedule",
		Description: "One preset incentive policy per publication type, effective 2025-01-01",
	},
	{
		ID:          "policy-transition",
		Name:        "Policy Transition",
		Description: "Sequential research-paper policy versions for 2024 and 2025",
	},
	{
		ID:          "sample-approvals",
		Name:        "Sample Approvals",
		Description: "Standard schedule plus persisted example approvals",
	},
}

// ListScenarios returns the available demo scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// LoadScenario populates the database with the requested scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	var err error
	switch req.ScenarioID {
	case "standard-schedule":
		err = h.loadStandardSchedule(r.Context())
	case "policy-transition":
		err = h.loadPolicyTransition(r.Context())
	case "sample-approvals":
		err = h.loadSampleApprovals(r.Context())
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown scenario: %s", req.ScenarioID), nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load scenario", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"loaded": req.ScenarioID})
}

// =============================================================================
// LOADERS
// =============================================================================

func (h *Handler) loadStandardSchedule(ctx context.Context) error {
	validFrom := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	for _, policy := range publication.StandardSchedule(validFrom) {
		if err := h.Store.CreatePolicy(ctx, policy); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadPolicyTransition(ctx context.Context) error {
	boundary := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

	v1 := publication.ResearchPaperPolicy("paper-2024",
		time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC))
	v1.ValidTo = &boundary
	if err := h.Store.CreatePolicy(ctx, v1); err != nil {
		return err
	}

	v2 := publication.ResearchPaperPolicyWithSJR("paper-2025", boundary)
	v2.Version = 2
	return h.Store.CreatePolicy(ctx, v2)
}

func (h *Handler) loadSampleApprovals(ctx context.Context) error {
	if err := h.loadStandardSchedule(ctx); err != nil {
		return err
	}

	referenceDate := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	policy, err := h.Store.ResolvePolicy(ctx, incentive.PubResearchPaper, referenceDate)
	if err != nil {
		return err
	}

	contribution := &incentive.Contribution{
		ID:                 "demo-paper-1",
		PublicationType:    incentive.PubResearchPaper,
		Quartile:           publication.TierQ1,
		IndexingCategories: []string{publication.IndexScopus, publication.IndexWoS},
		Authors: []incentive.Author{
			{ID: "prof-rao", Roles: []incentive.Role{incentive.RoleFirst}, Position: 1, IsInternal: true},
			{ID: "prof-iyer", Roles: []incentive.Role{incentive.RoleCorresponding}, Position: 2, IsInternal: true},
			{ID: "phd-mehta", Roles: []incentive.Role{incentive.RoleCoAuthor}, Position: 3, IsInternal: true, IsStudent: true},
			{ID: "ext-collab", Roles: []incentive.Role{incentive.RoleCoAuthor}, Position: 4, IsInternal: false},
		},
	}

	base, err := incentive.ComputeBaseAmount(contribution, policy)
	if err != nil {
		return err
	}
	result, err := incentive.Distribute(base, contribution.Authors, policy.Distribution)
	if err != nil {
		return err
	}

	if err := h.Store.SaveApproval(ctx, sqlite.ApprovalRecord{
		ID:              "appr-demo-1",
		ContributionID:  contribution.ID,
		PublicationType: contribution.PublicationType,
		ReferenceDate:   referenceDate,
		PolicyID:        policy.ID,
		Result:          result,
	}); err != nil {
		return err
	}

	// A flagged approval: book filing with no quartile recorded.
	return h.Store.SaveApproval(ctx, sqlite.ApprovalRecord{
		ID:              "appr-demo-2",
		ContributionID:  "demo-book-1",
		PublicationType: incentive.PubBook,
		ReferenceDate:   referenceDate,
		FlaggedReason:   "incomplete contribution metadata: missing quartile or range metric value",
	})
}
