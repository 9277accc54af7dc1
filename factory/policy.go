/*
Package factory provides JSON to Go policy conversion.

PURPOSE:
  Converts JSON policy definitions into incentive.IncentivePolicy values.
  This enables policy authoring without code changes - the research office
  defines incentive schedules in JSON, and the factory creates the proper
  Go structs. Validation of the result (percentage invariants, window
  overlap) belongs to incentive.ValidateForCreate, not here: the factory
  only shapes data.

JSON SCHEMA:
  {
    "id": "paper-2025",
    "name": "Research Paper Incentives",
    "publication_type": "research_paper",
    "valid_from": "2025-01-01",
    "valid_to": "2026-01-01",
    "tier_table": [
      {"key": "Q1", "amount": 50000, "points": 50}
    ],
    "range_tables": [
      {"metric": "sjr", "bands": [
        {"min": 0, "max": 2, "amount": 10000, "points": 10},
        {"min": 2, "amount": 30000, "points": 30}
      ]}
    ],
    "category_bonuses": {"scopus": {"amount": 5000, "points": 5}},
    "conditional_bonuses": {
      "international": 3000,
      "per_consortium_org": 500,
      "best_paper_award": 2000
    },
    "distribution": {
      "method": "role_based",
      "first_author_pct": 35,
      "corresponding_pct": 30
    }
  }

  position_based distributions carry "position_pcts": [40,25,15,12,8].

DATES:
  valid_from / valid_to use "2006-01-02" and are interpreted as UTC
  midnight; valid_to is exclusive and may be omitted for open-ended
  policies.

SEE ALSO:
  - incentive/policy.go: Target types and invariants
  - publication/policies.go: Go-based preset configurations
  - api/handlers.go: Uses this for POST /api/policies
*/
package factory

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/incentive-engine/incentive"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// PolicyJSON is the JSON representation of an incentive policy.
type PolicyJSON struct {
	ID              string                `json:"id"`
	Name            string                `json:"name"`
	PublicationType string                `json:"publication_type"`
	ValidFrom       string                `json:"valid_from"`
	ValidTo         string                `json:"valid_to,omitempty"`
	TierTable       []TierJSON            `json:"tier_table,omitempty"`
	RangeTables     []RangeTableJSON      `json:"range_tables,omitempty"`
	CategoryBonuses map[string]PayoutJSON `json:"category_bonuses,omitempty"`
	Conditional     *ConditionalJSON      `json:"conditional_bonuses,omitempty"`
	Distribution    DistributionJSON      `json:"distribution"`
	Version         int                   `json:"version,omitempty"`
}

// TierJSON is one discrete tier entry.
type TierJSON struct {
	Key    string  `json:"key"`
	Amount float64 `json:"amount"`
	Points float64 `json:"points"`
}

// RangeTableJSON is a range table for one continuous metric.
type RangeTableJSON struct {
	Metric string         `json:"metric"` // sjr, naas
	Bands  []RangeBandJSON `json:"bands"`
}

// RangeBandJSON is one [min, max) band; omit max for unbounded.
type RangeBandJSON struct {
	Min    float64  `json:"min"`
	Max    *float64 `json:"max,omitempty"`
	Amount float64  `json:"amount"`
	Points float64  `json:"points"`
}

// PayoutJSON is an amount/points pair.
type PayoutJSON struct {
	Amount float64 `json:"amount"`
	Points float64 `json:"points"`
}

// ConditionalJSON holds the flat monetary add-ons.
type ConditionalJSON struct {
	International    float64 `json:"international,omitempty"`
	PerConsortiumOrg float64 `json:"per_consortium_org,omitempty"`
	BestPaperAward   float64 `json:"best_paper_award,omitempty"`
}

// DistributionJSON selects the method and carries its percentage table.
type DistributionJSON struct {
	Method           string    `json:"method"` // role_based, position_based
	FirstAuthorPct   *float64  `json:"first_author_pct,omitempty"`
	CorrespondingPct *float64  `json:"corresponding_pct,omitempty"`
	PositionPcts     []float64 `json:"position_pcts,omitempty"`
}

// =============================================================================
// POLICY FACTORY
// =============================================================================

// PolicyFactory converts JSON policies to Go structs and back.
type PolicyFactory struct{}

// NewPolicyFactory creates a new policy factory.
func NewPolicyFactory() *PolicyFactory {
	return &PolicyFactory{}
}

// ParsePolicy parses a JSON string into an IncentivePolicy.
func (f *PolicyFactory) ParsePolicy(jsonStr string) (*incentive.IncentivePolicy, error) {
	var pj PolicyJSON
	if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
		return nil, fmt.Errorf("failed to parse policy JSON: %w", err)
	}
	return f.FromJSON(pj)
}

// FromJSON converts PolicyJSON to an IncentivePolicy.
func (f *PolicyFactory) FromJSON(pj PolicyJSON) (*incentive.IncentivePolicy, error) {
	validFrom, err := parseDate(pj.ValidFrom)
	if err != nil {
		return nil, fmt.Errorf("invalid valid_from: %w", err)
	}

	policy := &incentive.IncentivePolicy{
		ID:              incentive.PolicyID(pj.ID),
		Name:            pj.Name,
		PublicationType: incentive.PublicationType(pj.PublicationType),
		ValidFrom:       validFrom,
		Version:         pj.Version,
	}
	if policy.Version == 0 {
		policy.Version = 1
	}

	if pj.ValidTo != "" {
		validTo, err := parseDate(pj.ValidTo)
		if err != nil {
			return nil, fmt.Errorf("invalid valid_to: %w", err)
		}
		policy.ValidTo = &validTo
	}

	for _, tj := range pj.TierTable {
		policy.TierTable = append(policy.TierTable, incentive.Tier{
			Key:    tj.Key,
			Payout: incentive.NewPayout(tj.Amount, tj.Points),
		})
	}

	for _, rj := range pj.RangeTables {
		table, err := parseRangeTable(rj)
		if err != nil {
			return nil, err
		}
		policy.RangeTables = append(policy.RangeTables, table)
	}

	if len(pj.CategoryBonuses) > 0 {
		policy.CategoryBonusTable = make(map[string]incentive.Payout, len(pj.CategoryBonuses))
		for tag, payout := range pj.CategoryBonuses {
			policy.CategoryBonusTable[tag] = incentive.NewPayout(payout.Amount, payout.Points)
		}
	}

	if pj.Conditional != nil {
		policy.ConditionalBonuses = incentive.ConditionalBonuses{
			International:    decimal.NewFromFloat(pj.Conditional.International),
			PerConsortiumOrg: decimal.NewFromFloat(pj.Conditional.PerConsortiumOrg),
			BestPaperAward:   decimal.NewFromFloat(pj.Conditional.BestPaperAward),
		}
	}

	dist, err := parseDistribution(pj.Distribution)
	if err != nil {
		return nil, err
	}
	policy.Distribution = dist

	return policy, nil
}

// ToJSON converts an IncentivePolicy to PolicyJSON.
func (f *PolicyFactory) ToJSON(policy *incentive.IncentivePolicy) PolicyJSON {
	pj := PolicyJSON{
		ID:              string(policy.ID),
		Name:            policy.Name,
		PublicationType: string(policy.PublicationType),
		ValidFrom:       policy.ValidFrom.Format(dateLayout),
		Version:         policy.Version,
	}
	if policy.ValidTo != nil {
		pj.ValidTo = policy.ValidTo.Format(dateLayout)
	}

	for _, tier := range policy.TierTable {
		amount, _ := tier.Payout.Amount.Float64()
		points, _ := tier.Payout.Points.Float64()
		pj.TierTable = append(pj.TierTable, TierJSON{Key: tier.Key, Amount: amount, Points: points})
	}

	for _, rt := range policy.RangeTables {
		rj := RangeTableJSON{Metric: string(rt.Metric)}
		for _, band := range rt.Bands {
			min, _ := band.Min.Float64()
			amount, _ := band.Payout.Amount.Float64()
			points, _ := band.Payout.Points.Float64()
			bj := RangeBandJSON{Min: min, Amount: amount, Points: points}
			if band.Max != nil {
				max, _ := band.Max.Float64()
				bj.Max = &max
			}
			rj.Bands = append(rj.Bands, bj)
		}
		pj.RangeTables = append(pj.RangeTables, rj)
	}

	if len(policy.CategoryBonusTable) > 0 {
		pj.CategoryBonuses = make(map[string]PayoutJSON, len(policy.CategoryBonusTable))
		for tag, payout := range policy.CategoryBonusTable {
			amount, _ := payout.Amount.Float64()
			points, _ := payout.Points.Float64()
			pj.CategoryBonuses[tag] = PayoutJSON{Amount: amount, Points: points}
		}
	}

	international, _ := policy.ConditionalBonuses.International.Float64()
	perOrg, _ := policy.ConditionalBonuses.PerConsortiumOrg.Float64()
	award, _ := policy.ConditionalBonuses.BestPaperAward.Float64()
	if international != 0 || perOrg != 0 || award != 0 {
		pj.Conditional = &ConditionalJSON{
			International:    international,
			PerConsortiumOrg: perOrg,
			BestPaperAward:   award,
		}
	}

	pj.Distribution = DistributionJSON{Method: string(policy.Distribution.Method)}
	if rp := policy.Distribution.RolePercentages; rp != nil {
		first, _ := rp.FirstAuthorPct.Float64()
		corr, _ := rp.CorrespondingPct.Float64()
		pj.Distribution.FirstAuthorPct = &first
		pj.Distribution.CorrespondingPct = &corr
	}
	if pp := policy.Distribution.PositionPercentages; pp != nil {
		for _, pct := range pp.Ranks {
			v, _ := pct.Float64()
			pj.Distribution.PositionPcts = append(pj.Distribution.PositionPcts, v)
		}
	}

	return pj
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

const dateLayout = "2006-01-02"

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

func parseRangeTable(rj RangeTableJSON) (incentive.RangeTable, error) {
	table := incentive.RangeTable{}
	switch rj.Metric {
	case "sjr":
		table.Metric = incentive.MetricSJR
	case "naas":
		table.Metric = incentive.MetricNAAS
	default:
		return table, fmt.Errorf("unknown range metric: %s", rj.Metric)
	}

	for _, bj := range rj.Bands {
		band := incentive.RangeBand{
			Min:    decimal.NewFromFloat(bj.Min),
			Payout: incentive.NewPayout(bj.Amount, bj.Points),
		}
		if bj.Max != nil {
			max := decimal.NewFromFloat(*bj.Max)
			band.Max = &max
		}
		table.Bands = append(table.Bands, band)
	}
	return table, nil
}

func parseDistribution(dj DistributionJSON) (incentive.Distribution, error) {
	switch dj.Method {
	case "role_based":
		if dj.FirstAuthorPct == nil || dj.CorrespondingPct == nil {
			return incentive.Distribution{}, fmt.Errorf("role_based distribution requires first_author_pct and corresponding_pct")
		}
		return incentive.Distribution{
			Method: incentive.RoleBased,
			RolePercentages: &incentive.RolePercentages{
				FirstAuthorPct:   decimal.NewFromFloat(*dj.FirstAuthorPct),
				CorrespondingPct: decimal.NewFromFloat(*dj.CorrespondingPct),
			},
		}, nil

	case "position_based":
		if len(dj.PositionPcts) != 5 {
			return incentive.Distribution{}, fmt.Errorf("position_based distribution requires exactly 5 position_pcts, got %d", len(dj.PositionPcts))
		}
		pp := &incentive.PositionPercentages{}
		for i, v := range dj.PositionPcts {
			pp.Ranks[i] = decimal.NewFromFloat(v)
		}
		return incentive.Distribution{
			Method:              incentive.PositionBased,
			PositionPercentages: pp,
		}, nil

	default:
		return incentive.Distribution{}, fmt.Errorf("unknown distribution method: %s", dj.Method)
	}
}
