/*
calculator.go - Base amount computation

PURPOSE:
  Turns a contribution's quality metadata into a gross monetary total and
  point total using the resolved policy's tables. Pure function; the output
  feeds the author distribution engine.

ALGORITHM:
  1. Quality lookup:
     - If the policy defines a range table for a metric the contribution
       carries (SJR, NAAS rating), look up the containing band. A value
       outside every band is NoMatchingRange - never a silent default.
     - Otherwise fall back to tier lookup by quartile.
     - No quartile and no usable range metric is IncompleteMetadata.
  2. Category bonuses: sum the bonus for EVERY claimed indexing category
     (additive, not maximal - three categories means three bonuses).
  3. Conditional bonuses: international, per-consortium-org (multiplied by
     the org count), best-paper award. Money only.

POINTS:
  totalPoints = quality points + category points. Conditional bonuses never
  carry points - points are a research-quality measure, not a payout.

SEE ALSO:
  - policy.go: Table definitions
  - distribute.go: Consumes the BaseResult
*/
package incentive

import (
	"github.com/shopspring/decimal"
)

// ComputeBaseAmount computes the gross payout for a contribution under a
// resolved policy.
func ComputeBaseAmount(c *Contribution, policy *IncentivePolicy) (BaseResult, error) {
	quality, err := qualityPayout(c, policy)
	if err != nil {
		return BaseResult{}, err
	}

	total := quality
	for _, category := range c.IndexingCategories {
		if bonus, ok := policy.CategoryBonusTable[category]; ok {
			total = total.Add(bonus)
		}
	}

	amount := total.Amount
	if c.IsInternational {
		amount = amount.Add(policy.ConditionalBonuses.International)
	}
	if c.NumberOfConsortiumOrgs > 0 {
		amount = amount.Add(policy.ConditionalBonuses.PerConsortiumOrg.
			Mul(decimal.NewFromInt(int64(c.NumberOfConsortiumOrgs))))
	}
	if c.HasBestPaperAward {
		amount = amount.Add(policy.ConditionalBonuses.BestPaperAward)
	}

	return BaseResult{TotalAmount: amount, TotalPoints: total.Points}, nil
}

// qualityPayout performs the range-or-tier lookup. Range tables supersede
// the tier table for their metric when the contribution carries a value.
func qualityPayout(c *Contribution, policy *IncentivePolicy) (Payout, error) {
	for _, rt := range policy.RangeTables {
		value := metricValue(c, rt.Metric)
		if value == nil {
			continue
		}
		for _, band := range rt.Bands {
			if band.Contains(*value) {
				return band.Payout, nil
			}
		}
		return Payout{}, &NoMatchingRangeError{Metric: rt.Metric, Value: *value}
	}

	if c.Quartile != "" {
		for _, tier := range policy.TierTable {
			if tier.Key == c.Quartile {
				return tier.Payout, nil
			}
		}
		return Payout{}, &IncompleteMetadataError{
			ContributionID: c.ID,
			Missing:        "tier table entry for quartile " + c.Quartile,
		}
	}

	return Payout{}, &IncompleteMetadataError{
		ContributionID: c.ID,
		Missing:        "quartile or range metric value",
	}
}

func metricValue(c *Contribution, m RangeMetric) *decimal.Decimal {
	switch m {
	case MetricSJR:
		return c.SJR
	case MetricNAAS:
		return c.NAASRating
	}
	return nil
}
