/*
Package publication provides the research-output vocabulary and pre-built
incentive policy configurations.

PURPOSE:
  The incentive package is a pure allocation engine; this package supplies
  the domain constants the surrounding portal uses with it:
  - Quartile and tier keys (venue quality rankings)
  - Indexing category tags (Scopus, Web of Science, ...)
  - Preset policies for each publication type

QUALITY METRICS:
  Quartiles (Q1-Q4, "Top 1%", "Top 5%") are discrete tier keys looked up in
  a policy's tier table. SJR and NAAS ratings are continuous metrics that
  may use range-based lookup instead; when a policy defines a range table
  for a metric, the range lookup supersedes the tier lookup.

SEE ALSO:
  - policies.go: Preset policy configurations
  - incentive/: The engine these feed
*/
package publication

// =============================================================================
// TIER KEYS - Discrete venue quality rankings
// =============================================================================

const (
	TierTop1 = "Top 1%"
	TierTop5 = "Top 5%"
	TierQ1   = "Q1"
	TierQ2   = "Q2"
	TierQ3   = "Q3"
	TierQ4   = "Q4"
)

// =============================================================================
// INDEXING CATEGORIES
// =============================================================================

// Indexing category tags. A contribution may claim several; category
// bonuses are additive over every claimed tag.
const (
	IndexScopus  = "scopus"
	IndexWoS     = "wos"
	IndexPubMed  = "pubmed"
	IndexUGCCare = "ugc_care"
	IndexESCI    = "esci"
	IndexABDC    = "abdc"
)

// KnownIndexes lists the category tags the preset policies configure.
var KnownIndexes = []string{
	IndexScopus, IndexWoS, IndexPubMed, IndexUGCCare, IndexESCI, IndexABDC,
}
