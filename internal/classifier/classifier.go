// Package classifier normalizes findings from an external sensitive-data
// classifier into the category vocabulary the policy evaluator understands.
// The mapping is a static, reviewable table; nothing here calls the vendor.
package classifier

import (
	"sort"

	"custodia/internal/consent/models"
)

// Likelihood is the classifier's ordinal confidence in a finding.
type Likelihood int

const (
	LikelihoodUnspecified Likelihood = iota
	LikelihoodVeryUnlikely
	LikelihoodUnlikely
	LikelihoodPossible
	LikelihoodLikely
	LikelihoodVeryLikely
)

// String returns the vendor-style name for the likelihood.
func (l Likelihood) String() string {
	switch l {
	case LikelihoodVeryUnlikely:
		return "VERY_UNLIKELY"
	case LikelihoodUnlikely:
		return "UNLIKELY"
	case LikelihoodPossible:
		return "POSSIBLE"
	case LikelihoodLikely:
		return "LIKELY"
	case LikelihoodVeryLikely:
		return "VERY_LIKELY"
	default:
		return "LIKELIHOOD_UNSPECIFIED"
	}
}

// Finding is one located instance of sensitive data in scanned content, still
// in the vendor's shape. Findings are ephemeral: they live in scan reports,
// never in durable policy state.
type Finding struct {
	// Type is the vendor's info-type name, e.g. "EMAIL_ADDRESS".
	Type string `json:"type"`
	// Quote is the matched excerpt.
	Quote string `json:"quote,omitempty"`
	// Likelihood is the vendor's confidence.
	Likelihood Likelihood `json:"likelihood"`
	// Source identifies where the finding came from (file or blob name).
	Source string `json:"source,omitempty"`
}

// Adapter maps vendor info-type names onto the category vocabulary.
type Adapter struct {
	mapping map[string]models.Category
}

// NewAdapter builds an adapter from an explicit type mapping table. The table
// is copied; later mutation of the argument has no effect.
func NewAdapter(mapping map[string]models.Category) *Adapter {
	copied := make(map[string]models.Category, len(mapping))
	for vendorType, category := range mapping {
		copied[vendorType] = category
	}
	return &Adapter{mapping: copied}
}

// Normalize maps findings onto categories, de-duplicated and sorted for
// deterministic output. Vendor types missing from the table land in
// models.CategoryUnknown instead of being silently dropped, so policy gaps
// stay observable.
func (a *Adapter) Normalize(findings []Finding) []models.Category {
	seen := make(map[models.Category]struct{}, len(findings))
	for _, finding := range findings {
		category, ok := a.mapping[finding.Type]
		if !ok {
			category = models.CategoryUnknown
		}
		seen[category] = struct{}{}
	}

	categories := make([]models.Category, 0, len(seen))
	for category := range seen {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })
	return categories
}
