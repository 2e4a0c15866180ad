package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"custodia/internal/consent/models"
)

func testAdapter() *Adapter {
	return NewAdapter(map[string]models.Category{
		"EMAIL_ADDRESS":      "email",
		"PERSON_NAME":        "person_name",
		"CREDIT_CARD_NUMBER": "credit_card",
	})
}

func TestNormalize_MapsKnownTypes(t *testing.T) {
	categories := testAdapter().Normalize([]Finding{
		{Type: "EMAIL_ADDRESS", Quote: "a@example.com", Likelihood: LikelihoodVeryLikely},
		{Type: "CREDIT_CARD_NUMBER", Likelihood: LikelihoodLikely},
	})

	assert.Equal(t, []models.Category{"credit_card", "email"}, categories)
}

func TestNormalize_UnknownTypeGoesToUnknownBucket(t *testing.T) {
	categories := testAdapter().Normalize([]Finding{
		{Type: "SSN", Likelihood: LikelihoodPossible},
	})

	assert.Equal(t, []models.Category{models.CategoryUnknown}, categories,
		"unmapped vendor types must surface, not vanish")
}

func TestNormalize_DeduplicatesAndSorts(t *testing.T) {
	categories := testAdapter().Normalize([]Finding{
		{Type: "EMAIL_ADDRESS"},
		{Type: "EMAIL_ADDRESS"},
		{Type: "PERSON_NAME"},
		{Type: "UNMAPPED_A"},
		{Type: "UNMAPPED_B"},
	})

	assert.Equal(t, []models.Category{"email", "person_name", models.CategoryUnknown}, categories)
}

func TestNormalize_EmptyInput(t *testing.T) {
	assert.Empty(t, testAdapter().Normalize(nil))
}

func TestLikelihoodString(t *testing.T) {
	assert.Equal(t, "VERY_LIKELY", LikelihoodVeryLikely.String())
	assert.Equal(t, "LIKELIHOOD_UNSPECIFIED", LikelihoodUnspecified.String())
}
