package constraint

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stylematch/recommend/models"
	"stylematch/recommend/vocab"
)

func TestNormalize(t *testing.T) {
	c, err := Normalize(models.ConstraintInput{
		Occasion:        "business meeting",
		BudgetMin:       200,
		BudgetMax:       500,
		PreferredColors: []string{" Navy Blue", "navy", "GREY"},
		PreferredBrands: []string{"Nike, Zara", " zara ", "H&M"},
		ExcludedBrands:  []string{"h&m"},
		Notes:           "  comfortable shoes  ",
	})
	require.NoError(t, err)

	assert.Equal(t, vocab.OccasionBusiness, c.Occasion)
	assert.Equal(t, []string{"gray", "navy"}, c.PreferredColors)
	assert.Equal(t, []string{"nike", "zara"}, c.PreferredBrands)
	assert.Equal(t, []string{"h&m"}, c.ExcludedBrands)
	assert.Equal(t, "comfortable shoes", c.Notes)
}

func TestNormalizeRejectsBadBudgets(t *testing.T) {
	cases := []struct {
		name     string
		min, max float64
	}{
		{"inverted", 500, 200},
		{"negative", -1, 100},
		{"nan", math.NaN(), 100},
		{"inf", 0, math.Inf(1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Normalize(models.ConstraintInput{Occasion: "Workout", BudgetMin: tc.min, BudgetMax: tc.max})
			assert.ErrorIs(t, err, models.ErrInvalidConstraint)
		})
	}
}

func TestNormalizeAcceptsEqualBudgets(t *testing.T) {
	c, err := Normalize(models.ConstraintInput{Occasion: "Workout", BudgetMin: 100, BudgetMax: 100})
	require.NoError(t, err)
	assert.Equal(t, 100.0, c.BudgetMax)
}

func TestNormalizeOccasion(t *testing.T) {
	_, err := Normalize(models.ConstraintInput{Occasion: "Beach Party", BudgetMax: 100})
	assert.ErrorIs(t, err, models.ErrInvalidConstraint)

	_, err = Normalize(models.ConstraintInput{Occasion: "", Custom: true, BudgetMax: 100})
	assert.ErrorIs(t, err, models.ErrInvalidConstraint)

	c, err := Normalize(models.ConstraintInput{Occasion: "Beach Party", Custom: true, BudgetMax: 100})
	require.NoError(t, err)
	assert.Equal(t, vocab.OccasionCustom, c.Occasion)
	assert.Equal(t, "Beach Party", c.CustomOccasion)

	c, err = Normalize(models.ConstraintInput{Occasion: "Other", BudgetMax: 100})
	require.NoError(t, err)
	assert.Equal(t, vocab.OccasionOther, c.Occasion)
}

func TestContains(t *testing.T) {
	set := []string{"nike", "zara"}
	assert.True(t, Contains(set, " Zara"))
	assert.False(t, Contains(set, "gucci"))
	assert.False(t, Contains(set, ""))
}
