package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stylematch/recommend/config"
	"stylematch/recommend/models"
	"stylematch/recommend/vocab"
)

func navyBlazer() models.Product {
	return models.Product{
		ID:          "blazer-1",
		Title:       "Navy Wool Blazer",
		Description: "Tailored navy blazer in Italian wool, a business staple.",
		Tags:        []string{"Outerwear", "business", "tailored"},
		Brand:       "Halden",
		Price:       189,
		Available:   true,
		Category:    models.CategoryOuterwear,
	}
}

func businessProfile() models.StyleProfile {
	return models.StyleProfile{
		DominantColors: []string{"navy", "white"},
		StyleTags:      []string{"minimalist", "business"},
		Silhouettes:    []string{"tailored"},
		Confidence:     1,
	}
}

func businessConstraints() models.Constraints {
	return models.Constraints{
		Occasion:        vocab.OccasionBusiness,
		BudgetMin:       200,
		BudgetMax:       500,
		PreferredBrands: []string{"halden"},
	}
}

func TestScore(t *testing.T) {
	s := NewScorer(&config.DefaultConfig().Recommend)

	score, matched := s.Score(navyBlazer(), businessProfile(), businessConstraints())

	// color 1, style (1/2+1/3)/(1+1/2+1/3), brand 1, occasion 1, price fit 1-64/87.5
	want := 0.3*1 + 0.3*(0.5+1.0/3)/(1+0.5+1.0/3) + 0.15 + 0.15 + 0.1*(1-64/87.5)
	assert.InDelta(t, want, score, 1e-9)
	assert.Equal(t, []string{
		"color:navy",
		"style:business", "style:tailored",
		"brand:halden",
		"occasion:blazer", "occasion:business", "occasion:tailored",
	}, matched)
}

func TestScoreIsDeterministicAndBounded(t *testing.T) {
	s := NewScorer(&config.DefaultConfig().Recommend)
	p, prof, c := navyBlazer(), businessProfile(), businessConstraints()

	first, firstMatched := s.Score(p, prof, c)
	for i := 0; i < 50; i++ {
		score, matched := s.Score(p, prof, c)
		assert.Equal(t, first, score)
		assert.Equal(t, firstMatched, matched)
	}
	assert.GreaterOrEqual(t, first, 0.0)
	assert.LessOrEqual(t, first, 1.0)
}

func TestScoreUnavailableIsZero(t *testing.T) {
	s := NewScorer(&config.DefaultConfig().Recommend)
	p := navyBlazer()
	p.Available = false

	score, matched := s.Score(p, businessProfile(), businessConstraints())
	assert.Zero(t, score)
	assert.Empty(t, matched)
}

func TestScoreEmptyProfileStillRanksByConstraints(t *testing.T) {
	s := NewScorer(&config.DefaultConfig().Recommend)
	c := businessConstraints()
	c.PreferredColors = []string{"navy"}

	score, matched := s.Score(navyBlazer(), models.StyleProfile{}, c)
	assert.Greater(t, score, 0.0)
	assert.Contains(t, matched, "color:navy")
}

func TestScoreCustomOccasionUsesLabelWords(t *testing.T) {
	s := NewScorer(&config.DefaultConfig().Recommend)
	c := models.Constraints{Occasion: vocab.OccasionCustom, CustomOccasion: "Wool tasting", BudgetMax: 500}

	_, matched := s.Score(navyBlazer(), models.StyleProfile{}, c)
	assert.Contains(t, matched, "occasion:wool")
}

func TestPriceFit(t *testing.T) {
	assert.Equal(t, 1.0, priceFit(60, 200, 500, 0.25))
	assert.Equal(t, 1.0, priceFit(0, 0, 0, 0.25))
	assert.InDelta(t, 1-100.0/150, priceFit(300, 100, 200, 1), 1e-9)
	assert.InDelta(t, 1-50.0/150, priceFit(50, 100, 200, 1), 1e-9)
	assert.Equal(t, 0.0, priceFit(10000, 100, 200, 1))
	assert.Equal(t, 0.0, priceFit(10, 0, 0, 0.5))
}

func TestShares(t *testing.T) {
	s := NewScorer(&config.DefaultConfig().Recommend)
	o := s.OutfitFor(vocab.OccasionBusiness)
	require.Equal(t, []models.Category{models.CategoryTop, models.CategoryBottom, models.CategoryFootwear}, o.Required)

	shares := Shares(s.Allocation(), append(o.Required, o.Optional...))
	var total float64
	for _, v := range shares {
		total += v
	}
	assert.InDelta(t, 1.0, total, 1e-9)
	assert.InDelta(t, 0.25, shares[models.CategoryFootwear], 1e-9)

	even := Shares(map[models.Category]float64{}, []models.Category{models.CategoryTop, models.CategoryBottom})
	assert.Equal(t, 0.5, even[models.CategoryTop])
}

func TestOutfitForUnknownOccasionFallsBackToOther(t *testing.T) {
	s := NewScorer(&config.DefaultConfig().Recommend)
	assert.Equal(t, s.OutfitFor(vocab.OccasionOther), s.OutfitFor("beach_party"))
}
