package classify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stylematch/recommend/models"
)

func newTestClassifier(t *testing.T) *Classifier {
	t.Helper()
	c, err := New(DefaultRules())
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestClassify(t *testing.T) {
	c := newTestClassifier(t)

	cases := []struct {
		title string
		want  models.Category
	}{
		{"Classic White Sneakers", models.CategoryFootwear},
		{"Black Leather Jacket", models.CategoryOuterwear},
		{"Blue Denim Jeans", models.CategoryBottom},
		{"White T-Shirt", models.CategoryTop},
		{"Brown Leather Belt", models.CategoryAccessory},
		{"Navy Wool Blazer", models.CategoryOuterwear},
		{"Suede Dress Shoes", models.CategoryFootwear},
		{"Oxford Shirt", models.CategoryTop},
		{"Black Dress", models.CategoryUnresolved},
		{"Top-rated Gift Card", models.CategoryUnresolved},
	}
	for _, tc := range cases {
		t.Run(tc.title, func(t *testing.T) {
			assert.Equal(t, tc.want, c.Classify(models.Product{Title: tc.title}))
		})
	}
}

func TestClassifyTitleWinsOverDescription(t *testing.T) {
	c := newTestClassifier(t)

	p := models.Product{
		Title:       "Crew Neck Tee",
		Description: "Layer it under a jacket and finish with loafers.",
	}
	assert.Equal(t, models.CategoryTop, c.Classify(p))
}

func TestClassifyFallsBackToTagsThenDescription(t *testing.T) {
	c := newTestClassifier(t)

	assert.Equal(t, models.CategoryBottom, c.Classify(models.Product{
		Title: "The Everyday", Tags: []string{"Pants", "cotton"},
	}))
	assert.Equal(t, models.CategoryFootwear, c.Classify(models.Product{
		Title: "The Weekender", Description: "Hand-stitched leather loafers.",
	}))
}

func TestClassifyWholeWordsOnly(t *testing.T) {
	c := newTestClassifier(t)
	// "capsule" must not hit "cap", "topaz" must not hit "top".
	assert.Equal(t, models.CategoryUnresolved, c.Classify(models.Product{Title: "Capsule Topaz Pendant"}))
}

func TestLoadRules(t *testing.T) {
	rules, err := LoadRules(strings.NewReader(`[{"category":"top","keywords":["dress"]}]`))
	require.NoError(t, err)

	c, err := New(rules)
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, models.CategoryTop, c.Classify(models.Product{Title: "Black Dress"}))

	_, err = LoadRules(strings.NewReader(`[{"category":"hats","keywords":["hat"]}]`))
	assert.Error(t, err)
	_, err = LoadRules(strings.NewReader(`[{"category":"top","keywords":[]}]`))
	assert.Error(t, err)
	_, err = LoadRules(strings.NewReader(`[]`))
	assert.Error(t, err)
	_, err = LoadRules(strings.NewReader(`{`))
	assert.Error(t, err)
}

func TestLoadRulesFileDefault(t *testing.T) {
	rules, err := LoadRulesFile("")
	require.NoError(t, err)
	assert.Equal(t, "footwear", rules[0].Category)

	_, err = LoadRulesFile("does/not/exist.json")
	assert.Error(t, err)
}
