package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sectioned = `
DESCRIPTION: A navy tailored blazer over a crisp white shirt with grey wide leg trousers.

**STYLE_CATEGORY:** Minimalist, Business

SUITABLE_OCCASIONS: Business meetings, office, dinner dates

IDENTIFIED_ITEMS: Navy blazer, White button-down shirt, Grey trousers, Brown loafers

COLOR_PALETTE: Navy, white, grey, brown

DETAILED_RECOMMENDATIONS:
1. Outerwear (Budget: $150-200):
- Structured wool blazer in navy
`

func TestParseSectioned(t *testing.T) {
	p := Parse(sectioned)

	assert.Equal(t, []string{"brown", "gray", "navy", "white"}, p.DominantColors)
	require.NotEmpty(t, p.StyleTags)
	assert.Equal(t, []string{"minimalist", "business"}, p.StyleTags[:2])
	assert.Equal(t, []string{"structured", "tailored", "wide-leg"}, p.Silhouettes)
	assert.Equal(t, []string{"business_meeting", "date_night"}, p.Occasions)
	assert.Equal(t, []string{"navy blazer", "white button-down shirt", "grey trousers", "brown loafers"}, p.ItemHints)
	assert.InDelta(t, 1.0, p.Confidence, 1e-9)
}

func TestParseUnreadableYieldsEmptyProfile(t *testing.T) {
	for _, raw := range []string{"", "   ", "lorem ipsum dolor sit amet", "{not json"} {
		p := Parse(raw)
		assert.Zero(t, p.Confidence, raw)
		assert.Empty(t, p.DominantColors, raw)
		assert.Empty(t, p.StyleTags, raw)
		assert.Empty(t, p.Silhouettes, raw)
	}
}

func TestParseStructuredJSON(t *testing.T) {
	p := Parse(`{"colors":["Navy Blue","sparkly"],"styles":["Smart Casual","weird"],"silhouettes":["slim fit","slim"],"occasions":["Date Night"],"items":["Suede Loafers"],"confidence":1.7}`)

	assert.Equal(t, []string{"navy"}, p.DominantColors)
	assert.Equal(t, []string{"smart-casual"}, p.StyleTags)
	assert.Equal(t, []string{"slim"}, p.Silhouettes)
	assert.Equal(t, []string{"date_night"}, p.Occasions)
	assert.Equal(t, []string{"suede loafers"}, p.ItemHints)
	assert.Equal(t, 1.0, p.Confidence)
}

func TestParseStructuredWithoutSignalsIgnoresConfidence(t *testing.T) {
	p := Parse(`{"colors":["sparkly"],"confidence":0.9}`)
	assert.Zero(t, p.Confidence)
}

func TestParseFreeTextFallsBackToGarmentPhrases(t *testing.T) {
	p := Parse("She is wearing a black leather jacket and white sneakers, very edgy streetwear.")

	assert.Equal(t, []string{"black", "white"}, p.DominantColors)
	assert.Equal(t, []string{"edgy", "streetwear"}, p.StyleTags)
	assert.Equal(t, []string{"black leather jacket", "white sneakers"}, p.ItemHints)
	assert.InDelta(t, 0.8, p.Confidence, 1e-9)
}

func TestParseIsDeterministic(t *testing.T) {
	first := Parse(sectioned)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Parse(sectioned))
	}
}
