package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stylematch/recommend/models"
)

func TestPermalinkCreator(t *testing.T) {
	pc := NewPermalinkCreator("shop.example.com")
	set := models.FormattedSet{Rank: 1, Items: []models.FormattedItem{
		{ProductID: "7000000006"},
		{ProductID: "gid://shopify/ProductVariant/42"},
	}}

	lines := Lines(set)
	assert.Equal(t, []models.CartLine{{ProductID: "7000000006", Quantity: 1}, {ProductID: "gid://shopify/ProductVariant/42", Quantity: 1}}, lines)

	url, err := pc.CreateCart(context.Background(), lines)
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com/cart/7000000006:1,42:1", url)
}

func TestPermalinkCreatorRejectsEmpty(t *testing.T) {
	pc := NewPermalinkCreator("shop.example.com")
	_, err := pc.CreateCart(context.Background(), nil)
	assert.Error(t, err)

	_, err = pc.CreateCart(context.Background(), []models.CartLine{{ProductID: "gid://x/"}})
	assert.Error(t, err)
}
