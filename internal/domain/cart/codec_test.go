package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec_RoundTripPreservesOrderAndPrecision(t *testing.T) {
	c := Replay([]Event{
		Added{Product: shirt(10), Quantity: 2, Size: "M", Color: "أحمر"},
		Added{Product: Product{ID: "p-pen", Title: "قلم", Price: d("0.10"), Stock: 100}, Quantity: 30},
	})

	got, err := DecodeItems(EncodeItems(c.Items()))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, NewKey("p-shirt", "M", "أحمر"), got[0].Key)
	assert.Equal(t, "Shirt", got[0].Title)
	assert.Equal(t, "shirt.jpg", got[0].ImageURL)
	assert.Equal(t, 10, got[0].Stock)
	assert.Equal(t, 2, got[0].Quantity)
	assert.True(t, d("25.50").Equal(got[0].Price))

	assert.Equal(t, "قلم", got[1].Title)
	assert.True(t, d("54").Equal(FromItems(got).TotalPrice()))
}

func TestEncodeItems_Empty(t *testing.T) {
	assert.Equal(t, "[]", string(EncodeItems(nil)))
}

func TestDecodeItems(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		items, err := DecodeItems(nil)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("numeric price and unknown fields", func(t *testing.T) {
		items, err := DecodeItems([]byte(`[{"product_id":"p1","price":12.75,"quantity":2,"stock":4,"extra":{"a":[1,2]}}]`))
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.True(t, d("12.75").Equal(items[0].Price))
		assert.Equal(t, 2, items[0].Quantity)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := DecodeItems([]byte(`{"product_id":"p1"}`))
		require.Error(t, err)
	})

	t.Run("bad price", func(t *testing.T) {
		_, err := DecodeItems([]byte(`[{"price":"abc"}]`))
		require.Error(t, err)
	})
}
