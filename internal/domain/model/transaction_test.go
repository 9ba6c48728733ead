package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoLineCart() Cart {
	return Cart{Lines: []CartLine{
		{Product: ProductSnapshot{ID: 1, Name: "Beras 5kg", Price: decimal.NewFromInt(65000)}, Quantity: 2},
		{Product: ProductSnapshot{ID: 3, Name: "Gula Pasir 1kg", Price: decimal.RequireFromString("14500.50")}, Quantity: 1},
	}}
}

func TestCart_Totals(t *testing.T) {
	c := twoLineCart()

	assert.True(t, c.Total().Equal(decimal.RequireFromString("144500.50")))
	assert.Equal(t, int64(3), c.ItemCount())
	assert.Equal(t, int64(2), c.Quantity(1))
	assert.Equal(t, int64(0), c.Quantity(99))
	assert.True(t, c.LineItems().Total().Equal(c.Total()))
}

func TestCart_CloneIsIndependent(t *testing.T) {
	c := twoLineCart()
	cl := c.Clone()
	cl.Lines[0].Quantity = 99

	assert.Equal(t, int64(2), c.Lines[0].Quantity)
}

func TestLineItems_RoundTrip(t *testing.T) {
	items := twoLineCart().LineItems()

	b, err := EncodeLineItems(items)
	require.NoError(t, err)

	var decoded LineItems
	require.NoError(t, DecodeLineItems(b, &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "Beras 5kg", decoded[0].Product.Name)
	assert.True(t, decoded[0].Product.Price.Equal(decimal.NewFromInt(65000)))
	assert.Equal(t, int64(2), decoded[0].Quantity)
	assert.Equal(t, int64(3), decoded[1].Product.ID)
	assert.True(t, decoded[1].Product.Price.Equal(decimal.RequireFromString("14500.50")))

	v, err := items.Value()
	require.NoError(t, err)

	var scanned LineItems
	require.NoError(t, scanned.Scan(v))
	assert.True(t, scanned.Total().Equal(items.Total()))

	// drivers may hand back bytes
	var fromBytes LineItems
	require.NoError(t, fromBytes.Scan([]byte(v.(string))))
	assert.Len(t, fromBytes, 2)
}

func TestLineItems_ScanEdgeCases(t *testing.T) {
	var items LineItems
	require.NoError(t, items.Scan(nil))
	assert.NotNil(t, items)
	assert.Empty(t, items)

	require.NoError(t, items.Scan("null"))
	assert.NotNil(t, items)

	assert.Error(t, items.Scan(42))
	assert.Error(t, items.Scan("{broken"))

	v, err := LineItems(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}
