package supplier

import (
	"bytes"
	"strings"
	"testing"

	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFeed(t *testing.T) {
	feed := `[
		{"id": "SKU-1", "name": "Blue Tee", "description": "Cotton", "price": 499.5, "mrp": 799, "stock": 12},
		{"id": "SKU-2", "name": "Red Tee", "price": "250.00", "stock": 0, "active": false}
	]`

	products, err := DecodeFeed(strings.NewReader(feed))
	require.NoError(t, err)
	require.Len(t, products, 2)

	first := products[0]
	assert.Equal(t, "SKU-1", first.ID)
	assert.Equal(t, "Blue Tee", first.Name)
	assert.Equal(t, "Cotton", first.Description)
	require.NotNil(t, first.Price)
	assert.True(t, decimal.RequireFromString("499.5").Equal(*first.Price))
	require.NotNil(t, first.MRP)
	assert.True(t, decimal.RequireFromString("799").Equal(*first.MRP))
	assert.Equal(t, 12, first.Stock)
	assert.True(t, first.Active, "active defaults to true")

	second := products[1]
	require.NotNil(t, second.Price, "numeric string prices are accepted")
	assert.True(t, decimal.RequireFromString("250").Equal(*second.Price))
	assert.False(t, second.Active)
}

func TestDecodeFeed_AliasKeys(t *testing.T) {
	feed := `[{"product_id": 421, "title": "Socks", "selling_price": 99, "list_price": 149, "stock_quantity": 7, "is_active": true}]`

	products, err := DecodeFeed(strings.NewReader(feed))
	require.NoError(t, err)
	require.Len(t, products, 1)

	p := products[0]
	assert.Equal(t, "421", p.ID, "numeric ids are stringified")
	assert.Equal(t, "Socks", p.Name)
	require.NotNil(t, p.Price)
	assert.True(t, decimal.RequireFromString("99").Equal(*p.Price))
	assert.Equal(t, 7, p.Stock)
	assert.True(t, p.Active)
}

func TestDecodeFeed_NullPrice(t *testing.T) {
	feed := `[{"id": "SKU-9", "name": "Preorder Item", "price": null, "stock": 3}]`

	products, err := DecodeFeed(strings.NewReader(feed))
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Nil(t, products[0].Price)
}

func TestDecodeFeed_UnknownFieldsSkipped(t *testing.T) {
	feed := `[{"id": "SKU-1", "name": "Tee", "warehouse": {"zone": "A", "bins": [1, 2]}, "tags": ["new"], "stock": 1}]`

	products, err := DecodeFeed(strings.NewReader(feed))
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "SKU-1", products[0].ID)
}

func TestDecodeFeed_MissingID(t *testing.T) {
	feed := `[{"name": "Anonymous", "price": 10}]`

	_, err := DecodeFeed(strings.NewReader(feed))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing id")
}

func TestDecodeGzipFeed(t *testing.T) {
	feed := `[{"id": "SKU-1", "name": "Tee", "price": 199, "stock": 4}]`

	var buf bytes.Buffer
	gz := pgzip.NewWriter(&buf)
	_, err := gz.Write([]byte(feed))
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	products, err := DecodeGzipFeed(&buf)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "SKU-1", products[0].ID)
	assert.Equal(t, 4, products[0].Stock)
}

func TestDecodeGzipFeed_NotGzip(t *testing.T) {
	_, err := DecodeGzipFeed(strings.NewReader(`[]`))
	assert.Error(t, err)
}
