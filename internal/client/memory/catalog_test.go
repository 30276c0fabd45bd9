package memory

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shestoi/rocketcart/internal/repository"
	"github.com/shestoi/rocketcart/internal/service"
)

func TestCatalog_GetProduct(t *testing.T) {
	ctx := context.Background()
	c := NewCatalog()
	c.Put(repository.Product{ID: 1, Title: "Tênis", Price: 179.9, Amount: 5})

	product, err := c.GetProduct(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, repository.Product{ID: 1, Title: "Tênis", Price: 179.9}, product)

	_, err = c.GetProduct(ctx, 2)
	require.True(t, errors.Is(err, service.ErrUnknownProduct))
	require.Equal(t, 2, c.ProductCalls())
}

func TestCatalog_GetStock(t *testing.T) {
	ctx := context.Background()
	c := NewCatalog()
	c.SetStock(1, 3)

	stock, err := c.GetStock(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, repository.Stock{ID: 1, Amount: 3}, stock)

	c.SetStock(1, 0)
	stock, err = c.GetStock(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 0, stock.Amount)

	_, err = c.GetStock(ctx, 7)
	require.True(t, errors.Is(err, service.ErrUnknownProduct))
	require.Equal(t, 3, c.StockCalls())
}

func TestCatalog_LoadFixtures(t *testing.T) {
	ctx := context.Background()

	t.Run("success: products and stock", func(t *testing.T) {
		c := NewCatalog()
		err := c.LoadFixtures(strings.NewReader(`{
			"products": [
				{"id": 1, "title": "Tênis de Caminhada Leve Confortável", "price": 179.9, "image": "https://cdn/1.jpg"},
				{"id": 2, "title": "Tênis VR Caminhada Confortável", "price": 139.9, "image": "https://cdn/2.jpg"}
			],
			"stock": [
				{"id": 1, "amount": 3},
				{"id": 2, "amount": 5}
			]
		}`))
		require.NoError(t, err)

		product, err := c.GetProduct(ctx, 2)
		require.NoError(t, err)
		require.Equal(t, "Tênis VR Caminhada Confortável", product.Title)

		stock, err := c.GetStock(ctx, 2)
		require.NoError(t, err)
		require.Equal(t, 5, stock.Amount)
	})

	t.Run("error: invalid json", func(t *testing.T) {
		c := NewCatalog()
		require.Error(t, c.LoadFixtures(strings.NewReader(`[`)))
	})
}
