package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/shestoi/rocketcart/internal/repository"
	"github.com/shestoi/rocketcart/internal/service"
)

// Catalog реализует service.ProductCatalog и service.StockService используя in-memory хранилище
// Используется для разработки и тестирования вместо HTTP API каталога
type Catalog struct {
	mu       sync.RWMutex
	products map[int64]repository.Product
	stock    map[int64]int

	// счётчики вызовов для проверок в тестах
	productCalls int
	stockCalls   int
}

// NewCatalog создаёт пустой in-memory каталог
func NewCatalog() *Catalog {
	return &Catalog{
		products: make(map[int64]repository.Product),
		stock:    make(map[int64]int),
	}
}

// Put добавляет или заменяет карточку товара
// Amount карточки игнорируется: количество в корзине задаёт CartStore
func (c *Catalog) Put(product repository.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()

	product.Amount = 0
	c.products[product.ID] = product
}

// SetStock задаёт доступный остаток товара
func (c *Catalog) SetStock(productID int64, amount int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stock[productID] = amount
}

// GetProduct реализует service.ProductCatalog
func (c *Catalog) GetProduct(ctx context.Context, productID int64) (repository.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.productCalls++
	product, exists := c.products[productID]
	if !exists {
		return repository.Product{}, fmt.Errorf("product %d: %w", productID, service.ErrUnknownProduct)
	}
	return product, nil
}

// GetStock реализует service.StockService
// Товар без записи об остатке считается неизвестным
func (c *Catalog) GetStock(ctx context.Context, productID int64) (repository.Stock, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stockCalls++
	amount, exists := c.stock[productID]
	if !exists {
		return repository.Stock{}, fmt.Errorf("stock %d: %w", productID, service.ErrUnknownProduct)
	}
	return repository.Stock{ID: productID, Amount: amount}, nil
}

// StockCalls возвращает количество обращений к GetStock
func (c *Catalog) StockCalls() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stockCalls
}

// ProductCalls возвращает количество обращений к GetProduct
func (c *Catalog) ProductCalls() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.productCalls
}

// fixtures - формат db.json фейкового API: {"products": [...], "stock": [...]}
type fixtures struct {
	Products []repository.Product `json:"products"`
	Stock    []repository.Stock   `json:"stock"`
}

// LoadFixtures наполняет каталог из JSON в формате db.json
func (c *Catalog) LoadFixtures(r io.Reader) error {
	var f fixtures
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return fmt.Errorf("failed to decode fixtures: %w", err)
	}

	for _, p := range f.Products {
		c.Put(p)
	}
	for _, s := range f.Stock {
		c.SetStock(s.ID, s.Amount)
	}
	return nil
}
