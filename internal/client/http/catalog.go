package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"

	"github.com/shestoi/rocketcart/internal/repository"
	"github.com/shestoi/rocketcart/internal/service"
)

// CatalogClient реализует service.ProductCatalog и service.StockService поверх HTTP API
// (GET /products/{id}, GET /stock/{id})
type CatalogClient struct {
	logger  *zap.Logger
	baseURL string
	client  *http.Client
}

// NewCatalogClient создаёт HTTP клиент каталога и склада
func NewCatalogClient(logger *zap.Logger, baseURL string, timeout time.Duration) *CatalogClient {
	return &CatalogClient{
		logger:  logger,
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// productResponse - формат ответа /products/{id}
type productResponse struct {
	ID    int64   `json:"id"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
	Image string  `json:"image"`
}

// stockResponse - формат ответа /stock/{id}
type stockResponse struct {
	ID     int64 `json:"id"`
	Amount int   `json:"amount"`
}

// GetProduct реализует service.ProductCatalog
func (c *CatalogClient) GetProduct(ctx context.Context, productID int64) (repository.Product, error) {
	var resp productResponse
	if err := c.get(ctx, fmt.Sprintf("/products/%d", productID), &resp); err != nil {
		return repository.Product{}, fmt.Errorf("get product %d: %w", productID, err)
	}

	return repository.Product{
		ID:    resp.ID,
		Title: resp.Title,
		Price: resp.Price,
		Image: resp.Image,
	}, nil
}

// GetStock реализует service.StockService
func (c *CatalogClient) GetStock(ctx context.Context, productID int64) (repository.Stock, error) {
	var resp stockResponse
	if err := c.get(ctx, fmt.Sprintf("/stock/%d", productID), &resp); err != nil {
		return repository.Stock{}, fmt.Errorf("get stock %d: %w", productID, err)
	}

	return repository.Stock{ID: resp.ID, Amount: resp.Amount}, nil
}

func (c *CatalogClient) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	// trace context уходит в заголовках, чтобы каталог мог продолжить трейс
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return service.ErrUnknownProduct
	}
	// При не-200 читаем тело ответа для диагностики и не декодируем JSON
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("catalog API status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	c.logger.Debug("catalog request completed", zap.String("path", path))
	return nil
}
