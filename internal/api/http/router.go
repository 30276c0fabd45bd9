package httpapi

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	platformhealth "github.com/shestoi/rocketcart/platform/health/http"
	platformobservability "github.com/shestoi/rocketcart/platform/observability"
)

// NewRouter создаёт и настраивает HTTP роутер корзины
// checks - проверки готовности для /health (например, Ping хранилища)
// logger используется для observability HTTP middleware (trace_id в логах)
func NewRouter(handler *Handler, checks map[string]platformhealth.Check, logger *zap.Logger) chi.Router {
	router := chi.NewRouter()

	if logger != nil {
		router.Use(platformobservability.HTTPMiddleware("cart", logger))
	}

	router.Get("/cart", handler.GetCart)
	router.Route("/cart/products/{id}", func(r chi.Router) {
		r.Post("/", handler.AddProduct)
		r.Delete("/", handler.RemoveProduct)
		r.Patch("/", handler.UpdateProductAmount)
	})
	router.Get("/notifications", handler.GetNotifications)

	router.Get("/health", platformhealth.Handler(checks))

	return router
}
