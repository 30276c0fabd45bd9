package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	platformobservability "github.com/shestoi/rocketcart/platform/observability"

	"github.com/shestoi/rocketcart/internal/notify"
	"github.com/shestoi/rocketcart/internal/repository"
	"github.com/shestoi/rocketcart/internal/service"
)

// Handler содержит HTTP-обработчики корзины
// Зависит от service слоя, но не знает о каталоге и хранилище
type Handler struct {
	logger   *zap.Logger
	store    *service.CartStore
	recorder *notify.Recorder
}

// NewHandler создаёт новый HTTP handler
// recorder может быть nil - тогда /notifications отдаёт пустой список
func NewHandler(logger *zap.Logger, store *service.CartStore, recorder *notify.Recorder) *Handler {
	return &Handler{
		logger:   logger,
		store:    store,
		recorder: recorder,
	}
}

// CartResponse представляет состояние корзины в HTTP ответе
type CartResponse struct {
	Items       []repository.Product `json:"items"`
	ItemsCount  int                  `json:"items_count"`
	TotalAmount int                  `json:"total_amount"`
	Subtotal    float64              `json:"subtotal"`
}

// UpdateAmountRequest - тело PATCH /cart/products/{id}
type UpdateAmountRequest struct {
	Amount *int `json:"amount"`
}

// ErrorResponse - тело ответа при ошибке
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// NotificationsResponse - тело ответа GET /notifications
type NotificationsResponse struct {
	Messages []notify.Message `json:"messages"`
}

// GetCart обрабатывает GET /cart
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, newCartResponse(h.store.Cart()))
}

// AddProduct обрабатывает POST /cart/products/{id}
func (h *Handler) AddProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}

	cart, err := h.store.AddProduct(r.Context(), productID)
	h.writeResult(w, r, service.OpAddProduct, cart, err)
}

// RemoveProduct обрабатывает DELETE /cart/products/{id}
func (h *Handler) RemoveProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}

	cart, err := h.store.RemoveProduct(r.Context(), productID)
	h.writeResult(w, r, service.OpRemoveProduct, cart, err)
}

// UpdateProductAmount обрабатывает PATCH /cart/products/{id} с телом {"amount": n}
func (h *Handler) UpdateProductAmount(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}

	var req UpdateAmountRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if req.Amount == nil {
		h.writeError(w, r, http.StatusBadRequest, "bad_request", "amount is required")
		return
	}

	// amount <= 0 не отсекается здесь: это бизнес-правило CartStore (сообщение "stock exceeded")
	cart, err := h.store.UpdateProductAmount(r.Context(), service.UpdateProductAmountInput{
		ProductID: productID,
		Amount:    *req.Amount,
	})
	h.writeResult(w, r, service.OpUpdateProductAmount, cart, err)
}

// GetNotifications обрабатывает GET /notifications - последние сообщения пользователю
func (h *Handler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	messages := []notify.Message{}
	if h.recorder != nil {
		messages = h.recorder.Messages()
	}
	h.writeJSON(w, r, http.StatusOK, NotificationsResponse{Messages: messages})
}

func (h *Handler) productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.writeError(w, r, http.StatusBadRequest, "bad_request", "invalid product id: "+raw)
		return 0, false
	}
	return id, true
}

func (h *Handler) writeResult(w http.ResponseWriter, r *http.Request, op service.Op, cart repository.Cart, err error) {
	if err != nil {
		h.writeError(w, r, statusFor(err), string(service.KindOf(err)), service.MessageFor(op, err))
		return
	}
	h.writeJSON(w, r, http.StatusOK, newCartResponse(cart))
}

// statusFor сопоставляет класс ошибки корзины HTTP статусу
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrStockExceeded):
		return http.StatusConflict
	case errors.Is(err, service.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrProductUnavailable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrRemoteFailure):
		return http.StatusBadGateway
	case errors.Is(err, service.ErrPersistFailed):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, kind, message string) {
	h.writeJSON(w, r, status, ErrorResponse{Error: kind, Message: message})
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		platformobservability.L(r.Context(), h.logger).Error("failed to encode response", zap.Error(err))
	}
}

func newCartResponse(cart repository.Cart) CartResponse {
	items := cart.Clone()
	return CartResponse{
		Items:       items,
		ItemsCount:  len(items),
		TotalAmount: items.TotalAmount(),
		Subtotal:    items.Subtotal(),
	}
}
