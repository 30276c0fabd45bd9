package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	platformhealth "github.com/shestoi/rocketcart/platform/health/http"

	memorycatalog "github.com/shestoi/rocketcart/internal/client/memory"
	"github.com/shestoi/rocketcart/internal/notify"
	"github.com/shestoi/rocketcart/internal/repository"
	memorystorage "github.com/shestoi/rocketcart/internal/repository/memory"
	"github.com/shestoi/rocketcart/internal/service"
)

type testEnv struct {
	router   http.Handler
	store    *service.CartStore
	recorder *notify.Recorder
	storage  *memorystorage.MemoryStorage
}

func newTestEnv(t *testing.T, checks map[string]platformhealth.Check) testEnv {
	t.Helper()

	catalog := memorycatalog.NewCatalog()
	catalog.Put(repository.Product{ID: 1, Title: "Tênis de Caminhada", Price: 179.9, Image: "https://cdn/1.jpg"})
	catalog.Put(repository.Product{ID: 2, Title: "Tênis VR", Price: 139.9, Image: "https://cdn/2.jpg"})
	catalog.SetStock(1, 2)
	catalog.SetStock(2, 5)

	storage := memorystorage.NewMemoryStorage(nil)
	recorder := notify.NewRecorder(10)
	store := service.NewCartStore(zap.NewNop(), catalog, catalog, storage, recorder, nil, service.Options{})

	handler := NewHandler(zap.NewNop(), store, recorder)
	return testEnv{
		router:   NewRouter(handler, checks, zap.NewNop()),
		store:    store,
		recorder: recorder,
		storage:  storage,
	}
}

func (e testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeCart(t *testing.T, rec *httptest.ResponseRecorder) CartResponse {
	t.Helper()
	var resp CartResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHandler_CartFlow(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, CartResponse{Items: []repository.Product{}}, decodeCart(t, rec))

	rec = env.do(t, http.MethodPost, "/cart/products/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodPost, "/cart/products/2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodPost, "/cart/products/1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	cart := decodeCart(t, rec)
	require.Equal(t, 2, cart.ItemsCount)
	require.Equal(t, 3, cart.TotalAmount)
	require.InDelta(t, 179.9*2+139.9, cart.Subtotal, 1e-9)
	require.Equal(t, int64(1), cart.Items[0].ID)
	require.Equal(t, 2, cart.Items[0].Amount)

	rec = env.do(t, http.MethodPatch, "/cart/products/2", `{"amount":4}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 4, decodeCart(t, rec).Items[1].Amount)

	rec = env.do(t, http.MethodDelete, "/cart/products/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	cart = decodeCart(t, rec)
	require.Len(t, cart.Items, 1)
	require.Equal(t, int64(2), cart.Items[0].ID)

	require.Equal(t, 5, env.storage.Saves())
	require.Empty(t, env.recorder.Messages())
}

func TestHandler_Errors(t *testing.T) {
	tests := []struct {
		name            string
		prepare         func(t *testing.T, env testEnv)
		method          string
		path            string
		body            string
		expectedStatus  int
		expectedKind    string
		expectedMessage string
	}{
		{
			name: "error: add over stock",
			prepare: func(t *testing.T, env testEnv) {
				_, err := env.store.AddProduct(context.Background(), 1)
				require.NoError(t, err)
				_, err = env.store.AddProduct(context.Background(), 1)
				require.NoError(t, err)
			},
			method:          http.MethodPost,
			path:            "/cart/products/1",
			expectedStatus:  http.StatusConflict,
			expectedKind:    string(service.KindStockExceeded),
			expectedMessage: service.MessageStockExceeded,
		},
		{
			name:            "error: add unknown product",
			method:          http.MethodPost,
			path:            "/cart/products/99",
			expectedStatus:  http.StatusUnprocessableEntity,
			expectedKind:    string(service.KindProductUnavailable),
			expectedMessage: service.MessageAddFailed,
		},
		{
			name:            "error: remove missing product",
			method:          http.MethodDelete,
			path:            "/cart/products/1",
			expectedStatus:  http.StatusNotFound,
			expectedKind:    string(service.KindProductNotFound),
			expectedMessage: service.MessageRemoveFailed,
		},
		{
			name:            "error: update to zero",
			method:          http.MethodPatch,
			path:            "/cart/products/2",
			body:            `{"amount":0}`,
			expectedStatus:  http.StatusConflict,
			expectedKind:    string(service.KindStockExceeded),
			expectedMessage: service.MessageStockExceeded,
		},
		{
			name:            "error: update product without stock record",
			method:          http.MethodPatch,
			path:            "/cart/products/99",
			body:            `{"amount":1}`,
			expectedStatus:  http.StatusBadGateway,
			expectedKind:    string(service.KindRemoteFailure),
			expectedMessage: service.MessageUpdateFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			if tt.prepare != nil {
				tt.prepare(t, env)
			}
			before := env.store.Cart()

			rec := env.do(t, tt.method, tt.path, tt.body)

			require.Equal(t, tt.expectedStatus, rec.Code)
			resp := decodeError(t, rec)
			require.Equal(t, tt.expectedKind, resp.Error)
			require.Equal(t, tt.expectedMessage, resp.Message)
			require.Equal(t, before, env.store.Cart())

			// сообщение попало в /notifications
			messages := env.recorder.Messages()
			require.NotEmpty(t, messages)
			require.Equal(t, tt.expectedMessage, messages[len(messages)-1].Text)
		})
	}
}

func TestHandler_BadRequest(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{name: "error: non-numeric id", method: http.MethodPost, path: "/cart/products/abc"},
		{name: "error: negative id", method: http.MethodDelete, path: "/cart/products/-1"},
		{name: "error: invalid json", method: http.MethodPatch, path: "/cart/products/1", body: `{`},
		{name: "error: missing amount", method: http.MethodPatch, path: "/cart/products/1", body: `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)

			rec := env.do(t, tt.method, tt.path, tt.body)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.Equal(t, "bad_request", decodeError(t, rec).Error)
			// ошибки ввода не доходят до CartStore и не порождают сообщений
			require.Empty(t, env.recorder.Messages())
		})
	}
}

func TestHandler_Notifications(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(t, http.MethodDelete, "/cart/products/1", "")

	rec := env.do(t, http.MethodGet, "/notifications", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp NotificationsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 1)
	require.Equal(t, service.MessageRemoveFailed, resp.Messages[0].Text)
}

func TestHandler_NotificationsWithoutRecorder(t *testing.T) {
	handler := NewHandler(zap.NewNop(), nil, nil)
	rec := httptest.NewRecorder()
	handler.GetNotifications(rec, httptest.NewRequest(http.MethodGet, "/notifications", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"messages":[]}`, rec.Body.String())
}

func TestRouter_Health(t *testing.T) {
	env := newTestEnv(t, map[string]platformhealth.Check{
		"storage": func(context.Context) error { return errors.New("down") },
	})

	rec := env.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStatusFor(t *testing.T) {
	require.Equal(t, http.StatusServiceUnavailable, statusFor(&service.CartError{Kind: service.KindPersistFailed}))
	require.Equal(t, http.StatusInternalServerError, statusFor(errors.New("other")))
}
