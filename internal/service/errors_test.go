package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageFor(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name     string
		op       Op
		err      error
		expected string
	}{
		{"stock exceeded on add", OpAddProduct, newCartError(OpAddProduct, KindStockExceeded, 1, nil), MessageStockExceeded},
		{"stock exceeded on update", OpUpdateProductAmount, newCartError(OpUpdateProductAmount, KindStockExceeded, 1, cause), MessageStockExceeded},
		{"unavailable product on add", OpAddProduct, newCartError(OpAddProduct, KindProductUnavailable, 1, cause), MessageAddFailed},
		{"remote failure on add", OpAddProduct, newCartError(OpAddProduct, KindRemoteFailure, 1, cause), MessageAddFailed},
		{"not found on remove", OpRemoveProduct, newCartError(OpRemoveProduct, KindProductNotFound, 1, nil), MessageRemoveFailed},
		{"persist failed on remove", OpRemoveProduct, newCartError(OpRemoveProduct, KindPersistFailed, 1, cause), MessageRemoveFailed},
		{"not found on update", OpUpdateProductAmount, newCartError(OpUpdateProductAmount, KindProductNotFound, 1, nil), MessageUpdateFailed},
		// Текст ошибки не влияет на выбор сообщения
		{"foreign error mentioning stock", OpAddProduct, errors.New("stock exceeded"), MessageAddFailed},
		{"nil error", OpAddProduct, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MessageFor(tt.op, tt.err))
		})
	}
}

func TestCartError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := newCartError(OpAddProduct, KindRemoteFailure, 7, cause)

	require.True(t, errors.Is(err, ErrRemoteFailure))
	require.True(t, errors.Is(err, cause))
	require.False(t, errors.Is(err, ErrStockExceeded))
	require.Equal(t, "add_product: product 7: remote lookup failed: connection refused", err.Error())

	wrapped := fmt.Errorf("handler: %w", err)
	require.Equal(t, KindRemoteFailure, KindOf(wrapped))

	var cartErr *CartError
	require.True(t, errors.As(wrapped, &cartErr))
	require.Equal(t, int64(7), cartErr.ProductID)
}

func TestCartError_NoCause(t *testing.T) {
	err := newCartError(OpRemoveProduct, KindProductNotFound, 3, nil)

	require.Equal(t, "remove_product: product 3: product not in cart", err.Error())
	require.Len(t, err.Unwrap(), 1)
	require.Equal(t, ErrorKind(""), KindOf(errors.New("other")))
	require.Equal(t, ErrorKind(""), KindOf(nil))
}
