package service

import (
	"errors"
	"fmt"
)

// Op - операция корзины, в рамках которой произошла ошибка
type Op string

const (
	OpAddProduct          Op = "add_product"
	OpRemoveProduct       Op = "remove_product"
	OpUpdateProductAmount Op = "update_product_amount"
)

// ErrorKind - класс ошибки операции корзины
type ErrorKind string

const (
	KindProductUnavailable ErrorKind = "product_unavailable"
	KindStockExceeded      ErrorKind = "stock_exceeded"
	KindProductNotFound    ErrorKind = "product_not_found"
	KindRemoteFailure      ErrorKind = "remote_failure"
	KindPersistFailed      ErrorKind = "persist_failed"
)

// Сентинелы классов: errors.Is(err, ErrStockExceeded) работает для любой *CartError нужного класса
var (
	ErrProductUnavailable = errors.New("product unavailable")
	ErrStockExceeded      = errors.New("stock exceeded")
	ErrProductNotFound    = errors.New("product not in cart")
	ErrRemoteFailure      = errors.New("remote lookup failed")
	ErrPersistFailed      = errors.New("failed to persist cart")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindProductUnavailable:
		return ErrProductUnavailable
	case KindStockExceeded:
		return ErrStockExceeded
	case KindProductNotFound:
		return ErrProductNotFound
	case KindRemoteFailure:
		return ErrRemoteFailure
	case KindPersistFailed:
		return ErrPersistFailed
	}
	return nil
}

// CartError - результат неуспешной операции: операция, класс, товар и исходная причина
type CartError struct {
	Op        Op
	Kind      ErrorKind
	ProductID int64
	Err       error
}

func newCartError(op Op, kind ErrorKind, productID int64, cause error) *CartError {
	return &CartError{Op: op, Kind: kind, ProductID: productID, Err: cause}
}

func (e *CartError) Error() string {
	msg := fmt.Sprintf("%s: product %d: %s", e.Op, e.ProductID, e.Kind.sentinel())
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap отдаёт и сентинел класса, и исходную причину
func (e *CartError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := e.Kind.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// KindOf возвращает класс ошибки или "" для nil и посторонних ошибок
func KindOf(err error) ErrorKind {
	var cartErr *CartError
	if errors.As(err, &cartErr) {
		return cartErr.Kind
	}
	return ""
}

// Сообщения пользователю
const (
	MessageStockExceeded = "stock exceeded"
	MessageAddFailed     = "could not add product"
	MessageRemoveFailed  = "could not remove product"
	MessageUpdateFailed  = "could not change quantity"
)

// MessageFor выбирает сообщение по классу ошибки: нарушение остатка даёт сообщение про остаток,
// всё остальное - общее сообщение операции. Текст ошибки не анализируется
func MessageFor(op Op, err error) string {
	if err == nil {
		return ""
	}
	if KindOf(err) == KindStockExceeded {
		return MessageStockExceeded
	}

	switch op {
	case OpAddProduct:
		return MessageAddFailed
	case OpRemoveProduct:
		return MessageRemoveFailed
	case OpUpdateProductAmount:
		return MessageUpdateFailed
	}
	return ""
}
