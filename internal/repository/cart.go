package repository

import (
	"encoding/json"
	"fmt"
)

// Product представляет позицию корзины
// Title, Price и Image приходят из каталога и не интерпретируются корзиной
type Product struct {
	ID     int64   `json:"id"`
	Title  string  `json:"title"`
	Price  float64 `json:"price"`
	Image  string  `json:"image"`
	Amount int     `json:"amount"`
}

// Stock - доступный остаток товара по данным сервиса склада
type Stock struct {
	ID     int64 `json:"id"`
	Amount int   `json:"amount"`
}

// Cart - упорядоченный список позиций, уникальный по ID
type Cart []Product

// IndexOf возвращает индекс позиции с указанным ID или -1
func (c Cart) IndexOf(productID int64) int {
	for i, p := range c {
		if p.ID == productID {
			return i
		}
	}
	return -1
}

// Contains проверяет, есть ли товар в корзине
func (c Cart) Contains(productID int64) bool {
	return c.IndexOf(productID) >= 0
}

// Clone возвращает независимую копию корзины (всегда не nil)
func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

// TotalAmount - сумма количеств по всем позициям
func (c Cart) TotalAmount() int {
	total := 0
	for _, p := range c {
		total += p.Amount
	}
	return total
}

// Subtotal - сумма price*amount по всем позициям
func (c Cart) Subtotal() float64 {
	var total float64
	for _, p := range c {
		total += p.Price * float64(p.Amount)
	}
	return total
}

// Validate проверяет инварианты: нет повторяющихся ID, все количества положительные
func (c Cart) Validate() error {
	seen := make(map[int64]struct{}, len(c))
	for i, p := range c {
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("duplicate product id %d at position %d", p.ID, i)
		}
		seen[p.ID] = struct{}{}
		if p.Amount < 1 {
			return fmt.Errorf("product %d has non-positive amount %d", p.ID, p.Amount)
		}
	}
	return nil
}

// EncodeCart сериализует корзину в JSON-массив; пустая корзина даёт "[]"
func EncodeCart(c Cart) (string, error) {
	if c == nil {
		c = Cart{}
	}
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to encode cart: %w", err)
	}
	return string(data), nil
}

// DecodeCart разбирает JSON-массив, сохранённый EncodeCart
func DecodeCart(raw string) (Cart, error) {
	var c Cart
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	if c == nil {
		c = Cart{}
	}
	return c, nil
}
