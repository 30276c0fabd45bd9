package service

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	platformobservability "github.com/shestoi/rocketcart/platform/observability"

	"github.com/shestoi/rocketcart/internal/repository"
)

const instrumentationName = "github.com/shestoi/rocketcart/internal/service"

// Options - настройки CartStore
type Options struct {
	// StorageKey ключ корзины в хранилище, по умолчанию repository.StorageKey("")
	StorageKey string
	// CheckStockOnFirstAdd включает проверку остатка при первом добавлении товара.
	// По умолчанию выключено: первое добавление кладёт amount=1 без обращения к складу
	CheckStockOnFirstAdd bool
}

// CartStore содержит состояние корзины и бизнес-правила её изменения
// Операции сериализованы opMu на всё время "прочитать корзину -> удалённые вызовы -> сохранить -> подменить".
// Чтение снимка (Cart) защищено отдельным mu и не ждёт удалённых вызовов
type CartStore struct {
	logger   *zap.Logger
	catalog  ProductCatalog
	stock    StockService
	storage  repository.Storage
	notifier Notifier

	key                  string
	checkStockOnFirstAdd bool

	opMu sync.Mutex
	mu   sync.RWMutex
	cart repository.Cart

	subMu       sync.Mutex
	subscribers []subscriber
	nextSubID   int

	tracer trace.Tracer
	ops    metric.Int64Counter
}

type subscriber struct {
	id int
	fn func(context.Context, repository.Cart)
}

// NewCartStore создаёт CartStore с начальным снимком initial (обычно результат RestoreCart)
// Все зависимости - интерфейсы, это позволяет подменять их в тестах
func NewCartStore(
	logger *zap.Logger,
	catalog ProductCatalog,
	stock StockService,
	storage repository.Storage,
	notifier Notifier,
	initial repository.Cart,
	opts Options,
) *CartStore {
	if opts.StorageKey == "" {
		opts.StorageKey = repository.StorageKey("")
	}

	meter := otel.Meter(instrumentationName)
	ops, err := meter.Int64Counter("cart.operations",
		metric.WithDescription("Cart operations by outcome"),
	)
	if err != nil {
		logger.Warn("failed to create cart.operations counter", zap.Error(err))
	}

	return &CartStore{
		logger:               logger,
		catalog:              catalog,
		stock:                stock,
		storage:              storage,
		notifier:             notifier,
		key:                  opts.StorageKey,
		checkStockOnFirstAdd: opts.CheckStockOnFirstAdd,
		cart:                 initial.Clone(),
		tracer:               otel.Tracer(instrumentationName),
		ops:                  ops,
	}
}

// Cart возвращает копию текущего состояния корзины
func (s *CartStore) Cart() repository.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Clone()
}

// Subscribe регистрирует fn, которая вызывается после каждого успешного изменения корзины
// с контекстом операции (в нём span операции) и новым снимком. Возвращает функцию отписки
func (s *CartStore) Subscribe(fn func(context.Context, repository.Cart)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	s.nextSubID++
	id := s.nextSubID
	s.subscribers = append(s.subscribers, subscriber{id: id, fn: fn})

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		for i, sub := range s.subscribers {
			if sub.id == id {
				s.subscribers = append(s.subscribers[:i:i], s.subscribers[i+1:]...)
				return
			}
		}
	}
}

// AddProduct добавляет товар в корзину или увеличивает его количество на 1
func (s *CartStore) AddProduct(ctx context.Context, productID int64) (repository.Cart, error) {
	ctx, span := s.startSpan(ctx, OpAddProduct, productID)
	defer span.End()

	s.opMu.Lock()
	defer s.opMu.Unlock()

	next, err := s.addProduct(ctx, productID)
	return s.commit(ctx, span, OpAddProduct, productID, next, err)
}

func (s *CartStore) addProduct(ctx context.Context, productID int64) (repository.Cart, error) {
	// 1. Карточка товара: любая ошибка каталога - товар недоступен
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, newCartError(OpAddProduct, KindProductUnavailable, productID, err)
	}
	if product.ID != productID {
		return nil, newCartError(OpAddProduct, KindProductUnavailable, productID,
			fmt.Errorf("catalog returned product %d", product.ID))
	}

	current := s.snapshot()

	// 2а. Товар уже в корзине - проверяем остаток для amount+1
	if idx := current.IndexOf(productID); idx >= 0 {
		stock, err := s.stock.GetStock(ctx, productID)
		if err != nil {
			return nil, newCartError(OpAddProduct, KindRemoteFailure, productID, err)
		}

		candidate := current[idx].Amount + 1
		if candidate > stock.Amount {
			return nil, newCartError(OpAddProduct, KindStockExceeded, productID,
				fmt.Errorf("requested %d, available %d", candidate, stock.Amount))
		}

		next := current.Clone()
		next[idx].Amount = candidate
		return next, nil
	}

	// 2б. Новый товар - добавляем в конец с amount=1
	if s.checkStockOnFirstAdd {
		stock, err := s.stock.GetStock(ctx, productID)
		if err != nil {
			return nil, newCartError(OpAddProduct, KindRemoteFailure, productID, err)
		}
		if stock.Amount < 1 {
			return nil, newCartError(OpAddProduct, KindStockExceeded, productID,
				fmt.Errorf("requested 1, available %d", stock.Amount))
		}
	}

	item := product
	item.Amount = 1
	return append(current.Clone(), item), nil
}

// RemoveProduct удаляет позицию из корзины
func (s *CartStore) RemoveProduct(ctx context.Context, productID int64) (repository.Cart, error) {
	ctx, span := s.startSpan(ctx, OpRemoveProduct, productID)
	defer span.End()

	s.opMu.Lock()
	defer s.opMu.Unlock()

	next, err := s.removeProduct(productID)
	return s.commit(ctx, span, OpRemoveProduct, productID, next, err)
}

func (s *CartStore) removeProduct(productID int64) (repository.Cart, error) {
	current := s.snapshot()
	if !current.Contains(productID) {
		return nil, newCartError(OpRemoveProduct, KindProductNotFound, productID, nil)
	}

	next := make(repository.Cart, 0, len(current)-1)
	for _, p := range current {
		if p.ID != productID {
			next = append(next, p)
		}
	}
	return next, nil
}

// UpdateProductAmountInput содержит входные данные для изменения количества
type UpdateProductAmountInput struct {
	ProductID int64
	Amount    int
}

// UpdateProductAmount устанавливает количество товара в корзине
func (s *CartStore) UpdateProductAmount(ctx context.Context, input UpdateProductAmountInput) (repository.Cart, error) {
	ctx, span := s.startSpan(ctx, OpUpdateProductAmount, input.ProductID)
	defer span.End()
	span.SetAttributes(attribute.Int("cart.amount", input.Amount))

	s.opMu.Lock()
	defer s.opMu.Unlock()

	next, err := s.updateProductAmount(ctx, input)
	return s.commit(ctx, span, OpUpdateProductAmount, input.ProductID, next, err)
}

func (s *CartStore) updateProductAmount(ctx context.Context, input UpdateProductAmountInput) (repository.Cart, error) {
	// Остаток запрашивается до проверки наличия в корзине: от этого зависит,
	// какое сообщение получит пользователь при amount <= 0 для отсутствующего товара
	stock, err := s.stock.GetStock(ctx, input.ProductID)
	if err != nil {
		return nil, newCartError(OpUpdateProductAmount, KindRemoteFailure, input.ProductID, err)
	}

	if input.Amount <= 0 || input.Amount > stock.Amount {
		return nil, newCartError(OpUpdateProductAmount, KindStockExceeded, input.ProductID,
			fmt.Errorf("requested %d, available %d", input.Amount, stock.Amount))
	}

	current := s.snapshot()
	idx := current.IndexOf(input.ProductID)
	if idx < 0 {
		return nil, newCartError(OpUpdateProductAmount, KindProductNotFound, input.ProductID, nil)
	}

	next := current.Clone()
	next[idx].Amount = input.Amount
	return next, nil
}

// commit завершает операцию: при успехе сохраняет next и подменяет снимок,
// при ошибке оставляет корзину как есть и отправляет ровно одно сообщение
func (s *CartStore) commit(
	ctx context.Context,
	span trace.Span,
	op Op,
	productID int64,
	next repository.Cart,
	err error,
) (repository.Cart, error) {
	log := platformobservability.L(ctx, s.logger).With(
		zap.String("op", string(op)),
		zap.Int64("product_id", productID),
	)

	if err == nil {
		err = s.persist(ctx, op, productID, next)
	}

	if err != nil {
		kind := KindOf(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(kind))
		s.count(ctx, op, string(kind))

		log.Warn("cart operation failed", zap.String("kind", string(kind)), zap.Error(err))
		s.notifier.Report(ctx, MessageFor(op, err))
		return s.Cart(), err
	}

	s.mu.Lock()
	s.cart = next
	s.mu.Unlock()

	s.count(ctx, op, "ok")
	log.Debug("cart operation succeeded", zap.Int("items", len(next)))

	s.publish(ctx, next)
	return next.Clone(), nil
}

// persist сериализует и записывает корзину; вызывается до подмены снимка,
// поэтому при ошибке записи состояние в памяти не меняется
func (s *CartStore) persist(ctx context.Context, op Op, productID int64, next repository.Cart) error {
	raw, err := repository.EncodeCart(next)
	if err != nil {
		return newCartError(op, KindPersistFailed, productID, err)
	}
	if err := s.storage.Save(ctx, s.key, raw); err != nil {
		return newCartError(op, KindPersistFailed, productID, err)
	}
	return nil
}

// publish вызывает подписчиков в порядке регистрации; opMu ещё удерживается,
// поэтому порядок уведомлений совпадает с порядком изменений
func (s *CartStore) publish(ctx context.Context, next repository.Cart) {
	s.subMu.Lock()
	subs := make([]subscriber, len(s.subscribers))
	copy(subs, s.subscribers)
	s.subMu.Unlock()

	for _, sub := range subs {
		sub.fn(ctx, next.Clone())
	}
}

func (s *CartStore) snapshot() repository.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart
}

func (s *CartStore) startSpan(ctx context.Context, op Op, productID int64) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "CartStore."+string(op),
		trace.WithAttributes(
			attribute.String("cart.op", string(op)),
			attribute.Int64("product.id", productID),
		),
	)
}

func (s *CartStore) count(ctx context.Context, op Op, outcome string) {
	if s.ops == nil {
		return
	}
	s.ops.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", string(op)),
		attribute.String("outcome", outcome),
	))
}
