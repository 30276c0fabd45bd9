package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	platformhealth "github.com/shestoi/rocketcart/platform/health/http"
	platformlogging "github.com/shestoi/rocketcart/platform/logging"
	platformobservability "github.com/shestoi/rocketcart/platform/observability"
	platformshutdown "github.com/shestoi/rocketcart/platform/shutdown"

	httpapi "github.com/shestoi/rocketcart/internal/api/http"
	httpclient "github.com/shestoi/rocketcart/internal/client/http"
	memorycatalog "github.com/shestoi/rocketcart/internal/client/memory"
	"github.com/shestoi/rocketcart/internal/config"
	kafkaevent "github.com/shestoi/rocketcart/internal/event/kafka"
	"github.com/shestoi/rocketcart/internal/notify"
	"github.com/shestoi/rocketcart/internal/repository"
	filestorage "github.com/shestoi/rocketcart/internal/repository/file"
	memorystorage "github.com/shestoi/rocketcart/internal/repository/memory"
	mongostorage "github.com/shestoi/rocketcart/internal/repository/mongo"
	postgresstorage "github.com/shestoi/rocketcart/internal/repository/postgres"
	redisstorage "github.com/shestoi/rocketcart/internal/repository/redis"
	sqlitestorage "github.com/shestoi/rocketcart/internal/repository/sqlite"
	"github.com/shestoi/rocketcart/internal/service"
)

// App содержит все зависимости для запуска и корректного shutdown сервиса корзины
type App struct {
	logger      *zap.Logger
	httpServer  *http.Server
	shutdownMgr *platformshutdown.Manager
	store       *service.CartStore
	wg          sync.WaitGroup
}

// catalog - каталог и склад одним адаптером (HTTP API или in-memory)
type catalog interface {
	service.ProductCatalog
	service.StockService
}

// Build создаёт и настраивает все зависимости сервиса корзины
// При ошибке уже созданные ресурсы закрываются через shutdown manager
func Build(cfg config.Config) (*App, error) {
	ctx := context.Background()

	logger, err := platformlogging.New(platformlogging.Config{
		ServiceName: "cart",
		Env:         string(cfg.AppEnv),
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Building cart service", zap.String("http_addr", cfg.HTTPAddr))
	cfg.Log(logger)

	shutdownMgr := platformshutdown.New(cfg.ShutdownTimeout, logger)
	fail := func(err error) (*App, error) {
		_ = shutdownMgr.Shutdown()
		return nil, err
	}

	// OpenTelemetry: noop при OTEL_ENABLED=false
	otelShutdown, err := platformobservability.Init(ctx, cfg.Observability)
	if err != nil {
		return fail(fmt.Errorf("init observability: %w", err))
	}
	shutdownMgr.Add("otel", otelShutdown)

	storage, checks, err := buildStorage(ctx, cfg, logger, shutdownMgr)
	if err != nil {
		return fail(err)
	}

	cat, err := buildCatalog(cfg, logger)
	if err != nil {
		return fail(err)
	}

	recorder := notify.NewRecorder(notify.DefaultRecorderSize)
	notifiers := notify.Fanout{notify.NewLogNotifier(logger), recorder}

	var cartEvents *kafkaevent.CartEventPublisher
	if cfg.Kafka.Enabled {
		logger.Info("Kafka publishing enabled", zap.Strings("brokers", cfg.Kafka.Brokers))

		notificationPublisher := kafkaevent.NewNotificationPublisher(logger, cfg.Kafka.Brokers, cfg.Kafka.NotificationsTopic)
		shutdownMgr.Add("kafka_notifications", platformshutdown.Close(notificationPublisher))
		notifiers = append(notifiers, notificationPublisher)

		cartEvents = kafkaevent.NewCartEventPublisher(logger, cfg.Kafka.Brokers, cfg.Kafka.CartEventsTopic, cfg.StorageKey())
		shutdownMgr.Add("kafka_cart_events", platformshutdown.Close(cartEvents))
	}

	// Начальное состояние - из хранилища (пустая корзина, если ничего нет или значение битое)
	initial := service.RestoreCart(ctx, logger, storage, cfg.StorageKey())
	store := service.NewCartStore(logger, cat, cat, storage, notifiers, initial, service.Options{
		StorageKey:           cfg.StorageKey(),
		CheckStockOnFirstAdd: cfg.CheckStockOnFirst,
	})
	if cartEvents != nil {
		store.Subscribe(cartEvents.Subscriber())
	}

	handler := httpapi.NewHandler(logger, store, recorder)
	router := httpapi.NewRouter(handler, checks, logger)

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	// HTTP сервер регистрируется последним, значит останавливается первым
	shutdownMgr.Add("http_server", platformshutdown.HTTPServer(httpServer))

	return &App{
		logger:      logger,
		httpServer:  httpServer,
		shutdownMgr: shutdownMgr,
		store:       store,
	}, nil
}

// buildStorage создаёт хранилище корзины по CART_STORAGE и проверки готовности для /health
func buildStorage(
	ctx context.Context,
	cfg config.Config,
	logger *zap.Logger,
	shutdownMgr *platformshutdown.Manager,
) (repository.Storage, map[string]platformhealth.Check, error) {
	logger.Info("Initializing cart storage", zap.String("backend", string(cfg.Storage)))

	switch cfg.Storage {
	case config.StorageMemory:
		return memorystorage.NewMemoryStorage(nil), nil, nil

	case config.StorageFile:
		storage, err := filestorage.NewStorage(cfg.FileDir, logger)
		if err != nil {
			return nil, nil, err
		}
		return storage, nil, nil

	case config.StorageSQLite:
		storage, err := sqlitestorage.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		shutdownMgr.Add("sqlite", platformshutdown.Close(storage))
		return storage, pingCheck(storage), nil

	case config.StorageRedis:
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		shutdownMgr.Add("redis_client", platformshutdown.Close(client))

		storage := redisstorage.NewStorage(client, logger)
		if err := pingWithTimeout(ctx, storage); err != nil {
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		logger.Info("Redis connection established")
		return storage, pingCheck(storage), nil

	case config.StoragePostgres:
		if err := postgresstorage.Migrate(ctx, cfg.PostgresDSN); err != nil {
			return nil, nil, err
		}

		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		shutdownMgr.Add("postgres_pool", platformshutdown.ClosePool(pool))

		storage := postgresstorage.NewStorage(pool)
		if err := pingWithTimeout(ctx, storage); err != nil {
			return nil, nil, fmt.Errorf("postgres ping: %w", err)
		}
		logger.Info("PostgreSQL connection established")
		return storage, pingCheck(storage), nil

	case config.StorageMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, nil, err
		}
		shutdownMgr.Add("mongo_client", platformshutdown.DisconnectMongo(client))

		storage, err := mongostorage.NewStorage(ctx, client, cfg.MongoDB)
		if err != nil {
			return nil, nil, err
		}
		if err := pingWithTimeout(ctx, storage); err != nil {
			return nil, nil, fmt.Errorf("mongo ping: %w", err)
		}
		logger.Info("MongoDB connection established")
		return storage, pingCheck(storage), nil
	}

	return nil, nil, fmt.Errorf("unsupported storage backend: %s", cfg.Storage)
}

// buildCatalog создаёт адаптер каталога и склада по CATALOG_BACKEND
func buildCatalog(cfg config.Config, logger *zap.Logger) (catalog, error) {
	if cfg.CatalogBackend == config.CatalogHTTP {
		logger.Info("Using HTTP catalog", zap.String("base_url", cfg.CatalogBaseURL))
		return httpclient.NewCatalogClient(logger, cfg.CatalogBaseURL, cfg.CatalogTimeout), nil
	}

	c := memorycatalog.NewCatalog()
	if cfg.CatalogFixtures == "" {
		logger.Warn("Using empty in-memory catalog")
		return c, nil
	}

	f, err := os.Open(cfg.CatalogFixtures)
	if err != nil {
		return nil, fmt.Errorf("open catalog fixtures: %w", err)
	}
	defer f.Close()

	if err := c.LoadFixtures(f); err != nil {
		return nil, err
	}
	logger.Info("In-memory catalog loaded", zap.String("fixtures", cfg.CatalogFixtures))
	return c, nil
}

func pingWithTimeout(ctx context.Context, p repository.Pinger) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return p.Ping(ctx)
}

func pingCheck(p repository.Pinger) map[string]platformhealth.Check {
	return map[string]platformhealth.Check{"storage": p.Ping}
}

// Handler возвращает HTTP handler приложения (для тестов и встраивания)
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Shutdown останавливает приложение и освобождает ресурсы
func (a *App) Shutdown() error {
	return a.shutdownMgr.Shutdown()
}

// Run запускает сервис и блокируется до сигнала shutdown или отмены ctx
func (a *App) Run(ctx context.Context) error {
	defer platformlogging.Sync(a.logger)

	a.logger.Info("Starting cart service",
		zap.String("addr", a.httpServer.Addr),
		zap.Int("items", len(a.store.Cart())),
	)
	a.logger.Info("Health check available", zap.String("url", "http://"+a.httpServer.Addr+"/health"))

	serveErr := make(chan error, 1)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("HTTP server error", zap.Error(err))
			serveErr <- err
		}
	}()

	// Ожидаем сигнал (или падение HTTP сервера) и выполняем shutdown
	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var listenErr error
	watchDone := make(chan struct{})
	go func() {
		defer close(watchDone)
		select {
		case listenErr = <-serveErr:
			cancel()
		case <-waitCtx.Done():
		}
	}()

	err := a.shutdownMgr.Wait(waitCtx)
	cancel()
	<-watchDone

	a.wg.Wait()
	a.logger.Info("Cart service stopped")
	return errors.Join(listenErr, err)
}
