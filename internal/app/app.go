package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/DRSN-tech/marketplace-backend/internal/cfg"
	v1Http "github.com/DRSN-tech/marketplace-backend/internal/delivery/v1/http"
	"github.com/DRSN-tech/marketplace-backend/internal/infrastructure/kafka"
	"github.com/DRSN-tech/marketplace-backend/internal/repository/memcache"
	s3Repo "github.com/DRSN-tech/marketplace-backend/internal/repository/minio"
	"github.com/DRSN-tech/marketplace-backend/internal/repository/pgdb"
	pgdbConv "github.com/DRSN-tech/marketplace-backend/internal/repository/pgdb/converter"
	redisRepo "github.com/DRSN-tech/marketplace-backend/internal/repository/redis"
	"github.com/DRSN-tech/marketplace-backend/internal/usecase"
	"github.com/DRSN-tech/marketplace-backend/internal/worker"
	"github.com/DRSN-tech/marketplace-backend/pkg/clients"
	"github.com/DRSN-tech/marketplace-backend/pkg/closer"
	"github.com/DRSN-tech/marketplace-backend/pkg/logger"
	"github.com/DRSN-tech/marketplace-backend/pkg/postgres"
	"github.com/go-chi/chi/v5"
)

// App связывает конфигурацию, хранилища, usecase-слой и транспорт.
type App struct {
	cfg    *config.Config
	logger logger.Logger
}

func NewApp(cfg *config.Config, logger logger.Logger) (*App, error) {
	return &App{cfg: cfg, logger: logger}, nil
}

func (a *App) Run() error {
	cfg := a.cfg
	log := a.logger

	cl := closer.NewCloser(5 * time.Second)

	db, err := postgres.Connect(cfg.Db)
	if err != nil {
		log.Errorf(err, "failed to connect to postgres")
		return err
	}
	cl.Add(func(ctx context.Context) error {
		db.Close()
		return nil
	})

	if err := db.RunMigrations(log); err != nil {
		log.Errorf(err, "failed to run migrations")
		return err
	}

	// Кэш цен: Redis по умолчанию, процессный LRU для окружений без него.
	// Обе реализации живут за usecase.PriceCache.
	var priceCache usecase.PriceCache
	switch cfg.Cache.Backend {
	case config.CacheBackendMemory:
		priceCache = memcache.NewPriceCache(cfg.Cache.Size, cfg.Redis)
		log.Infof("price cache: in-process LRU, size=%d", cfg.Cache.Size)
	default:
		redisClient := clients.NewRedisClient(cfg.Redis)
		redisCtx, redisCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(redisCtx); err != nil {
			redisCancel()
			log.Errorf(err, "failed to connect to redis")
			return err
		}
		redisCancel()
		cl.Add(func(ctx context.Context) error {
			return redisClient.Client.Close()
		})
		priceCache = redisRepo.NewPriceCacheRepo(redisClient, cfg.Redis, log)
	}

	minioClient, err := clients.NewMinIOClient(cfg)
	if err != nil {
		log.Errorf(err, "failed to initialize minio client")
		return err
	}

	minioCtx, minioCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := clients.EnsureBucket(minioCtx, minioClient, cfg.Minio.BucketName); err != nil {
		minioCancel()
		log.Errorf(err, "failed to initialize MinIO bucket")
		return err
	}
	minioCancel()

	producer, err := kafka.NewProducer(log, cfg.Kafka)
	if err != nil {
		log.Errorf(err, "failed to initialize kafka producer")
		return err
	}
	if err := producer.EnsureTopic(10 * time.Second); err != nil {
		log.Errorf(err, "failed to ensure kafka topic")
		return err
	}
	cl.Add(func(ctx context.Context) error {
		return producer.Close()
	})

	// Репозитории.
	productRepo := pgdb.NewProductRepo(db.Pool, pgdbConv.ProductConverter{})
	storeRepo := pgdb.NewStoreRepo(db.Pool, pgdbConv.StoreConverter{})
	categoryRepo := pgdb.NewCategoryRepo(db.Pool, pgdbConv.CategoryConverter{})
	orderRepo := pgdb.NewOrderRepo(db.Pool, pgdbConv.OrderConverter{})
	cartRepo := pgdb.NewCartRepo(db.Pool, pgdbConv.CartItemConverter{})
	outboxRepo := pgdb.NewOutboxEventRepo(db.Pool, pgdbConv.OutboxEventConverter{})
	imageRepo := s3Repo.NewImageRepo(minioClient, cfg.Minio)

	// Usecase-слой.
	productUC := usecase.NewProductUC(productRepo, storeRepo, categoryRepo, imageRepo, outboxRepo, db.Pool, priceCache, log)
	discountUC := usecase.NewDiscountUC(productRepo, priceCache, log)
	checkoutUC := usecase.NewCheckoutUC(cartRepo, productRepo, orderRepo, outboxRepo, db.Pool, priceCache, log, cfg.Checkout)
	orderUC := usecase.NewOrderUC(orderRepo, storeRepo, log)
	cartUC := usecase.NewCartUC(cartRepo, productRepo, log)

	// Фоновые воркеры.
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	outboxWorker := kafka.NewOutboxWorker(outboxRepo, log, producer, db.Dsn)
	outboxWorker.Start(workerCtx)
	cl.Add(func(ctx context.Context) error {
		outboxWorker.Stop()
		return nil
	})

	sweeper := worker.NewDiscountSweeper(discountUC, cfg.Sweeper, log)
	sweeper.Start(workerCtx)
	cl.Add(func(ctx context.Context) error {
		sweeper.Stop()
		return nil
	})

	// HTTP.
	r := chi.NewRouter()
	router := v1Http.NewRouter(r, log)
	router.Init(productUC, discountUC, checkoutUC, orderUC, cartUC)

	httpSrv := v1Http.NewServer(r, cfg.Http)
	cl.Add(func(ctx context.Context) error {
		return httpSrv.Stop(ctx)
	})

	errCh := make(chan error, 1)
	go func() {
		log.Infof("HTTP server started on port %s", cfg.Http.Port)
		if err := httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf(err, "HTTP server failed")
			errCh <- err
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	var appErr error
	select {
	case appErr = <-errCh:
		log.Errorf(appErr, "HTTP server fatal error")
	case <-shutdown:
		log.Infof("Received shutdown signal, stopping gracefully...")
	}

	workerCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := cl.Close(shutdownCtx); err != nil {
		log.Warnf("shutdown finished with errors: %v", err)
	} else {
		log.Infof("Application shutdown complete")
	}

	return appErr
}
