package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wheeldeal/internal/config"
	"wheeldeal/internal/db"
	"wheeldeal/internal/httpserver"
	"wheeldeal/internal/logging"
	"wheeldeal/internal/notify"
	"wheeldeal/internal/payment"
	"wheeldeal/internal/recommender"
	categoryrepo "wheeldeal/internal/repository/category"
	couponrepo "wheeldeal/internal/repository/coupon"
	orderrepo "wheeldeal/internal/repository/order"
	productrepo "wheeldeal/internal/repository/product"
	categorysvc "wheeldeal/internal/service/category"
	couponsvc "wheeldeal/internal/service/coupon"
	ordersvc "wheeldeal/internal/service/order"
	productsvc "wheeldeal/internal/service/product"
	"wheeldeal/internal/storage"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const invoiceTimeout = 30 * time.Second

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	logger := logging.New(cfg).Named("api")
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal("connect to db", zap.Error(err))
	}
	defer dbpool.Close()

	checks := map[string]httpserver.Check{
		"postgres": func(ctx context.Context) error { return dbpool.Ping(ctx) },
	}

	var images storage.ImageStore = storage.Disabled{}
	if cfg.MinIO.Endpoint != "" {
		store, err := storage.NewMinIO(cfg.MinIO)
		if err != nil {
			logger.Fatal("init minio", zap.Error(err))
		}
		images = store
	} else {
		logger.Warn("MINIO_ENDPOINT not set, products are served without images")
	}

	categoryRepo := categoryrepo.NewPostgres(dbpool)
	categoryService := categorysvc.New(categoryRepo)
	productService := productsvc.New(productrepo.NewPostgres(dbpool, logger), categoryService, images, logger)
	couponService := couponsvc.New(couponrepo.NewPostgres(dbpool))
	orderRepo := orderrepo.NewPostgres(dbpool, logger)

	mailer, err := notify.NewSMTPMailer(cfg.SMTP)
	if err != nil {
		logger.Fatal("init mailer", zap.Error(err))
	}
	invoices := notify.NewChromePDF(invoiceTimeout)
	dispatcher := notify.NewDispatcher(
		notify.NewHandler(orderRepo, mailer, invoices),
		notify.DispatcherOptions{Workers: cfg.NotifyWorkers},
		logger,
	)
	orderService := ordersvc.New(orderRepo, dispatcher, logger)

	deps := httpserver.Deps{
		CategorySvc: categoryService,
		ProductSvc:  productService,
		CouponSvc:   couponService,
		OrderSvc:    orderService,
		Invoices:    invoices,
		Checks:      checks,
	}

	var recs *recommender.Recommender
	if cfg.Redis.Addr == "" {
		logger.Warn("REDIS_ADDR not set, recommendations disabled")
	} else {
		redisClient, err := db.NewRedis(db.RedisOptions{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			logger.Fatal("init redis", zap.Error(err))
		}
		defer redisClient.Close()
		if err := db.PingRedis(ctx, redisClient); err != nil {
			logger.Warn("redis not reachable yet, recommendations degrade until it is", zap.Error(err))
		}
		recs = recommender.New(recommender.NewRedisStore(redisClient, cfg.RecommenderTimeout), productService, logger)
		deps.Recommender = recs
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	if cfg.Stripe.SecretKey != "" {
		deps.PaymentSvc = newPaymentService(cfg, orderRepo, recs, dispatcher, logger)
	} else {
		logger.Warn("STRIPE_SECRET_KEY not set, payments disabled")
	}

	srv, err := httpserver.New(cfg.HTTPAddr, logger, httpserver.ConfigFrom(cfg), deps)
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting http server", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	if err := dispatcher.Close(ctx); err != nil {
		logger.Error("notification queue not drained", zap.Error(err))
	}
	logger.Info("server stopped")
}

// newPaymentService keeps a nil recommender out of the interface value so
// the payment service sees no purchase recorder at all.
func newPaymentService(cfg config.Config, orders orderrepo.Repository, recs *recommender.Recommender, notifier *notify.Dispatcher, logger *zap.Logger) *payment.Service {
	gateway := payment.NewStripeGateway(cfg.Stripe)
	if recs == nil {
		return payment.NewService(gateway, orders, nil, notifier, logger)
	}
	return payment.NewService(gateway, orders, recs, notifier, logger)
}
