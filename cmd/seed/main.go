package main

import (
	"context"
	"time"

	"wheeldeal/internal/config"
	"wheeldeal/internal/db"
	"wheeldeal/internal/logging"
	categoryrepo "wheeldeal/internal/repository/category"
	couponrepo "wheeldeal/internal/repository/coupon"
	productrepo "wheeldeal/internal/repository/product"
	"wheeldeal/internal/seed"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	logger := logging.New(cfg).Named("seed")
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	writers := seed.Writers{
		Categories: categoryrepo.NewPostgres(pool),
		Products:   productrepo.NewPostgres(pool, logger),
		Coupons:    couponrepo.NewPostgres(pool),
	}
	if err := seed.Apply(ctx, writers, time.Now(), logger); err != nil {
		logger.Fatal("seed apply", zap.Error(err))
	}
}
