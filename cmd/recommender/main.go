package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"wheeldeal/internal/config"
	"wheeldeal/internal/db"
	"wheeldeal/internal/logging"
	"wheeldeal/internal/recommender"
	productrepo "wheeldeal/internal/repository/product"
	productsvc "wheeldeal/internal/service/product"
	"wheeldeal/internal/storage"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	var (
		clearData bool
		suggest   string
		limit     int
	)
	flag.BoolVar(&clearData, "clear", false, "Remove all co-purchase data for catalog products")
	flag.StringVar(&suggest, "suggest", "", "Comma separated product ids to print suggestions for")
	flag.IntVar(&limit, "max", recommender.DefaultMaxResults, "Maximum number of suggestions")
	flag.Parse()

	if !clearData && suggest == "" {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg := config.FromEnv()
	logger := logging.New(cfg).Named("recommender")
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	client, err := db.ConnectRedis(ctx, db.RedisOptions{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		logger.Fatal("connect redis", zap.Error(err))
	}
	defer client.Close()

	products := productsvc.New(productrepo.NewPostgres(pool, logger), nil, storage.Disabled{}, logger)
	r := recommender.New(recommender.NewRedisStore(client, cfg.RecommenderTimeout), products, logger)

	if clearData {
		n, err := r.ClearPurchases(ctx)
		if err != nil {
			logger.Fatal("clear purchases", zap.Error(err))
		}
		fmt.Printf("Cleared co-purchase data for %d products\n", n)
	}

	if suggest != "" {
		suggestions, err := r.SuggestProductsFor(ctx, strings.Split(suggest, ","), limit)
		if err != nil {
			logger.Fatal("suggest", zap.Error(err))
		}
		for _, p := range suggestions {
			fmt.Printf("%s\t%s\t%s\n", p.ID, p.Name, p.Price.StringFixed(2))
		}
	}
}
