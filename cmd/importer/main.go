package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"wheeldeal/internal/config"
	"wheeldeal/internal/db"
	"wheeldeal/internal/importer"
	"wheeldeal/internal/logging"
	categoryrepo "wheeldeal/internal/repository/category"
	productrepo "wheeldeal/internal/repository/product"
	"wheeldeal/internal/storage"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	var (
		filePath  string
		imagesDir string
	)
	flag.StringVar(&filePath, "file", "", "Path to the catalog CSV")
	flag.StringVar(&imagesDir, "images", "", "Directory image paths are resolved against (defaults to the CSV's directory)")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}
	if imagesDir == "" {
		imagesDir = filepath.Dir(filePath)
	}

	_ = godotenv.Load()
	cfg := config.FromEnv()
	logger := logging.New(cfg).Named("importer")
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	opts := []importer.Option{importer.WithLogger(logger)}
	if cfg.MinIO.Endpoint != "" {
		store, err := storage.NewMinIO(cfg.MinIO)
		if err != nil {
			logger.Fatal("init minio", zap.Error(err))
		}
		if err := store.EnsureBucket(ctx); err != nil {
			logger.Fatal("ensure bucket", zap.Error(err))
		}
		opts = append(opts, importer.WithImages(os.DirFS(imagesDir), store))
	} else {
		logger.Warn("MINIO_ENDPOINT not set, image column ignored")
	}

	f, err := os.Open(filePath)
	if err != nil {
		logger.Fatal("open file", zap.Error(err))
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f, productrepo.NewPostgres(pool, logger), categoryrepo.NewPostgres(pool), opts...)

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		logger.Fatal("import failed", zap.Error(err))
	}

	fmt.Printf("Imported %d products in %s\n", count, time.Since(start).Truncate(time.Millisecond))
}
