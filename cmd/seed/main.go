package main

import (
	"context"
	"flag"

	"github.com/joho/godotenv"
	"github.com/kiwari-pos/register/internal/config"
	"github.com/kiwari-pos/register/internal/service"
	"github.com/kiwari-pos/register/internal/storage"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	// CLI flags
	force := flag.Bool("force", false, "Overwrite existing data with the defaults")
	driver := flag.String("driver", "", "Store driver (file|redis|postgres); defaults to STORE_DRIVER")
	flag.Parse()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg := config.Load()
	if *driver != "" {
		cfg.StoreDriver = *driver
	}

	ctx := context.Background()
	store, err := storage.Open(ctx, storage.Options{
		Driver:      cfg.StoreDriver,
		DataDir:     cfg.DataDir,
		RedisAddr:   cfg.RedisAddr,
		DatabaseURL: cfg.DatabaseURL,
	}, log)
	if err != nil {
		log.Fatal("open store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer store.Close()

	if *force {
		log.Warn("overwriting existing register data with defaults")
	}

	res, err := service.SeedDefaults(ctx, store, *force)
	if err != nil {
		log.Fatal("seed failed", zap.Strings("written", res.Written), zap.Error(err))
	}

	log.Info("seed completed",
		zap.Strings("written", res.Written),
		zap.Strings("skipped", res.Skipped),
	)
	if len(res.Written) > 0 {
		log.Info("default logins: Admin 1111 (manager), Susan 4444 (supervisor), Jessica 2222 and Michael 3333 (cashiers)")
	}
}
