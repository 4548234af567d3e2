package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/kiwari-pos/register/internal/config"
	"github.com/kiwari-pos/register/internal/describe"
	"github.com/kiwari-pos/register/internal/events"
	"github.com/kiwari-pos/register/internal/router"
	"github.com/kiwari-pos/register/internal/service"
	"github.com/kiwari-pos/register/internal/storage"
	"github.com/kiwari-pos/register/internal/ws"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	zap.ReplaceGlobals(log)

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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

	// Live displays always get events; Kafka export is optional.
	hub := ws.NewHub(log)
	go hub.Run(ctx)
	publishers := events.Fanout{hub}

	var prod *events.KafkaPublisher
	if len(cfg.KafkaBrokers) > 0 {
		prod = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, 1024, log)
		prod.Start(ctx)
		publishers = append(publishers, prod)
		log.Info("exporting events to kafka", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}

	describer, err := describe.New(ctx, cfg.GeminiAPIKey, log)
	if err != nil {
		log.Fatal("create describer", zap.Error(err))
	}

	reg, err := service.Open(ctx, service.Options{
		Store:     store,
		Publisher: publishers,
		Describer: describer,
		Logger:    log,
	})
	if err != nil {
		log.Fatal("open register", zap.Error(err))
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router.New(cfg, reg, hub, log),
	}

	go func() {
		log.Info("starting server", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", zap.Error(err))
	}

	if prod != nil {
		prod.Close() // flush queued events and close the writer
		done := make(chan struct{})
		go func() {
			prod.WaitClosed()
			close(done)
		}()
		select {
		case <-done:
		case <-shutdownCtx.Done():
			log.Warn("kafka flush timed out")
		}
	}
	cancel() // stops the hub and the kafka loop
}
