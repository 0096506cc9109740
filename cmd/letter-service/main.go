package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/calvinhuynh14/bridge-pen-pal-sub000/internal/api"
	"github.com/calvinhuynh14/bridge-pen-pal-sub000/internal/auth"
	"github.com/calvinhuynh14/bridge-pen-pal-sub000/internal/clock"
	"github.com/calvinhuynh14/bridge-pen-pal-sub000/internal/config"
	"github.com/calvinhuynh14/bridge-pen-pal-sub000/internal/directory"
	"github.com/calvinhuynh14/bridge-pen-pal-sub000/internal/events"
	"github.com/calvinhuynh14/bridge-pen-pal-sub000/internal/repository"
	"github.com/calvinhuynh14/bridge-pen-pal-sub000/internal/service"
	"github.com/calvinhuynh14/bridge-pen-pal-sub000/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	zlog, err := logger.New(logger.Config{Development: cfg.App.Env != "production"})
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	mc, err := repository.NewMongoClient(cfg)
	if err != nil {
		zlog.Fatalw("mongo init", "err", err)
	}
	defer func() { _ = mc.Disconnect(context.Background()) }()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	db := mc.Database(cfg.Mongo.DB)
	letters := repository.NewLetterRepository(db.Collection("letters"))
	reports := repository.NewReportRepository(db.Collection("reports"))
	users := directory.New(db.Collection("users"), rdb)

	pub := events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, zlog)
	defer pub.Close()

	clk := clock.System()
	cmdSvc := service.NewLetterService(letters, users, pub, clk)
	qrySvc := service.NewQueryService(letters, users, clk)
	repSvc := service.NewReportService(letters, reports, pub, clk)

	verifier, err := auth.NewVerifier(cfg.JWT)
	if err != nil {
		zlog.Fatalw("jwt verifier", "err", err)
	}

	app := api.NewServer(cfg, zlog, verifier, cmdSvc, qrySvc, repSvc, rdb)

	go func() {
		if err := app.Listen(":" + cfg.App.PortString()); err != nil {
			zlog.Fatalw("server listen", "err", err)
		}
	}()
	zlog.Infow("letter-service started", "port", cfg.App.PortString())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout())
	defer cancel()

	_ = app.ShutdownWithContext(ctx)
	zlog.Info("letter-service stopped")
}
