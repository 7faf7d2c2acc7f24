package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"kanban/api"
	"kanban/board"
	"kanban/config"
	"kanban/drag"
	"kanban/notify"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := log.New()
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
		logger.SetLevel(log.DebugLevel)
	}

	initial, err := cfg.LoadBoard()
	if err != nil {
		log.Fatalf("board config: %v", err)
	}
	store, err := board.New(initial, board.WithLogger(logger))
	if err != nil {
		log.Fatalf("board: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	broker := api.NewBroker(logger)
	opts := api.Options{Broker: broker, Logger: logger}
	var notifier drag.Notifier = broker
	if redisOpts := cfg.RedisOptions(); redisOpts != nil {
		rc := redis.NewClient(redisOpts)
		defer rc.Close()
		opts.Deduper = api.NewRedisDeduper(rc, cfg.DeduperTTL)
		opts.Health = api.PingerFunc(func(ctx context.Context) error { return rc.Ping(ctx).Err() })
		notifier = notify.NewRedisPublisher(rc, cfg.NoticesChannel, logger)
		go notify.Subscribe(ctx, logger, rc, cfg.NoticesChannel, broker.PublishNotice)
	} else {
		log.Info("REDIS_CONNECTION_STRING not set, using in-memory dedupe and notices")
		opts.Deduper = api.NewMemoryDeduper(cfg.DeduperTTL)
	}

	sess := api.NewSession(cfg.SessionID, store, notifier, logger)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderContentEncoding},
	}))
	api.Register(e, sess, opts)

	go func() {
		<-ctx.Done()
		_ = e.Close()
	}()
	if err := e.Start(cfg.ListenAddr); err != nil && ctx.Err() == nil {
		e.Logger.Fatal(err)
	}
}
