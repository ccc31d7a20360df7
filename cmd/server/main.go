package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/iliyamo/danceclub-booking/internal/config"
	"github.com/iliyamo/danceclub-booking/internal/database"
	"github.com/iliyamo/danceclub-booking/internal/handler"
	"github.com/iliyamo/danceclub-booking/internal/middleware"
	"github.com/iliyamo/danceclub-booking/internal/queue"
	"github.com/iliyamo/danceclub-booking/internal/repository"
	"github.com/iliyamo/danceclub-booking/internal/router"
	"github.com/iliyamo/danceclub-booking/internal/service"
)

func main() {
	cfg, err := config.Load() // Load environment config
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	logger := log.New("danceclub")
	logger.SetLevel(parseLevel(cfg.LogLevel))
	e.Logger = logger

	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			logger.Infof("%s %s -> %d (%s)", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage
	var store repository.Store
	switch cfg.StoreDriver {
	case config.DriverMemory:
		logger.Warn("using in-memory store; data is lost on restart")
		store = repository.NewMemoryStore()
	default:
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			logger.Fatalf("db: %v", err)
		}
		defer db.Close()
		store = repository.NewMySQLStore(db)
	}

	// Events are optional; the API keeps serving when the broker is down.
	var pub service.Publisher
	if cfg.Queue.EventsEnabled {
		p, err := queue.NewPublisher(cfg.Queue.URL, cfg.Queue.Exchange)
		if err != nil {
			logger.Warnf("rabbitmq publisher disabled: %v", err)
		} else {
			defer p.Close()
			pub = p
		}
	}

	// Redis backs the response cache and the rate limiter.
	redisCfg, err := config.LoadRedisConfig()
	if err != nil {
		logger.Fatalf("redis config: %v", err)
	}
	cacheCfg, err := config.LoadCacheConfig()
	if err != nil {
		logger.Fatalf("cache config: %v", err)
	}
	rlCfg, err := config.LoadRateLimitConfig()
	if err != nil {
		logger.Fatalf("rate limit config: %v", err)
	}
	rdb := config.NewRedisClient(redisCfg)
	if rdb == nil {
		logger.Warnf("redis unavailable at %s; cache and rate limit disabled", redisCfg.Address())
	} else {
		defer rdb.Close()
	}
	cache := middleware.NewResponseCache(cacheCfg, rdb)

	if cfg.Queue.ConsumerEnabled {
		consumer := queue.NewConsumer(queue.ConsumerConfig{
			URL:      cfg.Queue.URL,
			Exchange: cfg.Queue.Exchange,
			Queue:    cfg.Queue.Queue,
			LogDir:   cfg.Queue.LogDir,
		}, cache, logger)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Errorf("event consumer stopped: %v", err)
			}
		}()
	}

	catalog := service.NewCatalogService(store, pub, logger)
	bookings := service.NewBookingService(store, pub, logger)

	router.Register(e, router.Deps{
		Public:    handler.NewPublicHandler(catalog),
		Admin:     handler.NewAdminHandler(catalog),
		Bookings:  handler.NewBookingHandler(bookings),
		Store:     store,
		JWTSecret: cfg.JWTSecret,
		Cache:     cache,
		RateLimit: middleware.RateLimit(rlCfg, rdb),
	})

	addr := ":" + cfg.Port
	go func() {
		logger.Infof("listening on %s (env=%s, store=%s)", addr, cfg.Env, cfg.StoreDriver)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
}

// parseLevel maps LOG_LEVEL to a gommon level; unknown values mean INFO.
func parseLevel(s string) log.Lvl {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	}
	return log.INFO
}
