package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	glog "github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"

	"github.com/iliyamo/service-b/internal/config"
	"github.com/iliyamo/service-b/internal/handler"
	mw "github.com/iliyamo/service-b/internal/middleware"
	"github.com/iliyamo/service-b/internal/queue"
	"github.com/iliyamo/service-b/internal/router"
	"github.com/iliyamo/service-b/internal/service"
)

func main() {
	// A missing api.version must stop the process before the port is bound.
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		os.Exit(0) // usage already printed by pflag
	}
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(glog.INFO)
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			c.Logger().Infof("%s %s %d %s", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))

	var rdb *redis.Client
	if config.RedisEnabled() {
		if rdb, err = config.NewRedisClient(ctx); err != nil {
			log.Printf("redis unavailable, rate limiting and caching disabled: %v", err)
		} else {
			defer rdb.Close()
		}
	}

	var sink mw.EventSink
	events := config.LoadEventsConfig()
	if events.Enabled {
		p := service.NewEventPublisher(events.URL, events.Queue)
		defer p.Close()
		d := service.NewEventDispatcher(p, events.Buffer, events.PublishTimeout)
		go d.Run(ctx)
		sink = d
		if events.RunConsumer {
			go func() {
				if err := queue.StartAccessLogConsumer(ctx, events.URL, events.Queue, events.LogDir); err != nil && !errors.Is(err, context.Canceled) {
					log.Printf("access-consumer stopped: %v", err)
				}
			}()
		}
	}

	router.RegisterRoutes(e, handler.NewAPIHandler(cfg.Version),
		mw.RequestEvents(sink, cfg.Version),
		mw.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		mw.NewRedisCache(config.LoadCacheConfig(), rdb, cfg.Version),
	)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, version=%q)", addr, cfg.Env, cfg.Version)

	errc := make(chan error, 1)
	go func() { errc <- e.Start(addr) }()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	case <-ctx.Done():
		log.Printf("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := e.Shutdown(sctx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}
}
