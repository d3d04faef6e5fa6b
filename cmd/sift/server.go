package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/arbiter-social/arbiter/moderation/analyzer"
	"github.com/arbiter-social/arbiter/moderation/countstore"
	"github.com/arbiter-social/arbiter/moderation/engine"
	"github.com/arbiter-social/arbiter/moderation/filter"
	"github.com/arbiter-social/arbiter/moderation/modstore"
	"github.com/arbiter-social/arbiter/moderation/setstore"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	slogecho "github.com/samber/slog-echo"
	"gorm.io/gorm"
)

var (
	echoMetricsOnce sync.Once
	echoMetrics     echo.MiddlewareFunc
)

type Server struct {
	logger          *slog.Logger
	engine          *engine.Engine
	echo            *echo.Echo
	httpd           *http.Server
	queueMaxAgeDays int
}

type Config struct {
	Logger          *slog.Logger
	Bind            string
	RedisURL        string
	SetsFileJSON    string
	SlackWebhookURL string
	FlagThreshold   float64
	QueueMaxAgeDays int
	BulkWorkers     int
}

func NewServer(ctx context.Context, db *gorm.DB, config Config) (*Server, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	sets := setstore.NewDefaultSetStore()
	if config.SetsFileJSON != "" {
		if err := sets.LoadFromFileJSON(config.SetsFileJSON); err != nil {
			return nil, fmt.Errorf("initializing in-process setstore: %v", err)
		} else {
			logger.Info("loaded set config from JSON", "path", config.SetsFileJSON)
		}
	}

	var counters countstore.CountStore
	if config.RedisURL != "" {
		opt, err := redis.ParseURL(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis URL: %v", err)
		}
		rdb := redis.NewClient(opt)
		// check redis connection
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			return nil, fmt.Errorf("redis ping failed: %v", err)
		}
		cnt, err := countstore.NewRedisCountStore(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("initializing redis countstore: %v", err)
		}
		counters = cnt
	} else {
		counters = countstore.NewMemCountStore()
	}

	store, err := modstore.NewGormStore(db)
	if err != nil {
		return nil, fmt.Errorf("initializing moderation store: %v", err)
	}

	anlz, err := analyzer.New(ctx, sets)
	if err != nil {
		return nil, fmt.Errorf("initializing content analyzer: %v", err)
	}
	wf, err := filter.NewWordFilter(ctx, sets)
	if err != nil {
		return nil, fmt.Errorf("initializing word filter: %v", err)
	}

	threshold := config.FlagThreshold
	if threshold == 0 {
		threshold = analyzer.DefaultFlagThreshold
	}
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("flag threshold must be within [0,1], got %f", threshold)
	}
	settings := analyzer.DefaultSettings()
	settings.FlagThreshold = threshold

	var notifier engine.Notifier
	if config.SlackWebhookURL != "" {
		logger.Info("configuring slack escalation notifications")
		notifier = &engine.SlackNotifier{SlackWebhookURL: config.SlackWebhookURL}
	}

	eng := engine.NewEngine(engine.EngineConfig{
		Logger:      logger,
		Analyzer:    anlz,
		Filter:      wf,
		Store:       store,
		Counters:    counters,
		Notifier:    notifier,
		Settings:    &settings,
		CacheSize:   5_000,
		CacheTTL:    30 * time.Minute,
		BulkWorkers: config.BulkWorkers,
	})

	e := echo.New()

	// httpd
	var (
		httpTimeout        = 1 * time.Minute
		httpMaxHeaderBytes = 1 * (1024 * 1024)
	)

	srv := &Server{
		logger:          logger,
		engine:          eng,
		echo:            e,
		queueMaxAgeDays: config.QueueMaxAgeDays,
	}
	srv.httpd = &http.Server{
		Handler:        srv,
		Addr:           config.Bind,
		WriteTimeout:   httpTimeout,
		ReadTimeout:    httpTimeout,
		MaxHeaderBytes: httpMaxHeaderBytes,
	}

	e.HideBanner = true
	e.Use(slogecho.New(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("1M"))
	// registers into the default prometheus registry, so only once per process
	echoMetricsOnce.Do(func() {
		echoMetrics = echoprometheus.NewMiddleware("sift")
	})
	e.Use(echoMetrics)
	e.HTTPErrorHandler = srv.errorHandler

	e.GET("/_health", srv.HandleHealthCheck)
	e.GET("/metrics", echoprometheus.NewHandler())

	e.POST("/api/moderate", srv.HandleModerate)
	e.POST("/api/moderate/bulk", srv.HandleModerateBulk)
	e.GET("/api/queue", srv.HandleListQueue)
	e.POST("/api/queue/:id/decision", srv.HandleQueueDecision)
	e.GET("/api/history/:contentId", srv.HandleContentHistory)
	e.GET("/api/stats", srv.HandleStats)
	e.GET("/api/settings", srv.HandleGetSettings)
	e.PATCH("/api/settings", srv.HandleUpdateSettings)

	return srv, nil
}

func (srv *Server) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	srv.echo.ServeHTTP(rw, req)
}

func (srv *Server) RunAPI(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv.logger.Info("starting server", "bind", srv.httpd.Addr)
	go func() {
		if err := srv.httpd.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				srv.logger.Error("HTTP server shutting down unexpectedly", "err", err)
			}
		}
	}()

	if srv.queueMaxAgeDays > 0 {
		go srv.RunQueueCleanup(ctx)
	}

	// Wait for a signal to exit.
	srv.logger.Info("registering OS exit signal handler")
	quit := make(chan struct{})
	exitSignals := make(chan os.Signal, 1)
	signal.Notify(exitSignals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-exitSignals
		srv.logger.Info("received OS exit signal", "signal", sig)

		cancel()
		if err := srv.Shutdown(); err != nil {
			srv.logger.Error("HTTP server shutdown error", "err", err)
		}

		close(quit)
	}()
	<-quit
	srv.logger.Info("graceful shutdown complete")
	return nil
}

// this method runs in a loop, sweeping old reviewed items out of the queue
// once an hour
func (srv *Server) RunQueueCleanup(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := srv.engine.CleanupQueue(ctx, srv.queueMaxAgeDays); err != nil {
				srv.logger.Error("queue cleanup sweep failed", "err", err)
			}
		}
	}
}

func (srv *Server) RunMetrics(listen string) error {
	http.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(listen, nil)
}

func (srv *Server) Shutdown() error {
	srv.logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.httpd.Shutdown(ctx)
}
