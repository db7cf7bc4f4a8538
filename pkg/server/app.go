package server

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	domrepo "github.com/haniae/Team2-CBA-Project-sub004/internal/domain/repository"
	"github.com/haniae/Team2-CBA-Project-sub004/internal/handler/api"
	"github.com/haniae/Team2-CBA-Project-sub004/internal/repository"
	icache "github.com/haniae/Team2-CBA-Project-sub004/internal/service/cache"
	"github.com/haniae/Team2-CBA-Project-sub004/internal/services/forecaster"
	"github.com/haniae/Team2-CBA-Project-sub004/internal/usecase"
	pkgcache "github.com/haniae/Team2-CBA-Project-sub004/pkg/cache"
	pkgch "github.com/haniae/Team2-CBA-Project-sub004/pkg/clickhouse"
	"github.com/haniae/Team2-CBA-Project-sub004/pkg/config"
	xhttp "github.com/haniae/Team2-CBA-Project-sub004/pkg/http"
	pkgkafka "github.com/haniae/Team2-CBA-Project-sub004/pkg/kafka"
	applogger "github.com/haniae/Team2-CBA-Project-sub004/pkg/logger"
	pkgmetrics "github.com/haniae/Team2-CBA-Project-sub004/pkg/metrics"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	collector   *usecase.ObservationCollector
	consumer    *pkgkafka.Consumer
	kh          pkgkafka.MessageHandler
	chClient    *pkgch.Client
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
	metrics     domrepo.Metrics
	ObsProc     *usecase.ObservationProcessor
}

// New creates a new App instance with all dependencies. The metrics recorder
// is shared with the ingestion plane; constructing a second one per subsystem
// would double-register its Prometheus collectors.
func New(
	cfg *config.Config,
	collector *usecase.ObservationCollector,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	chClient *pkgch.Client,
	metrics domrepo.Metrics,
) *App {
	return &App{
		cfg:       cfg,
		collector: collector,
		consumer:  consumer,
		kh:        kh,
		chClient:  chClient,
		metrics:   metrics,
	}
}

// SetHTTPHandler allows DI to inject an HTTP handler.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.httpHandler = h }

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// init app logger (console info by default)
	l, _ := applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stdout"})

	// Setup Echo HTTP server using pkg/http and register routes via handler
	var httpHandler xhttp.Handler
	if a.httpHandler != nil {
		httpHandler = a.httpHandler
	} else if a.chClient != nil && a.cfg.Forecaster.ServiceURL != "" {
		handler, err := a.buildConversationHandler(l)
		if err != nil {
			return err
		}
		httpHandler = handler
	}

	a.httpServer = xhttp.NewServer(httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	// Start collector
	go func() {
		if err := a.collector.Start(ctx); err != nil {
			l.Error("collector error", applogger.Error(err))
		}
	}()
	l.Info("collector started", applogger.Strings("tickers", a.cfg.Finnhub.Tickers))

	// Start consumer if configured
	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		l.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// buildConversationHandler wires the forecast conversation stack: series store
// over ClickHouse, model client over HTTP, durable saves over Redis.
func (a *App) buildConversationHandler(l *applogger.Logger) (xhttp.Handler, error) {
	series := repository.NewCHSeriesStore(a.chClient, a.cfg.ClickHouse.Database+".fundamentals")
	series.SetLogger(l)

	model := forecaster.NewHTTPForecastModel(a.cfg)
	if a.cfg.Redis.Enabled {
		model.SetCache(icache.NewRedisCache(icache.RedisConfig{
			Addr:     fmt.Sprintf("%s:%d", a.cfg.Redis.Host, a.cfg.Redis.Port),
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
		}))
	} else {
		model.SetCache(icache.NewTTLCache())
	}

	var gateway *repository.RedisForecastStore
	if a.cfg.Redis.Enabled {
		redisCache, err := pkgcache.NewRedisCache(
			pkgcache.WithRedisHost(a.cfg.Redis.Host),
			pkgcache.WithRedisPort(a.cfg.Redis.Port),
			pkgcache.WithRedisPassword(a.cfg.Redis.Password),
			pkgcache.WithRedisDB(a.cfg.Redis.DB),
		)
		if err != nil {
			return nil, fmt.Errorf("redis gateway: %w", err)
		}
		gateway = repository.NewRedisForecastStore(redisCache)
	} else {
		gateway = repository.NewRedisForecastStore(pkgcache.NewMemoryCache())
	}

	m := a.metrics
	if m == nil {
		m = pkgmetrics.New()
	}
	engine := usecase.NewForecastConversationEngine(model, series, gateway, m)
	engine.SetLogger(l)

	convs := usecase.NewConversationManager(a.cfg.Engine.HistoryCap)
	return api.NewConversationEchoHandler(l, engine, convs), nil
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	// best-effort logging via stdout
	l, err := applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stdout"})
	if err != nil {
		log.Printf("failed to create logger: %v", err)
		return err
	}
	l.Info("shutting down...")

	// Stop collector (pipeline + stream)
	if err := a.collector.Shutdown(ctx); err != nil {
		l.Warn("collector stop error", applogger.Error(err))
	}

	// Shutdown HTTP server
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}

	// Close infrastructure clients
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	// Stop consumer
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	// Close observation processor resources (publisher/storage)
	if a.ObsProc != nil {
		a.ObsProc.Close()
	}

	l.Info("shutdown complete")
	return nil
}
