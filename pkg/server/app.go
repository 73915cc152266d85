package server

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	domrepo "FinSim/internal/domain/repository"
	"FinSim/internal/usecase"
	"FinSim/pkg/cache"
	pkgch "FinSim/pkg/clickhouse"
	"FinSim/pkg/config"
	xhttp "FinSim/pkg/http"
	pkgkafka "FinSim/pkg/kafka"
	applogger "FinSim/pkg/logger"
	"FinSim/pkg/stream"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	session    *usecase.Session
	httpServer *xhttp.Server
	hub        *stream.Hub
	consumer   *pkgkafka.Consumer
	fills      pkgkafka.MessageHandler
	sink       domrepo.OrderSink
	store      domrepo.DecisionStore
	cache      cache.Service
	producer   *pkgkafka.Producer
	clickhouse *pkgch.Client
}

// Deps groups what the injector hands to New.
type Deps struct {
	Config     *config.Config
	Logger     *applogger.Logger
	Session    *usecase.Session
	HTTP       *xhttp.Server
	Hub        *stream.Hub
	Consumer   *pkgkafka.Consumer
	Fills      pkgkafka.MessageHandler
	Sink       domrepo.OrderSink
	Store      domrepo.DecisionStore
	Cache      cache.Service
	Producer   *pkgkafka.Producer
	ClickHouse *pkgch.Client
}

// New creates a new App instance with all dependencies.
func New(d Deps) *App {
	l := d.Logger
	if l == nil {
		l = applogger.Nop()
	}
	return &App{
		cfg:        d.Config,
		log:        l,
		session:    d.Session,
		httpServer: d.HTTP,
		hub:        d.Hub,
		consumer:   d.Consumer,
		fills:      d.Fills,
		sink:       d.Sink,
		store:      d.Store,
		cache:      d.Cache,
		producer:   d.Producer,
		clickhouse: d.ClickHouse,
	}
}

// Session exposes the hosted session, mainly for the CLI.
func (a *App) Session() *usecase.Session { return a.session }

// Run starts the HTTP API, the fills consumer and, when configured, the
// auto-run session. It blocks until SIGINT/SIGTERM or ctx is done.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.startConsumer(); err != nil {
		return err
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	if a.cfg.Session.AutoRun {
		go func() {
			sum, err := a.session.Run(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				a.log.Error("session stopped", applogger.Error(err))
				return
			}
			a.log.Info("auto-run session done", applogger.Int("ticks", sum.Ticks), applogger.Float64("price", sum.Price))
		}()
	}

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return a.Shutdown(context.Background())
}

// Simulate runs the configured session headless and releases resources.
func (a *App) Simulate(ctx context.Context) (usecase.Summary, error) {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.startConsumer(); err != nil {
		return usecase.Summary{}, err
	}
	sum, err := a.session.Run(ctx)
	if serr := a.Shutdown(context.Background()); serr != nil && err == nil {
		err = serr
	}
	return sum, err
}

func (a *App) startConsumer() error {
	if a.consumer == nil || a.fills == nil {
		return nil
	}
	a.consumer.RegisterHandler(a.fills)
	if err := a.consumer.Start(); err != nil {
		a.log.Error("kafka consumer error", applogger.Error(err))
		return err
	}
	a.log.Info("kafka consumer started", applogger.String("topic", a.fills.Topic()))
	return nil
}

// Shutdown gracefully stops all services. Every step runs even if an
// earlier one fails; the first error is returned.
func (a *App) Shutdown(ctx context.Context) error {
	var first error
	keep := func(what string, err error) {
		if err == nil {
			return
		}
		a.log.Warn(what+" error", applogger.Error(err))
		if first == nil {
			first = err
		}
	}

	a.log.Info("shutting down...")

	if a.httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, a.httpServer.ShutdownTimeout())
		keep("http shutdown", a.httpServer.Stop(shutdownCtx))
		cancel()
	}
	if a.hub != nil {
		a.hub.Close()
	}
	if a.consumer != nil {
		stopCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
		keep("kafka consumer stop", a.consumer.Stop(stopCtx))
		cancel()
	}

	// the collector publishes through the sink's producer; flush it first
	a.log.RemoveCollector()

	if a.sink != nil {
		keep("order sink close", a.sink.Close())
	}
	if a.producer != nil {
		keep("kafka producer close", a.producer.Close())
	}
	if a.store != nil {
		keep("decision store close", a.store.Close())
	}
	if a.clickhouse != nil {
		keep("clickhouse close", a.clickhouse.Close())
	}
	if a.cache != nil {
		keep("cache close", a.cache.Close())
	}
	return first
}
