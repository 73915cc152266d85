package di

import (
	"context"
	"fmt"
	"time"

	"FinSim/internal/domain/repository"
	"FinSim/internal/handler/api"
	"FinSim/internal/market/paper"
	internalrepo "FinSim/internal/repository"
	"FinSim/internal/usecase"
	"FinSim/pkg/cache"
	pkgch "FinSim/pkg/clickhouse"
	"FinSim/pkg/config"
	xhttp "FinSim/pkg/http"
	httpmw "FinSim/pkg/http/middleware"
	pkgkafka "FinSim/pkg/kafka"
	applogger "FinSim/pkg/logger"
	"FinSim/pkg/metrics"
	"FinSim/pkg/server"
	"FinSim/pkg/stream"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Output:    cfg.Logging.Output,
		Component: "finsim",
	})
}

// ProvideRegistry creates the Prometheus registry every collector registers on.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg *prometheus.Registry) repository.Metrics {
	return metrics.New(reg)
}

// ProvideClickHouseClient creates a ClickHouse client when decisions are
// audited there, nil otherwise.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.UsesClickHouse() {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithAddr(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, internalrepo.DecisionSchema(decisionTable(cfg))); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

func decisionTable(cfg *config.Config) string {
	return cfg.ClickHouse.Database + ".decisions"
}

// ProvideKafkaProducer creates a Kafka producer when intents or diagnostics
// go to Kafka, nil otherwise.
func ProvideKafkaProducer(cfg *config.Config, reg *prometheus.Registry, l *applogger.Logger) (*pkgkafka.Producer, error) {
	if !cfg.UsesKafka() && !cfg.Logging.Collect {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
		pkgkafka.WithProducerMetrics(reg),
		pkgkafka.WithProducerLogger(l),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideOrderSink picks where emitted intents go.
func ProvideOrderSink(cfg *config.Config, producer *pkgkafka.Producer) repository.OrderSink {
	if cfg.UsesKafka() && producer != nil {
		return internalrepo.NewKafkaOrderSink(producer, cfg.Kafka.OrdersTopic, cfg.Market.TickSize)
	}
	return internalrepo.NoopOrderSink{}
}

// ProvideDecisionStore picks where decision audit records go.
func ProvideDecisionStore(cfg *config.Config, client *pkgch.Client) repository.DecisionStore {
	if client == nil {
		return internalrepo.NoopDecisionStore{}
	}
	return internalrepo.NewClickHouseDecisionStore(client.DB(), decisionTable(cfg), cfg.Backend.BatchSize)
}

// ProvideCache creates the Redis cache, or an in-process one for backend.state=memory.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if cfg.Backend.State != "redis" {
		return cache.NewMemoryCache(cache.WithMemoryCleanup(time.Minute)), nil
	}
	c, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Redis.Host, cfg.Redis.Port),
		cache.WithRedisAuth(cfg.Redis.Password, cfg.Redis.DB),
		cache.WithRedisPoolSize(cfg.Redis.PoolSize),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return c, nil
}

// ProvideStateStore keeps tracked-order snapshots in the cache.
func ProvideStateStore(cfg *config.Config, c cache.Service) repository.StateStore {
	return internalrepo.NewCacheStateStore(c, cfg.Redis.TTL)
}

// ProvideHub creates the websocket fan-out for emitted intents.
func ProvideHub(l *applogger.Logger) *stream.Hub {
	return stream.NewHub(l, 256)
}

// ProvideMarket creates the paper market hosting the agents.
func ProvideMarket(cfg *config.Config, l *applogger.Logger) repository.Exchange {
	return paper.New(cfg.Market.ID,
		paper.WithInitialPrice(cfg.Market.InitialPrice),
		paper.WithFundamentalVolatility(cfg.Market.FundamentalVol),
		paper.WithTickSize(cfg.Market.TickSize),
		paper.WithSeed(cfg.Market.FundamentalSeed),
		paper.WithWarmup(cfg.Market.WarmupTicks),
		paper.WithLogger(l),
	)
}

// ProvideAgents builds every configured agent.
func ProvideAgents(cfg *config.Config, l *applogger.Logger) ([]usecase.AgentSpec, error) {
	return usecase.BuildAgents(cfg.Agents, cfg.Market.ID, l)
}

// ProvideSession creates the session host. With a Redis state store the
// agents resume their tracked orders from the last snapshot.
func ProvideSession(
	cfg *config.Config,
	market repository.Exchange,
	agents []usecase.AgentSpec,
	sink repository.OrderSink,
	store repository.DecisionStore,
	state repository.StateStore,
	hub *stream.Hub,
	m repository.Metrics,
	l *applogger.Logger,
) (*usecase.Session, error) {
	s, err := usecase.NewSession(market, agents, cfg.Session.Seed,
		usecase.WithSink(sink),
		usecase.WithDecisionStore(store),
		usecase.WithStateStore(state),
		usecase.WithBroadcaster(hub),
		usecase.WithMetrics(m),
		usecase.WithSessionLogger(l),
		usecase.WithSchedule(cfg.Session.Steps, cfg.Session.TickInterval),
	)
	if err != nil {
		return nil, err
	}
	if cfg.Backend.State == "redis" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Restore(ctx); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// ProvideFillsHandler routes venue fills to agents when a fills topic is set.
func ProvideFillsHandler(cfg *config.Config, s *usecase.Session, m repository.Metrics) pkgkafka.MessageHandler {
	if cfg.Kafka.FillsTopic == "" {
		return nil
	}
	return usecase.NewKafkaFillsHandler(cfg.Kafka.FillsTopic, s, m)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config, reg *prometheus.Registry, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if cfg.Kafka.FillsTopic == "" {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
		pkgkafka.WithConsumerMetrics(reg),
		pkgkafka.WithConsumerLogger(l),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideHTTPHandler creates the simulation API routes.
func ProvideHTTPHandler(cfg *config.Config, s *usecase.Session, hub *stream.Hub, l *applogger.Logger) xhttp.Handler {
	var guard []echo.MiddlewareFunc
	if cfg.Server.StepRate > 0 {
		lim := httpmw.NewLimiter(float64(cfg.Server.StepBurst), cfg.Server.StepRate)
		guard = append(guard, httpmw.RateLimit(l, lim))
	}
	return api.NewSimulationEchoHandler(l, s, hub, guard...)
}

// ProvideHTTPServer creates the Echo server.
func ProvideHTTPServer(cfg *config.Config, h xhttp.Handler, reg *prometheus.Registry, l *applogger.Logger) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer(h,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(metricsPath),
		xhttp.WithCORS(cfg.Server.CORS),
		xhttp.WithSlowThreshold(cfg.Server.SlowThreshold),
		xhttp.WithRegistry(reg),
		xhttp.WithLogger(l),
	)
}

// ProvideApp creates the application and, when enabled, starts shipping
// aggregated warn/error diagnostics to Kafka.
func ProvideApp(d server.Deps) *server.App {
	if d.Config.Logging.Collect && d.Producer != nil {
		d.Logger.AddCollector(&applogger.CollectionConfig{
			TimeInterval: d.Config.Logging.CollectInterval,
			Topic:        d.Config.Kafka.DiagnosticsTopic,
			GroupBy:      []string{"reason", "market_id"},
			Publisher:    d.Producer,
		})
	}
	return server.New(d)
}
