package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080" validate:"gt=0,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		SlowThreshold   time.Duration `yaml:"slow_threshold" default:"500ms"`
		CORS            bool          `yaml:"cors"`
		// Per-client token bucket on POST /api/session/step; 0 disables it.
		StepRate  float64 `yaml:"step_rate" default:"5" validate:"gte=0"`
		StepBurst int     `yaml:"step_burst" default:"10" validate:"gt=0"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Logging struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"json" validate:"oneof=json console"`
		Output string `yaml:"output" default:"stdout"`
		// Aggregated warn/error diagnostics are published to Kafka when set.
		Collect         bool          `yaml:"collect"`
		CollectInterval time.Duration `yaml:"collect_interval" default:"30s"`
	} `yaml:"logging"`
	Session Session `yaml:"session"`
	Market  Market  `yaml:"market"`
	Agents  []Agent `yaml:"agents" validate:"required,min=1,dive"`
	Backend struct {
		// Where intents and decision records go: none, kafka, clickhouse or both.
		Sink         string        `yaml:"sink" default:"none" validate:"oneof=none kafka clickhouse both"`
		State        string        `yaml:"state" default:"memory" validate:"oneof=memory redis"`
		BatchSize    int           `yaml:"batch_size" default:"500" validate:"gt=0"`
		BatchTimeout time.Duration `yaml:"batch_timeout" default:"1s"`
	} `yaml:"backend"`
	Kafka struct {
		Brokers          []string `yaml:"brokers"`
		OrdersTopic      string   `yaml:"orders_topic" default:"finsim.orders"`
		FillsTopic       string   `yaml:"fills_topic"`
		DiagnosticsTopic string   `yaml:"diagnostics_topic" default:"finsim.diagnostics"`
		RequiredAcks     int      `yaml:"required_acks" default:"-1"`
		Compression      string   `yaml:"compression" default:"snappy"`
		Producer         struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"5"`
			Linger       time.Duration `yaml:"linger" default:"50ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id" default:"finsim-fills"`
			Workers    int           `yaml:"workers" default:"1"`
			BufferSize int           `yaml:"buffer_size" default:"256"`
			RetryMax   int           `yaml:"retry_max" default:"3"`
			BackoffMin time.Duration `yaml:"backoff_min" default:"100ms"`
			BackoffMax time.Duration `yaml:"backoff_max" default:"2s"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes" default:"1"`
			MaxBytes   int           `yaml:"max_bytes" default:"10485760"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"finsim"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout     time.Duration `yaml:"write_timeout" default:"30s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
	} `yaml:"clickhouse"`
	Redis struct {
		Host     string        `yaml:"host" default:"localhost"`
		Port     int           `yaml:"port" default:"6379"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		PoolSize int           `yaml:"pool_size" default:"10"`
		Prefix   string        `yaml:"prefix" default:"finsim"`
		TTL      time.Duration `yaml:"ttl" default:"24h"`
	} `yaml:"redis"`
}

// Session drives the simulation clock.
type Session struct {
	Steps        int           `yaml:"steps" default:"1000" validate:"gt=0"`
	Seed         int64         `yaml:"seed" default:"1"`
	AutoRun      bool          `yaml:"auto_run"`
	TickInterval time.Duration `yaml:"tick_interval"`
}

// Market configures the paper market hosting the agents.
type Market struct {
	ID              string  `yaml:"id" default:"MKT" validate:"required"`
	InitialPrice    float64 `yaml:"initial_price" default:"300" validate:"gt=0"`
	FundamentalVol  float64 `yaml:"fundamental_volatility" validate:"gte=0"`
	TickSize        float64 `yaml:"tick_size" default:"0.01" validate:"gt=0"`
	WarmupTicks     int     `yaml:"warmup_ticks" default:"1" validate:"gte=0"`
	FundamentalSeed int64   `yaml:"fundamental_seed" default:"7"`
}

// Agent is one agent group. Count agents are created with IDs prefix-0..n-1
// and seeds Seed, Seed+1, ...
type Agent struct {
	Prefix   string   `yaml:"prefix" default:"afcn" validate:"required"`
	Count    int      `yaml:"count" default:"1" validate:"gt=0"`
	Seed     int64    `yaml:"seed" default:"1"`
	Cash     float64  `yaml:"cash" default:"10000" validate:"gte=0"`
	Position int      `yaml:"position" validate:"gte=0"`
	Markets  []string `yaml:"markets"`
	// Settings holds the participant parameter block; it is decoded by the
	// participant package so that this package stays free of model types.
	Settings yaml.Node `yaml:"settings"`
}

var validate = validator.New()

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes raw YAML, fills defaults and validates the result.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.applyDefaults(); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

func (c *Config) applyDefaults() error {
	if err := defaults.Set(c); err != nil {
		return err
	}
	for i := range c.Agents {
		if err := defaults.Set(&c.Agents[i]); err != nil {
			return fmt.Errorf("agents[%d]: %w", i, err)
		}
	}
	return nil
}

// LoadWithEnv loads .env files (missing ones are ignored), then the YAML file,
// and finally applies environment overrides.
func LoadWithEnv(path string, envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	if v := os.Getenv("FINSIM_ENV"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("BACKEND_SINK"); v != "" {
		c.Backend.Sink = v
	}
	if v := os.Getenv("BACKEND_STATE"); v != "" {
		c.Backend.State = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_ORDERS_TOPIC"); v != "" {
		c.Kafka.OrdersTopic = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("SESSION_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("SESSION_SEED: %w", err)
		}
		c.Session.Seed = seed
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Backend.Sink == "kafka" || c.Backend.Sink == "both" || c.Kafka.FillsTopic != "" || c.Logging.Collect {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers cannot be empty when kafka is in use")
		}
	}
	seen := make(map[string]struct{}, len(c.Agents))
	for i, a := range c.Agents {
		if _, dup := seen[a.Prefix]; dup {
			return fmt.Errorf("agents[%d]: duplicate prefix %q", i, a.Prefix)
		}
		seen[a.Prefix] = struct{}{}
		if a.Settings.Kind == 0 {
			return fmt.Errorf("agents[%d]: settings block is required", i)
		}
	}
	return nil
}

// UsesKafka reports whether intents are published to Kafka.
func (c *Config) UsesKafka() bool {
	return c.Backend.Sink == "kafka" || c.Backend.Sink == "both"
}

// UsesClickHouse reports whether decisions are audited in ClickHouse.
func (c *Config) UsesClickHouse() bool {
	return c.Backend.Sink == "clickhouse" || c.Backend.Sink == "both"
}
