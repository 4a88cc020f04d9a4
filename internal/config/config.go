package config

import (
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds every tunable the engine's three processes and its
// optional admin server need. Values come from defaults, an optional
// config.yaml, then WORKFLOW_-prefixed environment variables, in that
// order of increasing precedence.
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	Worker   WorkerConfig
	Event    EventConfig
	Engine   EngineConfig
	Server   ServerConfig
	Auth     AuthConfig
	LogLevel string
}

// DatabaseConfig configures the Postgres connection pool.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig configures the queue's Redis connection.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// WorkerConfig governs the Task process's worker pool.
type WorkerConfig struct {
	Concurrency       int
	IdleInterval      time.Duration
	ShutdownTimeout   time.Duration
	HeartbeatInterval time.Duration
	HeartbeatTimeout  time.Duration
}

// EventConfig governs the Event process's poll loop.
type EventConfig struct {
	IdleInterval time.Duration
}

// EngineConfig names the running engine and its on-disk footprint.
type EngineConfig struct {
	Name       string
	QueueName  string
	LogDir     string
	Environment string
}

// ServerConfig configures the optional admin/observability HTTP server.
type ServerConfig struct {
	Enabled      bool
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MetricsPath  string
}

// AuthConfig configures the admin server's dashboard bearer auth. This
// is unrelated to CLI authentication, which is explicitly out of scope.
type AuthConfig struct {
	Enabled   bool
	JWTSecret string
}

// Load reads configuration from (in increasing precedence order)
// built-in defaults, an optional config.yaml, and WORKFLOW_-prefixed
// environment variables.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/workfloweng")

	setDefaults()

	viper.SetEnvPrefix("WORKFLOW")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// DATABASE_URL / REDIS_URL are bound directly since they don't carry
	// the WORKFLOW_ prefix other environment overrides use.
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("ENGINE_NAME"); v != "" {
		cfg.Engine.Name = v
	}
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		cfg.Engine.Environment = v
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("database.maxopenconns", 20)
	viper.SetDefault("database.maxidleconns", 5)
	viper.SetDefault("database.connmaxlifetime", 30*time.Minute)

	viper.SetDefault("redis.poolsize", 50)
	viper.SetDefault("redis.minidleconns", 5)
	viper.SetDefault("redis.maxretries", 3)
	viper.SetDefault("redis.dialtimeout", 5*time.Second)
	viper.SetDefault("redis.readtimeout", 3*time.Second)
	viper.SetDefault("redis.writetimeout", 3*time.Second)

	viper.SetDefault("worker.concurrency", 4)
	viper.SetDefault("worker.idleinterval", 2*time.Second)
	viper.SetDefault("worker.shutdowntimeout", 10*time.Second)
	viper.SetDefault("worker.heartbeatinterval", 5*time.Second)
	viper.SetDefault("worker.heartbeattimeout", 15*time.Second)

	viper.SetDefault("event.idleinterval", 2*time.Second)

	viper.SetDefault("engine.name", "workflow-engine")
	viper.SetDefault("engine.queuename", "tasks")
	viper.SetDefault("engine.logdir", "./logs")
	viper.SetDefault("engine.environment", "dev")

	viper.SetDefault("server.enabled", false)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8090)
	viper.SetDefault("server.readtimeout", 15*time.Second)
	viper.SetDefault("server.writetimeout", 15*time.Second)
	viper.SetDefault("server.metricspath", "/metrics")

	viper.SetDefault("auth.enabled", false)
	viper.SetDefault("auth.jwtsecret", "")

	viper.SetDefault("loglevel", "info")
}
