package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/safient/safient-escrow/internal/domain"
)

const (
	ENV_PREFIX = "SAFIENT"

	STORE_DRIVER_POSTGRES = "postgres"
	STORE_DRIVER_REDIS    = "redis"
	STORE_DRIVER_MEMORY   = "memory"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadHost        string        `mapstructure:"read_host"`
	ReadPort        int           `mapstructure:"read_port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`  // e.g. "5m"
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"` // e.g. "10m"
}

// RedisConfig holds Redis configuration. An empty Addr disables Redis.
type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// StoreConfig selects the record store backend
type StoreConfig struct {
	Driver string `mapstructure:"driver"` // postgres, redis or memory
}

// NATSConfig holds NATS JetStream configuration. An empty URL disables event publishing.
type NATSConfig struct {
	URL            string        `mapstructure:"url"`
	StreamName     string        `mapstructure:"stream_name"`
	SubjectPrefix  string        `mapstructure:"subject_prefix"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	ReconnectWait  time.Duration `mapstructure:"reconnect_wait"`
	ConnectionName string        `mapstructure:"connection_name"`
	SigningSecret  string        `mapstructure:"signing_secret"`
}

// TemporalConfig holds Temporal configuration
type TemporalConfig struct {
	HostPort                           string  `mapstructure:"host_port"`
	Namespace                          string  `mapstructure:"namespace"`
	EscrowTaskQueue                    string  `mapstructure:"escrow_task_queue"`
	MaxConcurrentActivityExecutionSize int     `mapstructure:"max_concurrent_activity_execution_size"`
	WorkerActivitiesPerSecond          float64 `mapstructure:"worker_activities_per_second"`
	MaxConcurrentActivityTaskPollers   int     `mapstructure:"max_concurrent_activity_task_pollers"`
}

// AlgorandConfig holds algod node configuration
type AlgorandConfig struct {
	AlgodAddress       string `mapstructure:"algod_address"`
	AlgodToken         string `mapstructure:"algod_token"`
	ConfirmationRounds uint64 `mapstructure:"confirmation_rounds"`
}

// EscrowConfig holds the settlement rules
type EscrowConfig struct {
	MinimumBalance       uint64        `mapstructure:"minimum_balance"` // microAlgos
	FeeFloor             uint64        `mapstructure:"fee_floor"`       // microAlgos
	MinDuration          time.Duration `mapstructure:"min_duration"`
	MaxDuration          time.Duration `mapstructure:"max_duration"`
	DefaultDurationHours float64       `mapstructure:"default_duration_hours"`
	MaxTransferAmount    uint64        `mapstructure:"max_transfer_amount"` // microAlgos, 0 = unlimited
	// SecretKey is the hex encoded 32-byte key sealing escrow secrets at rest
	SecretKey             string        `mapstructure:"secret_key"`
	AllowPlaintextSecrets bool          `mapstructure:"allow_plaintext_secrets"`
	CronSecret            string        `mapstructure:"cron_secret"`
	OpportunisticSweep    bool          `mapstructure:"opportunistic_sweep"`
	OpportunisticInterval time.Duration `mapstructure:"opportunistic_sweep_interval"`
	SweepLimit            int           `mapstructure:"sweep_limit"`
	// SettlingTimeout is how long a settlement claim without a signed payment is kept before a sweep reverts it
	SettlingTimeout time.Duration `mapstructure:"settling_timeout"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // in seconds
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTPublicKey string   `mapstructure:"jwt_public_key"`
	APIKeys      []string `mapstructure:"api_keys"`
	// ProtectReads requires credentials on the transfer read routes
	ProtectReads bool `mapstructure:"protect_reads"`
}

// RateLimitConfig holds per-client rate limiting for mutating routes
type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
	Burst             int  `mapstructure:"burst"`
}

// MetricsConfig holds Prometheus configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// WorkerConfig holds worker pool configuration
type WorkerConfig struct {
	WorkerPoolSize  int `mapstructure:"pool_size"`
	WorkerQueueSize int `mapstructure:"queue_size"`
}

// EscrowReleaseSweeperConfig holds configuration for the continuous release sweeper
type EscrowReleaseSweeperConfig struct {
	Interval  time.Duration `mapstructure:"interval"`
	BatchSize int           `mapstructure:"batch_size"`
	Worker    WorkerConfig  `mapstructure:"worker"`
}

// APIConfig holds configuration for the API server
type APIConfig struct {
	BaseConfig `mapstructure:",squash"`
	Server     ServerConfig    `mapstructure:"server"`
	Database   DatabaseConfig  `mapstructure:"database"`
	Redis      RedisConfig     `mapstructure:"redis"`
	Store      StoreConfig     `mapstructure:"store"`
	NATS       NATSConfig      `mapstructure:"nats"`
	Temporal   TemporalConfig  `mapstructure:"temporal"`
	Auth       AuthConfig      `mapstructure:"auth"`
	Algorand   AlgorandConfig  `mapstructure:"algorand"`
	Escrow     EscrowConfig    `mapstructure:"escrow"`
	RateLimit  RateLimitConfig `mapstructure:"rate_limit"`
	Metrics    MetricsConfig   `mapstructure:"metrics"`
}

// SweeperConfig holds configuration for the sweeper program
type SweeperConfig struct {
	BaseConfig           `mapstructure:",squash"`
	Database             DatabaseConfig             `mapstructure:"database"`
	Redis                RedisConfig                `mapstructure:"redis"`
	Store                StoreConfig                `mapstructure:"store"`
	NATS                 NATSConfig                 `mapstructure:"nats"`
	Algorand             AlgorandConfig             `mapstructure:"algorand"`
	Escrow               EscrowConfig               `mapstructure:"escrow"`
	Metrics              MetricsConfig              `mapstructure:"metrics"`
	MetricsAddr          string                     `mapstructure:"metrics_addr"`
	EscrowReleaseSweeper EscrowReleaseSweeperConfig `mapstructure:"escrow_release_sweeper"`
}

// WorkerEscrowConfig holds configuration for worker-escrow
type WorkerEscrowConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig `mapstructure:"database"`
	Redis      RedisConfig    `mapstructure:"redis"`
	Store      StoreConfig    `mapstructure:"store"`
	NATS       NATSConfig     `mapstructure:"nats"`
	Temporal   TemporalConfig `mapstructure:"temporal"`
	Algorand   AlgorandConfig `mapstructure:"algorand"`
	Escrow     EscrowConfig   `mapstructure:"escrow"`
}

// LoadAPIConfig loads configuration for the API server
func LoadAPIConfig(configFile string, envPath string) (*APIConfig, error) {
	v := configureViper("api", configFile, envPath)
	setCommonDefaults(v)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15)
	v.SetDefault("server.write_timeout", 60)
	v.SetDefault("server.idle_timeout", 60)
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_minute", 60)
	v.SetDefault("rate_limit.burst", 10)

	if err := readInConfig(v); err != nil {
		return nil, err
	}

	var cfg APIConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateStore(cfg.Store, cfg.Database, cfg.Redis); err != nil {
		return nil, err
	}
	if err := validateEscrow(cfg.Escrow); err != nil {
		return nil, err
	}
	if cfg.Auth.ProtectReads && cfg.Auth.JWTPublicKey == "" && len(cfg.Auth.APIKeys) == 0 {
		return nil, errors.New("auth.protect_reads needs auth.jwt_public_key or auth.api_keys")
	}

	return &cfg, nil
}

// LoadSweeperConfig loads configuration for the sweeper program
func LoadSweeperConfig(configFile string, envPath string) (*SweeperConfig, error) {
	v := configureViper("sweeper", configFile, envPath)
	setCommonDefaults(v)
	v.SetDefault("escrow_release_sweeper.interval", "1m")
	v.SetDefault("escrow_release_sweeper.batch_size", 500)
	v.SetDefault("escrow_release_sweeper.worker.pool_size", 5)
	v.SetDefault("escrow_release_sweeper.worker.queue_size", 100)
	v.SetDefault("metrics_addr", ":9090")

	if err := readInConfig(v); err != nil {
		return nil, err
	}

	var cfg SweeperConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateStore(cfg.Store, cfg.Database, cfg.Redis); err != nil {
		return nil, err
	}
	if cfg.Store.Driver == STORE_DRIVER_MEMORY {
		return nil, errors.New("store.driver memory cannot be shared with the sweeper")
	}
	if err := validateEscrow(cfg.Escrow); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadWorkerEscrowConfig loads configuration for worker-escrow
func LoadWorkerEscrowConfig(configFile string, envPath string) (*WorkerEscrowConfig, error) {
	v := configureViper("worker-escrow", configFile, envPath)
	setCommonDefaults(v)
	v.SetDefault("temporal.max_concurrent_activity_execution_size", 20)
	v.SetDefault("temporal.worker_activities_per_second", 10)
	v.SetDefault("temporal.max_concurrent_activity_task_pollers", 2)

	if err := readInConfig(v); err != nil {
		return nil, err
	}

	var cfg WorkerEscrowConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateStore(cfg.Store, cfg.Database, cfg.Redis); err != nil {
		return nil, err
	}
	if cfg.Store.Driver == STORE_DRIVER_MEMORY {
		return nil, errors.New("store.driver memory cannot be shared with worker-escrow")
	}
	if cfg.Temporal.HostPort == "" {
		return nil, errors.New("temporal.host_port is required")
	}
	if err := validateEscrow(cfg.Escrow); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setCommonDefaults(v *viper.Viper) {
	v.SetDefault("store.driver", STORE_DRIVER_POSTGRES)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("redis.db", 0)
	v.SetDefault("nats.stream_name", "SAFIENT_TRANSFERS")
	v.SetDefault("nats.subject_prefix", "safient.transfers")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.escrow_task_queue", "escrow-release")
	v.SetDefault("algorand.algod_address", "https://testnet-api.algonode.cloud")
	v.SetDefault("algorand.confirmation_rounds", 4)
	v.SetDefault("escrow.minimum_balance", domain.MINIMUM_BALANCE_MICROALGOS)
	v.SetDefault("escrow.fee_floor", domain.FEE_FLOOR_MICROALGOS)
	v.SetDefault("escrow.min_duration", domain.MIN_ESCROW_DURATION.String())
	v.SetDefault("escrow.max_duration", domain.MAX_ESCROW_DURATION.String())
	v.SetDefault("escrow.default_duration_hours", domain.DEFAULT_ESCROW_DURATION_HOURS)
	v.SetDefault("escrow.max_transfer_amount", domain.MAX_TRANSFER_AMOUNT)
	v.SetDefault("escrow.opportunistic_sweep", true)
	v.SetDefault("escrow.opportunistic_sweep_interval", "30s")
	v.SetDefault("escrow.sweep_limit", 1000)
	v.SetDefault("escrow.settling_timeout", "10m")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// readInConfig reads the config file. A missing file is fine; everything can come from env.
func readInConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

func validateStore(store StoreConfig, db DatabaseConfig, redis RedisConfig) error {
	switch store.Driver {
	case STORE_DRIVER_POSTGRES:
		if db.Host == "" {
			return errors.New("database.host is required")
		}
		if db.DBName == "" {
			return errors.New("database.dbname is required")
		}
	case STORE_DRIVER_REDIS:
		if redis.Addr == "" {
			return errors.New("redis.addr is required")
		}
	case STORE_DRIVER_MEMORY:
	default:
		return fmt.Errorf("unknown store.driver %q", store.Driver)
	}
	return nil
}

func validateEscrow(e EscrowConfig) error {
	if e.MinDuration > 0 && e.MaxDuration > 0 && e.MinDuration > e.MaxDuration {
		return errors.New("escrow.min_duration must not exceed escrow.max_duration")
	}
	if e.SecretKey == "" && !e.AllowPlaintextSecrets {
		return errors.New("escrow.secret_key is required (or set escrow.allow_plaintext_secrets for development)")
	}
	return nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	loadEnv(envPath, service)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		v.AddConfigPath("config/")
	}

	v.SetEnvPrefix(ENV_PREFIX)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars binds every known key so env-only deployments unmarshal fully
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		// Database
		"database.host",
		"database.port",
		"database.read_host",
		"database.read_port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// Redis
		"redis.addr",
		"redis.password",
		"redis.db",
		"redis.key_prefix",
		"store.driver",
		// NATS
		"nats.url",
		"nats.stream_name",
		"nats.subject_prefix",
		"nats.max_reconnects",
		"nats.reconnect_wait",
		"nats.connection_name",
		"nats.signing_secret",
		// Temporal
		"temporal.host_port",
		"temporal.namespace",
		"temporal.escrow_task_queue",
		"temporal.max_concurrent_activity_execution_size",
		"temporal.worker_activities_per_second",
		"temporal.max_concurrent_activity_task_pollers",
		// Algorand
		"algorand.algod_address",
		"algorand.algod_token",
		"algorand.confirmation_rounds",
		// Escrow
		"escrow.minimum_balance",
		"escrow.fee_floor",
		"escrow.min_duration",
		"escrow.max_duration",
		"escrow.default_duration_hours",
		"escrow.max_transfer_amount",
		"escrow.secret_key",
		"escrow.allow_plaintext_secrets",
		"escrow.cron_secret",
		"escrow.opportunistic_sweep",
		"escrow.opportunistic_sweep_interval",
		"escrow.sweep_limit",
		"escrow.settling_timeout",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		// Auth
		"auth.jwt_public_key",
		"auth.api_keys",
		"auth.protect_reads",
		// Rate limit
		"rate_limit.enabled",
		"rate_limit.requests_per_minute",
		"rate_limit.burst",
		// Metrics
		"metrics.enabled",
		"metrics.path",
		"metrics_addr",
		// Escrow release sweeper
		"escrow_release_sweeper.interval",
		"escrow_release_sweeper.batch_size",
		"escrow_release_sweeper.worker.pool_size",
		"escrow_release_sweeper.worker.queue_size",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads .env files from envPath, later files overriding earlier ones
func loadEnv(envPath string, service string) {
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		_ = godotenv.Overload(filepath.Join(envPath, envFile))
	}
}

// ChdirRepoRoot changes the working directory to the closest ancestor holding a config dir
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// ReadDSN returns the read-replica connection string, falling back to Port when ReadPort is unset
func (c *DatabaseConfig) ReadDSN() string {
	port := c.ReadPort
	if port == 0 {
		port = c.Port
	}

	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.ReadHost, port, c.User, c.Password, c.DBName, c.SSLMode)
}
