package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppName                       string        `mapstructure:"app_name"`
	Version                       string        `mapstructure:"app_version"`
	Port                          int           `mapstructure:"port"`
	LogLevel                      string        `mapstructure:"log_level"`
	PrettyLogs                    bool          `mapstructure:"pretty_logs"`
	HttpServerWriteTimeoutSeconds int           `mapstructure:"http_server_write_timeout_seconds"`
	HttpServerReadTimeoutSeconds  int           `mapstructure:"http_server_read_timeout_seconds"`
	HttpServerIdleTimeoutSeconds  int           `mapstructure:"http_server_idle_timeout_seconds"`
	MaxHeaderBytes                int           `mapstructure:"http_server_max_header_bytes"` // 64KB
	ReadHeaderTimeoutSeconds      int           `mapstructure:"http_server_read_header_timeout_seconds"`
	ShutdownTimeout               time.Duration `mapstructure:"http_server_shutdown_timeout"`
	StartupMaxAttempts            int           `mapstructure:"startup_max_attempts"`
	// Directory served under /static
	StaticDir string `mapstructure:"static_dir"`

	// Database host
	DatabaseHost string `mapstructure:"db_host"`
	// Database port
	DatabasePort string `mapstructure:"db_port"`
	// Database user
	DatabaseUserName string `mapstructure:"db_user_name"`
	// Database user password
	DatabasePassword string `mapstructure:"db_password"`
	// Database name
	DatabaseName string `mapstructure:"db_name"`
	// Max Open Conns
	DatabaseMaxOpenConns int `mapstructure:"db_max_open_conns"`
	// Max Idle Conns
	DatabaseMaxIdleConns int `mapstructure:"db_max_idle_conns"`
	// Conn Max Lifetime
	DatabaseConnMaxLifetime time.Duration `mapstructure:"db_conn_max_lifetime"`
	// Upper bound on a single query, including the wait for a pooled connection
	DatabaseQueryTimeout time.Duration `mapstructure:"db_query_timeout"`
	// Migration Folder Path. Empty uses the migrations compiled into the binary.
	DatabaseMigrationFolderPath string `mapstructure:"db_migration_folder_path"`
	// Database Migration Version
	DatabaseMigrationVersion int `mapstructure:"db_migration_version"`
	// Database Migration Force
	DatabaseMigrationForce int `mapstructure:"db_migration_force"`
	// Database Migration Auto Rollback
	DatabaseMigrationAutoRollback bool `mapstructure:"db_migration_auto_rollback"`

	// Publish party change events
	KafkaEnabled bool `mapstructure:"kafka_enabled"`
	// Kafka brokers (comma-separated)
	KafkaBrokers string `mapstructure:"kafka_brokers"`
	// Topic for party change events
	KafkaPartyTopic string `mapstructure:"kafka_party_topic"`
	// none, gzip, snappy, lz4 or zstd
	KafkaCompression string `mapstructure:"kafka_compression"`
	// Upper bound on publishing one event, off the request path
	KafkaPublishTimeout time.Duration `mapstructure:"kafka_publish_timeout"`

	// Tracing settings
	// Enable OTLP tracing export (set to true to send traces to collector)
	OTLPEnabled bool `mapstructure:"otlp_enabled"`
	// OTLP collector endpoint
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	// OTLP protocol (grpc or http)
	OTLPProtocol string `mapstructure:"otlp_protocol"`
	// Disable TLS for OTLP (for local development)
	OTLPInsecure bool `mapstructure:"otlp_insecure"`
	// Extra collector headers, "key=value,key2=value2"
	OTLPHeaders string `mapstructure:"otlp_headers"`
}

var defaults = map[string]any{
	"app_name":                                "poppy",
	"app_version":                             "dev",
	"port":                                    6742,
	"log_level":                               "info",
	"pretty_logs":                             false,
	"http_server_write_timeout_seconds":       10,
	"http_server_read_timeout_seconds":        10,
	"http_server_idle_timeout_seconds":        10,
	"http_server_max_header_bytes":            64000,
	"http_server_read_header_timeout_seconds": 10,
	"http_server_shutdown_timeout":            "10s",
	"startup_max_attempts":                    5,
	"static_dir":                              "public",

	"db_host":                    "localhost",
	"db_port":                    "3306",
	"db_user_name":               "",
	"db_password":                "",
	"db_name":                    "poppy",
	"db_max_open_conns":          10,
	"db_max_idle_conns":          10,
	"db_conn_max_lifetime":       "5m",
	"db_query_timeout":           "10s",
	"db_migration_folder_path":   "",
	"db_migration_version":       0,
	"db_migration_force":         0,
	"db_migration_auto_rollback": true,

	"kafka_enabled":         false,
	"kafka_brokers":         "localhost:9092",
	"kafka_party_topic":     "poppy.party-events",
	"kafka_compression":     "snappy",
	"kafka_publish_timeout": "5s",

	"otlp_enabled":  false,
	"otlp_endpoint": "localhost:4317",
	"otlp_protocol": "grpc",
	"otlp_insecure": true,
	"otlp_headers":  "",
}

// Load reads configuration from the environment, after loading an optional
// .env file from the working directory.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.DatabaseMaxOpenConns <= 0 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be positive, got %d", c.DatabaseMaxOpenConns)
	}
	if c.DatabaseQueryTimeout <= 0 {
		return fmt.Errorf("DB_QUERY_TIMEOUT must be positive, got %s", c.DatabaseQueryTimeout)
	}
	if c.KafkaEnabled && c.KafkaPublishTimeout <= 0 {
		return fmt.Errorf("KAFKA_PUBLISH_TIMEOUT must be positive, got %s", c.KafkaPublishTimeout)
	}
	switch c.OTLPProtocol {
	case "grpc", "http":
	default:
		return fmt.Errorf("OTLP_PROTOCOL must be grpc or http, got %q", c.OTLPProtocol)
	}
	return nil
}

// DatabaseDSN builds the MySQL DSN. Multi statements are enabled so
// migrations can create stored procedures.
func (c *Config) DatabaseDSN() string {
	dsn := mysql.NewConfig()
	dsn.User = c.DatabaseUserName
	dsn.Passwd = c.DatabasePassword
	dsn.Net = "tcp"
	dsn.Addr = net.JoinHostPort(c.DatabaseHost, c.DatabasePort)
	dsn.DBName = c.DatabaseName
	dsn.ParseTime = true
	dsn.MultiStatements = true
	return dsn.FormatDSN()
}

// KafkaBrokerList splits KAFKA_BROKERS.
func (c *Config) KafkaBrokerList() []string {
	var brokers []string
	for _, broker := range strings.Split(c.KafkaBrokers, ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			brokers = append(brokers, broker)
		}
	}
	return brokers
}
