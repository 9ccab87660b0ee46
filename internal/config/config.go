package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Kafka       KafkaConfig       `mapstructure:"kafka"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Store       StoreConfig       `mapstructure:"store"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Scheduler   SchedulerConfig   `mapstructure:"scheduler"`
	Messages    MessagesConfig    `mapstructure:"messages"`
	Permissions PermissionsConfig `mapstructure:"permissions"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

type KafkaConfig struct {
	Enabled         bool     `mapstructure:"enabled"`
	Brokers         []string `mapstructure:"brokers"`
	ConsumerGroupID string   `mapstructure:"consumer_group_id"`
	Topics          []string `mapstructure:"topics"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

// StoreConfig selects where scheduled notifications and permissions live.
// Items are always read from Postgres.
type StoreConfig struct {
	Driver     string `mapstructure:"driver"` // postgres | sqlite | memory
	SQLitePath string `mapstructure:"sqlite_path"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	LockTTL  time.Duration `mapstructure:"lock_ttl"`
}

type SchedulerConfig struct {
	ReminderLeadDays int           `mapstructure:"reminder_lead_days"`
	BulkConcurrency  int           `mapstructure:"bulk_concurrency"`
	ResyncInterval   time.Duration `mapstructure:"resync_interval"` // 0 disables
	DispatchInterval time.Duration `mapstructure:"dispatch_interval"`
}

type MessagesConfig struct {
	Locale string `mapstructure:"locale"`
}

type PermissionsConfig struct {
	DefaultStatus string `mapstructure:"default_status"`
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Load reads configuration from environment variables and config files.
// Environment variables override file values. Prefix: REMINDER_
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Environment variables (e.g. REMINDER_DATABASE_HOST -> database.host)
	v.SetEnvPrefix("REMINDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Also support simple env vars without prefix for Docker Compose convenience
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.name", "DB_NAME")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	v.BindEnv("server.port", "PORT")

	// Try loading config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // Not required

	return decode(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8090")
	v.SetDefault("server.env", "development")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "reminder")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "password")
	v.SetDefault("kafka.enabled", true)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.consumer_group_id", "reminder-notification-group")
	v.SetDefault("kafka.topics", []string{"item-events", "auth-events"})
	v.SetDefault("auth.issuer", "")
	v.SetDefault("store.driver", DriverPostgres)
	v.SetDefault("store.sqlite_path", "reminder.db")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.lock_ttl", 2*time.Minute)
	v.SetDefault("scheduler.reminder_lead_days", 7)
	v.SetDefault("scheduler.bulk_concurrency", 1)
	v.SetDefault("scheduler.resync_interval", 6*time.Hour)
	v.SetDefault("scheduler.dispatch_interval", 30*time.Second)
	v.SetDefault("messages.locale", "it")
	v.SetDefault("permissions.default_status", "undetermined")
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case DriverPostgres, DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("config: unknown store.driver %q", c.Store.Driver)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("config: auth.jwt_secret is required")
	}
	if c.Scheduler.ReminderLeadDays < 0 {
		return fmt.Errorf("config: scheduler.reminder_lead_days must not be negative")
	}
	if c.Scheduler.DispatchInterval <= 0 {
		return fmt.Errorf("config: scheduler.dispatch_interval must be positive")
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return "host=" + d.Host +
		" port=" + strconv.Itoa(d.Port) +
		" dbname=" + d.Name +
		" user=" + d.User +
		" password=" + d.Password +
		" sslmode=disable"
}
