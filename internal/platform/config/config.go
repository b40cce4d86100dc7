package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

const (
	DriverFile     = "file"
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

type Config struct {
	Addr               string        `toml:"addr"`
	Environment        string        `toml:"environment"`
	LogLevel           string        `toml:"log_level"`
	StoreDriver        string        `toml:"store_driver"`
	DataDir            string        `toml:"data_dir"`
	DatabaseURL        string        `toml:"database_url"`
	RedisURL           string        `toml:"redis_url"`
	RedisPrefix        string        `toml:"redis_prefix"`
	JWTSecret          string        `toml:"jwt_secret"`
	TokenTTL           time.Duration `toml:"token_ttl"`
	DataEncryptionKey  string        `toml:"data_encryption_key"`
	AuthEnforced       bool          `toml:"auth_enforced"`
	FrontendDir        string        `toml:"frontend_dir"`
	SeedAdminName      string        `toml:"seed_admin_name"`
	SeedAdminEmail     string        `toml:"seed_admin_email"`
	SeedAdminPassword  string        `toml:"seed_admin_password"`
	MaxBodyBytes       int64         `toml:"max_body_bytes"`
	RateLimitPerMinute int           `toml:"rate_limit_per_minute"`
	EmailEnabled       bool          `toml:"email_enabled"`
	EmailFrom          string        `toml:"email_from"`
	SMTPHost           string        `toml:"smtp_host"`
	SMTPPort           int           `toml:"smtp_port"`
	SMTPUser           string        `toml:"smtp_user"`
	SMTPPassword       string        `toml:"smtp_password"`
	KafkaBrokers       []string      `toml:"kafka_brokers"`
	KafkaTopic         string        `toml:"kafka_topic"`
	DefaultTotalLeaves int           `toml:"default_total_leaves"`
	DefaultShift       string        `toml:"default_shift"`
	AuditMaxEvents     int           `toml:"audit_max_events"`
	MetricsEnabled     bool          `toml:"metrics_enabled"`
}

func Default() Config {
	return Config{
		Addr:               ":5000",
		Environment:        "development",
		LogLevel:           "info",
		StoreDriver:        DriverFile,
		DataDir:            "data",
		RedisPrefix:        "worklog:",
		TokenTTL:           12 * time.Hour,
		AuthEnforced:       true,
		FrontendDir:        "",
		SeedAdminName:      "Admin User",
		SeedAdminEmail:     "admin",
		SeedAdminPassword:  "admin",
		MaxBodyBytes:       1048576,
		RateLimitPerMinute: 120,
		EmailFrom:          "no-reply@example.com",
		SMTPPort:           587,
		KafkaTopic:         "worklog.events",
		DefaultTotalLeaves: 20,
		DefaultShift:       "IND",
		AuditMaxEvents:     5000,
		MetricsEnabled:     true,
	}
}

// Load reads .env when present, then CONFIG_FILE (TOML) when set, then
// environment variables. Later sources win.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	base := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		fromFile, err := LoadFile(path, base)
		if err != nil {
			return Config{}, err
		}
		base = fromFile
	}
	return FromEnv(base), nil
}

// LoadFile decodes a TOML file on top of base.
func LoadFile(path string, base Config) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	cfg := base
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, nil
}

func FromEnv(base Config) Config {
	return Config{
		Addr:               getEnv("APP_ADDR", base.Addr),
		Environment:        getEnv("APP_ENV", base.Environment),
		LogLevel:           getEnv("LOG_LEVEL", base.LogLevel),
		StoreDriver:        strings.ToLower(getEnv("STORE_DRIVER", base.StoreDriver)),
		DataDir:            getEnv("DATA_DIR", base.DataDir),
		DatabaseURL:        getEnv("DATABASE_URL", base.DatabaseURL),
		RedisURL:           getEnv("REDIS_URL", base.RedisURL),
		RedisPrefix:        getEnv("REDIS_PREFIX", base.RedisPrefix),
		JWTSecret:          getEnv("JWT_SECRET", base.JWTSecret),
		TokenTTL:           getEnvDuration("TOKEN_TTL", base.TokenTTL),
		DataEncryptionKey:  getEnv("DATA_ENCRYPTION_KEY", base.DataEncryptionKey),
		AuthEnforced:       getEnvBool("AUTH_ENFORCED", base.AuthEnforced),
		FrontendDir:        getEnv("FRONTEND_DIR", base.FrontendDir),
		SeedAdminName:      getEnv("SEED_ADMIN_NAME", base.SeedAdminName),
		SeedAdminEmail:     getEnv("SEED_ADMIN_EMAIL", base.SeedAdminEmail),
		SeedAdminPassword:  getEnv("SEED_ADMIN_PASSWORD", base.SeedAdminPassword),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", int(base.MaxBodyBytes))),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", base.RateLimitPerMinute),
		EmailEnabled:       getEnvBool("EMAIL_ENABLED", base.EmailEnabled),
		EmailFrom:          getEnv("EMAIL_FROM", base.EmailFrom),
		SMTPHost:           getEnv("SMTP_HOST", base.SMTPHost),
		SMTPPort:           getEnvInt("SMTP_PORT", base.SMTPPort),
		SMTPUser:           getEnv("SMTP_USER", base.SMTPUser),
		SMTPPassword:       getEnv("SMTP_PASSWORD", base.SMTPPassword),
		KafkaBrokers:       getEnvList("KAFKA_BROKERS", base.KafkaBrokers),
		KafkaTopic:         getEnv("KAFKA_TOPIC", base.KafkaTopic),
		DefaultTotalLeaves: getEnvInt("DEFAULT_TOTAL_LEAVES", base.DefaultTotalLeaves),
		DefaultShift:       getEnv("DEFAULT_SHIFT", base.DefaultShift),
		AuditMaxEvents:     getEnvInt("AUDIT_MAX_EVENTS", base.AuditMaxEvents),
		MetricsEnabled:     getEnvBool("METRICS_ENABLED", base.MetricsEnabled),
	}
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverFile:
		if strings.TrimSpace(c.DataDir) == "" {
			return fmt.Errorf("DATA_DIR is required for the file store")
		}
	case DriverMemory:
	case DriverPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	case DriverRedis:
		if strings.TrimSpace(c.RedisURL) == "" {
			return fmt.Errorf("REDIS_URL is required for the redis store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.IsProduction() {
		if strings.TrimSpace(c.JWTSecret) == "" {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if strings.TrimSpace(c.DataEncryptionKey) == "" {
			return fmt.Errorf("DATA_ENCRYPTION_KEY must be set in production for encryption at rest")
		}
		if c.SeedAdminPassword == "admin" {
			return fmt.Errorf("SEED_ADMIN_PASSWORD must be changed in production")
		}
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.EmailEnabled && c.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST must be set when EMAIL_ENABLED is true")
	}
	if c.DefaultTotalLeaves < 0 {
		return fmt.Errorf("DEFAULT_TOTAL_LEAVES must not be negative")
	}
	return nil
}
