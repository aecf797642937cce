// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

type SMTPConfig struct {
	Host     string `koanf:"host"`
	Port     string `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	From     string `koanf:"from"`
	UseTLS   bool   `koanf:"use_tls"`
}

type S3Settings struct {
	Region          string `koanf:"region"`
	AccessKeyID     string `koanf:"access_key_id"`
	SecretAccessKey string `koanf:"secret_access_key"`
	Bucket          string `koanf:"bucket"`
	Endpoint        string `koanf:"endpoint"`
}

type Config struct {
	Port        string `koanf:"port"`
	Environment string `koanf:"environment"`
	DatabaseURL string `koanf:"database_url"`
	LogFormat   string `koanf:"log_format"`

	JWTSecret    string `koanf:"jwt_secret"`
	JWTExpiresIn string `koanf:"jwt_expires_in"`
	BcryptCost   int    `koanf:"bcrypt_cost"`

	FrontendURL string     `koanf:"frontend_url"`
	CORSOrigins []string   `koanf:"cors_origins"`
	EmailFrom   string     `koanf:"email_from"`
	SMTP        SMTPConfig `koanf:"smtp"`

	RedisURL             string        `koanf:"redis_url"`
	ResetCleanupInterval time.Duration `koanf:"reset_cleanup_interval"`
	MetricsEnabled       bool          `koanf:"metrics_enabled"`

	S3 S3Settings `koanf:"s3"`
}

const (
	defaultJWTExpiresIn = "7d"
	defaultBcryptCost   = 10
	maxBcryptCost       = 31
)

// Load reads configuration from the environment, falling back to defaults.
func Load() *Config {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		host := getEnv("PSQL_HOST", "localhost")
		port := getEnv("PSQL_PORT", "5432")
		user := getEnv("PSQL_USER", "postgres")
		password := getEnv("PSQL_PASSWORD", "postgres")
		dbName := getEnv("PSQL_DB_NAME", "expense_tracker")

		u := &url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(user, password),
			Host:   host + ":" + port,
			Path:   dbName,
		}
		q := u.Query()
		q.Set("sslmode", getEnv("PSQL_SSLMODE", "disable"))
		u.RawQuery = q.Encode()
		databaseURL = u.String()
	}

	return &Config{
		Port:         getEnv("PORT", "8080"),
		Environment:  getEnv("ENVIRONMENT", "development"),
		DatabaseURL:  databaseURL,
		LogFormat:    getEnv("LOG_FORMAT", "json"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		JWTExpiresIn: getEnv("JWT_EXPIRES_IN", defaultJWTExpiresIn),
		BcryptCost:   getEnvInt("BCRYPT_COST", defaultBcryptCost),
		FrontendURL:  strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3001"), "/"),
		CORSOrigins:  splitList(getEnv("CORS_ORIGINS", "http://localhost:3001")),
		EmailFrom:    getEnv("EMAIL_FROM", "Expense Tracker <noreply@resend.dev>"),
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getEnv("SMTP_PORT", "587"),
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
			UseTLS:   getEnvBool("SMTP_USE_TLS", false),
		},
		RedisURL:             os.Getenv("REDIS_URL"),
		ResetCleanupInterval: getEnvDuration("RESET_CLEANUP_INTERVAL", time.Hour),
		MetricsEnabled:       getEnvBool("METRICS_ENABLED", true),
		S3: S3Settings{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			Bucket:          os.Getenv("S3_BUCKET_NAME"),
			Endpoint:        os.Getenv("S3_ENDPOINT"),
		},
	}
}

// LoadWithOverrides starts from Load and layers an optional YAML file and
// then any flags the user explicitly set. Flag names use dashes; they map
// onto the underscore keys of the file.
func LoadWithOverrides(path string, flags *pflag.FlagSet) (*Config, error) {
	cfg := Load()
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	if flags != nil {
		provider := posflag.ProviderWithValue(flags, ".", nil, func(key, value string) (string, interface{}) {
			return strings.ReplaceAll(key, "-", "_"), value
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.FrontendURL = strings.TrimRight(cfg.FrontendURL, "/")
	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	switch strings.ToLower(c.Environment) {
	case "development", "dev", "test", "local":
		return true
	}
	return false
}

// SessionTTL parses JWTExpiresIn. Besides Go durations it accepts a day
// suffix ("7d").
func (c *Config) SessionTTL() (time.Duration, error) {
	return ParseTTL(c.JWTExpiresIn)
}

func ParseTTL(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = defaultJWTExpiresIn
	}
	if days, ok := strings.CutSuffix(raw, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", raw)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	return d, nil
}

// Validate rejects settings the server must not start with.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		if !c.IsDevelopment() {
			errs = append(errs, errors.New("JWT_SECRET is required"))
		}
	}
	if ttl, err := c.SessionTTL(); err != nil {
		errs = append(errs, fmt.Errorf("JWT_EXPIRES_IN: %w", err))
	} else if ttl <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRES_IN must be positive"))
	}
	minCost := defaultBcryptCost
	if c.IsDevelopment() {
		minCost = 4
	}
	if c.BcryptCost < minCost || c.BcryptCost > maxBcryptCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d", minCost, maxBcryptCost, c.BcryptCost))
	}
	if c.ResetCleanupInterval < 0 {
		errs = append(errs, errors.New("RESET_CLEANUP_INTERVAL must not be negative"))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return defaultValue
	}
	return b
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return defaultValue
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
