package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"expensetracker/internal/config"
	"expensetracker/internal/db"
	"expensetracker/internal/db/migrations"
	"expensetracker/internal/logging"
	"expensetracker/internal/observability"
	"expensetracker/internal/repository"
	"expensetracker/internal/services"
)

const (
	serviceName       = "expense-tracker"
	devJWTSecret      = "dev-secret-change-me"
	resetLimiterKey   = "expense-tracker:reset"
	redisPingTimeout  = 2 * time.Second
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// loadConfig layers the config file and explicitly set flags over the
// environment and validates the result.
func loadConfig(flags *pflag.FlagSet) (*config.Config, error) {
	cfg, err := config.LoadWithOverrides(configFile, flags)
	if err != nil {
		return nil, oops.Code("CONFIG_INVALID").With("config_file", configFile).Wrap(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrap(err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	logger := logging.Setup(serviceName, version, cfg.LogFormat, os.Stderr)
	slog.SetDefault(logger)
	return logger
}

// openDatabase creates the database when missing, connects with retry and
// applies pending migrations.
func openDatabase(ctx context.Context, cfg *config.Config) (*db.Database, error) {
	if err := db.CreateDatabaseIfNotExists(ctx, cfg.DatabaseURL); err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "ensure database").Wrap(err)
	}
	database, err := db.New(ctx, cfg.DatabaseURL, db.DefaultConnectOptions())
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	if err := migrations.RunMigrations(ctx, database.DB); err != nil {
		_ = database.Close()
		return nil, oops.Code("MIGRATION_FAILED").With("operation", "run migrations").Wrap(err)
	}
	return database, nil
}

func sessionSecret(cfg *config.Config, logger *slog.Logger) string {
	if cfg.JWTSecret != "" {
		return cfg.JWTSecret
	}
	logger.Warn("JWT_SECRET not set, using development secret")
	return devJWTSecret
}

// emailSender delivers over SMTP when a host is configured and logs
// messages otherwise.
func emailSender(cfg *config.Config, logger *slog.Logger) services.EmailSender {
	if cfg.SMTP.Host == "" {
		logger.Warn("SMTP_HOST not configured, password reset emails will only be logged")
		return &services.LogSender{Logger: logger}
	}
	return &services.SMTPSender{
		Host:   cfg.SMTP.Host,
		Port:   cfg.SMTP.Port,
		User:   cfg.SMTP.User,
		Pass:   cfg.SMTP.Password,
		UseTLS: cfg.SMTP.UseTLS,
	}
}

func emailFrom(cfg *config.Config) string {
	if cfg.SMTP.From != "" {
		return cfg.SMTP.From
	}
	return cfg.EmailFrom
}

// resetLimiter connects to Redis when REDIS_URL is set. The returned client
// must be closed by the caller; both are nil without a URL.
func resetLimiter(ctx context.Context, cfg *config.Config, authCfg services.AuthConfig, logger *slog.Logger) (services.ResetLimiter, *redis.Client, error) {
	if cfg.RedisURL == "" {
		return nil, nil, nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, oops.Code("CONFIG_INVALID").With("setting", "REDIS_URL").Wrap(err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		// The limiter falls back to row counting on errors, so keep going.
		logger.Warn("redis not reachable, reset limiting falls back to the database", "error", err)
	}
	return services.NewRedisResetLimiter(client, resetLimiterKey, authCfg.ResetLimit, authCfg.ResetWindow), client, nil
}

// receiptStore returns nil when no bucket is configured.
func receiptStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (services.ReceiptStore, error) {
	if cfg.S3.Bucket == "" {
		logger.Info("S3_BUCKET_NAME not set, receipt uploads disabled")
		return nil, nil
	}
	s3cfg, err := config.NewS3Config(ctx, cfg.S3)
	if err != nil {
		return nil, oops.Code("CONFIG_INVALID").With("setting", "S3").Wrap(err)
	}
	return services.NewS3ReceiptStore(s3cfg), nil
}

type authParts struct {
	Service *services.AuthService
	Issuer  *services.JWTIssuer
	Redis   *redis.Client
}

func (p *authParts) Close() {
	if p.Redis != nil {
		_ = p.Redis.Close()
	}
}

// newAuth assembles the auth service over database. metrics may be nil.
func newAuth(ctx context.Context, cfg *config.Config, database *db.Database, metrics *observability.Metrics, logger *slog.Logger) (*authParts, error) {
	ttl, err := cfg.SessionTTL()
	if err != nil {
		return nil, oops.Code("CONFIG_INVALID").With("setting", "JWT_EXPIRES_IN").Wrap(err)
	}
	authCfg := services.DefaultAuthConfig(cfg.FrontendURL)
	limiter, client, err := resetLimiter(ctx, cfg, authCfg, logger)
	if err != nil {
		return nil, err
	}

	issuer := services.NewJWTIssuer(sessionSecret(cfg, logger), ttl)
	deps := services.AuthDeps{
		Users:    repository.NewUserRepository(database.DB),
		Resets:   repository.NewPasswordResetRepository(database.DB),
		Hasher:   services.NewBcryptHasher(cfg.BcryptCost),
		Notifier: services.NewEmailResetNotifier(emailSender(cfg, logger), emailFrom(cfg), logger),
		Sessions: issuer,
		Logger:   logger,
	}
	if limiter != nil {
		deps.Limiter = limiter
	}
	if metrics != nil {
		deps.Observer = metrics
	}
	return &authParts{
		Service: services.NewAuthService(deps, authCfg),
		Issuer:  issuer,
		Redis:   client,
	}, nil
}
