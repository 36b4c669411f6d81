package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"deskly/pkg/client"
	"deskly/pkg/logger"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	RequestTimeout time.Duration
	MaxRequestSize int

	RateLimitRequests int
	RateLimitWindow   time.Duration

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	WorkspaceLockTTL   time.Duration
	WorkspaceLockWait  time.Duration
	WorkspaceLockRetry time.Duration

	MinBookingDuration time.Duration
	MaxBookingDuration time.Duration

	BookingEventsTopic   string
	BookingEventsDLQ     string
	BookingEventsEnabled bool

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		WorkspaceLockTTL:   getEnvDuration(EnvWorkspaceLockTTL, DefaultWorkspaceLockTTL),
		WorkspaceLockWait:  getEnvDuration(EnvWorkspaceLockWait, DefaultWorkspaceLockWait),
		WorkspaceLockRetry: getEnvDuration(EnvWorkspaceLockRetry, DefaultWorkspaceLockRetry),

		MinBookingDuration: getEnvDuration(EnvMinBookingDuration, DefaultMinBookingDuration),
		MaxBookingDuration: getEnvDuration(EnvMaxBookingDuration, DefaultMaxBookingDuration),

		BookingEventsTopic:   getEnvStr(EnvBookingEventsTopic, DefaultBookingEventsTopic),
		BookingEventsDLQ:     getEnvStr(EnvBookingEventsDLQ, DefaultBookingEventsDLQ),
		BookingEventsEnabled: getEnvBool(EnvBookingEventsEnabled, DefaultBookingEventsEnabled),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.FormatJSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

// SetMongo connects the shared Mongo client. Kept out of Load so unit
// tests and tooling can build a Config without a running database.
func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		problems = append(problems, "MongoURI cannot be empty")
	} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		problems = append(problems, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", cfg.MongoURI))
	}

	if cfg.MongoDatabaseName == "" {
		problems = append(problems, "MongoDatabaseName cannot be empty")
	}

	for name, d := range map[string]time.Duration{
		"MongoConnTimeout":   cfg.MongoConnTimeout,
		"RequestTimeout":     cfg.RequestTimeout,
		"RateLimitWindow":    cfg.RateLimitWindow,
		"ReadTimeout":        cfg.ReadTimeout,
		"WriteTimeout":       cfg.WriteTimeout,
		"IdleTimeout":        cfg.IdleTimeout,
		"ShutdownTimeout":    cfg.ShutdownTimeout,
		"WorkspaceLockTTL":   cfg.WorkspaceLockTTL,
		"WorkspaceLockWait":  cfg.WorkspaceLockWait,
		"WorkspaceLockRetry": cfg.WorkspaceLockRetry,
		"MinBookingDuration": cfg.MinBookingDuration,
		"MaxBookingDuration": cfg.MaxBookingDuration,
	} {
		if d <= 0 {
			problems = append(problems, fmt.Sprintf("%s must be positive, got: %s", name, d))
		}
	}

	if cfg.MaxRequestSize <= 0 {
		problems = append(problems, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.RateLimitRequests <= 0 {
		problems = append(problems, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}

	if cfg.WorkspaceLockRetry >= cfg.WorkspaceLockWait {
		problems = append(problems, fmt.Sprintf("WorkspaceLockRetry (%s) must be shorter than WorkspaceLockWait (%s)", cfg.WorkspaceLockRetry, cfg.WorkspaceLockWait))
	}
	if cfg.WorkspaceLockWait >= cfg.WorkspaceLockTTL {
		problems = append(problems, fmt.Sprintf("WorkspaceLockWait (%s) must be shorter than WorkspaceLockTTL (%s)", cfg.WorkspaceLockWait, cfg.WorkspaceLockTTL))
	}

	if cfg.MaxBookingDuration < cfg.MinBookingDuration {
		problems = append(problems, fmt.Sprintf("MaxBookingDuration (%s) must be >= MinBookingDuration (%s)", cfg.MaxBookingDuration, cfg.MinBookingDuration))
	}

	if cfg.BookingEventsEnabled && cfg.BookingEventsTopic == "" {
		problems = append(problems, "BookingEventsTopic cannot be empty when booking events are enabled")
	}

	if len(problems) > 0 {
		msg := "Configuration validation failed:\n"
		for i, p := range problems {
			msg += fmt.Sprintf("  %d. %s\n", i+1, p)
		}
		return fmt.Errorf("%s", msg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"request_timeout", cfg.RequestTimeout,
		"max_request_size", cfg.MaxRequestSize,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"workspace_lock_ttl", cfg.WorkspaceLockTTL,
		"workspace_lock_wait", cfg.WorkspaceLockWait,
		"workspace_lock_retry", cfg.WorkspaceLockRetry,
		"min_booking_duration", cfg.MinBookingDuration,
		"max_booking_duration", cfg.MaxBookingDuration,
		"booking_events_topic", cfg.BookingEventsTopic,
		"booking_events_enabled", cfg.BookingEventsEnabled,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown()
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = 10
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
