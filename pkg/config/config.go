package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
	"travelbook/pkg/client"
	"travelbook/pkg/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration
	MongoTransactions bool

	Port string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	JWTSecret   string
	JWTOrgClaim string

	CORSAllowedOrigins []string

	EventsSink    string
	KafkaTopic    string
	KafkaDLQTopic string
	RabbitMQURL   string
	RabbitMQQueue string

	SlotDayStart    string
	SlotDayEnd      string
	SlotStepMinutes int

	InvoiceDefaultLanguage string
	PublicBaseURL          string
	InvoiceSealKey         string

	RetryAttempts     int
	RetryInitialDelay time.Duration

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	// A missing .env is normal outside local development.
	envErr := godotenv.Load()

	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),
		MongoTransactions: getEnvBool(EnvMongoTransactions, DefaultMongoTransactions),

		Port: getEnvStr(EnvPort, DefaultPort),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		RedisAddr:     getEnvStr(EnvRedisAddr, ""),
		RedisPassword: getEnvStr(EnvRedisPassword, ""),
		RedisDB:       getEnvNum(EnvRedisDB, DefaultRedisDB),
		CacheTTL:      getEnvDuration(EnvCacheTTL, DefaultCacheTTL),

		JWTSecret:   getEnvStr(EnvJWTSecret, ""),
		JWTOrgClaim: getEnvStr(EnvJWTOrgClaim, DefaultJWTOrgClaim),

		CORSAllowedOrigins: getEnvList(EnvCORSAllowedOrigins),

		EventsSink:    strings.ToLower(getEnvStr(EnvEventsSink, DefaultEventsSink)),
		KafkaTopic:    getEnvStr(EnvKafkaTopic, DefaultKafkaTopic),
		KafkaDLQTopic: getEnvStr(EnvKafkaDLQTopic, DefaultKafkaDLQTopic),
		RabbitMQURL:   getEnvStr(EnvRabbitMQURL, ""),
		RabbitMQQueue: getEnvStr(EnvRabbitMQQueue, DefaultRabbitMQQueue),

		SlotDayStart:    getEnvStr(EnvSlotDayStart, DefaultSlotDayStart),
		SlotDayEnd:      getEnvStr(EnvSlotDayEnd, DefaultSlotDayEnd),
		SlotStepMinutes: getEnvNum(EnvSlotStepMinutes, DefaultSlotStepMinutes),

		InvoiceDefaultLanguage: strings.ToLower(getEnvStr(EnvInvoiceDefaultLanguage, DefaultInvoiceLanguage)),
		PublicBaseURL:          strings.TrimRight(getEnvStr(EnvPublicBaseURL, DefaultPublicBaseURL), "/"),
		InvoiceSealKey:         getEnvStr(EnvInvoiceSealKey, ""),

		RetryAttempts:     getEnvNum(EnvRetryAttempts, DefaultRetryAttempts),
		RetryInitialDelay: getEnvDuration(EnvRetryInitialDelay, DefaultRetryInitialDelay),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    getEnvStr(EnvLogFormat, DefaultLogFormat),
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if envErr != nil {
		cfg.Log.Debug("No .env file loaded, using process environment", "reason", envErr)
	}
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

// SetRedis connects the optional cache. Without REDIS_ADDR the service runs uncached.
func (cfg *Config) SetRedis() {
	if cfg.RedisAddr == "" {
		cfg.Log.Info("REDIS_ADDR not set, caching disabled")
		return
	}
	cfg.Client.SetRedis(cfg.Log, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	timeRegex := regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
	if !timeRegex.MatchString(cfg.SlotDayStart) {
		errors = append(errors, fmt.Sprintf("SlotDayStart must be in HH:MM format (00:00-23:59), got: %s", cfg.SlotDayStart))
	}
	if !timeRegex.MatchString(cfg.SlotDayEnd) {
		errors = append(errors, fmt.Sprintf("SlotDayEnd must be in HH:MM format (00:00-23:59), got: %s", cfg.SlotDayEnd))
	}
	if timeRegex.MatchString(cfg.SlotDayStart) && timeRegex.MatchString(cfg.SlotDayEnd) && cfg.SlotDayEnd <= cfg.SlotDayStart {
		errors = append(errors, fmt.Sprintf("SlotDayEnd (%s) must be after SlotDayStart (%s)", cfg.SlotDayEnd, cfg.SlotDayStart))
	}
	if cfg.SlotStepMinutes <= 0 || cfg.SlotStepMinutes > 240 {
		errors = append(errors, fmt.Sprintf("SlotStepMinutes must be between 1 and 240, got: %d", cfg.SlotStepMinutes))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if len(cfg.MongoURI) < 10 || !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}

	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}

	if cfg.MongoConnTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}
	if cfg.RateLimitWindow <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.IdempotencyTTL <= 0 {
		errors = append(errors, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}
	if cfg.CacheTTL <= 0 {
		errors = append(errors, fmt.Sprintf("CacheTTL must be positive, got: %s", cfg.CacheTTL))
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	switch cfg.EventsSink {
	case EventsSinkNone, EventsSinkKafka:
	case EventsSinkRabbitMQ:
		if cfg.RabbitMQURL == "" {
			errors = append(errors, "RabbitMQURL is required when EventsSink is rabbitmq")
		}
	default:
		errors = append(errors, fmt.Sprintf("EventsSink must be one of none, kafka, rabbitmq, got: %s", cfg.EventsSink))
	}

	if cfg.InvoiceDefaultLanguage != "en" && cfg.InvoiceDefaultLanguage != "de" {
		errors = append(errors, fmt.Sprintf("InvoiceDefaultLanguage must be en or de, got: %s", cfg.InvoiceDefaultLanguage))
	}
	if !regexp.MustCompile(`^https?://`).MatchString(cfg.PublicBaseURL) {
		errors = append(errors, fmt.Sprintf("PublicBaseURL must start with http:// or https://, got: %s", cfg.PublicBaseURL))
	}
	if n := len(cfg.InvoiceSealKey); n != 0 && n != 16 && n != 24 && n != 32 {
		errors = append(errors, fmt.Sprintf("InvoiceSealKey must be 16, 24 or 32 bytes, got %d", n))
	}

	if cfg.RetryAttempts < 1 {
		errors = append(errors, fmt.Sprintf("RetryAttempts must be at least 1, got: %d", cfg.RetryAttempts))
	}
	if cfg.RetryInitialDelay <= 0 {
		errors = append(errors, fmt.Sprintf("RetryInitialDelay must be positive, got: %s", cfg.RetryInitialDelay))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"mongo_transactions", cfg.MongoTransactions,
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"redis_addr", cfg.RedisAddr,
		"redis_password_set", cfg.RedisPassword != "",
		"cache_ttl", cfg.CacheTTL,
		"jwt_enabled", cfg.JWTSecret != "",
		"cors_allowed_origins", cfg.CORSAllowedOrigins,
		"events_sink", cfg.EventsSink,
		"kafka_topic", cfg.KafkaTopic,
		"rabbitmq_url", redactAMQPURL(cfg.RabbitMQURL),
		"slot_day_start", cfg.SlotDayStart,
		"slot_day_end", cfg.SlotDayEnd,
		"slot_step_minutes", cfg.SlotStepMinutes,
		"invoice_default_language", cfg.InvoiceDefaultLanguage,
		"public_base_url", cfg.PublicBaseURL,
		"invoice_seal_key_set", cfg.InvoiceSealKey != "",
		"retry_attempts", cfg.RetryAttempts,
		"retry_initial_delay", cfg.RetryInitialDelay,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func redactAMQPURL(uri string) string {
	credentialRegex := regexp.MustCompile(`(amqps?://)[^:]+:[^@]+@`)
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

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
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

func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log)
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
