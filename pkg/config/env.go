package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"
	EnvMongoTransactions = "MONGO_TRANSACTIONS"

	EnvPort      = "PORT"
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"
	EnvCacheTTL      = "CACHE_TTL"

	EnvJWTSecret   = "JWT_SECRET"
	EnvJWTOrgClaim = "JWT_ORG_CLAIM"

	EnvCORSAllowedOrigins = "CORS_ALLOWED_ORIGINS"

	EnvEventsSink    = "EVENTS_SINK"
	EnvKafkaTopic    = "KAFKA_EVENTS_TOPIC"
	EnvKafkaDLQTopic = "KAFKA_EVENTS_DLQ_TOPIC"
	EnvRabbitMQURL   = "RABBITMQ_URL"
	EnvRabbitMQQueue = "RABBITMQ_QUEUE"

	EnvSlotDayStart    = "SLOT_DAY_START"
	EnvSlotDayEnd      = "SLOT_DAY_END"
	EnvSlotStepMinutes = "SLOT_STEP_MINUTES"

	EnvInvoiceDefaultLanguage = "INVOICE_DEFAULT_LANGUAGE"
	EnvPublicBaseURL          = "PUBLIC_BASE_URL"
	EnvInvoiceSealKey         = "INVOICE_SEAL_KEY"

	EnvRetryAttempts     = "RETRY_ATTEMPTS"
	EnvRetryInitialDelay = "RETRY_INITIAL_DELAY"
)
