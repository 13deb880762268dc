package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "travelbook"
	DefaultMongoConnTimeout  = 10 * time.Second
	DefaultMongoTransactions = true

	DefaultPort      = "8080"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 4 * 1024 * 1024 // logos are uploaded as base64 in settings

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultRedisDB  = 0
	DefaultCacheTTL = 5 * time.Minute

	DefaultJWTOrgClaim = "org_id"

	DefaultEventsSink    = "none"
	DefaultKafkaTopic    = "travelbook.events"
	DefaultKafkaDLQTopic = "travelbook.events.dlq"
	DefaultRabbitMQQueue = "travelbook.events"

	DefaultSlotDayStart    = "09:00"
	DefaultSlotDayEnd      = "18:00"
	DefaultSlotStepMinutes = 20

	DefaultInvoiceLanguage = "de"
	DefaultPublicBaseURL   = "http://localhost:8080"

	DefaultRetryAttempts     = 3
	DefaultRetryInitialDelay = 200 * time.Millisecond

	DefaultPaginationLimit = 100
	DefaultOrganizationID  = "default"
)

const (
	EventsSinkNone     = "none"
	EventsSinkKafka    = "kafka"
	EventsSinkRabbitMQ = "rabbitmq"
)
