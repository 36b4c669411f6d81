package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvWorkspaceLockTTL     = "WORKSPACE_LOCK_TTL"
	EnvWorkspaceLockWait    = "WORKSPACE_LOCK_WAIT"
	EnvWorkspaceLockRetry   = "WORKSPACE_LOCK_RETRY"
	EnvMinBookingDuration   = "MIN_BOOKING_DURATION"
	EnvMaxBookingDuration   = "MAX_BOOKING_DURATION"
	EnvBookingEventsTopic   = "BOOKING_EVENTS_TOPIC"
	EnvBookingEventsDLQ     = "BOOKING_EVENTS_DLQ_TOPIC"
	EnvBookingEventsEnabled = "BOOKING_EVENTS_ENABLED"
)
