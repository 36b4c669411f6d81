package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "deskly"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Advisory lock lifetime guards against a crashed holder wedging a
	// workspace forever; the TTL index reaps stale locks.
	DefaultWorkspaceLockTTL = 10 * time.Second
	// Bounded wait on a held lock before surfacing Busy to the caller.
	DefaultWorkspaceLockWait  = 2 * time.Second
	DefaultWorkspaceLockRetry = 100 * time.Millisecond

	DefaultMinBookingDuration = 30 * time.Minute
	DefaultMaxBookingDuration = 30 * 24 * time.Hour

	DefaultBookingEventsTopic   = "deskly.bookings"
	DefaultBookingEventsDLQ     = "deskly.bookings.dlq"
	DefaultBookingEventsEnabled = false

	DefaultPaginationLimit = 100
)
