package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// SessionTTL applies to sessions that have not ended
	SessionTTL time.Duration
	// EndedSessionTTL applies once a session ends, so finished runs stay
	// visible for a while without piling up
	EndedSessionTTL time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:             "redis://localhost:6379",
		PoolSize:        10,
		MinIdleConns:    2,
		SessionTTL:      24 * time.Hour,
		EndedSessionTTL: 7 * 24 * time.Hour,
	}
}
