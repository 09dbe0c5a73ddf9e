package config

import "time"

const (
	DefaultShutdownTimeout = 10 * time.Second
	DefaultUpstreamTimeout = 10 * time.Second
	DefaultHistoryBuffer   = 256
	DefaultHistoryWrite    = 3 * time.Second
	DefaultPGMaxConns      = 5
	DefaultPGMinConns      = 1
	DefaultRedisOpTimeout  = 500 * time.Millisecond
)
