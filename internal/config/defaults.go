package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultStrategy        = "heuristic"
	DefaultBeamWidth       = 3
	DefaultAverageSpeedKmh = 20.0
	DefaultServerPort      = 8080
	DefaultRateLimit       = 600
	DefaultRateWindow      = time.Minute
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultDBPort          = 5432
	DefaultDBSSLMode       = "prefer"
	DefaultMaxConns        = 10
	DefaultMinConns        = 2
	DefaultCacheBackend    = "memory"
	DefaultCacheTTL        = time.Hour
	DefaultRedisAddr       = "localhost:6379"
	DefaultDispatchWorkers = 8
	DefaultDispatchTimeout = 30 * time.Second
	DefaultPingInterval    = 15 * time.Second
	DefaultStreamWrite     = 5 * time.Second
	DefaultStreamBuffer    = 64
	DefaultMetricsPath     = "/metrics"
)

// ApplyDefaults fills unset optional fields.
func (c *PlannerConfig) ApplyDefaults() {
	// Planner defaults
	if c.Planner.Strategy == "" {
		c.Planner.Strategy = DefaultStrategy
	}
	if c.Planner.BeamWidth == 0 {
		c.Planner.BeamWidth = DefaultBeamWidth
	}
	if c.Planner.AverageSpeedKmh == 0 {
		c.Planner.AverageSpeedKmh = DefaultAverageSpeedKmh
	}

	// Server defaults
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}
	if c.Server.RateLimit == 0 {
		c.Server.RateLimit = DefaultRateLimit
	}
	if c.Server.RateWindow == 0 {
		c.Server.RateWindow = DefaultRateWindow
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = DefaultReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}

	// Database defaults only matter when a host is configured
	if c.Database.Enabled() {
		applyDBDefaults(&c.Database.Postgres)
	}

	// Cache defaults
	if c.Cache.Backend == "" {
		c.Cache.Backend = DefaultCacheBackend
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = DefaultCacheTTL
	}
	if c.Cache.Backend == "redis" && c.Cache.Redis.Addr == "" {
		c.Cache.Redis.Addr = DefaultRedisAddr
	}

	// Dispatch defaults
	if c.Dispatch.Concurrency == 0 {
		c.Dispatch.Concurrency = DefaultDispatchWorkers
	}
	if c.Dispatch.Timeout == 0 {
		c.Dispatch.Timeout = DefaultDispatchTimeout
	}

	// Stream defaults
	if c.Stream.PingInterval == 0 {
		c.Stream.PingInterval = DefaultPingInterval
	}
	if c.Stream.WriteTimeout == 0 {
		c.Stream.WriteTimeout = DefaultStreamWrite
	}
	if c.Stream.BufferSize == 0 {
		c.Stream.BufferSize = DefaultStreamBuffer
	}

	// Metrics defaults
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
