package config

import "time"

// PlannerConfig is the root configuration for a planner service instance.
type PlannerConfig struct {
	Instance InstanceConfig `yaml:"instance"`
	Planner  RoutingConfig  `yaml:"planner"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Cache    CacheConfig    `yaml:"cache"`
	Dispatch DispatchConfig `yaml:"dispatch"`
	Stream   StreamConfig   `yaml:"stream"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// InstanceConfig identifies this planner.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// RoutingConfig selects the optimizer and travel model.
type RoutingConfig struct {
	Strategy        string  `yaml:"strategy"` // heuristic or greedy
	BeamWidth       int     `yaml:"beam_width"`
	AverageSpeedKmh float64 `yaml:"average_speed_kmh"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `yaml:"port"`
	RateLimit    int           `yaml:"rate_limit"` // requests per window per IP
	RateWindow   time.Duration `yaml:"rate_window"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DatabaseConfig holds plan persistence settings. An empty postgres host
// keeps plans in memory.
type DatabaseConfig struct {
	Postgres DBConfig `yaml:"postgres"`
}

// Enabled reports whether a Postgres store is configured.
func (d DatabaseConfig) Enabled() bool {
	return d.Postgres.Host != ""
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// CacheConfig holds travel-time cache settings.
type CacheConfig struct {
	Backend string        `yaml:"backend"` // memory, redis or none
	TTL     time.Duration `yaml:"ttl"`
	Redis   RedisConfig   `yaml:"redis"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// DispatchConfig holds batch planning settings.
type DispatchConfig struct {
	Concurrency int           `yaml:"concurrency"`
	Timeout     time.Duration `yaml:"timeout"` // per agent
}

// StreamConfig holds websocket plan feed settings.
type StreamConfig struct {
	PingInterval time.Duration `yaml:"ping_interval"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	BufferSize   int           `yaml:"buffer_size"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Path string `yaml:"path"`
}
