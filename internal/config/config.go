// Package config loads service settings from the environment and optional
// .env files.
package config

import "time"

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Store      StoreConfig      `mapstructure:"store"`
	Mongo      MongoConfig      `mapstructure:"mongo"`
	DB         DBConfig         `mapstructure:"db"`
	CORS       CORSConfig       `mapstructure:"cors"`
	Log        LogConfig        `mapstructure:"log"`
	Pagination PaginationConfig `mapstructure:"pagination"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Migrations MigrationsConfig `mapstructure:"migrations"`
}

type AppConfig struct {
	Addr string `mapstructure:"addr" validate:"required"`
}

type StoreConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=memory mongo postgres"`
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database" validate:"required"`
}

type DBConfig struct {
	DSN     string        `mapstructure:"dsn"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

type CORSConfig struct {
	Origins []string `mapstructure:"origins"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json text"`
}

type PaginationConfig struct {
	DefaultLimit int `mapstructure:"default_limit" validate:"gt=0"`
}

// RateLimitConfig applies per client IP. RPS of zero disables limiting.
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps" validate:"gte=0"`
	Burst int     `mapstructure:"burst" validate:"gte=0"`
}

type HTTPConfig struct {
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes" validate:"gt=0"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	EnableHSTS      bool          `mapstructure:"enable_hsts"`
}

// MigrationsConfig.Dir empty means the migrations embedded in the binary.
type MigrationsConfig struct {
	Dir string `mapstructure:"dir"`
}
