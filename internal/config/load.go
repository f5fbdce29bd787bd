package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LoadEnvFiles reads .env.local and .env from the working directory.
// Variables already present in the environment are never overridden.
func LoadEnvFiles() {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.addr", ":5000")
	v.SetDefault("store.driver", DriverMemory)
	v.SetDefault("mongo.uri", "")
	v.SetDefault("mongo.database", "bookcatalog")
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.timeout", "3s")
	v.SetDefault("cors.origins", []string{"http://localhost:5173"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("pagination.default_limit", 5)
	v.SetDefault("rate_limit.rps", 20)
	v.SetDefault("rate_limit.burst", 40)
	v.SetDefault("http.max_body_bytes", 1<<20)
	v.SetDefault("http.read_timeout", "10s")
	v.SetDefault("http.write_timeout", "15s")
	v.SetDefault("http.idle_timeout", "60s")
	v.SetDefault("http.shutdown_timeout", "10s")
	v.SetDefault("http.enable_hsts", false)
	v.SetDefault("migrations.dir", "")
}

// Load builds a Config from defaults and environment variables. Keys map to
// upper-case names with dots replaced by underscores, e.g. STORE_DRIVER.
// A bare PORT is honoured when APP_ADDR is not set.
func Load() (*Config, error) {
	LoadEnvFiles()

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, ok := os.LookupEnv("APP_ADDR"); !ok {
		if port := os.Getenv("PORT"); port != "" {
			v.Set("app.addr", ":"+port)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.CORS.Origins = trimAll(cfg.CORS.Origins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints and the settings each store driver needs.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	switch c.Store.Driver {
	case DriverMongo:
		if c.Mongo.URI == "" {
			return errors.New("invalid config: MONGO_URI is required when STORE_DRIVER=mongo")
		}
	case DriverPostgres:
		if c.DB.DSN == "" {
			return errors.New("invalid config: DB_DSN is required when STORE_DRIVER=postgres")
		}
	}
	return nil
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
