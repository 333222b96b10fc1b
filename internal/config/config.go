package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Backend names accepted by LOCATION_STORE, CATALOG_SOURCE and BRANCH_SOURCE.
const (
	StoreMemory    = "memory"
	StoreRedis     = "redis"
	StorePostgres  = "postgres"
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// Config is the full service configuration.
type Config struct {
	Port           int
	LogLevel       string
	RequestTimeout time.Duration
	DatabaseURL    string

	ORS           ORS
	LocationCache LocationCache
	Redis         Redis
	Catalog       Catalog
	Branches      Branches
}

// ORS configures the OpenRouteService client.
type ORS struct {
	APIKey            string
	BaseURL           string
	Profile           string
	Timeout           time.Duration
	RetryBackoff      time.Duration
	RequestsPerMinute int
}

// LocationCache configures the distance cache and its prefetch pool.
type LocationCache struct {
	Store          string
	TTL            time.Duration
	Workers        int
	QueueSize      int
	SweepInterval  time.Duration
	ResolveTimeout time.Duration
}

type Redis struct {
	Addr     string
	Password string
	DB       int
}

type Catalog struct {
	Source          string
	Path            string
	RefreshInterval time.Duration
}

type Branches struct {
	Source string
	Path   string
}

// Load reads configuration in order: .env (if present), environment, flags.
func Load() (*Config, error) {
	return LoadArgs(os.Args[1:])
}

// LoadArgs is Load with explicit command-line arguments.
func LoadArgs(args []string) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: .env not loaded: %v", err)
	}

	var (
		cfg = Config{
			Port:           defaultPort,
			LogLevel:       defaultLogLevel,
			RequestTimeout: defaultRequestTimeout,
			ORS:            DefaultORS(),
			LocationCache:  DefaultLocationCache(),
			Redis:          DefaultRedis(),
			Catalog:        DefaultCatalog(),
			Branches:       DefaultBranches(),
		}
		errs []error
	)

	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	collect(envInt("PORT", &cfg.Port))
	envString("LOG_LEVEL", &cfg.LogLevel)
	collect(envDuration("REQUEST_TIMEOUT", &cfg.RequestTimeout))
	envString("DATABASE_URL", &cfg.DatabaseURL)

	envString("ORS_API_KEY", &cfg.ORS.APIKey)
	envString("ORS_BASE_URL", &cfg.ORS.BaseURL)
	envString("ORS_PROFILE", &cfg.ORS.Profile)
	collect(envDuration("PROVIDER_TIMEOUT", &cfg.ORS.Timeout))
	collect(envDuration("PROVIDER_RETRY_BACKOFF", &cfg.ORS.RetryBackoff))
	collect(envInt("ORS_REQUESTS_PER_MINUTE", &cfg.ORS.RequestsPerMinute))

	envString("LOCATION_STORE", &cfg.LocationCache.Store)
	collect(envDuration("LOCATION_CACHE_TTL", &cfg.LocationCache.TTL))
	collect(envInt("PREFETCH_WORKERS", &cfg.LocationCache.Workers))
	collect(envInt("PREFETCH_QUEUE", &cfg.LocationCache.QueueSize))
	collect(envDuration("LOCATION_SWEEP_INTERVAL", &cfg.LocationCache.SweepInterval))
	collect(envDuration("LOCATION_RESOLVE_TIMEOUT", &cfg.LocationCache.ResolveTimeout))

	envString("REDIS_ADDR", &cfg.Redis.Addr)
	envString("REDIS_PASSWORD", &cfg.Redis.Password)
	collect(envInt("REDIS_DB", &cfg.Redis.DB))

	envString("CATALOG_SOURCE", &cfg.Catalog.Source)
	envString("CATALOG_PATH", &cfg.Catalog.Path)
	collect(envDuration("CATALOG_REFRESH_INTERVAL", &cfg.Catalog.RefreshInterval))

	envString("BRANCH_SOURCE", &cfg.Branches.Source)
	envString("BRANCHES_PATH", &cfg.Branches.Path)

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	fs := pflag.NewFlagSet("rental-quote-service", pflag.ContinueOnError)
	fs.IntVarP(&cfg.Port, "port", "p", cfg.Port, "port to listen on")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&cfg.Catalog.Path, "catalog-path", cfg.Catalog.Path, "rate catalog JSON file")
	fs.StringVar(&cfg.Branches.Path, "branches-path", cfg.Branches.Path, "branch directory JSON file")
	fs.StringVar(&cfg.LocationCache.Store, "location-store", cfg.LocationCache.Store, "location cache L2 store (memory, redis, postgres)")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges and cross-field requirements.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if strings.TrimSpace(c.ORS.APIKey) == "" {
		return errors.New("ORS_API_KEY is required")
	}
	if c.ORS.RequestsPerMinute <= 0 {
		return fmt.Errorf("invalid ORS_REQUESTS_PER_MINUTE: %d", c.ORS.RequestsPerMinute)
	}
	if c.LocationCache.TTL <= 0 {
		return fmt.Errorf("invalid LOCATION_CACHE_TTL: %s", c.LocationCache.TTL)
	}
	if c.LocationCache.Workers <= 0 || c.LocationCache.QueueSize <= 0 {
		return fmt.Errorf("invalid prefetch pool: workers=%d queue=%d",
			c.LocationCache.Workers, c.LocationCache.QueueSize)
	}
	if c.Catalog.RefreshInterval <= 0 {
		return fmt.Errorf("invalid CATALOG_REFRESH_INTERVAL: %s", c.Catalog.RefreshInterval)
	}

	switch c.LocationCache.Store {
	case StoreMemory, StoreRedis, StorePostgres:
	default:
		return fmt.Errorf("unknown LOCATION_STORE %q", c.LocationCache.Store)
	}
	switch c.Catalog.Source {
	case SourceFile, SourcePostgres:
	default:
		return fmt.Errorf("unknown CATALOG_SOURCE %q", c.Catalog.Source)
	}
	switch c.Branches.Source {
	case SourceFile, SourcePostgres:
	default:
		return fmt.Errorf("unknown BRANCH_SOURCE %q", c.Branches.Source)
	}

	if c.NeedsDatabase() && strings.TrimSpace(c.DatabaseURL) == "" {
		return errors.New("DATABASE_URL is required for postgres-backed stores")
	}
	return nil
}

// NeedsDatabase reports whether any configured backend uses Postgres.
func (c *Config) NeedsDatabase() bool {
	return c.LocationCache.Store == StorePostgres ||
		c.Catalog.Source == SourcePostgres ||
		c.Branches.Source == SourcePostgres
}

func envString(key string, dst *string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func envDuration(key string, dst *time.Duration) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}
