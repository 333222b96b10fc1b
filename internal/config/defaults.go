package config

import "time"

const (
	defaultPort           = 8080
	defaultLogLevel       = "info"
	defaultRequestTimeout = 30 * time.Second
)

var defaultORS = ORS{
	BaseURL:           "https://api.openrouteservice.org",
	Profile:           "driving-car",
	Timeout:           10 * time.Second,
	RetryBackoff:      250 * time.Millisecond,
	RequestsPerMinute: 40,
}

var defaultLocationCache = LocationCache{
	Store:          StoreMemory,
	TTL:            72 * time.Hour,
	Workers:        4,
	QueueSize:      256,
	SweepInterval:  10 * time.Minute,
	ResolveTimeout: 20 * time.Second,
}

var defaultRedis = Redis{
	Addr: "localhost:6379",
}

var defaultCatalog = Catalog{
	Source:          SourceFile,
	Path:            "data/seeds/catalog.json",
	RefreshInterval: 15 * time.Minute,
}

var defaultBranches = Branches{
	Source: SourceFile,
	Path:   "data/seeds/branches.json",
}

func DefaultPort() int { return defaultPort }

func DefaultORS() ORS { return defaultORS }

func DefaultLocationCache() LocationCache { return defaultLocationCache }

func DefaultRedis() Redis { return defaultRedis }

func DefaultCatalog() Catalog { return defaultCatalog }

func DefaultBranches() Branches { return defaultBranches }
