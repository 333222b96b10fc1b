package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"rental-quote-service/internal/adapters/cache"
	"rental-quote-service/internal/adapters/catalog"
	"rental-quote-service/internal/adapters/repositories"
	"rental-quote-service/internal/config"
	"rental-quote-service/internal/logx"
	"rental-quote-service/internal/ports"
	"sync"

	"go.uber.org/dig"
)

// database wraps the optional Postgres handle. DB is nil when no
// DATABASE_URL is configured.
type database struct {
	DB *sql.DB
}

// locationStore wraps the optional shared location cache level.
type locationStore struct {
	ports.DistanceStore
}

// geocodeCache wraps the optional persistent geocode memo.
type geocodeCache struct {
	ports.GeocodeCache
}

// resources collects everything that must be closed on shutdown.
type resources struct {
	mu      sync.Mutex
	closers []func() error
}

func (r *resources) add(fn func() error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closers = append(r.closers, fn)
}

// Close runs the closers in reverse order and joins their errors.
func (r *resources) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}

func (b *ContainerBuilder) registerStorage(container *dig.Container) error {
	databaseProvider := func(ctx context.Context, cfg *config.Config, res *resources, logger logx.Logger) (*database, error) {
		if cfg.DatabaseURL == "" {
			return &database{}, nil
		}
		db, err := b.openDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		res.add(db.Close)
		logger.Info("postgres connected")
		return &database{DB: db}, nil
	}

	catalogSourceProvider := func(cfg *config.Config, d *database, logger logx.Logger) (ports.CatalogSource, error) {
		switch cfg.Catalog.Source {
		case config.SourcePostgres:
			if d.DB == nil {
				return nil, errors.New("postgres catalog source needs DATABASE_URL")
			}
			return catalog.NewPostgresSource(d.DB, logger), nil
		default:
			return catalog.NewFileSource(cfg.Catalog.Path), nil
		}
	}

	branchProvider := func(cfg *config.Config, d *database) (ports.BranchRepository, error) {
		switch cfg.Branches.Source {
		case config.SourcePostgres:
			if d.DB == nil {
				return nil, errors.New("postgres branch source needs DATABASE_URL")
			}
			return repositories.NewPostgresBranchRepository(d.DB), nil
		default:
			return repositories.NewFileBranchRepository(cfg.Branches.Path), nil
		}
	}

	storeProvider := func(
		ctx context.Context,
		cfg *config.Config,
		d *database,
		res *resources,
		logger logx.Logger,
	) (locationStore, error) {
		switch cfg.LocationCache.Store {
		case config.StoreRedis:
			client, err := cache.NewRedisClient(ctx, cache.RedisConfig{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			if err != nil {
				return locationStore{}, err
			}
			res.add(client.Close)
			return locationStore{cache.NewRedisLocationStore(client, logger)}, nil
		case config.StorePostgres:
			if d.DB == nil {
				return locationStore{}, errors.New("postgres location store needs DATABASE_URL")
			}
			return locationStore{cache.NewSQLLocationStore(d.DB, logger)}, nil
		default:
			return locationStore{}, nil
		}
	}

	geocodeProvider := func(d *database, logger logx.Logger) geocodeCache {
		if d.DB == nil {
			return geocodeCache{}
		}
		return geocodeCache{cache.NewSQLGeocodeCache(d.DB, logger)}
	}

	if err := provideAll(container,
		databaseProvider,
		catalogSourceProvider,
		branchProvider,
		storeProvider,
		geocodeProvider,
	); err != nil {
		return fmt.Errorf("register storage: %w", err)
	}
	return nil
}
