package storage

import (
	"context"
	"fmt"

	"coursetrack/backend/config"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Backend is an opened storage driver together with its lifecycle hooks.
type Backend struct {
	Storage Storage
	Driver  string

	ping    func(ctx context.Context) error
	closeFn func() error
}

func (b *Backend) Ping(ctx context.Context) error {
	if b.ping == nil {
		return nil
	}
	return b.ping(ctx)
}

func (b *Backend) Close() error {
	if b.closeFn == nil {
		return nil
	}
	return b.closeFn()
}

// Open connects the driver named in cfg, migrating the SQL schema when migrate is set.
func Open(cfg *config.Config, migrate bool) (*Backend, error) {
	switch cfg.StorageDriver {
	case config.DriverMemory:
		return &Backend{Storage: WithQuota(NewMemory(), cfg.MaxValueBytes), Driver: cfg.StorageDriver}, nil

	case config.DriverSQLite, config.DriverPostgres:
		db, err := OpenDB(cfg)
		if err != nil {
			return nil, err
		}
		store := NewSQL(db)
		if migrate {
			if err := store.Migrate(); err != nil {
				return nil, fmt.Errorf("migrate storage: %w", err)
			}
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		return &Backend{
			Storage: WithQuota(store, cfg.MaxValueBytes),
			Driver:  cfg.StorageDriver,
			ping:    sqlDB.PingContext,
			closeFn: sqlDB.Close,
		}, nil

	case config.DriverRedis:
		store := NewRedis(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return &Backend{
			Storage: WithQuota(store, cfg.MaxValueBytes),
			Driver:  cfg.StorageDriver,
			ping:    store.Ping,
			closeFn: store.Close,
		}, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}

// OpenDB opens the gorm connection for the SQL drivers.
func OpenDB(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.PostgresDSN())
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("driver %q is not a SQL driver", cfg.StorageDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.StorageDriver, err)
	}

	if cfg.StorageDriver == config.DriverSQLite {
		// sqlite allows one writer; a single connection serializes Update transactions.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}
