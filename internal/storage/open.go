package storage

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/officeledger/internal/common"
	"github.com/dmitrijs2005/officeledger/internal/logging"
	"github.com/redis/go-redis/v9"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Config selects and parameterizes a backend.
type Config struct {
	Driver string

	SQLitePath string

	PostgresDSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// Open connects to the configured backend, migrating SQL schemas as needed.
func Open(ctx context.Context, cfg Config, logger logging.Logger) (Repository, error) {
	switch cfg.Driver {
	case DriverSQLite, "":
		logger.Debug(ctx, "opening sqlite store", "path", cfg.SQLitePath)
		r, err := OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return r, nil

	case DriverPostgres:
		logger.Debug(ctx, "opening postgres store")
		r, err := OpenPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return r, nil

	case DriverRedis:
		logger.Debug(ctx, "opening redis store", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
		r, err := OpenRedis(ctx, &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, cfg.RedisPrefix)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
	return nil, fmt.Errorf("%w: %q", common.ErrUnsupportedDriver, cfg.Driver)
}
