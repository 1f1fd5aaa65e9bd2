package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/officeledger/internal/flagx"
)

var flagNames = []string{
	"-driver", "-db", "-dsn", "-redis", "-redis-db",
	"-secret", "-session-ttl", "-bcrypt-cost",
	"-log-level", "-log-format",
	"-bucket", "-s3-region", "-s3-endpoint", "-backup-prefix", "-passphrase",
}

// parseFlags overlays cfg with command-line flags. Secrets such as the
// Redis password and S3 keys are only read from the config file.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("officeledger", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.StorageDriver, "driver", cfg.StorageDriver, "storage driver: sqlite, postgres or redis")
	fs.StringVar(&cfg.SQLitePath, "db", cfg.SQLitePath, "sqlite database file")
	fs.StringVar(&cfg.PostgresDSN, "dsn", cfg.PostgresDSN, "postgres connection string")
	fs.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "redis host:port")
	fs.IntVar(&cfg.RedisDB, "redis-db", cfg.RedisDB, "redis database number")
	fs.StringVar(&cfg.JWTSecret, "secret", cfg.JWTSecret, "session signing secret")
	fs.DurationVar(&cfg.SessionTTL, "session-ttl", cfg.SessionTTL, "session lifetime")
	fs.IntVar(&cfg.BcryptCost, "bcrypt-cost", cfg.BcryptCost, "bcrypt cost for new passwords (0 = library default)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "text or json")
	fs.StringVar(&cfg.S3Bucket, "bucket", cfg.S3Bucket, "S3 bucket for backups")
	fs.StringVar(&cfg.S3Region, "s3-region", cfg.S3Region, "S3 region")
	fs.StringVar(&cfg.S3Endpoint, "s3-endpoint", cfg.S3Endpoint, "S3-compatible endpoint URL")
	fs.StringVar(&cfg.BackupPrefix, "backup-prefix", cfg.BackupPrefix, "object key prefix for backups")
	fs.StringVar(&cfg.BackupPassphrase, "passphrase", cfg.BackupPassphrase, "encrypt backups with this passphrase")

	return fs.Parse(flagx.FilterArgs(args, flagNames))
}
