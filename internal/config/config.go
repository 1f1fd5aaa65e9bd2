// Package config assembles the runtime settings of the officeledger CLI.
// Later sources override earlier ones: defaults, the JSON or YAML file named
// by -c/-config, OFFICELEDGER_* environment variables (optionally from a
// .env file) and finally command-line flags.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/officeledger/internal/backup"
	"github.com/dmitrijs2005/officeledger/internal/storage"
)

// DevJWTSecret signs sessions when no secret is configured.
const DevJWTSecret = "officeledger-dev-secret"

type Config struct {
	StorageDriver string
	SQLitePath    string
	PostgresDSN   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	JWTSecret  string
	SessionTTL time.Duration
	BcryptCost int

	LogLevel  string
	LogFormat string

	S3Bucket         string
	S3Region         string
	S3Endpoint       string
	S3AccessKey      string
	S3SecretKey      string
	BackupPrefix     string
	BackupPassphrase string
}

// LoadDefaults populates c with values that work for a single workstation.
func (c *Config) LoadDefaults() {
	c.StorageDriver = storage.DriverSQLite
	c.SQLitePath = defaultSQLitePath()
	c.RedisAddr = "127.0.0.1:6379"
	c.RedisPrefix = storage.DefaultRedisPrefix
	c.JWTSecret = DevJWTSecret
	c.SessionTTL = 12 * time.Hour
	c.LogLevel = "warn"
	c.LogFormat = "text"
	c.S3Region = "us-east-1"
	c.BackupPrefix = "officeledger"
}

// LoadConfig builds a Config from args (normally os.Args[1:]).
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, DotEnvFile); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Storage() storage.Config {
	return storage.Config{
		Driver:        c.StorageDriver,
		SQLitePath:    c.SQLitePath,
		PostgresDSN:   c.PostgresDSN,
		RedisAddr:     c.RedisAddr,
		RedisPassword: c.RedisPassword,
		RedisDB:       c.RedisDB,
		RedisPrefix:   c.RedisPrefix,
	}
}

func (c *Config) S3() backup.S3Config {
	return backup.S3Config{
		Bucket:    c.S3Bucket,
		Region:    c.S3Region,
		Endpoint:  c.S3Endpoint,
		AccessKey: c.S3AccessKey,
		SecretKey: c.S3SecretKey,
	}
}

func defaultSQLitePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "officeledger.db"
	}
	return filepath.Join(dir, "officeledger", "ledger.db")
}
