package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// DotEnvFile is read, when present, before the environment overlay is applied.
// Variables already set in the process environment win over the file.
const DotEnvFile = ".env"

const envPrefix = "OFFICELEDGER_"

// parseEnv overlays cfg with OFFICELEDGER_* variables. Secrets are usually
// supplied this way rather than on the command line.
func parseEnv(cfg *Config, dotenv string) error {
	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", dotenv, err)
		}
	}

	strs := map[string]*string{
		"DRIVER":            &cfg.StorageDriver,
		"SQLITE_PATH":       &cfg.SQLitePath,
		"POSTGRES_DSN":      &cfg.PostgresDSN,
		"REDIS_ADDR":        &cfg.RedisAddr,
		"REDIS_PASSWORD":    &cfg.RedisPassword,
		"JWT_SECRET":        &cfg.JWTSecret,
		"LOG_LEVEL":         &cfg.LogLevel,
		"S3_BUCKET":         &cfg.S3Bucket,
		"S3_ENDPOINT":       &cfg.S3Endpoint,
		"S3_ACCESS_KEY":     &cfg.S3AccessKey,
		"S3_SECRET_KEY":     &cfg.S3SecretKey,
		"BACKUP_PASSPHRASE": &cfg.BackupPassphrase,
	}
	for name, dst := range strs {
		if v, ok := os.LookupEnv(envPrefix + name); ok && v != "" {
			*dst = v
		}
	}

	if v := os.Getenv(envPrefix + "REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sREDIS_DB: %w", envPrefix, err)
		}
		cfg.RedisDB = n
	}
	return nil
}
