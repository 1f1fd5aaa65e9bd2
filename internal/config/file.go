package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/officeledger/internal/flagx"
	"github.com/dmitrijs2005/officeledger/internal/timex"
	"gopkg.in/yaml.v3"
)

// fileConfig mirrors Config for file decoding. Pointer fields tell a key
// that is absent from one that is set to its zero value.
type fileConfig struct {
	Storage struct {
		Driver        *string `json:"driver" yaml:"driver"`
		SQLitePath    *string `json:"sqlite_path" yaml:"sqlite_path"`
		PostgresDSN   *string `json:"postgres_dsn" yaml:"postgres_dsn"`
		RedisAddr     *string `json:"redis_addr" yaml:"redis_addr"`
		RedisPassword *string `json:"redis_password" yaml:"redis_password"`
		RedisDB       *int    `json:"redis_db" yaml:"redis_db"`
		RedisPrefix   *string `json:"redis_prefix" yaml:"redis_prefix"`
	} `json:"storage" yaml:"storage"`

	Session struct {
		JWTSecret  *string         `json:"jwt_secret" yaml:"jwt_secret"`
		TTL        *timex.Duration `json:"ttl" yaml:"ttl"`
		BcryptCost *int            `json:"bcrypt_cost" yaml:"bcrypt_cost"`
	} `json:"session" yaml:"session"`

	Log struct {
		Level  *string `json:"level" yaml:"level"`
		Format *string `json:"format" yaml:"format"`
	} `json:"log" yaml:"log"`

	Backup struct {
		Bucket     *string `json:"bucket" yaml:"bucket"`
		Region     *string `json:"region" yaml:"region"`
		Endpoint   *string `json:"endpoint" yaml:"endpoint"`
		AccessKey  *string `json:"access_key" yaml:"access_key"`
		SecretKey  *string `json:"secret_key" yaml:"secret_key"`
		Prefix     *string `json:"prefix" yaml:"prefix"`
		Passphrase *string `json:"passphrase" yaml:"passphrase"`
	} `json:"backup" yaml:"backup"`
}

// parseFile overlays cfg with the file named by -c/-config, if any. The
// format follows the extension: .yaml/.yml, anything else is JSON.
func parseFile(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func (fc *fileConfig) apply(cfg *Config) {
	set(&cfg.StorageDriver, fc.Storage.Driver)
	set(&cfg.SQLitePath, fc.Storage.SQLitePath)
	set(&cfg.PostgresDSN, fc.Storage.PostgresDSN)
	set(&cfg.RedisAddr, fc.Storage.RedisAddr)
	set(&cfg.RedisPassword, fc.Storage.RedisPassword)
	set(&cfg.RedisDB, fc.Storage.RedisDB)
	set(&cfg.RedisPrefix, fc.Storage.RedisPrefix)

	set(&cfg.JWTSecret, fc.Session.JWTSecret)
	if fc.Session.TTL != nil {
		cfg.SessionTTL = fc.Session.TTL.Duration
	}
	set(&cfg.BcryptCost, fc.Session.BcryptCost)

	set(&cfg.LogLevel, fc.Log.Level)
	set(&cfg.LogFormat, fc.Log.Format)

	set(&cfg.S3Bucket, fc.Backup.Bucket)
	set(&cfg.S3Region, fc.Backup.Region)
	set(&cfg.S3Endpoint, fc.Backup.Endpoint)
	set(&cfg.S3AccessKey, fc.Backup.AccessKey)
	set(&cfg.S3SecretKey, fc.Backup.SecretKey)
	set(&cfg.BackupPrefix, fc.Backup.Prefix)
	set(&cfg.BackupPassphrase, fc.Backup.Passphrase)
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
