package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/officeledger/internal/backup"
	"github.com/dmitrijs2005/officeledger/internal/config"
	"github.com/dmitrijs2005/officeledger/internal/cryptox"
	"github.com/dmitrijs2005/officeledger/internal/ledger"
	"github.com/dmitrijs2005/officeledger/internal/logging"
	"github.com/dmitrijs2005/officeledger/internal/models"
	"github.com/dmitrijs2005/officeledger/internal/persist"
	"github.com/dmitrijs2005/officeledger/internal/session"
	"github.com/dmitrijs2005/officeledger/internal/storage"
)

// Bootstrap opens the configured store, loads (or seeds) the ledger and
// assembles an App around it. The returned func releases the store.
func Bootstrap(ctx context.Context, cfg *config.Config, logOut io.Writer, opts ...Option) (*App, func() error, error) {
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, logOut)
	if err != nil {
		return nil, nil, err
	}
	if cfg.JWTSecret == config.DevJWTSecret {
		logger.Warn(ctx, "using the built-in session secret, set OFFICELEDGER_JWT_SECRET")
	}

	repo, err := storage.Open(ctx, cfg.Storage(), logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s store: %w", cfg.StorageDriver, err)
	}
	if keys, err := repo.Keys(ctx); err != nil {
		logger.Warn(ctx, "failed to list stored documents", "err", err)
	} else {
		logger.Info(ctx, "store opened", "driver", cfg.StorageDriver, "documents", keys)
	}

	hasher := func(pw string) (string, error) { return cryptox.HashPassword(pw, cfg.BcryptCost) }
	seed := func() (models.State, error) { return ledger.Seed(time.Now(), hasher) }

	snapshots := persist.NewSnapshotStore(repo, seed, logger)
	state, err := snapshots.Load(ctx)
	if err != nil {
		_ = repo.Close()
		return nil, nil, fmt.Errorf("failed to load ledger: %w", err)
	}

	l := ledger.New(state, snapshots, ledger.WithLogger(logger), ledger.WithPasswordHasher(hasher))
	sessions := session.NewManager(l, persist.NewSessionStore(repo, logger), []byte(cfg.JWTSecret), cfg.SessionTTL, logger)

	if cfg.S3Bucket != "" {
		store, err := backup.NewS3Store(ctx, cfg.S3())
		if err != nil {
			logger.Warn(ctx, "backups disabled", "err", err)
		} else {
			svc := backup.NewService(store, l, snapshots, cfg.BackupPrefix, cfg.BackupPassphrase, logger)
			opts = append([]Option{WithBackups(svc)}, opts...)
		}
	}

	return NewApp(l, sessions, logger, opts...), repo.Close, nil
}
