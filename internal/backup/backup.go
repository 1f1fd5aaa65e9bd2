// Package backup copies ledger snapshots to object storage and restores
// them. Snapshots use the same versioned envelope as the local document and
// are optionally sealed with a passphrase.
package backup

import (
	"context"
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/officeledger/internal/cryptox"
	"github.com/dmitrijs2005/officeledger/internal/logging"
	"github.com/dmitrijs2005/officeledger/internal/models"
	"github.com/dmitrijs2005/officeledger/internal/persist"
)

var (
	ErrNotConfigured      = errors.New("backup bucket is not configured")
	ErrPassphraseRequired = errors.New("backup is encrypted and no passphrase is configured")
)

const encryptedSuffix = ".enc"

type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

// Ledger is the part of the ledger a backup reads and a restore replaces.
type Ledger interface {
	Snapshot() models.State
	Replace(ctx context.Context, s models.State, actorID string) error
}

// Decoder parses a snapshot document, upgrading older versions.
type Decoder interface {
	Decode(data []byte) (models.State, error)
}

type Service struct {
	store      ObjectStore
	ledger     Ledger
	decoder    Decoder
	prefix     string
	passphrase []byte
	logger     logging.Logger
	now        func() time.Time
}

func NewService(store ObjectStore, l Ledger, dec Decoder, prefix, passphrase string, logger logging.Logger) *Service {
	s := &Service{
		store:   store,
		ledger:  l,
		decoder: dec,
		prefix:  strings.Trim(prefix, "/"),
		logger:  logger,
		now:     time.Now,
	}
	if passphrase != "" {
		s.passphrase = []byte(passphrase)
	}
	return s
}

// Backup uploads the current snapshot and returns its object key.
func (s *Service) Backup(ctx context.Context) (string, error) {
	data, err := persist.Encode(s.ledger.Snapshot())
	if err != nil {
		return "", err
	}

	key := path.Join(s.prefix, "ledger-"+s.now().UTC().Format("20060102T150405Z")+".json")
	if s.passphrase != nil {
		if data, err = cryptox.Seal(data, s.passphrase); err != nil {
			return "", fmt.Errorf("failed to encrypt backup: %w", err)
		}
		key += encryptedSuffix
	}

	if err := s.store.Put(ctx, key, data); err != nil {
		return "", err
	}
	s.logger.Info(ctx, "ledger backed up", "key", key, "bytes", len(data))
	return key, nil
}

// Restore downloads key and installs it as the ledger state on behalf of
// actorID.
func (s *Service) Restore(ctx context.Context, key, actorID string) error {
	data, err := s.store.Get(ctx, key)
	if err != nil {
		return err
	}
	if cryptox.IsSealed(data) {
		if s.passphrase == nil {
			return ErrPassphraseRequired
		}
		if data, err = cryptox.Open(data, s.passphrase); err != nil {
			return fmt.Errorf("failed to decrypt backup %s: %w", key, err)
		}
	}

	st, err := s.decoder.Decode(data)
	if err != nil {
		return fmt.Errorf("failed to decode backup %s: %w", key, err)
	}
	if err := s.ledger.Replace(ctx, st, actorID); err != nil {
		return err
	}
	s.logger.Info(ctx, "ledger restored", "key", key, "by", actorID)
	return nil
}

// List returns the stored backup keys, newest first.
func (s *Service) List(ctx context.Context) ([]string, error) {
	prefix := "ledger-"
	if s.prefix != "" {
		prefix = s.prefix + "/" + prefix
	}
	keys, err := s.store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	slices.Sort(keys)
	slices.Reverse(keys)
	return keys, nil
}

func isEncrypted(key string) bool {
	return strings.HasSuffix(key, encryptedSuffix)
}
