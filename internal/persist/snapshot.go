package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/officeledger/internal/common"
	"github.com/dmitrijs2005/officeledger/internal/logging"
	"github.com/dmitrijs2005/officeledger/internal/models"
	"github.com/dmitrijs2005/officeledger/internal/storage"
)

// SeedFunc builds the state used when no usable document exists.
type SeedFunc func() (models.State, error)

// SnapshotStore loads and saves the ledger state document.
type SnapshotStore struct {
	repo       storage.Repository
	key        string
	seed       SeedFunc
	logger     logging.Logger
	migrations map[int]Migration
}

type SnapshotOption func(*SnapshotStore)

// WithMigrations registers upgrades keyed by the version they start from.
func WithMigrations(m map[int]Migration) SnapshotOption {
	return func(s *SnapshotStore) { s.migrations = m }
}

func WithKey(key string) SnapshotOption {
	return func(s *SnapshotStore) { s.key = key }
}

func NewSnapshotStore(repo storage.Repository, seed SeedFunc, logger logging.Logger, opts ...SnapshotOption) *SnapshotStore {
	s := &SnapshotStore{
		repo:       repo,
		key:        LedgerKey,
		seed:       seed,
		logger:     logger,
		migrations: map[int]Migration{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Load returns the persisted state. A missing document is replaced by seed
// data, and so is one that cannot be decoded; both are saved right away.
// Only repository failures are returned.
func (s *SnapshotStore) Load(ctx context.Context) (models.State, error) {
	data, err := s.repo.Get(ctx, s.key)
	if err != nil {
		return models.State{}, err
	}
	if data == nil {
		s.logger.Info(ctx, "no ledger document, seeding", "doc", s.key)
		return s.reseed(ctx)
	}

	st, migrated, err := s.decode(data)
	if errors.Is(err, common.ErrCorruptDocument) {
		s.logger.Warn(ctx, "ledger document unusable, resetting to seed data", "doc", s.key, "err", err)
		return s.reseed(ctx)
	}
	if err != nil {
		return models.State{}, err
	}
	if migrated {
		s.logger.Info(ctx, "ledger document migrated", "doc", s.key, "version", CurrentVersion)
		if err := s.Save(ctx, st); err != nil {
			return models.State{}, err
		}
	}
	return st, nil
}

// Save writes st under the current schema version.
func (s *SnapshotStore) Save(ctx context.Context, st models.State) error {
	data, err := Encode(st)
	if err != nil {
		return err
	}
	return s.repo.Set(ctx, s.key, data)
}

// Decode parses a document produced by Encode, applying the registered
// migrations. Backups are read through it.
func (s *SnapshotStore) Decode(data []byte) (models.State, error) {
	st, _, err := s.decode(data)
	return st, err
}

func (s *SnapshotStore) decode(data []byte) (models.State, bool, error) {
	var st models.State
	migrated, err := decode(data, &st, s.migrations)
	if err != nil {
		return models.State{}, false, err
	}
	if st.Sequences == nil {
		st.Sequences = map[string]int{}
	}
	return st, migrated, nil
}

// Encode wraps st in the versioned envelope.
func Encode(st models.State) ([]byte, error) {
	return encode(st)
}

func (s *SnapshotStore) reseed(ctx context.Context) (models.State, error) {
	st, err := s.seed()
	if err != nil {
		return models.State{}, fmt.Errorf("failed to build seed data: %w", err)
	}
	if err := s.Save(ctx, st); err != nil {
		return models.State{}, err
	}
	return st, nil
}
