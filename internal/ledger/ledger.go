// Package ledger implements the office inventory ledger: the in-memory
// aggregate of users, items, loans, requests and audits together with the
// operations that move it from one snapshot to the next.
//
// Every mutating operation runs under a single mutex. It clones the current
// state, applies the change to the clone, installs the clone and then hands
// it to the Persister. A failing operation installs nothing.
package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/officeledger/internal/cryptox"
	"github.com/dmitrijs2005/officeledger/internal/logging"
	"github.com/dmitrijs2005/officeledger/internal/models"
)

// AuditLimit is the number of most recent audit entries kept in the state.
const AuditLimit = 500

// Persister stores installed snapshots. Save errors are logged and never
// reach the caller of a ledger operation.
type Persister interface {
	Save(ctx context.Context, s models.State) error
}

// Hasher turns a plaintext password into the value stored on a User.
type Hasher func(password string) (string, error)

type Ledger struct {
	mu        sync.Mutex
	state     models.State
	persister Persister
	logger    logging.Logger

	now    func() time.Time
	newID  func(prefix string) string
	hasher Hasher
}

type Option func(*Ledger)

func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func WithIDGenerator(gen func(prefix string) string) Option {
	return func(l *Ledger) { l.newID = gen }
}

func WithPasswordHasher(h Hasher) Option {
	return func(l *Ledger) { l.hasher = h }
}

func WithLogger(log logging.Logger) Option {
	return func(l *Ledger) { l.logger = log }
}

// New returns a ledger holding a copy of initial. persister may be nil, in
// which case snapshots are kept in memory only.
func New(initial models.State, persister Persister, opts ...Option) *Ledger {
	l := &Ledger{
		state:     initial.Clone(),
		persister: persister,
		logger:    logging.Discard(),
		now:       time.Now,
		newID:     NewID,
		hasher:    DefaultHasher,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// DefaultHasher hashes with bcrypt at its default cost.
func DefaultHasher(password string) (string, error) {
	return cryptox.HashPassword(password, 0)
}

// mutate runs fn against a private clone of the state and installs the clone
// only when fn succeeds.
func (l *Ledger) mutate(ctx context.Context, op string, fn func(tx *txn) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx := &txn{
		State: l.state.Clone(),
		now:   l.now().UTC(),
		newID: l.newID,
	}
	if err := fn(tx); err != nil {
		l.logger.Debug(ctx, "ledger operation rejected", "op", op, "err", err)
		return err
	}

	l.state = tx.State
	if l.persister != nil {
		// An installed state is saved even when the caller's ctx is cancelled.
		if err := l.persister.Save(context.WithoutCancel(ctx), l.state.Clone()); err != nil {
			l.logger.Warn(ctx, "failed to persist ledger snapshot", "op", op, "err", err)
		}
	}
	return nil
}

// Replace installs s wholesale and records a ledger.restore audit entry for
// actorID. It is used when restoring a backup.
func (l *Ledger) Replace(ctx context.Context, s models.State, actorID string) error {
	return l.mutate(ctx, "replace", func(tx *txn) error {
		tx.State = s.Clone()
		tx.audit("ledger.restore", actorID, "", map[string]any{
			"users": len(s.Users),
			"items": len(s.Items),
			"loans": len(s.Loans),
		})
		return nil
	})
}
