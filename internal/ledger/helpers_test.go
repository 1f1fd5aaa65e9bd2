package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/officeledger/internal/cryptox"
	"github.com/dmitrijs2005/officeledger/internal/models"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func fastHash(p string) (string, error) { return cryptox.HashPassword(p, bcrypt.MinCost) }

type recordingPersister struct {
	mu      sync.Mutex
	saves   []models.State
	ctxErrs []error
	err     error
}

func (p *recordingPersister) Save(ctx context.Context, s models.State) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saves = append(p.saves, s)
	p.ctxErrs = append(p.ctxErrs, ctx.Err())
	return p.err
}

func (p *recordingPersister) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.saves)
}

func sequentialIDs() func(string) string {
	var mu sync.Mutex
	n := 0
	return func(prefix string) string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s_%04d", prefix, n)
	}
}

func newTestLedger(t *testing.T, initial models.State, opts ...Option) (*Ledger, *recordingPersister) {
	t.Helper()
	p := &recordingPersister{}
	base := []Option{
		WithClock(func() time.Time { return testNow }),
		WithIDGenerator(sequentialIDs()),
		WithPasswordHasher(fastHash),
	}
	return New(initial, p, append(base, opts...)...), p
}

// seeded returns a ledger on seed data plus the seeded admin, staff and
// ThinkPad item (quantity 10, available 8).
func seeded(t *testing.T) (*Ledger, *recordingPersister, models.User, models.User, models.Item) {
	t.Helper()
	s, err := Seed(testNow, fastHash)
	require.NoError(t, err)
	l, p := newTestLedger(t, s)

	admin, ok := l.FindUserByUsername("admin")
	require.True(t, ok)
	staff, ok := l.FindUserByUsername("staff")
	require.True(t, ok)
	item, ok := l.FindItemByCode("ITM-0001")
	require.True(t, ok)
	return l, p, admin, staff, item
}

func ptr[T any](v T) *T { return &v }

var errDisk = errors.New("disk full")
