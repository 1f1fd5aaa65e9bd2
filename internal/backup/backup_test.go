package backup

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/officeledger/internal/cryptox"
	"github.com/dmitrijs2005/officeledger/internal/ledger"
	"github.com/dmitrijs2005/officeledger/internal/logging"
	"github.com/dmitrijs2005/officeledger/internal/persist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func (m *memObjects) Put(_ context.Context, key string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.objects[key] = append([]byte(nil), body...)
	return nil
}

func (m *memObjects) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return b, nil
}

func (m *memObjects) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

var backupTime = time.Date(2026, 4, 2, 17, 5, 9, 0, time.UTC)

func newFixture(t *testing.T, passphrase string) (*Service, *ledger.Ledger, *memObjects) {
	t.Helper()
	hash := func(p string) (string, error) { return cryptox.HashPassword(p, bcrypt.MinCost) }
	st, err := ledger.Seed(backupTime, hash)
	require.NoError(t, err)
	l := ledger.New(st, nil, ledger.WithPasswordHasher(hash))

	objs := &memObjects{objects: map[string][]byte{}}
	dec := persist.NewSnapshotStore(nil, nil, logging.Discard())
	svc := NewService(objs, l, dec, "/office/", passphrase, logging.Discard())
	svc.now = func() time.Time { return backupTime }
	return svc, l, objs
}

func TestBackupRestore_Plain(t *testing.T) {
	ctx := context.Background()
	svc, l, objs := newFixture(t, "")

	key, err := svc.Backup(ctx)
	require.NoError(t, err)
	assert.Equal(t, "office/ledger-20260402T170509Z.json", key)
	assert.Contains(t, string(objs.objects[key]), `"version":1`)

	admin, _ := l.FindUserByUsername("admin")
	item, _ := l.FindItemByCode("ITM-0001")
	require.NoError(t, l.DeleteItem(ctx, item.ID))
	_, found := l.FindItem(item.ID)
	require.False(t, found)

	require.NoError(t, svc.Restore(ctx, key, admin.ID))

	_, found = l.FindItem(item.ID)
	assert.True(t, found)
	audits := l.Snapshot().Audits
	require.NotEmpty(t, audits)
	assert.Equal(t, "ledger.restore", audits[0].Action)
	assert.Equal(t, admin.ID, audits[0].UserID)
}

func TestBackupRestore_Encrypted(t *testing.T) {
	ctx := context.Background()
	svc, l, objs := newFixture(t, "correct horse")

	key, err := svc.Backup(ctx)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(key, ".json.enc"))
	assert.True(t, cryptox.IsSealed(objs.objects[key]))
	assert.NotContains(t, string(objs.objects[key]), "ThinkPad")

	require.NoError(t, l.Replace(ctx, l.Snapshot(), ""))
	require.NoError(t, svc.Restore(ctx, key, "usr_x"))
	assert.Len(t, l.Snapshot().Items, 2)

	noPass := NewService(objs, l, persist.NewSnapshotStore(nil, nil, logging.Discard()), "office", "", logging.Discard())
	assert.ErrorIs(t, noPass.Restore(ctx, key, "usr_x"), ErrPassphraseRequired)

	wrong := NewService(objs, l, persist.NewSnapshotStore(nil, nil, logging.Discard()), "office", "wrong", logging.Discard())
	assert.ErrorIs(t, wrong.Restore(ctx, key, "usr_x"), cryptox.ErrDecryption)
}

func TestRestore_Errors(t *testing.T) {
	ctx := context.Background()
	svc, l, objs := newFixture(t, "")
	before := l.Snapshot()

	assert.ErrorContains(t, svc.Restore(ctx, "office/missing.json", "u"), "NoSuchKey")

	objs.objects["office/bad.json"] = []byte(`{"version":99,"state":{}}`)
	assert.ErrorContains(t, svc.Restore(ctx, "office/bad.json", "u"), "failed to decode backup")

	assert.Equal(t, before.Items, l.Snapshot().Items)
	assert.Empty(t, l.Snapshot().Audits)
}

func TestBackup_UploadError(t *testing.T) {
	svc, _, objs := newFixture(t, "")
	objs.putErr = errors.New("access denied")
	_, err := svc.Backup(context.Background())
	assert.EqualError(t, err, "access denied")
}

func TestList_NewestFirst(t *testing.T) {
	ctx := context.Background()
	svc, _, objs := newFixture(t, "")

	for _, ts := range []time.Time{backupTime, backupTime.Add(time.Hour), backupTime.Add(-time.Hour)} {
		svc.now = func() time.Time { return ts }
		_, err := svc.Backup(ctx)
		require.NoError(t, err)
	}
	objs.objects["elsewhere/ledger-x.json"] = []byte("{}")

	keys, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"office/ledger-20260402T180509Z.json",
		"office/ledger-20260402T170509Z.json",
		"office/ledger-20260402T160509Z.json",
	}, keys)
}
