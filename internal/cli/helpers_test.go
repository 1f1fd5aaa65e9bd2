package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/officeledger/internal/cryptox"
	"github.com/dmitrijs2005/officeledger/internal/ledger"
	"github.com/dmitrijs2005/officeledger/internal/logging"
	"github.com/dmitrijs2005/officeledger/internal/persist"
	"github.com/dmitrijs2005/officeledger/internal/session"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func fastHash(p string) (string, error) { return cryptox.HashPassword(p, bcrypt.MinCost) }

type memSessions struct {
	sess *persist.Session
}

func (m *memSessions) Load(context.Context) (*persist.Session, error) { return m.sess, nil }
func (m *memSessions) Save(_ context.Context, s persist.Session) error {
	m.sess = &s
	return nil
}
func (m *memSessions) Clear(context.Context) error {
	m.sess = nil
	return nil
}

type fixture struct {
	app      *App
	out      *bytes.Buffer
	ledger   *ledger.Ledger
	sessions *memSessions
}

func newFixture(t *testing.T, input string, opts ...Option) *fixture {
	t.Helper()
	st, err := ledger.Seed(time.Now(), fastHash)
	require.NoError(t, err)

	l := ledger.New(st, nil, ledger.WithPasswordHasher(fastHash))
	store := &memSessions{}
	mgr := session.NewManager(l, store, []byte("test-secret"), time.Hour, logging.Discard())

	out := &bytes.Buffer{}
	opts = append([]Option{WithIO(strings.NewReader(input), out)}, opts...)
	return &fixture{
		app:      NewApp(l, mgr, logging.Discard(), opts...),
		out:      out,
		ledger:   l,
		sessions: store,
	}
}

func (f *fixture) run(name string, args ...string) error {
	return f.app.execute(context.Background(), name, args)
}

func (f *fixture) login(t *testing.T, username string) {
	t.Helper()
	stubPassword(t, ledger.SeedPassword)
	require.NoError(t, f.run("login", username))
	f.out.Reset()
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	old := getPassword
	getPassword = func(io.Writer) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { getPassword = old })
}

// capturePrintln redirects printlnFn into the returned buffer.
func capturePrintln(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := printlnFn
	printlnFn = func(a ...any) (int, error) { return fmt.Fprintln(&buf, a...) }
	t.Cleanup(func() { printlnFn = old })
	return &buf
}
