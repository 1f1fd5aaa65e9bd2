// Package cli is the interactive front end of the ledger: a REPL that maps
// typed commands onto ledger, session and backup operations and prints the
// results.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/officeledger/internal/ledger"
	"github.com/dmitrijs2005/officeledger/internal/logging"
	"github.com/dmitrijs2005/officeledger/internal/session"
)

// Backups is the off-site copy service. It is nil when no bucket is configured.
type Backups interface {
	Backup(ctx context.Context) (string, error)
	Restore(ctx context.Context, key, actorID string) error
	List(ctx context.Context) ([]string, error)
}

type App struct {
	ledger   *ledger.Ledger
	sessions *session.Manager
	backups  Backups
	logger   logging.Logger

	reader *bufio.Reader
	out    io.Writer
	now    func() time.Time

	commands map[string]command
}

type Option func(*App)

// WithIO replaces stdin/stdout, mostly for tests.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(a *App) {
		a.reader = bufio.NewReader(in)
		a.out = out
	}
}

func WithBackups(b Backups) Option {
	return func(a *App) { a.backups = b }
}

func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

func NewApp(l *ledger.Ledger, sessions *session.Manager, logger logging.Logger, opts ...Option) *App {
	a := &App{
		ledger:   l,
		sessions: sessions,
		logger:   logger,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
		now:      time.Now,
	}
	for _, o := range opts {
		o(a)
	}
	a.commands = make(map[string]command)
	for _, c := range a.commandTable() {
		a.commands[c.name] = c
	}
	return a
}

// Run resumes the stored session, if any, and starts the REPL.
func (a *App) Run(ctx context.Context) {
	printlnFn("Welcome to the office inventory ledger (type 'help' for commands)")
	if u, err := a.sessions.Restore(ctx); err == nil {
		printlnFn(fmt.Sprintf("Logged in as %s (%s)", u.Username, u.Role))
	} else {
		a.logger.Debug(ctx, "no session restored", "err", err)
	}
	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) status() string {
	u, ok := a.sessions.Current()
	if !ok {
		return "(guest)"
	}
	return fmt.Sprintf("(%s %s)", u.Username, u.Role)
}

func (a *App) helpText() string {
	u, loggedIn := a.sessions.Current()
	names := make([]string, 0, len(a.commands))
	for name, c := range a.commands {
		switch c.access {
		case member:
			if !loggedIn {
				continue
			}
		case admin:
			if !loggedIn || !u.IsAdmin() {
				continue
			}
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("Available commands:\n")
	for _, name := range names {
		c := a.commands[name]
		fmt.Fprintf(&b, "  %-34s %s\n", c.usage, c.help)
	}
	b.WriteString("  exit | quit")
	return b.String()
}

func (a *App) execute(ctx context.Context, name string, args []string) error {
	c, ok := a.commands[name]
	if !ok {
		return fmt.Errorf("%w: %s", errUnknownCommand, name)
	}
	switch c.access {
	case member:
		if _, err := a.sessions.RequireUser(); err != nil {
			return err
		}
	case admin:
		if _, err := a.sessions.RequireAdmin(); err != nil {
			return err
		}
	}
	if len(args) < c.minArgs {
		return usageError{usage: c.usage}
	}
	return c.run(ctx, args)
}
