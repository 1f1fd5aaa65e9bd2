package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/dmitrijs2005/officeledger/internal/common"
	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	calls []string
}

func (f *fakeExec) helpText() string { return "HELP" }

func (f *fakeExec) execute(_ context.Context, name string, args []string) error {
	f.calls = append(f.calls, fmt.Sprintf("%s %v", name, args))
	switch name {
	case "boom":
		return errors.New("kaboom")
	case "secret":
		return common.ErrForbidden
	}
	return nil
}

func TestRunREPL_DispatchesAndPrintsErrors(t *testing.T) {
	out := capturePrintln(t)

	exec := &fakeExec{}
	input := lines("help", "", "items laptop", "BOOM", "secret", "quit", "stats")
	runREPL(context.Background(), exec, func() string { return "(guest)" }, rdr(input))

	assert.Equal(t, []string{"items [laptop]", "boom []", "secret []"}, exec.calls)
	s := out.String()
	assert.Contains(t, s, "ledger (guest)> ")
	assert.Contains(t, s, "HELP")
	assert.Contains(t, s, "Error: kaboom")
	assert.Contains(t, s, "Error: this command needs an admin account")
	assert.Contains(t, s, "Bye!")
}

func TestRunREPL_StopsOnEOF(t *testing.T) {
	capturePrintln(t)
	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, rdr("whoami"))
	assert.Equal(t, []string{"whoami []"}, exec.calls)
}

func TestRunREPL_StopsWhenContextDone(t *testing.T) {
	capturePrintln(t)
	exec := &fakeExec{}

	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		runREPL(ctx, exec, func() string { return "" }, bufio.NewReader(pr))
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("runREPL kept waiting for input after cancel")
	}
	assert.Empty(t, exec.calls)
}

func TestRunREPL_CancelledContextRunsNothing(t *testing.T) {
	capturePrintln(t)
	exec := &fakeExec{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runREPL(ctx, exec, func() string { return "" }, rdr(lines("additem", "stats")))
	assert.Empty(t, exec.calls)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "please log in first", describe(fmt.Errorf("x: %w", common.ErrUnauthorized)))
	assert.Equal(t, "your session has expired, please log in again", describe(common.ErrInvalidToken))
	assert.Equal(t, "invalid input: name: too short; qty: too small",
		describe(errors.Join(common.Invalid("name", "too short"), common.Invalid("qty", "too small"))))
	assert.Equal(t, "item x: not found", describe(fmt.Errorf("item x: %w", common.ErrNotFound)))
}
