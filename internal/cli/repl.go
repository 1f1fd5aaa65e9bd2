package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL drives. App satisfies it; tests
// use a lightweight stub.
type execIface interface {
	helpText() string
	execute(ctx context.Context, name string, args []string) error
}

// runREPL reads commands from r until EOF, "exit", "quit" or ctx is done.
// The first token of a line names the command, the rest are its arguments.
// Errors returned by a command are printed and the loop carries on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, r *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("ledger %s> ", statusFn()))
		line, err := readLineContext(ctx, r)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := strings.ToLower(parts[0])

		switch cmd {
		case "help", "?":
			printlnFn(a.helpText())

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			if err := a.execute(ctx, cmd, parts[1:]); err != nil {
				printlnFn("Error:", describe(err))
			}
		}
	}
}

type lineResult struct {
	line string
	err  error
}

// readLineContext is readLine that gives up when ctx is done. The pending
// read is abandoned and its result dropped.
func readLineContext(ctx context.Context, r *bufio.Reader) (string, error) {
	ch := make(chan lineResult, 1)
	go func() {
		line, err := readLine(r)
		ch <- lineResult{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		return res.line, res.err
	}
}
