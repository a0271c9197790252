package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Add(ctx context.Context) error
	List(ctx context.Context) error
	Show(ctx context.Context) error
	Delete(ctx context.Context) error
	Sync(ctx context.Context) error
	Retry(ctx context.Context) error
	Migrate(ctx context.Context) error
	SkipMigration(ctx context.Context) error
}

const helpText = "Available commands: add, (l)ist, show, delete, sync, retry, migrate, skip-migration, exit"

// runREPL starts a simple read–eval–print loop for the fishlog CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF, on ctx cancellation, or
// when the user types "exit" or "quit".
//
// Any errors returned by command handlers are printed and the loop continues;
// a broken command never takes the whole session down.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner, w io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}

		fmt.Fprintf(w, "fishlog %s> ", statusFn())
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		var err error
		switch cmd {
		case "help":
			fmt.Fprintln(w, helpText)

		case "add":
			err = a.Add(ctx)

		case "l", "list":
			err = a.List(ctx)

		case "show":
			err = a.Show(ctx)

		case "delete":
			err = a.Delete(ctx)

		case "sync":
			err = a.Sync(ctx)

		case "retry":
			err = a.Retry(ctx)

		case "migrate":
			err = a.Migrate(ctx)

		case "skip-migration":
			err = a.SkipMigration(ctx)

		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return

		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}

		if err != nil {
			fmt.Fprintln(w, "Error:", err)
		}
	}
}
