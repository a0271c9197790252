package app

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// stubExec records which commands the REPL dispatched.
type stubExec struct {
	calls   []string
	syncErr error
}

func (s *stubExec) Add(ctx context.Context) error    { s.calls = append(s.calls, "add"); return nil }
func (s *stubExec) List(ctx context.Context) error   { s.calls = append(s.calls, "list"); return nil }
func (s *stubExec) Show(ctx context.Context) error   { s.calls = append(s.calls, "show"); return nil }
func (s *stubExec) Delete(ctx context.Context) error { s.calls = append(s.calls, "delete"); return nil }
func (s *stubExec) Sync(ctx context.Context) error {
	s.calls = append(s.calls, "sync")
	return s.syncErr
}
func (s *stubExec) Retry(ctx context.Context) error {
	s.calls = append(s.calls, "retry")
	return nil
}
func (s *stubExec) Migrate(ctx context.Context) error {
	s.calls = append(s.calls, "migrate")
	return nil
}
func (s *stubExec) SkipMigration(ctx context.Context) error {
	s.calls = append(s.calls, "skip-migration")
	return nil
}

func runScript(t *testing.T, a execIface, script string) string {
	t.Helper()
	var out bytes.Buffer
	scanner := bufio.NewScanner(strings.NewReader(script))
	runREPL(context.Background(), a, func() string { return "(test)" }, scanner, &out)
	return out.String()
}

func TestREPL_DispatchesCommands(t *testing.T) {
	s := &stubExec{}
	out := runScript(t, s, "add\nlist\nl\nshow\ndelete\nsync\nretry\nmigrate\nskip-migration\nexit\n")

	assert.Equal(t, []string{"add", "list", "list", "show", "delete", "sync", "retry", "migrate", "skip-migration"}, s.calls)
	assert.Contains(t, out, "Bye!")
}

func TestREPL_UnknownAndEmptyInput(t *testing.T) {
	s := &stubExec{}
	out := runScript(t, s, "\nbogus\nexit\n")

	assert.Empty(t, s.calls)
	assert.Contains(t, out, "Unknown command: bogus")
}

func TestREPL_CommandErrorKeepsLoopAlive(t *testing.T) {
	s := &stubExec{syncErr: errors.New("remote unavailable")}
	out := runScript(t, s, "sync\nlist\nexit\n")

	assert.Equal(t, []string{"sync", "list"}, s.calls)
	assert.Contains(t, out, "Error: remote unavailable")
}

func TestREPL_ExitsOnEOF(t *testing.T) {
	s := &stubExec{}
	out := runScript(t, s, "help\n")

	assert.Contains(t, out, "Available commands")
	assert.Empty(t, s.calls)
}
