package app

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dberzins/camagru/internal/pages"
)

// execStub records dispatched commands.
type execStub struct {
	opened   []string
	paged    [][]string
	logouts  int
	expireds int
}

func (s *execStub) status() string   { return "/" }
func (s *execStub) pageHelp() string { return "refresh | like <n>" }
func (s *execStub) open(_ context.Context, fragment string) {
	s.opened = append(s.opened, fragment)
}
func (s *execStub) logout(context.Context) { s.logouts++ }
func (s *execStub) execPage(_ context.Context, cmd string, args []string) error {
	if cmd == "boom" {
		return fmt.Errorf("page broke")
	}
	if cmd != "refresh" && cmd != "like" {
		return pages.ErrUnknownCommand
	}
	s.paged = append(s.paged, append([]string{cmd}, args...))
	return nil
}
func (s *execStub) checkExpired(context.Context) { s.expireds++ }

func runScript(t *testing.T, script string) (*execStub, string) {
	t.Helper()
	out := &bytes.Buffer{}
	orig := printlnFn
	printlnFn = func(args ...any) (int, error) { return fmt.Fprintln(out, args...) }
	t.Cleanup(func() { printlnFn = orig })

	stub := &execStub{}
	runLoop(context.Background(), stub, bufio.NewReader(strings.NewReader(script)))
	return stub, out.String()
}

func TestRunLoop_DispatchesGlobalAndPageCommands(t *testing.T) {
	stub, out := runScript(t, "help\nopen /camera\nrefresh\nlike 2\nlogout\nexit\n")

	assert.Equal(t, []string{"/camera"}, stub.opened)
	assert.Equal(t, [][]string{{"refresh"}, {"like", "2"}}, stub.paged)
	assert.Equal(t, 1, stub.logouts)
	assert.Contains(t, out, "Global commands:")
	assert.Contains(t, out, "refresh | like <n>")
	assert.Contains(t, out, "Bye!")
}

func TestRunLoop_UnknownCommandReported(t *testing.T) {
	_, out := runScript(t, "frobnicate\nexit\n")
	assert.Contains(t, out, "Unknown command: frobnicate")
}

func TestRunLoop_PageErrorReported(t *testing.T) {
	_, out := runScript(t, "boom\nexit\n")
	assert.Contains(t, out, "Error: page broke")
}

func TestRunLoop_OpenUsage(t *testing.T) {
	stub, out := runScript(t, "open\nexit\n")
	assert.Empty(t, stub.opened)
	assert.Contains(t, out, "Usage: open <path>")
}

func TestRunLoop_ExitsOnEOF(t *testing.T) {
	stub, _ := runScript(t, "refresh")
	assert.Equal(t, [][]string{{"refresh"}}, stub.paged)
}

func TestRunLoop_ChecksExpiryAfterEachCommand(t *testing.T) {
	stub, _ := runScript(t, "refresh\nlike 1\nexit\n")
	assert.Equal(t, 2, stub.expireds)
}
