package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dberzins/camagru/internal/pages"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the command loop needs to
// operate. The real App type satisfies this interface; tests can provide a
// lightweight stub.
type execIface interface {
	status() string
	pageHelp() string
	open(ctx context.Context, fragment string)
	logout(ctx context.Context)
	execPage(ctx context.Context, cmd string, args []string) error
	checkExpired(ctx context.Context)
}

// runLoop reads one line per iteration, parses the first token as the
// command, and dispatches global commands itself; every other token is
// forwarded to the active page. Unknown commands are reported back to the
// user. The loop exits on reader EOF or when the user types "exit" or
// "quit".
//
// Global commands:
//
//   - help           — global commands plus the active page's commands
//   - open <path>    — navigate, e.g. open /camera or open /profile/joe
//   - logout         — clear the session and return to the login page
//   - exit | quit    — leave the program
//
// The rest of the command surface depends on the page that is open; "help"
// shows it. After each command the loop checks whether the session expired
// mid-command and, if so, redirects to the login page.
func runLoop(ctx context.Context, a execIface, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("camagru %s> ", a.status()))
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			if errors.Is(err, io.EOF) {
				return
			}
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			printlnFn("Global commands: help, open <path>, logout, exit")
			if pageCmds := a.pageHelp(); pageCmds != "" {
				printlnFn("Page commands:", pageCmds)
			}

		case "open":
			if len(args) != 1 {
				printlnFn("Usage: open <path>")
			} else {
				a.open(ctx, args[0])
			}

		case "logout":
			a.logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			if err := a.execPage(ctx, cmd, args); err != nil {
				if errors.Is(err, pages.ErrUnknownCommand) {
					printlnFn("Unknown command:", cmd)
				} else {
					printlnFn("Error:", err.Error())
				}
			}
		}

		a.checkExpired(ctx)

		if errors.Is(err, io.EOF) {
			return
		}
	}
}
