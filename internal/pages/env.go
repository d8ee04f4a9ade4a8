// Package pages holds one controller per navigable page. Controllers are
// built fresh per activation by the route table, render through Env.Out and
// read interactive input through Env.In, so tests can script both ends.
package pages

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dberzins/camagru/internal/api"
	"github.com/dberzins/camagru/internal/capture"
	"github.com/dberzins/camagru/internal/logging"
	"github.com/dberzins/camagru/internal/router"
	"github.com/dberzins/camagru/internal/session"
)

// Env is the application context shared by all pages: single instances of
// the session store, the API gateway and the router, constructed once at
// startup and passed by reference.
type Env struct {
	Store     *session.Store
	API       *api.Gateway
	Router    *router.Router
	NewEngine func() *capture.Engine
	Logger    logging.Logger
	In        *bufio.Reader
	Out       io.Writer
	PageSize  int
}

func (e *Env) printf(format string, args ...any) {
	fmt.Fprintf(e.Out, format+"\n", args...)
}

// Commander is implemented by pages that accept interactive commands from
// the command loop while they are active.
type Commander interface {
	// Commands is the one-line help for the page's commands.
	Commands() string
	// Exec runs one page command. An ErrUnknownCommand result lets the
	// command loop report the command as unrecognized.
	Exec(ctx context.Context, cmd string, args []string) error
}

// ErrUnknownCommand is returned by Exec for commands the page does not own.
var ErrUnknownCommand = errors.New("unknown command")
