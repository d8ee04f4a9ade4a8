// Package app wires the session store, API gateway, capture engine factory,
// router and pages into one running application.
package app

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/dberzins/camagru/internal/api"
	"github.com/dberzins/camagru/internal/capture"
	"github.com/dberzins/camagru/internal/config"
	"github.com/dberzins/camagru/internal/logging"
	"github.com/dberzins/camagru/internal/pages"
	"github.com/dberzins/camagru/internal/router"
	"github.com/dberzins/camagru/internal/session"
	"github.com/dberzins/camagru/internal/session/state"
)

type App struct {
	config  *config.Config
	db      *sql.DB
	store   *session.Store
	gateway *api.Gateway
	router  *router.Router
	env     *pages.Env
	logger  logging.Logger
	in      *bufio.Reader
	out     io.Writer

	// expired flips when the gateway rejects a user-initiated call with 401.
	// The command loop picks it up between commands and redirects to login,
	// so the redirect never re-enters a transition that is still running.
	expired atomic.Bool
}

func NewApp(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer, logger logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Nop()
	}

	db, err := state.Open(ctx, cfg.StateDSN)
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}

	store := session.NewStore(db, logger)
	gateway := api.New(cfg.ServerURL, nil, store, logger)
	rt := router.New(store, logger)

	a := &App{
		config:  cfg,
		db:      db,
		store:   store,
		gateway: gateway,
		router:  rt,
		logger:  logger,
		in:      bufio.NewReader(in),
		out:     out,
	}

	gateway.OnUnauthorized = func() {
		a.expired.Store(true)
	}
	rt.OnError(func(path string, err error) {
		fmt.Fprintf(out, "The %s page failed to load: %v\nTry again or go back: open /\n", path, err)
	})

	a.env = &pages.Env{
		Store:     store,
		API:       gateway,
		Router:    rt,
		NewEngine: a.newEngine,
		Logger:    logger,
		In:        a.in,
		Out:       out,
		PageSize:  cfg.PageSize,
	}
	a.registerRoutes()

	return a, nil
}

func (a *App) newEngine() *capture.Engine {
	return capture.NewEngine(capture.Options{
		AssetBase:     a.config.ServerURL + a.config.FiltersPath,
		Opener:        capture.DirOpener(a.config.CameraDir),
		FrameInterval: a.config.FrameInterval,
		Logger:        a.logger,
	})
}

func (a *App) registerRoutes() {
	env := a.env
	a.router.Register("/login", router.PolicyAnonymousOnly, func() router.Controller {
		return pages.NewLoginPage(env)
	})
	a.router.Register("/register", router.PolicyAnonymousOnly, func() router.Controller {
		return pages.NewRegisterPage(env)
	})
	a.router.Register("/forgot-password", router.PolicyAnonymousOnly, func() router.Controller {
		return pages.NewForgotPasswordPage(env)
	})
	a.router.Register("/reset-password", router.PolicyAnonymousOnly, func() router.Controller {
		return pages.NewResetPasswordPage(env)
	})
	a.router.Register("/verify", router.PolicyPublic, func() router.Controller {
		return pages.NewVerifyPage(env)
	})
	a.router.Register("/", router.PolicyAuthenticatedOnly, func() router.Controller {
		return pages.NewHomePage(env)
	})
	a.router.Register("/camera", router.PolicyAuthenticatedOnly, func() router.Controller {
		return pages.NewCameraPage(env)
	})
	a.router.Register("/settings", router.PolicyAuthenticatedOnly, func() router.Controller {
		return pages.NewSettingsPage(env)
	})
	a.router.Register("/profile/:username", router.PolicyAuthenticatedOnly, func() router.Controller {
		return pages.NewProfilePage(env)
	})
}

// CheckAuth restores the persisted session and verifies it against the
// backend. A token whose exp claim has already passed is cleared without
// touching the network; a rejected probe clears the stale session silently;
// network trouble keeps the cached session so the app still starts.
func (a *App) CheckAuth(ctx context.Context) {
	if err := a.store.Restore(ctx); err != nil {
		a.logger.Warn(ctx, "session restore failed", "error", err)
		return
	}
	if a.store.Token() == "" {
		return
	}

	if exp, ok := a.store.TokenExpiry(); ok && !exp.After(time.Now()) {
		a.logger.Info(ctx, "persisted token expired, clearing session", "expired_at", exp)
		if err := a.store.ClearAuth(ctx); err != nil {
			a.logger.Warn(ctx, "failed to clear expired session", "error", err)
		}
		return
	}

	probeCtx, cancel := context.WithTimeout(ctx, a.config.ProbeTimeout)
	defer cancel()

	me, err := a.gateway.Me(probeCtx, true)
	if err != nil {
		a.logger.Debug(ctx, "session probe failed", "error", err)
		return
	}
	if err := a.store.SetUser(ctx, me); err != nil {
		a.logger.Warn(ctx, "profile refresh failed", "error", err)
	}
}

// Run starts at the root route and hands control to the command loop. The
// active page is torn down and the state database closed on the way out.
func (a *App) Run(ctx context.Context) error {
	defer a.db.Close()
	defer a.router.Shutdown()

	a.CheckAuth(ctx)
	if err := a.router.Handle(ctx, "/"); err != nil {
		return err
	}

	runLoop(ctx, a, a.in)
	return nil
}

func (a *App) status() string {
	if user := a.store.User(); user != nil && a.store.IsAuthenticated() {
		return fmt.Sprintf("(%s) %s", user.Username, a.router.Current())
	}
	return a.router.Current()
}

func (a *App) open(ctx context.Context, fragment string) {
	if err := a.router.Navigate(ctx, fragment); err != nil {
		fmt.Fprintf(a.out, "Navigation failed: %v\n", err)
	}
}

func (a *App) logout(ctx context.Context) {
	if !a.store.IsAuthenticated() {
		fmt.Fprintln(a.out, "Not signed in")
		return
	}
	if err := a.store.ClearAuth(ctx); err != nil {
		fmt.Fprintf(a.out, "Logout failed: %v\n", err)
		return
	}
	a.open(ctx, "/login")
}

// execPage forwards a command to the active page when it accepts commands.
func (a *App) execPage(ctx context.Context, cmd string, args []string) error {
	active, ok := a.router.Active().(pages.Commander)
	if !ok {
		return pages.ErrUnknownCommand
	}
	return active.Exec(ctx, cmd, args)
}

func (a *App) pageHelp() string {
	if active, ok := a.router.Active().(pages.Commander); ok {
		return active.Commands()
	}
	return ""
}

// checkExpired redirects to login once after the gateway reported an
// expired session.
func (a *App) checkExpired(ctx context.Context) {
	if a.expired.Swap(false) {
		fmt.Fprintln(a.out, "Session expired, please sign in again")
		a.open(ctx, "/login")
	}
}
