// Package router resolves navigation fragments to page controllers and
// enforces the single-active-controller discipline: every transition tears
// the previous controller down before the next one initializes, so live
// resources (an open capture device, subscriptions) never leak across pages.
package router

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dberzins/camagru/internal/logging"
)

// Policy decides who may enter a route.
type Policy int

const (
	// PolicyPublic routes are reachable regardless of session state.
	PolicyPublic Policy = iota
	// PolicyAuthenticatedOnly routes redirect to the login route without a
	// session.
	PolicyAuthenticatedOnly
	// PolicyAnonymousOnly routes redirect to the root route when a session
	// exists (login page while logged in).
	PolicyAnonymousOnly
)

func (p Policy) String() string {
	switch p {
	case PolicyPublic:
		return "public"
	case PolicyAuthenticatedOnly:
		return "authenticated-only"
	case PolicyAnonymousOnly:
		return "anonymous-only"
	}
	return fmt.Sprintf("policy(%d)", int(p))
}

// ErrRedirectLoop is returned when a transition keeps redirecting without
// ever activating a controller. It indicates a broken route table.
var ErrRedirectLoop = errors.New("navigation redirect loop")

// Controller is one page. Init receives the captured path parameters and the
// flat query map and runs the page until it has rendered its initial state.
type Controller interface {
	Init(ctx context.Context, params, query map[string]string) error
}

// Teardowner is implemented by controllers holding live resources. The
// router calls it before activating the next controller, every transition.
type Teardowner interface {
	Teardown()
}

// Session is the slice of session state the router needs for policy checks.
type Session interface {
	IsAuthenticated() bool
}

// Builder constructs a fresh controller per activation, so page state never
// survives a transition.
type Builder func() Controller

// RedirectError, returned from a controller's Init, aborts that activation
// and continues the transition at Path instead. Use Redirect to build one.
type RedirectError struct {
	Path string
}

func (e *RedirectError) Error() string {
	return "redirect to " + e.Path
}

// Redirect is the error a controller's Init returns to send the user
// somewhere else instead of activating.
func Redirect(path string) error {
	return &RedirectError{Path: path}
}

type route struct {
	pattern  string
	segments []string
	policy   Policy
	build    Builder
}

const (
	rootPath  = "/"
	loginPath = "/login"

	// A well-formed route table settles in two hops at most
	// (protected -> login -> activate); anything deeper is a cycle.
	maxRedirects = 8
)

// Router owns the route table and the single active-controller slot.
// Transitions are serialized by the internal mutex; Navigate must not be
// called from within a controller's Init or Teardown.
type Router struct {
	mu        sync.Mutex
	session   Session
	logger    logging.Logger
	routes    []route
	active    Controller
	current   string
	errorView func(path string, err error)
}

func New(session Session, logger logging.Logger) *Router {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Router{
		session: session,
		logger:  logger.With("component", "router"),
	}
}

// Register appends a route. Registration order is significant: the first
// matching route wins. pattern segments starting with ':' capture one path
// segment each.
func (r *Router) Register(pattern string, policy Policy, build Builder) {
	pattern = normalizePath(pattern)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route{
		pattern:  pattern,
		segments: splitPath(pattern),
		policy:   policy,
		build:    build,
	})
}

// OnError installs the hook rendering the recoverable error view when a
// controller's Init fails. The active slot is already cleared when it runs,
// so the user can always navigate back to the root route.
func (r *Router) OnError(hook func(path string, err error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errorView = hook
}

// Navigate drives a self-initiated navigation. Identical to Handle; the name
// marks call sites that originate inside the application rather than from
// user input.
func (r *Router) Navigate(ctx context.Context, fragment string) error {
	return r.Handle(ctx, fragment)
}

// Handle runs the transition protocol for one navigation event:
//
//  1. resolve the fragment; no match redirects to the root route;
//  2. check the route's policy against the session, redirecting to the
//     login or root route on violation;
//  3. tear down the current controller, if any;
//  4. initialize the next controller and make it the active one.
//
// An Init failure clears the active slot and renders the error view; a
// RedirectError from Init continues the transition at the given path.
func (r *Router) Handle(ctx context.Context, fragment string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	path, rawQuery := splitFragment(strings.TrimPrefix(fragment, "#"))
	path = normalizePath(path)
	query := parseQuery(rawQuery)

	for hop := 0; hop < maxRedirects; hop++ {
		entry, params, ok := r.resolve(path)
		if !ok {
			r.logger.Debug(ctx, "no route", "path", path)
			path, query = rootPath, map[string]string{}
			continue
		}

		switch entry.policy {
		case PolicyAuthenticatedOnly:
			if !r.session.IsAuthenticated() {
				path, query = loginPath, map[string]string{}
				continue
			}
		case PolicyAnonymousOnly:
			if r.session.IsAuthenticated() {
				path, query = rootPath, map[string]string{}
				continue
			}
		}

		r.teardownLocked()

		next := entry.build()
		if err := next.Init(ctx, params, query); err != nil {
			var redirect *RedirectError
			if errors.As(err, &redirect) {
				path, query = normalizePath(redirect.Path), map[string]string{}
				continue
			}
			r.current = ""
			r.logger.Error(ctx, "controller init failed", "path", path, "error", err)
			if r.errorView != nil {
				r.errorView(path, err)
			}
			return fmt.Errorf("activate %s: %w", path, err)
		}

		r.active = next
		r.current = path
		r.logger.Debug(ctx, "activated", "path", path, "route", entry.pattern)
		return nil
	}

	return fmt.Errorf("%w: stuck at %s", ErrRedirectLoop, path)
}

// Active returns the currently active controller, nil when none is.
func (r *Router) Active() Controller {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Current returns the path of the active controller, "" when none is.
func (r *Router) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Shutdown tears down the active controller. Called once when the
// application exits so the last page releases its resources too.
func (r *Router) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.teardownLocked()
	r.current = ""
}

func (r *Router) teardownLocked() {
	if r.active == nil {
		return
	}
	if td, ok := r.active.(Teardowner); ok {
		td.Teardown()
	}
	r.active = nil
}
