package router

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct{ authed bool }

func (s *fakeSession) IsAuthenticated() bool { return s.authed }

// recordingController appends lifecycle events to a shared log so tests can
// assert transition ordering.
type recordingController struct {
	name    string
	log     *[]string
	initErr error
	params  map[string]string
	query   map[string]string
}

func (c *recordingController) Init(_ context.Context, params, query map[string]string) error {
	*c.log = append(*c.log, "init:"+c.name)
	c.params = params
	c.query = query
	return c.initErr
}

func (c *recordingController) Teardown() {
	*c.log = append(*c.log, "teardown:"+c.name)
}

type harness struct {
	router  *Router
	session *fakeSession
	log     []string
	last    map[string]*recordingController
}

func newHarness() *harness {
	h := &harness{
		session: &fakeSession{},
		last:    map[string]*recordingController{},
	}
	h.router = New(h.session, nil)
	return h
}

func (h *harness) route(pattern string, policy Policy) {
	h.routeErr(pattern, policy, nil)
}

func (h *harness) routeErr(pattern string, policy Policy, initErr error) {
	h.router.Register(pattern, policy, func() Controller {
		c := &recordingController{name: pattern, log: &h.log, initErr: initErr}
		h.last[pattern] = c
		return c
	})
}

func TestHandle_ExactMatchBeatsPattern(t *testing.T) {
	h := newHarness()
	h.route("/profile/:username", PolicyPublic)
	h.route("/profile/me", PolicyPublic)

	require.NoError(t, h.router.Handle(context.Background(), "/profile/me"))
	// The exact route wins even though the pattern was registered first.
	assert.Equal(t, []string{"init:/profile/me"}, h.log)
}

func TestHandle_FirstRegisteredPatternWins(t *testing.T) {
	h := newHarness()
	h.route("/posts/:id", PolicyPublic)
	h.route("/posts/:slug", PolicyPublic)

	require.NoError(t, h.router.Handle(context.Background(), "/posts/42"))
	assert.Equal(t, []string{"init:/posts/:id"}, h.log)
	assert.Equal(t, map[string]string{"id": "42"}, h.last["/posts/:id"].params)
}

func TestHandle_SegmentCountNeverMatches(t *testing.T) {
	h := newHarness()
	h.route("/", PolicyPublic)
	h.route("/profile/:username", PolicyPublic)

	for _, path := range []string{"/profile", "/profile/a/b", "/profile/a/b/c"} {
		h.log = nil
		require.NoError(t, h.router.Handle(context.Background(), path))
		// Falls through to the root route, never the profile one.
		assert.Contains(t, h.log, "init:/", "path %s", path)
		assert.NotContains(t, h.log, "init:/profile/:username", "path %s", path)
	}
}

func TestHandle_ParamIsPercentDecoded(t *testing.T) {
	h := newHarness()
	h.route("/profile/:username", PolicyPublic)

	require.NoError(t, h.router.Handle(context.Background(), "/profile/jo%20e"))
	assert.Equal(t, map[string]string{"username": "jo e"}, h.last["/profile/:username"].params)
}

func TestHandle_QueryParsedSeparately(t *testing.T) {
	h := newHarness()
	h.route("/reset-password", PolicyPublic)

	require.NoError(t, h.router.Handle(context.Background(), "/reset-password?token=abc%3D%3D&x=1"))
	c := h.last["/reset-password"]
	assert.Equal(t, map[string]string{}, c.params)
	assert.Equal(t, "abc==", c.query["token"])
	assert.Equal(t, "1", c.query["x"])
}

func TestHandle_FragmentPrefixAndTrailingSlash(t *testing.T) {
	h := newHarness()
	h.route("/camera", PolicyPublic)

	require.NoError(t, h.router.Handle(context.Background(), "#/camera/"))
	assert.Equal(t, []string{"init:/camera"}, h.log)
	assert.Equal(t, "/camera", h.router.Current())
}

func TestHandle_NoMatchFallsBackToRoot(t *testing.T) {
	h := newHarness()
	h.route("/", PolicyPublic)

	require.NoError(t, h.router.Handle(context.Background(), "/no/such/page"))
	assert.Equal(t, []string{"init:/"}, h.log)
	assert.Equal(t, "/", h.router.Current())
}

func TestHandle_TeardownBeforeNextInit(t *testing.T) {
	h := newHarness()
	h.route("/", PolicyPublic)
	h.route("/camera", PolicyPublic)

	require.NoError(t, h.router.Handle(context.Background(), "/"))
	require.NoError(t, h.router.Handle(context.Background(), "/camera"))
	require.NoError(t, h.router.Handle(context.Background(), "/"))

	assert.Equal(t, []string{
		"init:/", // first transition: nothing to tear down
		"teardown:/",
		"init:/camera",
		"teardown:/camera",
		"init:/",
	}, h.log)
}

func TestHandle_PolicyRedirects(t *testing.T) {
	tests := []struct {
		name   string
		authed bool
		path   string
		want   string
	}{
		{"protected without session goes to login", false, "/settings", "/login"},
		{"protected with session activates", true, "/settings", "/settings"},
		{"anonymous-only with session goes to root", true, "/login", "/"},
		{"anonymous-only without session activates", false, "/login", "/login"},
		{"public ignores session", true, "/verify", "/verify"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness()
			h.route("/", PolicyAuthenticatedOnly)
			h.route("/login", PolicyAnonymousOnly)
			h.route("/settings", PolicyAuthenticatedOnly)
			h.route("/verify", PolicyPublic)
			h.session.authed = tc.authed

			require.NoError(t, h.router.Handle(context.Background(), tc.path))
			assert.Equal(t, tc.want, h.router.Current())
		})
	}
}

func TestHandle_ProtectedRootWithoutSessionEndsAtLogin(t *testing.T) {
	h := newHarness()
	h.route("/", PolicyAuthenticatedOnly)
	h.route("/login", PolicyAnonymousOnly)

	// Two hops: unknown path -> root -> login.
	require.NoError(t, h.router.Handle(context.Background(), "/bogus"))
	assert.Equal(t, "/login", h.router.Current())
	assert.Equal(t, []string{"init:/login"}, h.log)
}

func TestHandle_InitFailureClearsActiveAndRendersErrorView(t *testing.T) {
	h := newHarness()
	boom := errors.New("boom")
	h.routeErr("/camera", PolicyPublic, boom)
	h.route("/", PolicyPublic)

	var viewPath string
	var viewErr error
	h.router.OnError(func(path string, err error) {
		viewPath = path
		viewErr = err
	})

	require.NoError(t, h.router.Handle(context.Background(), "/"))
	err := h.router.Handle(context.Background(), "/camera")
	require.ErrorIs(t, err, boom)

	assert.Equal(t, "/camera", viewPath)
	assert.ErrorIs(t, viewErr, boom)
	assert.Nil(t, h.router.Active())
	assert.Equal(t, "", h.router.Current())
	// The previous page was still torn down before the failed activation.
	assert.Equal(t, []string{"init:/", "teardown:/", "init:/camera"}, h.log)

	// The user can still get back to a known-good route.
	require.NoError(t, h.router.Handle(context.Background(), "/"))
	assert.Equal(t, "/", h.router.Current())
}

func TestHandle_InitRedirectContinuesTransition(t *testing.T) {
	h := newHarness()
	h.routeErr("/profile/:username", PolicyPublic, Redirect("/"))
	h.route("/", PolicyPublic)

	require.NoError(t, h.router.Handle(context.Background(), "/profile/ghost"))
	assert.Equal(t, "/", h.router.Current())
	assert.Equal(t, []string{"init:/profile/:username", "init:/"}, h.log)
}

func TestHandle_RedirectLoopDetected(t *testing.T) {
	h := newHarness()
	// Root requires a session, and there is no login route to land on.
	h.route("/", PolicyAuthenticatedOnly)

	err := h.router.Handle(context.Background(), "/")
	require.ErrorIs(t, err, ErrRedirectLoop)
	assert.Empty(t, h.log)
}

func TestShutdown_TearsDownActiveController(t *testing.T) {
	h := newHarness()
	h.route("/camera", PolicyPublic)

	require.NoError(t, h.router.Handle(context.Background(), "/camera"))
	h.router.Shutdown()
	h.router.Shutdown() // second call is a no-op

	assert.Equal(t, []string{"init:/camera", "teardown:/camera"}, h.log)
	assert.Nil(t, h.router.Active())
	assert.Equal(t, "", h.router.Current())
}

func TestPolicyString(t *testing.T) {
	assert.Equal(t, "public", PolicyPublic.String())
	assert.Equal(t, "authenticated-only", PolicyAuthenticatedOnly.String())
	assert.Equal(t, "anonymous-only", PolicyAnonymousOnly.String())
	assert.Equal(t, fmt.Sprintf("policy(%d)", 9), Policy(9).String())
}
