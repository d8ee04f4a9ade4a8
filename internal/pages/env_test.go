package pages

import (
	"bufio"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dberzins/camagru/internal/api"
	"github.com/dberzins/camagru/internal/capture"
	"github.com/dberzins/camagru/internal/router"
	"github.com/dberzins/camagru/internal/session"
	"github.com/dberzins/camagru/internal/session/state"
)

// testEnv wires a real store, gateway and router against a scripted backend.
type testEnv struct {
	env    *Env
	store  *session.Store
	out    *bytes.Buffer
	server *httptest.Server
}

func newTestEnv(t *testing.T, handler http.Handler) *testEnv {
	t.Helper()

	db, err := state.Open(context.Background(), filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := session.NewStore(db, nil)
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	out := &bytes.Buffer{}
	env := &Env{
		Store:     store,
		API:       api.New(server.URL, server.Client(), store, nil),
		NewEngine: func() *capture.Engine { return capture.NewEngine(capture.Options{}) },
		In:        bufio.NewReader(strings.NewReader("")),
		Out:       out,
		PageSize:  12,
	}
	env.Router = router.New(store, nil)

	return &testEnv{env: env, store: store, out: out, server: server}
}

// scriptInput replaces the page's line input with canned answers.
func (te *testEnv) scriptInput(lines ...string) {
	te.env.In = bufio.NewReader(strings.NewReader(strings.Join(lines, "\n") + "\n"))
}

// scriptPasswords stubs the terminal password reader for one test.
func scriptPasswords(t *testing.T, passwords ...string) {
	t.Helper()
	orig := ReadPassword
	i := 0
	ReadPassword = func(int) ([]byte, error) {
		require.Less(t, i, len(passwords), "unexpected password prompt")
		pw := []byte(passwords[i])
		i++
		return pw, nil
	}
	t.Cleanup(func() { ReadPassword = orig })
}

func (te *testEnv) signIn(t *testing.T, username string) {
	t.Helper()
	user := &session.User{ID: 1, Username: username, Verified: true}
	require.NoError(t, te.store.SetAuth(context.Background(), "tok-"+username, user))
}
