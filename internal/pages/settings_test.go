package pages

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dberzins/camagru/internal/router"
)

func newSettingsBackend(t *testing.T, me *map[string]any) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/me", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, *me)
	})
	mux.HandleFunc("PATCH /api/me/username", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		(*me)["username"] = body["username"]
		writeEnvelope(t, w, nil)
	})
	mux.HandleFunc("PATCH /api/me/email", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		(*me)["email"] = body["email"]
		(*me)["is_verified"] = false
		writeEnvelope(t, w, nil)
	})
	mux.HandleFunc("PATCH /api/me/password", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "old-pw", body["current_password"])
		assert.Equal(t, "new-pw", body["new_password"])
		writeEnvelope(t, w, nil)
	})
	mux.HandleFunc("PATCH /api/me/notifications", func(w http.ResponseWriter, r *http.Request) {
		(*me)["notifications"] = !(*me)["notifications"].(bool)
		writeEnvelope(t, w, nil)
	})
	return mux
}

func newSettingsEnv(t *testing.T) (*testEnv, *map[string]any) {
	me := map[string]any{
		"id": 1, "username": "joe", "email": "joe@example.com",
		"is_verified": true, "notifications": false,
	}
	te := newTestEnv(t, newSettingsBackend(t, &me))
	te.signIn(t, "joe")
	return te, &me
}

func TestSettingsPage_UpdateUsername(t *testing.T) {
	te, _ := newSettingsEnv(t)

	page := NewSettingsPage(te.env)
	require.NoError(t, page.Init(context.Background(), nil, nil))
	require.NoError(t, page.Exec(context.Background(), "username", []string{"joey"}))

	user := te.store.User()
	require.NotNil(t, user)
	assert.Equal(t, "joey", user.Username)
	assert.Contains(t, te.out.String(), "Username updated")
}

func TestSettingsPage_InvalidUsernameStaysLocal(t *testing.T) {
	te, me := newSettingsEnv(t)

	page := NewSettingsPage(te.env)
	require.NoError(t, page.Exec(context.Background(), "username", []string{"j!"}))

	assert.Equal(t, "joe", (*me)["username"], "server untouched")
	assert.Contains(t, te.out.String(), "letters, numbers, and underscores")
}

func TestSettingsPage_UpdateEmailResetsVerification(t *testing.T) {
	te, me := newSettingsEnv(t)

	page := NewSettingsPage(te.env)
	require.NoError(t, page.Exec(context.Background(), "email", []string{"new@example.com"}))

	assert.Equal(t, "new@example.com", (*me)["email"])
	user := te.store.User()
	require.NotNil(t, user)
	assert.False(t, user.Verified)
	assert.Contains(t, te.out.String(), "verification link")
}

func TestSettingsPage_UpdatePassword(t *testing.T) {
	te, _ := newSettingsEnv(t)
	scriptPasswords(t, "old-pw", "new-pw")

	page := NewSettingsPage(te.env)
	require.NoError(t, page.Exec(context.Background(), "password", nil))
	assert.Contains(t, te.out.String(), "Password updated")
}

func TestSettingsPage_ToggleNotifications(t *testing.T) {
	te, me := newSettingsEnv(t)

	page := NewSettingsPage(te.env)
	require.NoError(t, page.Exec(context.Background(), "notify", nil))

	assert.Equal(t, true, (*me)["notifications"])
	user := te.store.User()
	require.NotNil(t, user)
	assert.True(t, user.NotificationsEnabled)
}

func TestSettingsPage_LogoutClearsSessionAndGoesToLogin(t *testing.T) {
	te, _ := newSettingsEnv(t)
	te.env.Router.Register("/login", router.PolicyAnonymousOnly, func() router.Controller {
		return NewLoginPage(te.env)
	})

	page := NewSettingsPage(te.env)
	require.NoError(t, page.Exec(context.Background(), "logout", nil))

	assert.False(t, te.store.IsAuthenticated())
	assert.Nil(t, te.store.User())
	assert.Equal(t, "/login", te.env.Router.Current())
}

func TestProfilePage_RendersUserAndPosts(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/users/{username}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("username") != "ann" {
			writeFailure(w, http.StatusNotFound, "user not found")
			return
		}
		writeEnvelope(t, w, map[string]any{"id": 2, "username": "ann", "is_verified": true})
	})
	mux.HandleFunc("GET /api/users/{username}/posts", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, map[string]any{"posts": []map[string]any{testPost(21, "ann")}})
	})

	te := newTestEnv(t, mux)
	te.signIn(t, "joe")

	page := NewProfilePage(te.env)
	require.NoError(t, page.Init(context.Background(), map[string]string{"username": "ann"}, nil))

	out := te.out.String()
	assert.Contains(t, out, "-- ann --")
	assert.Contains(t, out, "/uploads/21.png")
}

func TestProfilePage_OwnProfileUsesOwnPostsEndpoint(t *testing.T) {
	var ownHits, byUserHits int
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/users/{username}", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, map[string]any{"id": 1, "username": "joe", "is_verified": true})
	})
	mux.HandleFunc("GET /api/posts", func(w http.ResponseWriter, r *http.Request) {
		ownHits++
		writeEnvelope(t, w, map[string]any{"posts": []map[string]any{testPost(7, "joe")}})
	})
	mux.HandleFunc("GET /api/users/{username}/posts", func(w http.ResponseWriter, r *http.Request) {
		byUserHits++
		writeEnvelope(t, w, map[string]any{"posts": nil})
	})

	te := newTestEnv(t, mux)
	te.signIn(t, "joe")

	page := NewProfilePage(te.env)
	require.NoError(t, page.Init(context.Background(), map[string]string{"username": "joe"}, nil))

	assert.Equal(t, 1, ownHits)
	assert.Zero(t, byUserHits)
	assert.Contains(t, te.out.String(), "/uploads/7.png")
}

func TestProfilePage_UnknownUserRedirectsHome(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/users/{username}", func(w http.ResponseWriter, r *http.Request) {
		writeFailure(w, http.StatusNotFound, "user not found")
	})

	te := newTestEnv(t, mux)
	te.signIn(t, "joe")

	page := NewProfilePage(te.env)
	err := page.Init(context.Background(), map[string]string{"username": "ghost"}, nil)

	var redirect *router.RedirectError
	require.ErrorAs(t, err, &redirect)
	assert.Equal(t, "/", redirect.Path)
}
