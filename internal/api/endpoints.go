package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dberzins/camagru/internal/session"
)

// ---- auth ----

func (g *Gateway) Login(ctx context.Context, username, password string) (*LoginData, error) {
	body := map[string]string{"username": username, "password": password}
	var data LoginData
	if err := g.do(ctx, http.MethodPost, "/api/login", body, &data, false); err != nil {
		return nil, err
	}
	return &data, nil
}

func (g *Gateway) Register(ctx context.Context, username, email, password string) error {
	body := map[string]string{"username": username, "email": email, "password": password}
	return g.do(ctx, http.MethodPost, "/api/register", body, nil, false)
}

func (g *Gateway) ForgotPassword(ctx context.Context, email string) error {
	return g.do(ctx, http.MethodPost, "/api/forgot-password", map[string]string{"email": email}, nil, false)
}

func (g *Gateway) ResetPassword(ctx context.Context, token, newPassword string) error {
	path := "/api/reset-password?token=" + url.QueryEscape(token)
	return g.do(ctx, http.MethodPost, path, map[string]string{"new_password": newPassword}, nil, false)
}

func (g *Gateway) VerifyEmail(ctx context.Context, token string) error {
	path := "/api/verify?token=" + url.QueryEscape(token)
	return g.do(ctx, http.MethodGet, path, nil, nil, false)
}

// ---- profile ----

// Me fetches the current profile. probe marks the startup session check:
// a rejected probe clears the session silently instead of redirecting.
func (g *Gateway) Me(ctx context.Context, probe bool) (*session.User, error) {
	var u session.User
	if err := g.do(ctx, http.MethodGet, "/api/me", nil, &u, probe); err != nil {
		return nil, err
	}
	return &u, nil
}

func (g *Gateway) GetUser(ctx context.Context, username string) (*session.User, error) {
	var u session.User
	path := "/api/users/" + url.PathEscape(username)
	if err := g.do(ctx, http.MethodGet, path, nil, &u, false); err != nil {
		return nil, err
	}
	return &u, nil
}

func (g *Gateway) UpdateUsername(ctx context.Context, username string) error {
	return g.do(ctx, http.MethodPatch, "/api/me/username", map[string]string{"username": username}, nil, false)
}

func (g *Gateway) UpdateEmail(ctx context.Context, email string) error {
	return g.do(ctx, http.MethodPatch, "/api/me/email", map[string]string{"email": email}, nil, false)
}

func (g *Gateway) UpdatePassword(ctx context.Context, current, next string) error {
	body := map[string]string{"current_password": current, "new_password": next}
	return g.do(ctx, http.MethodPatch, "/api/me/password", body, nil, false)
}

func (g *Gateway) ToggleNotifications(ctx context.Context) error {
	return g.do(ctx, http.MethodPatch, "/api/me/notifications", struct{}{}, nil, false)
}

// ---- posts ----

func (g *Gateway) Feed(ctx context.Context, page, limit int) (*FeedPage, error) {
	var fp FeedPage
	path := fmt.Sprintf("/api/feed?page=%d&limit=%d", page, limit)
	if err := g.do(ctx, http.MethodGet, path, nil, &fp, false); err != nil {
		return nil, err
	}
	return &fp, nil
}

// UserPosts returns the signed-in user's own posts.
func (g *Gateway) UserPosts(ctx context.Context) ([]Post, error) {
	var data struct {
		Posts []Post `json:"posts"`
	}
	if err := g.do(ctx, http.MethodGet, "/api/posts", nil, &data, false); err != nil {
		return nil, err
	}
	return data.Posts, nil
}

// PostsByUser returns the posts published by username, newest first.
func (g *Gateway) PostsByUser(ctx context.Context, username string) ([]Post, error) {
	var data struct {
		Posts []Post `json:"posts"`
	}
	path := "/api/users/" + url.PathEscape(username) + "/posts"
	if err := g.do(ctx, http.MethodGet, path, nil, &data, false); err != nil {
		return nil, err
	}
	return data.Posts, nil
}

// CreatePost publishes a still image (data URI) with an optional filter id
// ("" for none).
func (g *Gateway) CreatePost(ctx context.Context, imageData, filter string) (*Post, error) {
	body := map[string]string{"image": imageData, "filter": filter}
	var p Post
	if err := g.do(ctx, http.MethodPost, "/api/posts", body, &p, false); err != nil {
		return nil, err
	}
	return &p, nil
}

func (g *Gateway) DeletePost(ctx context.Context, id int64) error {
	return g.do(ctx, http.MethodDelete, fmt.Sprintf("/api/posts/%d", id), nil, nil, false)
}

// ToggleLike flips the viewer's like on a post and reports the new state.
func (g *Gateway) ToggleLike(ctx context.Context, id int64) (*LikeResult, error) {
	var lr LikeResult
	if err := g.do(ctx, http.MethodPost, fmt.Sprintf("/api/posts/%d/like", id), nil, &lr, false); err != nil {
		return nil, err
	}
	return &lr, nil
}

// ---- comments ----

func (g *Gateway) Comments(ctx context.Context, postID int64) ([]Comment, error) {
	var data struct {
		Comments []Comment `json:"comments"`
	}
	path := fmt.Sprintf("/api/posts/%d/comments", postID)
	if err := g.do(ctx, http.MethodGet, path, nil, &data, false); err != nil {
		return nil, err
	}
	return data.Comments, nil
}

func (g *Gateway) AddComment(ctx context.Context, postID int64, text string) error {
	body := map[string]any{"postid": postID, "comment": text}
	return g.do(ctx, http.MethodPost, "/api/comments", body, nil, false)
}

func (g *Gateway) DeleteComment(ctx context.Context, id int64) error {
	return g.do(ctx, http.MethodDelete, fmt.Sprintf("/api/comments/%d", id), nil, nil, false)
}
