package pages

import (
	"context"
	"fmt"

	"github.com/dberzins/camagru/internal/api"
	"github.com/dberzins/camagru/internal/router"
)

// ProfilePage shows a user card and that user's posts
// ("/profile/:username").
type ProfilePage struct {
	env *Env
}

func NewProfilePage(env *Env) *ProfilePage {
	return &ProfilePage{env: env}
}

func (p *ProfilePage) Init(ctx context.Context, params, _ map[string]string) error {
	username := params["username"]
	if username == "" {
		return router.Redirect("/")
	}

	user, err := p.env.API.GetUser(ctx, username)
	if err != nil {
		p.env.printf("No such user: %s", username)
		return router.Redirect("/")
	}

	p.env.printf("-- %s --", user.Username)
	verified := "no"
	if user.Verified {
		verified = "yes"
	}
	p.env.printf("verified: %s", verified)

	// The viewer's own profile uses the dedicated own-posts endpoint.
	var posts []api.Post
	if me := p.env.Store.User(); me != nil && me.Username == username {
		posts, err = p.env.API.UserPosts(ctx)
	} else {
		posts, err = p.env.API.PostsByUser(ctx, username)
	}
	if err != nil {
		return fmt.Errorf("load posts of %s: %w", username, err)
	}

	if len(posts) == 0 {
		p.env.printf("No posts yet")
		return nil
	}
	p.env.printf("Posts:")
	for _, post := range posts {
		p.env.printf("  %s  likes:%-3d comments:%-3d  %s",
			post.CreatedAt.Format("2006-01-02 15:04"), post.LikeCount,
			post.CommentCount, p.env.API.ImageURL(post.ImagePath))
	}
	return nil
}
