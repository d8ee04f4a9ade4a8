package pages

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dberzins/camagru/internal/api"
)

// HomePage is the paginated feed: browse, like, comment, delete own posts.
type HomePage struct {
	env        *Env
	posts      []api.Post
	page       int
	totalPages int

	// alive gates rendering: a response that lands after Teardown must not
	// write to a page the user already left.
	alive bool
}

func NewHomePage(env *Env) *HomePage {
	return &HomePage{env: env}
}

func (p *HomePage) Init(ctx context.Context, _, _ map[string]string) error {
	p.alive = true
	p.page = 1
	return p.load(ctx)
}

func (p *HomePage) Teardown() {
	p.alive = false
}

func (p *HomePage) Commands() string {
	return "refresh | next | prev | like <n> | comments <n> | comment <n> <text> | del <n> | open /camera"
}

func (p *HomePage) load(ctx context.Context) error {
	fp, err := p.env.API.Feed(ctx, p.page, p.env.PageSize)
	if err != nil {
		return fmt.Errorf("load feed: %w", err)
	}
	if !p.alive {
		return nil
	}
	p.posts = fp.Posts
	p.totalPages = fp.Pagination.TotalPages
	p.render()
	return nil
}

func (p *HomePage) render() {
	p.env.printf("-- Feed (page %d/%d) --", p.page, max(p.totalPages, 1))
	if len(p.posts) == 0 {
		p.env.printf("No posts yet. Be the first: open /camera")
		return
	}
	for i, post := range p.posts {
		liked := " "
		if post.Liked {
			liked = "*"
		}
		p.env.printf("%2d. [%s] %-20s likes:%-3d comments:%-3d %s",
			i+1, liked, post.Username, post.LikeCount, post.CommentCount,
			post.CreatedAt.Format("2006-01-02 15:04"))
	}
}

// postAt resolves a 1-based feed index typed by the user.
func (p *HomePage) postAt(arg string) (*api.Post, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(p.posts) {
		return nil, fmt.Errorf("no post %q on this page", arg)
	}
	return &p.posts[n-1], nil
}

func (p *HomePage) Exec(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "refresh":
		return p.load(ctx)

	case "next":
		if p.page >= p.totalPages {
			p.env.printf("Already on the last page")
			return nil
		}
		p.page++
		return p.load(ctx)

	case "prev":
		if p.page <= 1 {
			p.env.printf("Already on the first page")
			return nil
		}
		p.page--
		return p.load(ctx)

	case "like":
		if len(args) != 1 {
			p.env.printf("Usage: like <n>")
			return nil
		}
		return p.like(ctx, args[0])

	case "comments":
		if len(args) != 1 {
			p.env.printf("Usage: comments <n>")
			return nil
		}
		return p.comments(ctx, args[0])

	case "comment":
		if len(args) < 2 {
			p.env.printf("Usage: comment <n> <text>")
			return nil
		}
		return p.comment(ctx, args[0], strings.Join(args[1:], " "))

	case "del":
		if len(args) != 1 {
			p.env.printf("Usage: del <n>")
			return nil
		}
		return p.delete(ctx, args[0])
	}
	return ErrUnknownCommand
}

func (p *HomePage) like(ctx context.Context, arg string) error {
	post, err := p.postAt(arg)
	if err != nil {
		p.env.printf("%v", err)
		return nil
	}

	lr, err := p.env.API.ToggleLike(ctx, post.ID)
	if err != nil {
		p.env.printf("Like failed: %v", err)
		return nil
	}
	if !p.alive {
		return nil
	}

	post.LikeCount = lr.LikeCount
	post.Liked = lr.Action == "liked"
	p.env.printf("%s: %d likes", lr.Action, lr.LikeCount)
	return nil
}

func (p *HomePage) comments(ctx context.Context, arg string) error {
	post, err := p.postAt(arg)
	if err != nil {
		p.env.printf("%v", err)
		return nil
	}

	comments, err := p.env.API.Comments(ctx, post.ID)
	if err != nil {
		p.env.printf("Loading comments failed: %v", err)
		return nil
	}
	if !p.alive {
		return nil
	}

	if len(comments) == 0 {
		p.env.printf("No comments yet")
		return nil
	}
	for _, c := range comments {
		p.env.printf("%s: %s (%s)", c.Username, c.Text, c.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func (p *HomePage) comment(ctx context.Context, arg, text string) error {
	post, err := p.postAt(arg)
	if err != nil {
		p.env.printf("%v", err)
		return nil
	}
	if strings.TrimSpace(text) == "" {
		p.env.printf("Comment text is empty")
		return nil
	}

	if err := p.env.API.AddComment(ctx, post.ID, text); err != nil {
		p.env.printf("Comment failed: %v", err)
		return nil
	}
	if !p.alive {
		return nil
	}

	post.CommentCount++
	p.env.printf("Comment added")
	return nil
}

func (p *HomePage) delete(ctx context.Context, arg string) error {
	post, err := p.postAt(arg)
	if err != nil {
		p.env.printf("%v", err)
		return nil
	}

	if me := p.env.Store.User(); me == nil || me.Username != post.Username {
		p.env.printf("You can only delete your own posts")
		return nil
	}

	if err := p.env.API.DeletePost(ctx, post.ID); err != nil {
		p.env.printf("Delete failed: %v", err)
		return nil
	}
	if !p.alive {
		return nil
	}

	p.env.printf("Post deleted")
	return p.load(ctx)
}
