package api

import "time"

// Post is an immutable feed snapshot; the client refreshes it by re-fetching,
// except for the like counter which is patched in place from LikeResult.
type Post struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	ImagePath    string    `json:"image_path"`
	LikeCount    int       `json:"like_count"`
	CommentCount int       `json:"comment_count"`
	Liked        bool      `json:"liked"`
	CreatedAt    time.Time `json:"created_at"`
}

type Comment struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"post_id"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	Text      string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

type Pagination struct {
	TotalPages int `json:"total_pages"`
}

type FeedPage struct {
	Posts      []Post     `json:"posts"`
	Pagination Pagination `json:"pagination"`
}

// LoginData is the payload of a successful login.
type LoginData struct {
	Token    string `json:"token"`
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

// LikeResult reports the outcome of a like toggle.
type LikeResult struct {
	Action    string `json:"action"` // "liked" or "unliked"
	LikeCount int    `json:"like_count"`
}
