package models

import (
	"slices"
	"time"
)

// Post is a status update or a reply. The author's name and avatar are a
// snapshot taken when the post was written and refreshed by fan-out.
type Post struct {
	ID          string
	UserID      string
	Username    string
	AvatarColor string
	AvatarImage string
	Content     string
	CreatedAt   time.Time
	Likes       int
	LikedBy     []string
	IsReply     bool
	ReplyToID   string
}

// LikedByUser reports whether userID is in the liker set.
func (p *Post) LikedByUser(userID string) bool {
	return slices.Contains(p.LikedBy, userID)
}

// Clone returns a copy that shares nothing with p.
func (p *Post) Clone() *Post {
	c := *p
	c.LikedBy = slices.Clone(p.LikedBy)
	return &c
}

// NewPost is what the author sends; the backend assigns the rest.
type NewPost struct {
	Content     string
	ReplyToID   string
	Username    string
	AvatarColor string
	AvatarImage string
}

// Post filters.
const (
	FilterTopLevel = "top"
	FilterReplies  = "replies"
	FilterAuthor   = "author"
	FilterAll      = "all"
)

// PostFilter selects a listing: top-level newest-first, the replies of
// ReplyToID oldest-first, everything by UserID, or all posts.
type PostFilter struct {
	Kind      string
	ReplyToID string
	UserID    string
}

// Thread is a top-level post with its replies, oldest reply first.
type Thread struct {
	Post    *Post
	Replies []*Post
}
