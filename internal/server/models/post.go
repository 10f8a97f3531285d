package models

import (
	"slices"
	"time"
)

// Post is a status update or, when IsReply is set, a reply to a top-level post.
// The author's display name and avatar are copied onto the post.
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

// PostFilter selects which posts a listing returns.
type PostFilter struct {
	TopLevel  bool
	ReplyToID string
	UserID    string
}
