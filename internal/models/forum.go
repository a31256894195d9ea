package models

import (
	"slices"
	"time"
)

// ForumComment is a reply owned by a single post.
type ForumComment struct {
	ID        string    `bson:"id" json:"id"`
	UserID    string    `bson:"user_id" json:"userId"`
	UserName  string    `bson:"user_name" json:"userName"`
	Content   string    `bson:"content" json:"content"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// ForumPost is a community forum thread.
type ForumPost struct {
	ID        string         `bson:"_id" json:"id"`
	UserID    string         `bson:"user_id" json:"userId"`
	UserName  string         `bson:"user_name" json:"userName"`
	Title     string         `bson:"title" json:"title"`
	Content   string         `bson:"content" json:"content"`
	CreatedAt time.Time      `bson:"created_at" json:"createdAt"`
	Likes     int            `bson:"likes" json:"likes"`
	Comments  []ForumComment `bson:"comments" json:"comments"`
	Tags      []string       `bson:"tags" json:"tags"`
}

// EntityID returns the post id.
func (p ForumPost) EntityID() string { return p.ID }

// Clone returns a deep copy of the post and its comments.
func (p ForumPost) Clone() ForumPost {
	out := p
	out.Comments = slices.Clone(p.Comments)
	out.Tags = slices.Clone(p.Tags)
	return out
}

// PostInput is the payload for a new forum post.
type PostInput struct {
	UserID   string   `json:"userId" validate:"required"`
	UserName string   `json:"userName" validate:"required"`
	Title    string   `json:"title" validate:"required"`
	Content  string   `json:"content" validate:"required"`
	Tags     []string `json:"tags"`
}

// CommentInput is the payload for a reply to a post.
type CommentInput struct {
	UserID   string `json:"userId" validate:"required"`
	UserName string `json:"userName" validate:"required"`
	Content  string `json:"content" validate:"required"`
}
