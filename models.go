package main

import (
	"encoding/json"
	"time"
)

// Post display categories.
const (
	PostTypeDaily       = "daily"
	PostTypePhoto       = "photo"
	PostTypeSpontaneous = "spontaneous"
)

var validPostTypes = map[string]bool{
	PostTypeDaily:       true,
	PostTypePhoto:       true,
	PostTypeSpontaneous: true,
}

// Accepted values for the profile gender field.
var validGenders = map[string]bool{
	"male":              true,
	"female":            true,
	"non-binary":        true,
	"other":             true,
	"prefer-not-to-say": true,
}

// User is the persisted account record. Password is a bcrypt hash and is
// never serialized.
type User struct {
	ID         string     `gorm:"primaryKey;type:text" json:"id"`
	Name       string     `gorm:"size:100;not null" json:"name"`
	Email      string     `gorm:"uniqueIndex;size:320;not null" json:"email"`
	Password   string     `gorm:"size:72;not null" json:"-"`
	Image      string     `gorm:"type:text" json:"image"`
	Location   string     `gorm:"size:120" json:"location"`
	About      string     `gorm:"type:text" json:"about"`
	Birthday   *time.Time `json:"birthday"`
	Gender     string     `gorm:"size:20" json:"gender"`
	Website    string     `gorm:"type:text" json:"website"`
	Interests  string     `gorm:"type:text" json:"interests"`
	Occupation string     `gorm:"size:120" json:"occupation"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// Session binds an opaque token to a user until expiry or explicit logout.
type Session struct {
	ID           string    `gorm:"primaryKey;type:text" json:"id"`
	SessionToken string    `gorm:"uniqueIndex;size:128;not null" json:"sessionToken"`
	UserID       string    `gorm:"index;type:text;not null" json:"userId"`
	Expires      time.Time `gorm:"not null" json:"expires"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (Session) TableName() string { return "sessions" }

// Post is a gratitude message. Immutable after creation.
type Post struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	PostType  string    `gorm:"size:20;not null" json:"postType"`
	AuthorID  string    `gorm:"index;type:text;not null" json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Post) TableName() string { return "posts" }

// Heart is a like on a post, at most one per (user, post).
type Heart struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	UserID    string    `gorm:"uniqueIndex:idx_hearts_user_post;type:text;not null" json:"userId"`
	PostID    string    `gorm:"uniqueIndex:idx_hearts_user_post;type:text;not null" json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Heart) TableName() string { return "hearts" }

// Comment is a reply to a post. ParentID nests it under another comment.
type Comment struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	PostID    string    `gorm:"index;type:text;not null" json:"postId"`
	AuthorID  string    `gorm:"index;type:text;not null" json:"authorId"`
	ParentID  *string   `gorm:"index;type:text" json:"parentId,omitempty"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Comment) TableName() string { return "comments" }

// Notification is a per-user message record. Data is an opaque payload
// stored as-is.
type Notification struct {
	ID        string          `gorm:"primaryKey;type:text" json:"id"`
	UserID    string          `gorm:"index;type:text;not null" json:"userId"`
	Type      string          `gorm:"size:30;not null" json:"type"`
	Priority  string          `gorm:"size:20;not null;default:normal" json:"priority"`
	Title     string          `gorm:"size:200;not null" json:"title"`
	Message   string          `gorm:"type:text;not null" json:"message"`
	Data      json.RawMessage `gorm:"type:jsonb" json:"data,omitempty"`
	Channel   string          `gorm:"size:20;not null;default:in_app" json:"channel"`
	ReadAt    *time.Time      `gorm:"index" json:"readAt"`
	CreatedAt time.Time       `gorm:"index" json:"createdAt"`
}

func (Notification) TableName() string { return "notifications" }

// Follow records that one user follows another, unique per pair.
type Follow struct {
	ID         string    `gorm:"primaryKey;type:text" json:"id"`
	FollowerID string    `gorm:"uniqueIndex:idx_follows_pair;type:text;not null" json:"followerId"`
	FollowedID string    `gorm:"uniqueIndex:idx_follows_pair;type:text;not null" json:"followedId"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (Follow) TableName() string { return "follows" }

// publicUser is the compact user shape embedded in posts, hearts and
// follow listings.
type publicUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

func toPublicUser(u User) publicUser {
	return publicUser{ID: u.ID, Name: u.Name, Image: u.Image}
}
