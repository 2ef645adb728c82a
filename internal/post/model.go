package post

import "time"

// Post is a user authored entry in the feed. Likes and comments are rows in
// their own tables keyed by post_id.
type Post struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement;index:idx_posts_feed,priority:2,sort:desc" json:"id"`
	AuthorID     string    `gorm:"size:64;not null;index" json:"authorId"`
	AuthorName   string    `gorm:"size:120" json:"authorName"`
	AuthorAvatar string    `gorm:"size:512" json:"authorAvatar"`
	Text         string    `gorm:"type:text;not null" json:"text"`
	ImagePath    string    `gorm:"size:512" json:"imagePath,omitempty"`
	CreatedAt    time.Time `gorm:"not null;index:idx_posts_feed,priority:1,sort:desc" json:"createdAt"`

	Likes    []Like    `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"likes"`
	Comments []Comment `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"comments"`
}

type Like struct {
	ID      uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	PostID  uint64    `gorm:"not null;uniqueIndex:ux_post_likes_post_user,priority:1" json:"-"`
	UserID  string    `gorm:"size:64;not null;uniqueIndex:ux_post_likes_post_user,priority:2" json:"userId"`
	LikedAt time.Time `gorm:"not null" json:"likedAt"`
}

func (Like) TableName() string { return "post_likes" }

type Comment struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	PostID       uint64    `gorm:"not null;index" json:"-"`
	AuthorID     string    `gorm:"size:64;not null;index" json:"authorId"`
	AuthorName   string    `gorm:"size:120" json:"authorName"`
	AuthorAvatar string    `gorm:"size:512" json:"authorAvatar"`
	Text         string    `gorm:"type:text;not null" json:"text"`
	CreatedAt    time.Time `gorm:"not null" json:"createdAt"`
}

func (Comment) TableName() string { return "post_comments" }

// Author is the snapshot of a profile copied onto posts and comments.
type Author struct {
	ID     string
	Name   string
	Avatar string
}

type Page struct {
	Items   []Post
	Total   int64
	Page    int
	Limit   int
	HasMore bool
}
