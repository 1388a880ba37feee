package models

import "time"

// Like records that a user liked a post. One like per user per post.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"uniqueIndex:idx_likes_post_user;not null" json:"post_id"`
	UserID    uint      `gorm:"uniqueIndex:idx_likes_post_user;not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
}
