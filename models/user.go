package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account. Passwords are stored as bcrypt hashes only;
// OAuth accounts carry Provider/ProviderID instead.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Email        string         `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Name         string         `gorm:"size:64" json:"name"`
	PasswordHash string         `gorm:"size:255" json:"-"`
	Provider     string         `gorm:"size:32" json:"provider"`
	ProviderID   string         `gorm:"size:255" json:"provider_id"`
	AvatarURL    string         `gorm:"size:512" json:"avatar_url"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Posts        []Post         `json:"-"`
	Comments     []Comment      `json:"-"`
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}
