package models

import "time"

// CoachingData holds one user's coaching record. UserProfile, Goals, Advice
// and Progress are JSON documents stored as text; the call bookkeeping
// columns back the monthly budget for the external advice service.
type CoachingData struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`

	UserProfile string `gorm:"type:text" json:"user_profile"`
	Goals       string `gorm:"type:text" json:"goals"`
	Advice      string `gorm:"type:text" json:"advice"`
	Progress    string `gorm:"type:text" json:"progress"`

	AdviceCallUsedThisMonth   bool       `gorm:"default:false" json:"advice_call_used_this_month"`
	LastAdviceCallDate        *time.Time `json:"last_advice_call_date"`
	ProgressCallUsedThisMonth bool       `gorm:"default:false" json:"progress_call_used_this_month"`
	LastProgressCallDate      *time.Time `json:"last_progress_call_date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}
