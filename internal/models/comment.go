package models

import (
	"time"
)

// Comment is append-only; nothing updates a row after it is created.
type Comment struct {
	ID             uint      `gorm:"primaryKey" json:"-"`
	Cid            string    `gorm:"uniqueIndex;size:8;not null" json:"id"`
	PostID         uint      `gorm:"not null;index" json:"-"`
	UserID         uint      `gorm:"not null;index" json:"author_id"`
	AuthorName     string    `gorm:"size:70" json:"name"`
	AuthorUsername string    `gorm:"size:70" json:"username"`
	AuthorPhotoURL string    `json:"profile_url"`
	Text           string    `gorm:"type:text;not null" json:"comment"`
	CreatedAt      time.Time `gorm:"index" json:"created"`
}
