package models

import (
	"time"
)

type Post struct {
	ID     uint   `gorm:"primaryKey" json:"-"`
	Pid    string `gorm:"uniqueIndex;size:8;not null" json:"id"`
	UserID uint   `gorm:"not null;index" json:"author_id"`

	// Copies of the author's profile, refreshed by the profile fan-out.
	Username       string `gorm:"size:70;not null" json:"username"`
	AuthorName     string `gorm:"size:70" json:"name"`
	AuthorPhotoURL string `json:"profile_url"`

	Text     string `gorm:"type:text" json:"text"`
	ImageURL string `json:"image"`

	LikeCount    int       `gorm:"not null;default:0" json:"likes"`
	CommentCount int       `gorm:"not null;default:0" json:"comments"`
	RepostCount  int       `gorm:"not null;default:0" json:"reposts"`
	CreatedAt    time.Time `gorm:"index" json:"created"`
}
