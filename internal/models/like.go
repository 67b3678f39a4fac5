package models

import (
	"time"
)

// Like records that a user likes a post. The composite key allows one row per pair,
// so the row's existence is the whole signal.
type Like struct {
	PostID    uint      `gorm:"primaryKey;autoIncrement:false" json:"post_id"`
	UserID    uint      `gorm:"primaryKey;autoIncrement:false;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
