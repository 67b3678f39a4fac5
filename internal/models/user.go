package models

import (
	"time"
)

type User struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Username  string     `gorm:"uniqueIndex;size:70;not null" json:"username"` // fixed at sign-up
	Email     string     `gorm:"uniqueIndex;not null" json:"-"`
	Password  string     `gorm:"not null" json:"-"` // Hash
	Name      string     `gorm:"size:70;not null" json:"name"`
	PhotoURL  string     `json:"photo_url"`
	HeaderURL string     `json:"header_url"`
	Bio       string     `gorm:"size:160" json:"bio"`
	Location  string     `gorm:"size:30" json:"location"`
	BirthDate *time.Time `json:"birth_date"`
	CreatedAt time.Time  `json:"joined"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ProfileFields are the user attributes copied onto every post the user authored.
type ProfileFields struct {
	Name     string
	PhotoURL string
}

// ProfileFields returns the denormalized subset of u.
func (u *User) ProfileFields() ProfileFields {
	return ProfileFields{Name: u.Name, PhotoURL: u.PhotoURL}
}

// UserChange is the before/after pair delivered for every write to a user row.
// Before is nil for a create and After is nil for a delete.
type UserChange struct {
	UserID uint
	Before *User
	After  *User
}
