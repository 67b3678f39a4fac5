package services

import "reactgram/internal/models"

// Caller is the identity a request acts as. The zero value is an anonymous caller.
type Caller struct {
	UserID   uint
	Username string
	Name     string
	PhotoURL string
}

// Authenticated reports whether the caller carries a user identity.
func (c Caller) Authenticated() bool {
	return c.UserID != 0
}

// CallerFromUser builds a Caller from a loaded user row; nil yields an anonymous caller.
func CallerFromUser(u *models.User) Caller {
	if u == nil {
		return Caller{}
	}
	return Caller{
		UserID:   u.ID,
		Username: u.Username,
		Name:     u.Name,
		PhotoURL: u.PhotoURL,
	}
}
