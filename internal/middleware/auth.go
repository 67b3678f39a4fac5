package middleware

import (
	"reactgram/internal/apperrors"
	"reactgram/internal/models"
	"reactgram/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	CheckUserKey   = "user"
	SessionUserKey = "user_id"
)

// LoadUser retrieves the session's user and stores it on the context.
func LoadUser(conn *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID := session.Get(SessionUserKey)

		if userID != nil {
			var user models.User
			if err := conn.WithContext(c.Request.Context()).First(&user, userID).Error; err == nil {
				c.Set(CheckUserKey, &user)
			}
		}
		c.Next()
	}
}

// AuthRequired rejects requests without a logged-in user. LoadUser must run first.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			apperrors.Respond(c, apperrors.New(apperrors.ErrUnauthenticated, "login required"))
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user LoadUser resolved, or nil.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(CheckUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// CurrentCaller is the identity services act on behalf of; anonymous when not logged in.
func CurrentCaller(c *gin.Context) services.Caller {
	return services.CallerFromUser(CurrentUser(c))
}
