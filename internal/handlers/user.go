package handlers

import (
	"net/http"
	"time"

	"reactgram/internal/middleware"
	"reactgram/internal/services"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users *services.UserService
	posts *services.PostService
	likes *services.LikeService
}

func NewUserHandler(users *services.UserService, posts *services.PostService, likes *services.LikeService) *UserHandler {
	return &UserHandler{users: users, posts: posts, likes: likes}
}

// Me returns the logged-in user's own profile.
func (h *UserHandler) Me(c *gin.Context) {
	respond(c, http.StatusOK, middleware.CurrentUser(c))
}

// updateMeRequest carries only the fields the client wants changed.
type updateMeRequest struct {
	Name      *string `json:"name"`
	Bio       *string `json:"bio"`
	Location  *string `json:"location"`
	BirthDate *string `json:"birth_date"` // YYYY-MM-DD, "" clears it
}

// UpdateMe applies a partial profile edit. Name changes reach existing posts through the
// change feed.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req updateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}

	current := middleware.CurrentUser(c)
	upd := services.ProfileUpdate{
		Name:      current.Name,
		Bio:       current.Bio,
		Location:  current.Location,
		BirthDate: current.BirthDate,
	}
	if req.Name != nil {
		upd.Name = *req.Name
	}
	if req.Bio != nil {
		upd.Bio = *req.Bio
	}
	if req.Location != nil {
		upd.Location = *req.Location
	}
	if req.BirthDate != nil {
		upd.BirthDate = nil
		if *req.BirthDate != "" {
			d, err := time.Parse(time.DateOnly, *req.BirthDate)
			if err != nil {
				badRequest(c, "birth_date: expected YYYY-MM-DD", err)
				return
			}
			upd.BirthDate = &d
		}
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), current.ID, upd)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, user)
}

// UpdatePhoto replaces the profile photo from the multipart field "photo".
func (h *UserHandler) UpdatePhoto(c *gin.Context) {
	upload, file, err := imageUpload(c, "photo")
	if err != nil {
		fail(c, err)
		return
	}
	if upload == nil {
		badRequest(c, "photo: required", nil)
		return
	}
	defer file.Close()

	user, err := h.users.UpdatePhoto(c.Request.Context(), middleware.CurrentUser(c).ID, *upload)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, user)
}

// MyLikes lists the posts the logged-in user likes.
func (h *UserHandler) MyLikes(c *gin.Context) {
	posts, err := h.likes.ListLikedPosts(c.Request.Context(), middleware.CurrentUser(c).ID, listOptions(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, posts)
}

// Profile returns a public profile by username.
func (h *UserHandler) Profile(c *gin.Context) {
	user, err := h.users.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, user)
}

func (h *UserHandler) Posts(c *gin.Context) {
	posts, err := h.posts.ListByAuthor(c.Request.Context(), c.Param("username"), listOptions(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, posts)
}
