package handlers

import (
	"net/http"

	"reactgram/internal/middleware"
	"reactgram/internal/services"

	"github.com/gin-gonic/gin"
)

type LikeHandler struct {
	likes *services.LikeService
}

func NewLikeHandler(likes *services.LikeService) *LikeHandler {
	return &LikeHandler{likes: likes}
}

type likeRequest struct {
	Liked *bool `json:"liked"`
}

// Like sets the caller's like on a post to the requested state and returns the new
// counter. Repeating the current state is a 409.
func (h *LikeHandler) Like(c *gin.Context) {
	var req likeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}
	if req.Liked == nil {
		badRequest(c, "liked: required", nil)
		return
	}

	result, err := h.likes.SetLiked(c.Request.Context(), middleware.CurrentCaller(c), c.Param("pid"), *req.Liked)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, result)
}

// Status reports whether the caller likes the post.
func (h *LikeHandler) Status(c *gin.Context) {
	pid := c.Param("pid")
	liked, err := h.likes.Liked(c.Request.Context(), middleware.CurrentUser(c).ID, pid)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"post_id": pid, "liked": liked})
}
