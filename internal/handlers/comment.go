package handlers

import (
	"net/http"

	"reactgram/internal/middleware"
	"reactgram/internal/services"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	comments *services.CommentService
}

func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

func (h *CommentHandler) List(c *gin.Context) {
	comments, err := h.comments.ListComments(c.Request.Context(), c.Param("pid"), listOptions(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, comments)
}

type commentRequest struct {
	Comment string `json:"comment"`
}

// Create adds a comment as the logged-in user.
func (h *CommentHandler) Create(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}

	comment, err := h.comments.AddComment(c.Request.Context(), middleware.CurrentCaller(c), c.Param("pid"), req.Comment)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, comment)
}
