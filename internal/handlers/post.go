package handlers

import (
	"net/http"

	"reactgram/internal/middleware"
	"reactgram/internal/services"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	posts *services.PostService
}

func NewPostHandler(posts *services.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// List returns the newest posts.
func (h *PostHandler) List(c *gin.Context) {
	posts, err := h.posts.Feed(c.Request.Context(), listOptions(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, posts)
}

type createPostRequest struct {
	Text string `json:"text" form:"text"`
}

// Create accepts either a JSON body or a multipart form with "text" and an optional
// "image" file.
func (h *PostHandler) Create(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}

	in := services.CreatePostInput{Text: req.Text}
	if c.ContentType() == gin.MIMEMultipartPOSTForm {
		upload, file, err := imageUpload(c, "image")
		if err != nil {
			fail(c, err)
			return
		}
		if file != nil {
			defer file.Close()
		}
		in.Image = upload
	}

	post, err := h.posts.Create(c.Request.Context(), middleware.CurrentCaller(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, post)
}

func (h *PostHandler) Detail(c *gin.Context) {
	post, err := h.posts.Get(c.Request.Context(), c.Param("pid"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, post)
}

func (h *PostHandler) Delete(c *gin.Context) {
	if err := h.posts.Delete(c.Request.Context(), middleware.CurrentCaller(c), c.Param("pid")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
