package handlers

import (
	"mime/multipart"
	"net/http"
	"strings"

	"reactgram/internal/apperrors"
	"reactgram/internal/services"
	"reactgram/internal/utils"

	"github.com/gin-gonic/gin"
)

// maxImageSize caps photo and post image uploads.
const maxImageSize = 10 * 1024 * 1024

// Response is the envelope of every successful API call.
type Response struct {
	Data interface{} `json:"data"`
}

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Data: data})
}

func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	apperrors.Respond(c, err)
}

func badRequest(c *gin.Context, message string, err error) {
	fail(c, apperrors.Wrap(apperrors.ErrInvalidInput, message, err))
}

// listOptions reads ?page= and ?limit= query parameters.
func listOptions(c *gin.Context) services.ListOptions {
	return services.ListOptions{
		Page:  int(utils.StringToUint(c.Query("page"))),
		Limit: int(utils.StringToUint(c.Query("limit"))),
	}
}

// imageUpload opens the multipart image under field. A missing field yields (nil, nil, nil).
func imageUpload(c *gin.Context, field string) (*services.Upload, multipart.File, error) {
	header, err := c.FormFile(field)
	if err == http.ErrMissingFile {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrInvalidInput, field+": unreadable upload", err)
	}

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, nil, apperrors.New(apperrors.ErrInvalidInput, field+": only images can be uploaded")
	}
	if header.Size > maxImageSize {
		return nil, nil, apperrors.New(apperrors.ErrInvalidInput, field+": image exceeds 10MB")
	}

	file, err := header.Open()
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrInvalidInput, field+": unreadable upload", err)
	}
	return &services.Upload{Reader: file, Size: header.Size, ContentType: contentType}, file, nil
}
