package apperrors

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the JSON body of every failed API call.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Error   string    `json:"error,omitempty"`
}

var errorStatusMap = map[ErrorCode]int{
	ErrInternal:        http.StatusInternalServerError,
	ErrUnavailable:     http.StatusServiceUnavailable,
	ErrUnauthenticated: http.StatusUnauthorized,
	ErrForbidden:       http.StatusForbidden,
	ErrInvalidInput:    http.StatusBadRequest,
	ErrNotFound:        http.StatusNotFound,
	ErrConflict:        http.StatusConflict,
}

// Status maps an error to its HTTP status code.
func Status(err error) int {
	if status, ok := errorStatusMap[CodeOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Respond writes err as a JSON error response and aborts the chain.
func Respond(c *gin.Context, err error) {
	resp := ErrorResponse{Code: ErrInternal, Message: "Internal Server Error"}
	var appErr *AppError
	if errors.As(err, &appErr) {
		resp.Code = appErr.Code
		resp.Message = appErr.Message
		if appErr.Err != nil && appErr.Code != ErrInternal && appErr.Code != ErrUnavailable {
			resp.Error = appErr.Err.Error()
		}
	}
	c.AbortWithStatusJSON(Status(err), resp)
}
