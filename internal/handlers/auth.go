package handlers

import (
	"net/http"

	"reactgram/internal/apperrors"
	"reactgram/internal/middleware"
	"reactgram/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	users *services.UserService
}

func NewAuthHandler(users *services.UserService) *AuthHandler {
	return &AuthHandler{users: users}
}

type signUpRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates an account and logs it in.
func (h *AuthHandler) Register(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}

	user, err := h.users.SignUp(c.Request.Context(), services.SignUpInput{
		Email:    req.Email,
		Name:     req.Name,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		fail(c, err)
		return
	}

	if err := startSession(c, user.ID); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	if err := startSession(c, user.ID); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, user)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		fail(c, apperrors.Wrap(apperrors.ErrInternal, "save session", err))
		return
	}
	c.Status(http.StatusNoContent)
}

func startSession(c *gin.Context, userID uint) error {
	session := sessions.Default(c)
	session.Set(middleware.SessionUserKey, userID)
	if err := session.Save(); err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "save session", err)
	}
	return nil
}
