package router

import (
	"net/http"

	"reactgram/internal/handlers"
	"reactgram/internal/middleware"
	"reactgram/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps is everything the routes need.
type Deps struct {
	DB       *gorm.DB
	Users    *services.UserService
	Posts    *services.PostService
	Likes    *services.LikeService
	Comments *services.CommentService

	// UploadsDir is served under /uploads when set (local storage driver).
	UploadsDir string
}

func RegisterRoutes(r *gin.Engine, deps Deps) {
	// Handlers
	authHandler := handlers.NewAuthHandler(deps.Users)
	userHandler := handlers.NewUserHandler(deps.Users, deps.Posts, deps.Likes)
	postHandler := handlers.NewPostHandler(deps.Posts)
	likeHandler := handlers.NewLikeHandler(deps.Likes)
	commentHandler := handlers.NewCommentHandler(deps.Comments)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if deps.UploadsDir != "" {
		r.Static("/uploads", deps.UploadsDir)
	}

	api := r.Group("/api")
	api.Use(middleware.LoadUser(deps.DB))

	// Public routes
	api.POST("/signup", authHandler.Register)
	api.POST("/login", authHandler.Login)
	api.POST("/logout", authHandler.Logout)

	api.GET("/users/:username", userHandler.Profile)
	api.GET("/users/:username/posts", userHandler.Posts)
	api.GET("/posts", postHandler.List)
	api.GET("/posts/:pid", postHandler.Detail)
	api.GET("/posts/:pid/comments", commentHandler.List)

	// Protected routes
	authorized := api.Group("")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/me", userHandler.Me)
		authorized.PATCH("/me", userHandler.UpdateMe)
		authorized.POST("/me/photo", userHandler.UpdatePhoto)
		authorized.GET("/me/likes", userHandler.MyLikes)

		authorized.POST("/posts", postHandler.Create)
		authorized.DELETE("/posts/:pid", postHandler.Delete)
		authorized.POST("/posts/:pid/like", likeHandler.Like)
		authorized.GET("/posts/:pid/like", likeHandler.Status)
		authorized.POST("/posts/:pid/comments", commentHandler.Create)
	}
}
