package routes

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"visage/handlers"
	"visage/middleware"
	"visage/models"
)

// Options carries everything the router needs from main.
type Options struct {
	ServiceName string
	CORSOrigins []string
	Tracing     bool

	Handler *handlers.Handler
	Auth    *middleware.Auth
	// RateLimit guards every /api route. Nil disables limiting.
	RateLimit gin.HandlerFunc
	// Health reports whether the database is reachable.
	Health func(ctx context.Context) error
	Log    *zap.Logger
}

func SetupRouter(opts Options) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Recovery(opts.Log))
	router.Use(middleware.RequestID())
	router.Use(middleware.AccessLog(opts.Log))
	if opts.Tracing {
		router.Use(middleware.Tracing(opts.ServiceName), middleware.TraceID())
	}

	corsConfig := cors.Config{
		AllowOrigins:     opts.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(opts.CORSOrigins) == 0 {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", health(opts.Health))

	api := router.Group("/api")
	if opts.RateLimit != nil {
		api.Use(opts.RateLimit)
	}

	h := opts.Handler
	private := opts.Auth.RequireAuth()
	// Public reads still attribute the request when a token is sent.
	public := opts.Auth.OptionalAuth()

	users := api.Group("/users")
	{
		users.POST("/register", h.Register)
		users.POST("/login", h.Login)
		users.GET("/profile", private, h.GetProfile)
		users.PUT("/profile", private, h.UpdateProfile)
		users.POST("/follow/:id", private, h.Follow)
		users.POST("/unfollow/:id", private, h.Unfollow)
		users.GET("/username/:username", public, h.GetUserByUsername)
		users.GET("/search", public, h.SearchUsers)
		users.GET("/suggested", private, h.SuggestedUsers)
	}

	posts := api.Group("/posts")
	{
		posts.POST("", private, h.CreatePost)
		posts.GET("/feed", private, h.GetFeed)
		posts.GET("/explore", public, h.GetExplore)
		posts.GET("/hashtag/:tag", public, h.GetPostsByHashtag)
		posts.GET("/user/:userId", public, h.GetUserPosts)
		posts.GET("/:id", public, h.GetPost)
		posts.PUT("/:id", private, h.UpdatePost)
		posts.DELETE("/:id", private, h.DeletePost)
		posts.POST("/:id/like", private, h.LikePost)
		posts.POST("/:id/unlike", private, h.UnlikePost)
	}

	stories := api.Group("/stories")
	{
		stories.POST("", private, h.CreateStory)
		stories.GET("/feed", private, h.GetStoryFeed)
		stories.GET("/poetry", public, h.StoriesOfType(models.StoryPoetry))
		stories.GET("/thoughts", public, h.StoriesOfType(models.StoryThought))
		stories.GET("/user/:userId", public, h.GetUserStories)
		stories.GET("/:id", public, h.GetStory)
		stories.DELETE("/:id", private, h.DeleteStory)
		stories.POST("/:id/like", private, h.LikeStory)
		stories.POST("/:id/unlike", private, h.UnlikeStory)
		stories.POST("/:id/view", private, h.ViewStory)
	}

	comments := api.Group("/comments")
	{
		comments.POST("/post/:postId", private, h.CreateComment(models.ParentPost))
		comments.POST("/story/:storyId", private, h.CreateComment(models.ParentStory))
		comments.GET("/post/:postId", public, h.GetPostComments)
		comments.GET("/story/:storyId", public, h.GetStoryComments)
		comments.DELETE("/:id", private, h.DeleteComment)
		comments.POST("/:id/like", private, h.LikeComment)
		comments.POST("/:id/unlike", private, h.UnlikeComment)
		comments.POST("/:id/reply", private, h.ReplyToComment)
	}

	notifications := api.Group("/notifications", private)
	{
		notifications.GET("", h.GetNotifications)
		notifications.POST("/read-all", h.MarkAllNotificationsRead)
		notifications.POST("/:id/read", h.MarkNotificationRead)
	}

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"message": "Endpoint not found"})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	})

	return router
}

func health(ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "down"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "up", "time": time.Now().Unix()})
	}
}
