package server

import (
	"net/http"
	"time"

	"socialflow/infrastructure/metrics"
	"socialflow/infrastructure/realtime"
	httpHandler "socialflow/interfaces/http"
	"socialflow/interfaces/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Connection httpHandler.IConnectionHandler
	Draft      httpHandler.IDraftHandler
	Post       httpHandler.IPostHandler
	Media      httpHandler.IMediaHandler
	Newsletter httpHandler.INewsletterHandler
	Hub        *realtime.PostHub
}

func InitiateRouter(h Handlers, secretKey string, allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.POST("/newsletter", h.Newsletter.Subscribe)

	api := router.Group("api")
	api.Use(middleware.Auth(secretKey))

	api.GET("/connections", h.Connection.List)
	api.DELETE("/connections/:platform", h.Connection.Disconnect)
	api.POST("/oauth/:platform/begin", h.Connection.Begin)
	api.POST("/oauth/:platform/callback", h.Connection.Callback)

	draft := api.Group("/draft")
	{
		draft.GET("", h.Draft.Get)
		draft.DELETE("", h.Draft.Reset)
		draft.PUT("/content", h.Draft.SetContent)
		draft.POST("/platforms/:platform", h.Draft.SelectPlatform)
		draft.DELETE("/platforms/:platform", h.Draft.DeselectPlatform)
		draft.PUT("/media", h.Draft.AttachMedia)
		draft.DELETE("/media", h.Draft.ClearMedia)
		draft.PUT("/schedule", h.Draft.SetSchedule)
		draft.DELETE("/schedule", h.Draft.ClearSchedule)
		draft.POST("/submit", h.Draft.Submit)
	}

	posts := api.Group("/posts")
	{
		posts.GET("", h.Post.List)
		posts.GET("/stream", h.Hub.Serve)
		posts.GET("/:id", h.Post.Get)
		posts.POST("/:id/schedule", h.Post.Schedule)
		posts.POST("/:id/publish", h.Post.Publish)
	}

	api.GET("/stats", h.Post.Stats)
	api.POST("/media/signature", h.Media.Signature)

	return router
}
