package routers

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/campusjam/CampusJam/config"
	"github.com/campusjam/CampusJam/internal/handlers"
	"github.com/campusjam/CampusJam/internal/middlewares"
	"github.com/campusjam/CampusJam/internal/services"
	"github.com/campusjam/CampusJam/internal/ws"
	log "github.com/campusjam/CampusJam/middleware/log"
	"github.com/campusjam/CampusJam/utils/ratelimit"
)

// SetupRoutes 设置所有路由
func SetupRoutes(r *gin.Engine, cfg *config.Config,
	logger *log.Logger,
	limiter ratelimit.Limiter,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	sessionHandler *handlers.SessionHandler,
	messageHandler *handlers.MessageHandler,
	notificationHandler *handlers.NotificationHandler,
	hub *ws.Hub,
	messageService *services.MessageService,
	notificationService *services.NotificationService,
) {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	r.Use(middlewares.RequestLogger(logger))

	// 全局限流中间件 (防止 QPS 过高)
	r.Use(middlewares.RateLimitMiddleware(limiter, cfg.RateLimit.QPS, cfg.RateLimit.Burst))

	// WebSocket 路由 (必须在 AsyncMiddleware 之前注册，避免握手请求被放入 Worker Pool)
	r.GET("/ws", middlewares.AuthMiddleware(), func(c *gin.Context) {
		ws.ServeWs(hub, messageService, notificationService, c)
	})

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "OK",
		})
	})

	// 异步处理中间件
	// 将请求放入 Worker Pool 中排队执行
	r.Use(middlewares.AsyncMiddleware())

	registerAuthRoutes(r, authHandler)
	registerUserRoutes(r, userHandler)
	registerSessionRoutes(r, sessionHandler)
	registerMessageRoutes(r, messageHandler)
	registerNotificationRoutes(r, notificationHandler)
}

func registerAuthRoutes(r *gin.Engine, authHandler *handlers.AuthHandler) {
	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/register", authHandler.Register) // 注册
		authGroup.POST("/login", authHandler.Login)       // 登录
	}

	meGroup := r.Group("/api/users/me")
	meGroup.Use(middlewares.AuthMiddleware())
	{
		meGroup.GET("", authHandler.GetProfile)       // 获取当前用户信息
		meGroup.PUT("", authHandler.UpdateProfile)    // 更新个人信息
		meGroup.DELETE("", authHandler.DeleteAccount) // 删除账号
	}
}

func registerUserRoutes(r *gin.Engine, userHandler *handlers.UserHandler) {
	userGroup := r.Group("/api/users")
	userGroup.Use(middlewares.AuthMiddleware())
	{
		// 关注关系
		userGroup.POST("/:id/friends", userHandler.Follow)    // 关注
		userGroup.PUT("/:id/unfriend", userHandler.Unfollow)  // 取消关注
		userGroup.GET("/:id/friends", userHandler.ListFollowing)
		userGroup.GET("/:id/followers", userHandler.ListFollowers)

		// 屏蔽
		userGroup.PUT("/:id/block", userHandler.Block)
		userGroup.PUT("/:id/unblock", userHandler.Unblock)
		userGroup.GET("/:id/blocked", userHandler.ListBlocked)

		// 举报
		userGroup.POST("/:id/report", userHandler.Report)
	}
}

func registerSessionRoutes(r *gin.Engine, sessionHandler *handlers.SessionHandler) {
	sessionGroup := r.Group("/api/sessions")
	sessionGroup.Use(middlewares.AuthMiddleware())
	{
		sessionGroup.POST("", sessionHandler.Create)
		sessionGroup.GET("", sessionHandler.ListPublic)
		sessionGroup.GET("/active", sessionHandler.ListActive)     // 进行中
		sessionGroup.GET("/upcoming", sessionHandler.ListUpcoming) // 未开始
		sessionGroup.GET("/past", sessionHandler.ListPast)         // 已结束
		sessionGroup.GET("/joined", sessionHandler.ListJoined)     // 我加入的

		sessionGroup.GET("/:id", sessionHandler.Get)
		sessionGroup.PUT("/:id", sessionHandler.Update)
		sessionGroup.DELETE("/:id", sessionHandler.Delete)

		// 成员管理
		sessionGroup.POST("/:id/participants", sessionHandler.Join)
		sessionGroup.GET("/:id/participants", sessionHandler.ListParticipants)
		sessionGroup.DELETE("/:id/participants/:userId", sessionHandler.RemoveParticipant)
		sessionGroup.POST("/:id/invites", sessionHandler.Invite)

		// 状态流转
		sessionGroup.PUT("/:id/visibility", sessionHandler.SetVisibility)
		sessionGroup.PUT("/:id/start", sessionHandler.Start)
		sessionGroup.PUT("/:id/complete", sessionHandler.Complete)
		sessionGroup.PUT("/:id/cancel", sessionHandler.Cancel)

		// 群聊
		sessionGroup.POST("/:id/messages", sessionHandler.SendMessage)
		sessionGroup.GET("/:id/messages", sessionHandler.GetMessages)
	}
}

func registerMessageRoutes(r *gin.Engine, messageHandler *handlers.MessageHandler) {
	messageGroup := r.Group("/api/messages")
	messageGroup.Use(middlewares.AuthMiddleware())
	{
		messageGroup.POST("/dm", messageHandler.SendDirect)
		messageGroup.GET("/conversations", messageHandler.GetConversations)
		messageGroup.GET("/dm/:userId", messageHandler.GetDirectMessages)
		messageGroup.PUT("/dm/:senderId/read", messageHandler.MarkAsRead)
	}
}

func registerNotificationRoutes(r *gin.Engine, notificationHandler *handlers.NotificationHandler) {
	notificationGroup := r.Group("/api/notifications")
	notificationGroup.Use(middlewares.AuthMiddleware())
	{
		notificationGroup.GET("", notificationHandler.List)
		notificationGroup.PUT("/read-all", notificationHandler.MarkAllRead)
		notificationGroup.PUT("/:id/read", notificationHandler.MarkRead)
	}
}
