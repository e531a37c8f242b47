package routes

import (
	"github.com/gin-gonic/gin"

	"crmmvp/internal/authz"
	"crmmvp/internal/handlers"
	"crmmvp/internal/middleware"
)

// Handlers groups everything SetupRoutes mounts. Integrations may be nil
// when no bot token is configured.
type Handlers struct {
	Auth         *handlers.AuthHandler
	User         *handlers.UserHandler
	Task         *handlers.TaskHandler
	Client       *handlers.ClientHandler
	Contact      *handlers.ContactHandler
	Feed         *handlers.FeedHandler
	Notification *handlers.NotificationHandler
	TextGen      *handlers.TextGenHandler
	Integrations *handlers.IntegrationsHandler
}

func SetupRoutes(r *gin.Engine, tokens middleware.TokenParser, h Handlers) *gin.Engine {
	api := r.Group("/api")

	// ---- public
	api.POST("/auth/sign-up", h.Auth.SignUp)
	api.POST("/auth/sign-in", h.Auth.SignIn)
	if h.Integrations != nil {
		api.POST("/integrations/telegram/webhook", h.Integrations.Webhook)
	}

	// ---- protected
	p := api.Group("", middleware.AuthMiddleware(tokens))

	p.GET("/auth/session", h.Auth.Session)

	if h.Integrations != nil {
		p.POST("/integrations/telegram/link", h.Integrations.RequestTelegramLink)
	}

	users := p.Group("/user")
	{
		users.GET("", h.User.List)
		users.PATCH("/:id/role", middleware.RequireRoles(authz.RoleAdmin), h.User.UpdateRole)
	}

	tasks := p.Group("/task")
	{
		tasks.GET("", h.Task.List)
		tasks.POST("", h.Task.Create)
		tasks.GET("/report", h.Task.Report)
		tasks.GET("/:id", h.Task.GetByID)
		tasks.PATCH("/:id", h.Task.Update)
		tasks.POST("/:id/transfer", h.Task.Transfer)
		tasks.POST("/:id/transfer/resolve", h.Task.ResolveTransfer)
		tasks.POST("/:id/status", h.Task.ChangeStatus)
	}

	clients := p.Group("/client")
	{
		clients.GET("", h.Client.List)
		clients.POST("", h.Client.Create)
		clients.GET("/:id", h.Client.GetByID)
		clients.PATCH("/:id", h.Client.Update)
	}

	contacts := p.Group("/contact")
	{
		contacts.GET("", h.Contact.List)
		contacts.POST("", h.Contact.Create)
		contacts.GET("/:id", h.Contact.GetByID)
		contacts.PATCH("/:id", h.Contact.Update)
	}

	feed := p.Group("/feed")
	{
		feed.GET("", h.Feed.List)
		feed.POST("", h.Feed.Create)
		feed.GET("/:id", h.Feed.GetByID)
		feed.PATCH("/:id", h.Feed.Update)
		feed.POST("/:id/like", h.Feed.Like)
		feed.GET("/:id/like", h.Feed.LikeCount)
		feed.POST("/:id/booking", h.Feed.Booking)
	}

	notifications := p.Group("/notification")
	{
		notifications.GET("", h.Notification.List)
		notifications.POST("", h.Notification.Create)
		notifications.GET("/stream", h.Notification.Stream)
		notifications.GET("/:id", h.Notification.GetByID)
		notifications.PATCH("/:id", h.Notification.Update)
	}

	p.POST("/openai", h.TextGen.Generate)

	return r
}
