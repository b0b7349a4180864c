package router

import (
	"time"

	"terravest/config"
	"terravest/internal/handler"
	"terravest/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Handlers bundles everything Setup mounts.
type Handlers struct {
	Auth          *handler.AuthHandler
	Wallet        *handler.WalletHandler
	Webhook       *handler.WebhookHandler
	News          *handler.NewsHandler
	Events        *handler.EventHandler
	Projects      *handler.ProjectHandler
	Media         *handler.MediaHandler
	Search        *handler.SearchHandler
	Contact       *handler.ContactHandler
	Notifications *handler.NotificationHandler
	Admin         *handler.AdminHandler
}

func Setup(cfg *config.Config, h *Handlers) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.MaxMultipartMemory = 16 << 20

	authLimiter := middleware.NewInMemoryRateLimiter(10, time.Minute)

	api := r.Group("/api/v1")
	{
		// Auth
		auth := api.Group("/auth")
		auth.Use(middleware.RateLimit(authLimiter))
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/verify-email", h.Auth.VerifyEmail)
			auth.POST("/resend-verification", h.Auth.ResendVerification)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
			auth.POST("/forgot-password", h.Auth.ForgotPassword)
			auth.POST("/verify-reset-code", h.Auth.VerifyResetCode)
			auth.POST("/reset-password", h.Auth.ResetPassword)
		}
		api.POST("/auth/logout", middleware.AuthRequired(&cfg.JWT), h.Auth.Logout)

		// Public content
		api.GET("/news", h.News.ListPublished)
		api.GET("/news/:id", h.News.GetPublished)
		api.GET("/events", h.Events.List)
		api.GET("/events/:id", h.Events.Get)
		api.GET("/projects", h.Projects.ListPublished)
		api.GET("/projects/:id", h.Projects.GetPublished)
		api.GET("/gallery", h.Media.ListGallery)
		api.GET("/resources", h.Media.ListResources)
		api.GET("/partners", h.Media.ListPartners)
		api.GET("/search", h.Search.Search)
		api.POST("/contact", h.Contact.Submit)

		// Gateway-facing: signature-checked inside the handlers.
		api.GET("/deposit/callback", h.Wallet.DepositCallback)
		api.POST("/paystack/webhook", h.Webhook.Paystack)

		// Operator-triggered sweep; cron runs the same code path.
		api.GET("/withdrawal/retry", middleware.AuthRequired(&cfg.JWT), middleware.AdminRequired(), h.Webhook.RetryWithdrawals)

		// Member wallet + profile
		member := api.Group("")
		member.Use(middleware.AuthRequired(&cfg.JWT))
		{
			member.GET("/me", h.Auth.Me)
			member.POST("/change-password", h.Auth.ChangePassword)

			member.POST("/deposit", h.Wallet.Deposit)
			member.GET("/deposits", h.Wallet.ListDeposits)
			member.POST("/withdraw", h.Wallet.Withdraw)
			member.GET("/withdrawals", h.Wallet.ListWithdrawals)
			member.GET("/withdrawals/:reference", h.Wallet.GetWithdrawal)
			member.GET("/transactions", h.Wallet.Transactions)
			member.GET("/wallet/stats", h.Wallet.Stats)

			member.POST("/pin", h.Wallet.SetPin)
			member.PUT("/pin", h.Wallet.UpdatePin)
			member.POST("/pin/reset-request", h.Wallet.RequestPinReset)
			member.POST("/pin/reset", h.Wallet.ResetPin)

			member.GET("/banks", h.Wallet.ListBanks)
			member.POST("/banks/resolve", h.Wallet.ResolveAccount)
			member.PUT("/bank-details", h.Wallet.UpdateBankDetails)

			member.GET("/notifications", h.Notifications.List)
			member.GET("/notifications/unread", h.Notifications.ListUnread)
			member.PUT("/notifications/:id/read", h.Notifications.MarkRead)
			member.PUT("/notifications/read-all", h.Notifications.MarkAllRead)
		}

		// Admin
		admin := api.Group("/admin")
		admin.Use(middleware.AuthRequired(&cfg.JWT), middleware.AdminRequired())
		{
			admin.GET("/dashboard", h.Admin.Dashboard)
			admin.GET("/users", h.Admin.ListUsers)
			admin.GET("/users/:id", h.Admin.GetUser)
			admin.PUT("/users/:id", h.Admin.UpdateUser)
			admin.DELETE("/users/:id", h.Admin.DeleteUser)
			admin.GET("/contact-messages", h.Contact.List)

			admin.GET("/news", h.News.List)
			admin.GET("/news/:id", h.News.Get)
			admin.POST("/news", h.News.Create)
			admin.PUT("/news/:id", h.News.Update)
			admin.DELETE("/news/:id", h.News.Delete)

			admin.GET("/events", h.Events.List)
			admin.GET("/events/:id", h.Events.Get)
			admin.POST("/events", h.Events.Create)
			admin.PUT("/events/:id", h.Events.Update)
			admin.DELETE("/events/:id", h.Events.Delete)

			admin.GET("/projects", h.Projects.List)
			admin.GET("/projects/:id", h.Projects.Get)
			admin.POST("/projects", h.Projects.Create)
			admin.PUT("/projects/:id", h.Projects.Update)
			admin.DELETE("/projects/:id", h.Projects.Delete)

			admin.GET("/gallery", h.Media.ListGallery)
			admin.POST("/gallery", h.Media.CreateGalleryItem)
			admin.DELETE("/gallery/:id", h.Media.DeleteGalleryItem)
			admin.GET("/resources", h.Media.ListResources)
			admin.POST("/resources", h.Media.CreateResource)
			admin.DELETE("/resources/:id", h.Media.DeleteResource)
			admin.GET("/partners", h.Media.ListPartners)
			admin.POST("/partners", h.Media.CreatePartner)
			admin.PUT("/partners/:id", h.Media.UpdatePartner)
			admin.DELETE("/partners/:id", h.Media.DeletePartner)
		}
	}
	return r
}
