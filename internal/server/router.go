// Package server assembles the gin engine: middleware, static uploads and the
// /api/v1 route table.
package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"rental-manager/internal/auth"
	"rental-manager/internal/config"
	"rental-manager/internal/handlers"
	"rental-manager/internal/ratelimit"
	"rental-manager/internal/upload"
)

// Deps are the services the routes are served by
type Deps struct {
	Config   *config.Config
	Handler  *handlers.Handler
	Admin    *handlers.AdminHandler
	Storage  *upload.Storage
	Limiter  *ratelimit.RateLimiter
	Verifier gin.HandlerFunc
}

// NewRouter builds the engine. Verifier guards /api/v1; tests pass a stub
// that sets the user directly.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()

	r.Use(corsMiddleware(d.Config.Server.CORSOrigins))
	if d.Config.Logging.LogRequests {
		r.Use(gin.Logger())
	}
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.WithFields(log.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"panic":  recovered,
		}).Error("Recovered from panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}))

	r.GET("/health", healthCheck)
	r.Static(upload.URLPrefix, d.Storage.Dir())

	h, admin := d.Handler, d.Admin
	limited := d.Limiter.Middleware(auth.Key)

	api := r.Group("/api/v1", d.Verifier)

	properties := api.Group("/properties")
	{
		properties.GET("", h.ListProperties)
		properties.POST("", h.CreateProperty)
		properties.GET("/search", h.SearchProperties)
		properties.GET("/:id", h.GetProperty)
		properties.PUT("/:id", h.UpdateProperty)
		properties.DELETE("/:id", h.DeleteProperty)
		properties.POST("/:id/images", limited, h.UploadPropertyImages)
	}

	tenants := api.Group("/tenants")
	{
		tenants.GET("", h.ListTenants)
		tenants.POST("", h.CreateTenant)
		tenants.GET("/:id", h.GetTenant)
		tenants.PUT("/:id", h.UpdateTenant)
		tenants.DELETE("/:id", h.DeleteTenant)
		tenants.POST("/:id/documents", limited, h.UploadTenantDocument)
	}

	contracts := api.Group("/contracts")
	{
		contracts.GET("", h.ListContracts)
		contracts.POST("", h.CreateContract)
		contracts.GET("/expiring", h.ExpiringContracts)
		contracts.GET("/active", h.ActiveContracts)
		contracts.GET("/:id", h.GetContract)
		contracts.PUT("/:id", h.UpdateContract)
		contracts.DELETE("/:id", h.DeleteContract)
		contracts.POST("/:id/renew", h.RenewContract)
		contracts.POST("/:id/terminate", h.TerminateContract)
		contracts.POST("/:id/document", limited, h.UploadContractDocument)
	}

	payments := api.Group("/payments")
	{
		payments.GET("", h.ListPayments)
		payments.POST("", h.CreatePayment)
		payments.POST("/calculate", h.CalculatePayment)
		payments.POST("/register", h.RegisterPayment)
		payments.POST("/bulk", h.BulkCreatePayments)
		payments.GET("/overdue", h.OverduePayments)
		payments.GET("/pending", h.PendingPayments)
		payments.POST("/update-statuses", h.UpdatePaymentStatuses)
		payments.GET("/:id", h.GetPayment)
		payments.PUT("/:id", h.UpdatePayment)
		payments.DELETE("/:id", h.DeletePayment)
		payments.POST("/:id/confirm", h.ConfirmPayment)
		payments.GET("/:id/history", h.PaymentHistory)
	}

	expenses := api.Group("/expenses")
	{
		expenses.GET("", h.ListExpenses)
		expenses.POST("", h.CreateExpense)
		expenses.GET("/categories", h.ExpenseCategories)
		expenses.GET("/:id", h.GetExpense)
		expenses.PUT("/:id", h.UpdateExpense)
		expenses.DELETE("/:id", h.DeleteExpense)
		expenses.POST("/:id/documents", limited, h.UploadExpenseDocument)
	}

	notifications := api.Group("/notifications")
	{
		notifications.GET("", h.ListNotifications)
		notifications.POST("", h.CreateNotification)
		notifications.GET("/unread-count", h.UnreadCount)
		notifications.POST("/read-all", h.MarkAllNotificationsRead)
		notifications.POST("/process", limited, h.ProcessNotifications)
		notifications.POST("/cleanup", admin.RunCleanup)
		notifications.GET("/:id", h.GetNotification)
		notifications.PUT("/:id", h.UpdateNotification)
		notifications.DELETE("/:id", h.DeleteNotification)
		notifications.POST("/:id/read", h.MarkNotificationRead)
	}

	dash := api.Group("/dashboard")
	{
		dash.GET("/stats", h.DashboardStats)
		dash.GET("/summary", h.DashboardSummary)
		dash.GET("/revenue-chart", h.RevenueChart)
		dash.GET("/property-performance", h.PropertyPerformance)
		dash.GET("/recent-activity", h.RecentActivity)
		dash.GET("/revenue-vs-expenses", h.RevenueVsExpenses)
		dash.GET("/financial-overview", h.FinancialOverview)
		dash.GET("/properties-status", h.PropertiesStatus)
	}

	adm := api.Group("/admin")
	{
		adm.GET("/stats", admin.GetStats)
		adm.POST("/cleanup/run", admin.RunCleanup)
		adm.GET("/cleanup/logs", admin.GetCleanupLogs)
		adm.GET("/changes/recent", admin.GetRecentChanges)
		adm.GET("/ratelimit/stats", admin.GetRateLimitStats)
	}

	return r
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}
	all := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			all = true
		}
	}
	if all {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}
