package routes

import (
	"github.com/gin-gonic/gin"

	"agroterra/internal/authz"
	"agroterra/internal/handlers"
	"agroterra/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	registerHandler *handlers.RegisterHandler,
	authHandler *handlers.AuthHandler,
	recoveryHandler *handlers.RecoveryHandler,
	accountHandler *handlers.AccountHandler,
	farmHandler *handlers.FarmHandler,
	plotHandler *handlers.PlotHandler,
	cropHandler *handlers.CropHandler,
	taskHandler *handlers.TaskHandler,
	costHandler *handlers.CostHandler,
	reportHandler *handlers.ReportHandler,
) *gin.Engine {

	// ---- public
	r.POST("/register", registerHandler.Register)
	r.POST("/register/confirm", registerHandler.Confirm)
	r.POST("/register/resend", registerHandler.Resend)

	r.POST("/login", authHandler.Login)
	r.POST("/login/verify", authHandler.VerifyTwoFactor)
	r.POST("/login/resend", authHandler.ResendTwoFactorPin)
	r.POST("/refresh", authHandler.RefreshToken)

	r.POST("/password/recovery", recoveryHandler.Initiate)
	r.POST("/password/recovery/resend", recoveryHandler.Resend)
	r.POST("/password/recovery/confirm", recoveryHandler.ConfirmPin)
	r.POST("/password/recovery/reset", recoveryHandler.ResetPassword)

	// ---- protected
	r.Use(middleware.AuthMiddleware())
	r.Use(middleware.ReadOnlyGuard())

	// ACCOUNTS
	accounts := r.Group("/accounts")
	{
		accounts.GET("/me", accountHandler.Me)
		accounts.PUT("/me", accountHandler.Update)
		accounts.POST("/me/deactivate", accountHandler.Deactivate)
		accounts.POST("/me/telegram", accountHandler.LinkTelegram)
		accounts.POST("/:id/deactivate", accountHandler.Deactivate)
	}

	// FARMS
	farms := r.Group("/farms")
	{
		farms.POST("/", middleware.RequireRoles(authz.RoleOwner, authz.RoleAdmin), farmHandler.Create)
		farms.GET("/", farmHandler.List)
		farms.GET("/:id", farmHandler.GetByID)
		farms.PUT("/:id", middleware.RequireRoles(authz.RoleOwner, authz.RoleAdmin), farmHandler.Update)
		farms.DELETE("/:id", middleware.RequireRoles(authz.RoleOwner, authz.RoleAdmin), farmHandler.Delete)
	}

	// PLOTS
	plots := r.Group("/plots")
	{
		plots.POST("/", middleware.RequireRoles(authz.RoleAgronomist, authz.RoleOwner, authz.RoleAdmin), plotHandler.Create)
		plots.GET("/", plotHandler.ListByFarm)
		plots.GET("/:id", plotHandler.GetByID)
		plots.PUT("/:id", middleware.RequireRoles(authz.RoleAgronomist, authz.RoleOwner, authz.RoleAdmin), plotHandler.Update)
		plots.DELETE("/:id", middleware.RequireRoles(authz.RoleOwner, authz.RoleAdmin), plotHandler.Delete)
	}

	// CROPS
	crops := r.Group("/crops")
	{
		crops.POST("/", middleware.RequireRoles(authz.RoleAgronomist, authz.RoleOwner, authz.RoleAdmin), cropHandler.Create)
		crops.GET("/", cropHandler.ListByPlot)
		crops.GET("/:id", cropHandler.GetByID)
		crops.PUT("/:id", middleware.RequireRoles(authz.RoleAgronomist, authz.RoleOwner, authz.RoleAdmin), cropHandler.Update)
		crops.PATCH("/:id/status", middleware.RequireRoles(authz.RoleAgronomist, authz.RoleOwner, authz.RoleAdmin), cropHandler.ChangeStatus)
		crops.DELETE("/:id", middleware.RequireRoles(authz.RoleOwner, authz.RoleAdmin), cropHandler.Delete)
	}

	// TASKS
	tasks := r.Group("/tasks")
	{
		tasks.POST("/", taskHandler.Create)
		tasks.GET("/", taskHandler.GetAll)
		tasks.GET("/:id", taskHandler.GetByID)
		tasks.PUT("/:id", taskHandler.Update)
		tasks.POST("/:id/status", taskHandler.UpdateStatus)
		tasks.POST("/:id/assign", taskHandler.UpdateAssignee)
		tasks.DELETE("/:id", taskHandler.Delete)
	}

	// COSTS
	costs := r.Group("/costs", middleware.RequireRoles(authz.RoleAccountant, authz.RoleOwner, authz.RoleAdmin))
	{
		costs.POST("/", costHandler.Create)
		costs.GET("/", costHandler.FindAll)
		costs.GET("/:id", costHandler.GetByID)
		costs.PUT("/:id", costHandler.Update)
		costs.DELETE("/:id", costHandler.Delete)
	}

	// REPORTS
	reports := r.Group("/reports", middleware.RequireRoles(authz.RoleAccountant, authz.RoleOwner, authz.RoleAdmin))
	{
		reports.GET("/costs", reportHandler.CostSummary)
		reports.GET("/costs/pdf", reportHandler.CostReportPDF)
	}

	return r
}
