package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/Vikas210-dev/cyber-new/internal/config"
	"github.com/Vikas210-dev/cyber-new/internal/http/handler"
	httpmiddleware "github.com/Vikas210-dev/cyber-new/internal/http/middleware"
	"github.com/Vikas210-dev/cyber-new/internal/middleware"
)

// NewRouter wires Gin routes and middleware.
func NewRouter(cfg config.Config, authHandler *handler.AuthHandler, consoleHandler *handler.ConsoleHandler, sessions *httpmiddleware.Sessions, guard *httpmiddleware.Guard, rateLimiter *middleware.RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpmiddleware.RequestLogger(nil))
	if rateLimiter != nil {
		r.Use(rateLimiter.Handler())
	}
	r.Use(middleware.CORS(cfg))
	r.Use(otelgin.Middleware(cfg.ServiceName))
	r.Use(sessions.Handler())

	sessionGroup := r.Group("/session")
	{
		sessionGroup.POST("/init", authHandler.Init)
		sessionGroup.POST("/login", authHandler.Login)
		sessionGroup.POST("/refresh", authHandler.Refresh)
		sessionGroup.POST("/logout", authHandler.Logout)
		sessionGroup.GET("/me", guard.RequireUser, authHandler.Me)

		// Password recovery runs on the client token, pre-login.
		sessionGroup.POST("/forgot-password", consoleHandler.ForgotPassword)
		sessionGroup.POST("/reset-password", consoleHandler.ResetPassword)
	}

	api := r.Group("/api", guard.RequireUser)
	{
		api.GET("/profile", consoleHandler.Profile)
		api.POST("/profile", consoleHandler.UpdateProfile)

		users := api.Group("/users", guard.RequireRoles(cfg.AdminRoles...))
		{
			users.GET("", consoleHandler.Users)
			users.POST("", consoleHandler.Register)
			users.DELETE("/:id", consoleHandler.DeleteUser)
		}

		contacts := api.Group("/contacts")
		{
			contacts.GET("", consoleHandler.Contacts)
			contacts.POST("", consoleHandler.CreateContact)
			contacts.PUT("", consoleHandler.UpdateContact)
			contacts.GET("/:id", consoleHandler.ContactDetails)
			contacts.DELETE("/:id", consoleHandler.DeleteContact)
		}

		incidents := api.Group("/incidents")
		{
			incidents.GET("", consoleHandler.Incidents)
			incidents.POST("", consoleHandler.CreateIncident)
			incidents.PUT("", consoleHandler.UpdateIncident)
			incidents.GET("/:id", consoleHandler.IncidentDetails)
			incidents.DELETE("/:id", consoleHandler.DeleteIncident)
		}

		threats := api.Group("/threats")
		{
			threats.GET("", consoleHandler.Threats)
			threats.POST("", consoleHandler.CreateThreat)
			threats.PUT("", consoleHandler.UpdateThreat)
			threats.DELETE("/:id", consoleHandler.DeleteThreat)
		}

		reports := api.Group("/reports")
		{
			reports.GET("", consoleHandler.Reports)
			reports.POST("/generate", consoleHandler.GenerateReport)
			reports.GET("/:id", consoleHandler.ReportDetails)
		}

		master := api.Group("/master")
		{
			master.GET("/states", consoleHandler.States)
			master.GET("/districts", consoleHandler.Districts)
			master.GET("/roles", consoleHandler.Roles)
		}
	}

	return r
}
