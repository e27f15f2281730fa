package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/stwalsh4118/luxeestate/internal/logger"
	"github.com/stwalsh4118/luxeestate/internal/middleware"
	"github.com/stwalsh4118/luxeestate/internal/services"
)

// NewRouter builds the engine with the full middleware chain and every
// route registered.
func NewRouter(svc *services.Services, log *logger.Logger, env string, origins []string) *gin.Engine {
	router := gin.New()

	// Order: RequestID -> Logger -> Recovery -> CORS -> Actor -> BodyLimit
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(origins))
	router.Use(middleware.Actor())
	router.Use(middleware.BodyLimit(middleware.DefaultBodyLimit))

	RegisterRoutes(router, svc, env)
	return router
}

// RegisterRoutes mounts the REST API on router. The middleware chain is
// the caller's concern.
func RegisterRoutes(router *gin.Engine, svc *services.Services, env string) {
	health := NewHealthHandler(svc.Store, env)
	properties := NewPropertyHandler(svc.Properties)
	agents := NewAgentHandler(svc.Agents)
	leads := NewLeadHandler(svc.Leads)
	users := NewUserHandler(svc.Users)
	blog := NewBlogHandler(svc.Blog)
	auth := NewAuthHandler(svc.Auth)
	dashboard := NewDashboardHandler(svc.Dashboard)

	router.GET("/health", health.Health)

	api := router.Group("/api")
	{
		api.GET("/health", health.Health)
		api.GET("/health/ready", health.Ready)
		api.GET("/info", health.Info)

		p := api.Group("/properties")
		{
			p.GET("", properties.List)
			p.GET("/:slug", properties.Get)
			p.POST("", properties.Create)
			p.PUT("/:id", properties.Update)
			p.DELETE("/:id", properties.Delete)
		}

		a := api.Group("/agents")
		{
			a.GET("", agents.List)
			a.GET("/:id", agents.Get)
			a.POST("", agents.Create)
			a.POST("/reassign", agents.Reassign)
			a.PUT("/:id", agents.Update)
			a.DELETE("/:id", agents.Delete)
		}

		l := api.Group("/leads")
		{
			l.GET("", leads.List)
			l.GET("/:id", leads.Get)
			l.POST("", leads.Create)
			l.PUT("/:id", leads.Update)
			l.PUT("/:id/assign", leads.Assign)
			l.DELETE("/:id", leads.Delete)
		}

		b := api.Group("/blog")
		{
			b.GET("", blog.List)
			b.GET("/:slug", blog.Get)
			b.POST("", blog.Create)
			b.PUT("/:id", blog.Update)
			b.DELETE("/:id", blog.Delete)
		}

		u := api.Group("/users")
		{
			u.GET("", users.List)
			u.GET("/:id", users.Get)
			u.POST("", users.Create)
			u.PUT("/:id", users.Update)
			u.PUT("/:id/toggle-block", users.ToggleBlock)
			u.DELETE("/:id", users.Delete)
		}

		api.POST("/auth/login", auth.Login)
		api.GET("/dashboard", dashboard.Stats)
	}
}
