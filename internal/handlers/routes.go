package handlers

import (
	"orientation-service/internal/metrics"
	"orientation-service/internal/middleware"
	"orientation-service/internal/models"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Auth            *AuthHandler
	Users           *UserHandler
	Quizzes         *QuizHandler
	Recommendations *RecommendationHandler
	Catalog         *CatalogHandler
	Advice          *AdviceHandler
	Stats           *StatsHandler
	Health          *HealthHandler
}

func RegisterRoutes(r *gin.Engine, h Handlers, auth middleware.Authenticator) {
	r.GET("/health", h.Health.Health)
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	authenticated := middleware.Authenticate(auth)
	admin := middleware.RequireRole(models.RoleAdmin)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/logout", authenticated, h.Auth.Logout)
	}

	users := api.Group("/users", authenticated)
	{
		users.GET("/me", h.Users.Me)
		users.PATCH("/me", h.Users.UpdateMe)
		users.GET("", admin, h.Users.List)
		users.POST("", admin, h.Users.Create)
		users.GET("/:id", admin, h.Users.Get)
		users.PUT("/:id", admin, h.Users.Update)
		users.DELETE("/:id", admin, h.Users.Delete)
	}

	quizzes := api.Group("/quizzes", authenticated)
	{
		quizzes.GET("", h.Quizzes.List)
		quizzes.POST("", admin, h.Quizzes.Create)
		quizzes.POST("/submit", middleware.RequireRole(models.RoleStudent), h.Quizzes.Submit)
		quizzes.GET("/results", h.Quizzes.Results)
		quizzes.GET("/:id", h.Quizzes.Get)
		quizzes.PUT("/:id", admin, h.Quizzes.Update)
		quizzes.DELETE("/:id", admin, h.Quizzes.Delete)
	}

	api.GET("/recommendations", authenticated, h.Recommendations.Recommend)

	formations := api.Group("/formations")
	{
		formations.GET("", h.Catalog.ListFormations)
		formations.GET("/:id", h.Catalog.GetFormation)
		formations.POST("", authenticated, admin, h.Catalog.CreateFormation)
		formations.PUT("/:id", authenticated, admin, h.Catalog.UpdateFormation)
		formations.DELETE("/:id", authenticated, admin, h.Catalog.DeleteFormation)
	}

	universities := api.Group("/universities")
	{
		universities.GET("", h.Catalog.ListUniversities)
		universities.GET("/:id", h.Catalog.GetUniversity)
		universities.POST("", authenticated, admin, h.Catalog.CreateUniversity)
		universities.PUT("/:id", authenticated, admin, h.Catalog.UpdateUniversity)
		universities.DELETE("/:id", authenticated, admin, h.Catalog.DeleteUniversity)
	}

	advice := api.Group("/advice", authenticated, middleware.RequireRole(models.RoleStudent, models.RoleCounselor))
	{
		advice.GET("", h.Advice.List)
		advice.POST("", h.Advice.Create)
		advice.PATCH("/:id/read", h.Advice.MarkRead)
	}

	adminGroup := api.Group("/admin", authenticated, admin)
	{
		adminGroup.GET("/stats", h.Stats.Dashboard)
		adminGroup.GET("/statistics", h.Stats.QuizStatistics)
	}
}
