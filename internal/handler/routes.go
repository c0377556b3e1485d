package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"jobboard/internal/domain"
	"jobboard/internal/middleware"
)

type RouteConfig struct {
	JWTSecret   string
	Limiter     middleware.Limiter
	ApplyLimit  int
	ApplyWindow time.Duration
}

// RegisterRoutes mounts the job board API on api.
func RegisterRoutes(api *gin.RouterGroup, jobs *JobHandler, health *HealthHandler, cfg RouteConfig) {
	auth := middleware.Authenticate(cfg.JWTSecret)

	api.GET("/health", health.Health)

	api.GET("/jobs", jobs.GetJobs)
	api.GET("/jobs/:zipcode/:distance", jobs.GetJobsInRadius)
	api.GET("/job/:id/:slug", jobs.GetJob)

	api.POST("/job/new",
		auth,
		middleware.RequireRoles(domain.RoleEmployer, domain.RoleAdmin),
		jobs.NewJob)
	api.PUT("/job/:id",
		auth,
		middleware.RequireRoles(domain.RoleEmployer, domain.RoleAdmin),
		jobs.UpdateJob)
	api.DELETE("/job/:id",
		auth,
		middleware.RequireRoles(domain.RoleEmployer, domain.RoleAdmin),
		jobs.DeleteJob)
	api.PUT("/job/:id/apply",
		auth,
		middleware.RequireRoles(domain.RoleUser),
		middleware.RateLimit(cfg.Limiter, middleware.ApplyKey, cfg.ApplyLimit, cfg.ApplyWindow),
		jobs.ApplyJob)
}
