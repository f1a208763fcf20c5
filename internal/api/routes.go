package api

import (
	"net/http"
	"time"

	"fieldsales/visit-planner/internal/domain"
	"fieldsales/visit-planner/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Services bundles what the HTTP surface calls into.
type Services struct {
	Auth      service.AuthService
	Directory service.DirectoryService
	Visits    service.VisitService
	Plans     service.PlanService
	Reports   service.ReportService

	// Location is where date-only query values (YYYY-MM-DD) start; nil means UTC.
	Location *time.Location
}

func SetupRoutes(router *gin.Engine, jwtSecret string, svc Services, log *zap.Logger) {
	authHandler := NewAuthHandler(svc.Auth, log)
	directoryHandler := NewDirectoryHandler(svc.Directory)
	visitHandler := NewVisitHandler(svc.Visits, svc.Location)
	planHandler := NewPlanHandler(svc.Plans)
	reportHandler := NewReportHandler(svc.Reports, svc.Location)

	authMiddleware := AuthMiddleware(jwtSecret)
	reviewers := RoleMiddleware(domain.RoleSupervisor, domain.RoleManager)
	managers := RoleMiddleware(domain.RoleManager)

	router.Use(RequestLogger(log))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userIDStr, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userIDStr, "role": role})
		})

		// --- Staff ---
		protected.POST("/users", managers, authHandler.CreateUser)

		// --- Directory ---
		protected.GET("/regions", directoryHandler.ListRegions)
		protected.POST("/regions", managers, directoryHandler.CreateRegion)
		protected.POST("/clients", managers, directoryHandler.CreateClient)

		// --- Visits ---
		protected.POST("/visits", RoleMiddleware(domain.RoleRepresentative), visitHandler.LogVisit)

		// Per-rep resources. Ownership is checked by the services, the role
		// gates here only cut off callers who can never succeed.
		repGroup := protected.Group("/reps/:repId")
		{
			repGroup.GET("/clients", directoryHandler.ListClientsForRep)
			repGroup.GET("/visits", visitHandler.ListVisits)

			repGroup.GET("/plan", planHandler.GetPlan)
			repGroup.PUT("/plan", RoleMiddleware(domain.RoleRepresentative), planHandler.SubmitPlan)
			repGroup.POST("/plan/approve", reviewers, planHandler.ApprovePlan)
			repGroup.POST("/plan/reject", reviewers, planHandler.RejectPlan)
			repGroup.POST("/plan/revoke", managers, planHandler.RevokePlan)
			repGroup.GET("/plan/archive", reviewers, planHandler.GetPlanArchiveURL)
		}

		protected.GET("/plans/pending", reviewers, planHandler.ListPendingPlans)

		// --- Reports ---
		reportGroup := protected.Group("/reports")
		{
			reportGroup.GET("/overdue", reportHandler.OverdueAlerts)
			reportGroup.GET("/frequency", reportHandler.Frequency)
			reportGroup.GET("/working-day-rate", reportHandler.WorkingDayRate)
		}
	}
}
