package api

import (
	"alcyxob/coach-hub/internal/config"
	"alcyxob/coach-hub/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const changePasswordRoute = "/api/v1/auth/password"

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	app config.AppConfig,
	loc *time.Location,
	authService service.AuthService,
	coachService service.CoachService,
	traineeService service.TraineeService,
	documentService service.DocumentService,
) {
	authHandler := NewAuthHandler(authService, app)
	coachHandler := NewCoachHandler(coachService, documentService, app, loc)
	traineeHandler := NewTraineeHandler(traineeService, documentService, app, loc)

	authMiddleware := AuthMiddleware(jwtSecret, app)
	passwordGate := ChangePasswordGate(app, changePasswordRoute)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/auth/login", authHandler.Login)
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware, passwordGate)
	{
		// The one route a must-change-password session may reach.
		protected.POST("/auth/password", authHandler.ChangePassword)

		protected.GET("/me", func(c *gin.Context) {
			identity, err := identityFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to resolve identity from token")
				return
			}
			c.JSON(http.StatusOK, gin.H{"userId": identity.UserID.Hex(), "role": identity.Role})
		})

		// --- Coach Routes ---
		coachGroup := protected.Group("/coach")
		coachGroup.Use(RequireCoach(app))
		{
			// Roster
			coachGroup.GET("/trainees", coachHandler.ListTrainees)
			coachGroup.POST("/trainees", authHandler.RegisterTrainee)
			coachGroup.PUT("/trainees/:traineeId/block", coachHandler.SetBlockStatus)
			coachGroup.POST("/trainees/:traineeId/reset-password", authHandler.ResetPassword)

			// Workout catalog
			coachGroup.POST("/templates", coachHandler.CreateTemplate)
			coachGroup.GET("/templates", coachHandler.ListTemplates)
			coachGroup.PUT("/templates/:templateId", coachHandler.UpdateTemplate)

			// Assignments
			coachGroup.POST("/assignments", coachHandler.AssignWorkout)
			coachGroup.GET("/assignments", coachHandler.ListAssignments)
			coachGroup.GET("/assignments/:assignmentId", coachHandler.GetAssignment)

			// Feedback
			coachGroup.POST("/feedback", coachHandler.SendFeedback)
			coachGroup.GET("/feedback", coachHandler.ListFeedback)

			// Documents
			coachGroup.POST("/documents", coachHandler.CreateDocument)
			coachGroup.GET("/documents", coachHandler.ListDocuments)
			coachGroup.POST("/documents/:documentId/distribute", coachHandler.DistributeDocument)
			coachGroup.GET("/documents/:documentId/recipients", coachHandler.GetDocumentRecipients)
			coachGroup.GET("/documents/:documentId/url", coachHandler.GetDocumentDownloadURL)

			// Audit trail
			coachGroup.GET("/audit", coachHandler.ListAuditLog)
		}

		// --- Trainee Routes ---
		traineeGroup := protected.Group("/aluno")
		traineeGroup.Use(RequireTrainee(app))
		{
			traineeGroup.GET("/today", traineeHandler.GetTodaysWorkout)
			traineeGroup.GET("/history", traineeHandler.GetHistory)
			traineeGroup.POST("/assignments/:assignmentId/done", traineeHandler.MarkDone)
			traineeGroup.GET("/feedback", traineeHandler.GetMyFeedback)
			traineeGroup.GET("/documents", traineeHandler.GetMyDocuments)
			traineeGroup.GET("/documents/:documentId/url", traineeHandler.GetDocumentDownloadURL)
		}
	}
}
