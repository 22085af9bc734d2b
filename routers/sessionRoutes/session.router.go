package sessionRoutes

import (
	sessionController "algoritmia/controllers/session"
	"algoritmia/middleware"
	"algoritmia/models"
	validators "algoritmia/validators/session"

	"github.com/gofiber/fiber/v2"
)

// SetupSessionRoutes sets up reinforcement session routes
func SetupSessionRoutes(app *fiber.App) {
	sessionGroup := app.Group("/session")

	student := middleware.RequireRole(models.RoleStudent)
	staff := middleware.RequireRole(models.RoleTeacher, models.RoleAdmin)

	// Student session taking
	sessionGroup.Get("/pending", middleware.JWTMiddleware, student, sessionController.GetMyPendingSessions)
	sessionGroup.Get("/code/:code", middleware.JWTMiddleware, student, sessionController.GetSessionByCode)
	sessionGroup.Post("/:id/answer", middleware.JWTMiddleware, student, validators.SubmitAnswer(), sessionController.SubmitAnswer)

	// Teacher management
	sessionGroup.Post("/assign", middleware.JWTMiddleware, middleware.RequireRole(models.RoleTeacher), validators.AssignSession(), sessionController.AssignSession)
	sessionGroup.Post("/:id/cancel", middleware.JWTMiddleware, staff, validators.SessionByID(), sessionController.CancelSession)

	// Effectiveness reporting
	sessionGroup.Get("/report/effectiveness", middleware.JWTMiddleware, staff, sessionController.GetEffectivenessReport)
}
