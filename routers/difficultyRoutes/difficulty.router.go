package difficultyRoutes

import (
	difficultyController "algoritmia/controllers/difficulty"
	"algoritmia/middleware"
	"algoritmia/models"
	validators "algoritmia/validators/difficulty"

	"github.com/gofiber/fiber/v2"
)

// SetupDifficultyRoutes sets up difficulty catalog, evidence ingestion and
// reporting read models
func SetupDifficultyRoutes(app *fiber.App) {
	difficultyGroup := app.Group("/difficulty")

	staff := middleware.RequireRole(models.RoleTeacher, models.RoleAdmin)

	difficultyGroup.Post("/create", middleware.JWTMiddleware, staff, validators.CreateDifficulty(), difficultyController.CreateDifficulty)
	difficultyGroup.Get("/list", middleware.JWTMiddleware, difficultyController.ListDifficulties)

	// Gameplay subsystem pushes externally computed grades here
	difficultyGroup.Post("/:id/evidence", middleware.JWTMiddleware, staff, validators.RecordEvidence(), difficultyController.RecordGameplayEvidence)

	difficultyGroup.Get("/:id/grade/:student_id", middleware.JWTMiddleware, validators.CurrentGrade(), difficultyController.GetCurrentGrade)

	// Reporting collaborator read models
	reportGroup := app.Group("/report/difficulty")
	reportGroup.Get("/history", middleware.JWTMiddleware, staff, difficultyController.GetHistory)
	reportGroup.Get("/records", middleware.JWTMiddleware, staff, difficultyController.GetRecords)
}
