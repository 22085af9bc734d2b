package questionRoutes

import (
	questionController "algoritmia/controllers/question"
	"algoritmia/middleware"
	"algoritmia/models"
	validators "algoritmia/validators/question"

	"github.com/gofiber/fiber/v2"
)

// SetupQuestionRoutes sets up question authoring routes
func SetupQuestionRoutes(app *fiber.App) {
	questionGroup := app.Group("/question")

	author := middleware.RequireRole(models.RoleTeacher, models.RoleAdmin)

	questionGroup.Post("/create", middleware.JWTMiddleware, author, validators.CreateQuestion(), questionController.CreateQuestion)
	questionGroup.Get("/:id", middleware.JWTMiddleware, author, validators.QuestionByID(), questionController.GetQuestion)
	questionGroup.Put("/:id", middleware.JWTMiddleware, author, validators.UpdateQuestion(), questionController.UpdateQuestion)
	questionGroup.Delete("/:id", middleware.JWTMiddleware, author, validators.QuestionByID(), questionController.DeleteQuestion)
}
