package difficultyController

import (
	"algoritmia/database"
	"algoritmia/middleware"
	"algoritmia/models"
	"algoritmia/services"
	"algoritmia/services/grades"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

// CreateDifficultyRequest registers a (tema, weakness) pair in the catalog.
type CreateDifficultyRequest struct {
	Tema        string `json:"tema"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// EvidenceRequest is the gameplay subsystem's evidence submission; the grade
// arrives already computed on its side.
type EvidenceRequest struct {
	StudentID uint   `json:"student_id"`
	Grade     string `json:"grade"`
}

// CreateDifficulty registers a new difficulty in the catalog.
func CreateDifficulty(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedDifficulty").(*CreateDifficultyRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	difficulty := models.Difficulty{
		Tema:        reqData.Tema,
		Name:        reqData.Name,
		Description: reqData.Description,
	}

	if err := database.Database.Db.Create(&difficulty).Error; err != nil {
		log.Printf("Error saving difficulty: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create difficulty!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Difficulty created!", difficulty)
}

// ListDifficulties returns the difficulty catalog.
func ListDifficulties(c *fiber.Ctx) error {
	var difficulties []models.Difficulty
	if err := database.Database.Db.Order("tema asc, name asc").Find(&difficulties).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch difficulties!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Difficulties fetched!", difficulties)
}

// RecordGameplayEvidence ingests one gameplay evaluation. A resulting
// weakness (grade above NINGUNA) may auto-create a reinforcement session
// through the resolver's post-commit hook.
func RecordGameplayEvidence(c *fiber.Ctx) error {
	difficultyID := c.Locals("difficultyID").(int)

	reqData, ok := c.Locals("validatedEvidence").(*EvidenceRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	var difficulty models.Difficulty
	if err := database.Database.Db.First(&difficulty, difficultyID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Difficulty not found!", nil)
	}

	var student models.User
	if err := database.Database.Db.Where("id = ? AND role = ?", reqData.StudentID, models.RoleStudent).First(&student).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Student not found!", nil)
	}

	event, err := services.Resolver.RecordGameplayGrade(reqData.StudentID, uint(difficultyID), reqData.Grade)
	if err != nil {
		switch {
		case errors.Is(err, grades.ErrUnknownGrade):
			return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Unknown difficulty grade!", nil)
		case errors.Is(err, grades.ErrConcurrencyConflict):
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Could not record evidence, please retry!", nil)
		default:
			log.Printf("Error recording gameplay evidence: %v", err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to record evidence!", nil)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Evidence recorded!", event)
}

// GetCurrentGrade returns the student's current grade for one difficulty,
// NINGUNA when no evidence exists yet.
func GetCurrentGrade(c *fiber.Ctx) error {
	difficultyID := c.Locals("difficultyID").(int)
	studentID := c.Locals("studentID").(int)

	grade, err := services.Resolver.CurrentGrade(uint(studentID), uint(difficultyID))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch grade!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Grade fetched!", fiber.Map{
		"student_id":    studentID,
		"difficulty_id": difficultyID,
		"grade":         grade,
	})
}

func parseDateRange(c *fiber.Ctx) (*time.Time, *time.Time) {
	var from, to *time.Time
	if v := c.Query("desde"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			from = &t
		}
	}
	if v := c.Query("hasta"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			end := t.AddDate(0, 0, 1).Add(-time.Second)
			to = &end
		}
	}
	return from, to
}

// GetHistory exposes the change ledger to the reporting collaborator,
// filterable by student, difficulty, source and date range.
func GetHistory(c *fiber.Ctx) error {
	studentID := c.QueryInt("student_id")
	difficultyID := c.QueryInt("difficulty_id")
	source := c.Query("source")
	from, to := parseDateRange(c)

	events, err := services.Resolver.History(uint(studentID), uint(difficultyID), source, from, to)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch history!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "History fetched!", events)
}

// GetRecords exposes current-state snapshots to the reporting collaborator.
func GetRecords(c *fiber.Ctx) error {
	studentID := c.QueryInt("student_id")
	difficultyID := c.QueryInt("difficulty_id")

	records, err := services.Resolver.Records(uint(studentID), uint(difficultyID))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch records!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Records fetched!", records)
}
