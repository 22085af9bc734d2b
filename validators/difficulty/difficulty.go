package difficultyValidator

import (
	difficultyController "algoritmia/controllers/difficulty"
	"algoritmia/middleware"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

func parseID(c *fiber.Ctx, param string) (int, bool) {
	idStr := strings.TrimSpace(c.Params(param))
	if idStr == "" {
		return 0, false
	}

	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// CreateDifficulty validates difficulty creation request
func CreateDifficulty() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(difficultyController.CreateDifficultyRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Tema = strings.TrimSpace(reqData.Tema)
		reqData.Name = strings.TrimSpace(reqData.Name)
		reqData.Description = strings.TrimSpace(reqData.Description)

		if reqData.Tema == "" {
			errors["tema"] = "Tema is required!"
		} else if len(reqData.Tema) < 3 {
			errors["tema"] = "Tema must be at least 3 characters long!"
		}

		if reqData.Name == "" {
			errors["name"] = "Name is required!"
		} else if len(reqData.Name) < 3 {
			errors["name"] = "Name must be at least 3 characters long!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedDifficulty", reqData)
		return c.Next()
	}
}

// RecordEvidence validates gameplay evidence submission
func RecordEvidence() fiber.Handler {
	return func(c *fiber.Ctx) error {
		difficultyID, ok := parseID(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Difficulty ID!", nil)
		}

		reqData := new(difficultyController.EvidenceRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Grade = strings.ToUpper(strings.TrimSpace(reqData.Grade))

		if reqData.StudentID == 0 {
			errors["student_id"] = "Student ID is required!"
		}
		if reqData.Grade == "" {
			errors["grade"] = "Grade is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("difficultyID", difficultyID)
		c.Locals("validatedEvidence", reqData)
		return c.Next()
	}
}

// CurrentGrade validates the current grade lookup
func CurrentGrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		difficultyID, ok := parseID(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Difficulty ID!", nil)
		}

		studentID, ok := parseID(c, "student_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Student ID!", nil)
		}

		c.Locals("difficultyID", difficultyID)
		c.Locals("studentID", studentID)
		return c.Next()
	}
}
