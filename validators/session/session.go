package sessionValidator

import (
	sessionController "algoritmia/controllers/session"
	"algoritmia/middleware"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

func parseSessionID(c *fiber.Ctx) (int, bool) {
	idStr := strings.TrimSpace(c.Params("id"))
	if idStr == "" {
		return 0, false
	}

	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// AssignSession validates a manual assignment request
func AssignSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(sessionController.AssignSessionRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.StudentID == 0 {
			errors["student_id"] = "Student ID is required!"
		}
		if reqData.DifficultyID == 0 {
			errors["difficulty_id"] = "Difficulty ID is required!"
		}
		if len(reqData.QuestionIDs) == 0 {
			errors["question_ids"] = "At least one question is required!"
		}

		reqData.DueDate = strings.TrimSpace(reqData.DueDate)
		if reqData.DueDate == "" {
			errors["due_date"] = "Due date is required!"
		} else if due, err := time.Parse("2006-01-02", reqData.DueDate); err != nil {
			errors["due_date"] = "Due date must be YYYY-MM-DD!"
		} else if due.Before(time.Now()) {
			errors["due_date"] = "Due date must be in the future!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedAssignment", reqData)
		return c.Next()
	}
}

// SubmitAnswer validates an answer submission
func SubmitAnswer() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID, ok := parseSessionID(c)
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Session ID!", nil)
		}

		reqData := new(sessionController.SubmitAnswerRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.QuestionID == 0 {
			errors["question_id"] = "Question ID is required!"
		}
		if reqData.OptionID == 0 {
			errors["option_id"] = "Option ID is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("sessionID", sessionID)
		c.Locals("validatedAnswer", reqData)
		return c.Next()
	}
}

// SessionByID validates requests that only carry a session id
func SessionByID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID, ok := parseSessionID(c)
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Session ID!", nil)
		}

		c.Locals("sessionID", sessionID)
		return c.Next()
	}
}
