package questionValidator

import (
	questionController "algoritmia/controllers/question"
	"algoritmia/middleware"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

func fieldErrors(err error) map[string]string {
	errors := make(map[string]string)
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			errors[strings.ToLower(fe.Field())] = "Invalid value for " + strings.ToLower(fe.Field()) + " (" + fe.Tag() + ")"
		}
	}
	return errors
}

func parseQuestionID(c *fiber.Ctx) (int, error) {
	questionIDStr := strings.TrimSpace(c.Params("id"))
	if questionIDStr == "" {
		return 0, fiber.ErrBadRequest
	}

	questionID, err := strconv.Atoi(questionIDStr)
	if err != nil || questionID <= 0 {
		return 0, fiber.ErrBadRequest
	}
	return questionID, nil
}

// CreateQuestion validates question creation request
func CreateQuestion() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(questionController.CreateQuestionRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.Grade = strings.ToUpper(strings.TrimSpace(reqData.Grade))
		reqData.Statement = strings.TrimSpace(reqData.Statement)

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, fieldErrors(err))
		}

		c.Locals("validatedQuestion", reqData)
		return c.Next()
	}
}

// UpdateQuestion validates question update request
func UpdateQuestion() fiber.Handler {
	return func(c *fiber.Ctx) error {
		questionID, err := parseQuestionID(c)
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Question ID!", nil)
		}

		reqData := new(questionController.UpdateQuestionRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.Grade = strings.ToUpper(strings.TrimSpace(reqData.Grade))
		reqData.Statement = strings.TrimSpace(reqData.Statement)

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, fieldErrors(err))
		}

		c.Locals("questionID", questionID)
		c.Locals("validatedQuestionUpdate", reqData)
		return c.Next()
	}
}

// QuestionByID validates requests that only carry a question id
func QuestionByID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		questionID, err := parseQuestionID(c)
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Question ID!", nil)
		}

		c.Locals("questionID", questionID)
		return c.Next()
	}
}
