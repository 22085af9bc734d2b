package questionController

import (
	"algoritmia/database"
	"algoritmia/middleware"
	"algoritmia/models"
	"algoritmia/services"
	"algoritmia/services/questions"
	"errors"

	"github.com/gofiber/fiber/v2"
)

// OptionRequest is one answer option in an authoring request.
type OptionRequest struct {
	Text       string `json:"text" validate:"required"`
	EsCorrecta bool   `json:"es_correcta"`
}

// CreateQuestionRequest is stashed in locals by the question validator.
type CreateQuestionRequest struct {
	DifficultyID uint            `json:"difficulty_id" validate:"required"`
	Grade        string          `json:"grade" validate:"required,oneof=BAJA MEDIA ALTA"`
	Statement    string          `json:"statement" validate:"required,min=5"`
	Options      []OptionRequest `json:"options" validate:"required,min=2,max=4,dive"`
}

// UpdateQuestionRequest carries optional fields; nil/empty means keep.
type UpdateQuestionRequest struct {
	Grade     string          `json:"grade" validate:"omitempty,oneof=BAJA MEDIA ALTA"`
	Statement string          `json:"statement" validate:"omitempty,min=5"`
	Options   []OptionRequest `json:"options" validate:"omitempty,min=2,max=4,dive"`
}

func bankError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, questions.ErrNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Question not found!", nil)
	case errors.Is(err, questions.ErrDuplicateStatement):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "An active question with this statement already exists!", nil)
	case errors.Is(err, questions.ErrInvalidOptionSet):
		return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "A question needs 2 to 4 distinct options with exactly one correct!", nil)
	case errors.Is(err, questions.ErrLocked):
		return middleware.JsonResponse(c, fiber.StatusLocked, false, "Question was already used in a session and cannot be edited!", nil)
	default:
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process question!", nil)
	}
}

func toOptionInputs(options []OptionRequest) []questions.OptionInput {
	inputs := make([]questions.OptionInput, len(options))
	for i, opt := range options {
		inputs[i] = questions.OptionInput{Text: opt.Text, EsCorrecta: opt.EsCorrecta}
	}
	return inputs
}

// CreateQuestion persists a new question. Teachers author under their own id;
// admins seed system questions (no author), which are the only ones the
// selection cascade will ever pick.
func CreateQuestion(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedQuestion").(*CreateQuestionRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	// Difficulty must exist
	var difficulty models.Difficulty
	if err := database.Database.Db.First(&difficulty, reqData.DifficultyID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Difficulty not found!", nil)
	}

	var authorID *uint
	if role, _ := c.Locals("role").(string); role == models.RoleTeacher {
		authorID = &userID
	}

	question, err := services.Bank.Create(reqData.DifficultyID, reqData.Grade, reqData.Statement, authorID, toOptionInputs(reqData.Options))
	if err != nil {
		return bankError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Question created!", question)
}

// GetQuestion returns an active question with its options.
func GetQuestion(c *fiber.Ctx) error {
	questionID := c.Locals("questionID").(int)

	question, err := services.Bank.Get(uint(questionID))
	if err != nil {
		return bankError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question fetched!", question)
}

// UpdateQuestion applies a patch; replacing options swaps the whole set.
func UpdateQuestion(c *fiber.Ctx) error {
	questionID := c.Locals("questionID").(int)

	reqData, ok := c.Locals("validatedQuestionUpdate").(*UpdateQuestionRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	patch := questions.UpdatePatch{}
	if reqData.Grade != "" {
		patch.Grade = &reqData.Grade
	}
	if reqData.Statement != "" {
		patch.Statement = &reqData.Statement
	}
	if reqData.Options != nil {
		patch.Options = toOptionInputs(reqData.Options)
	}

	question, err := services.Bank.Update(uint(questionID), patch)
	if err != nil {
		return bankError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question updated!", question)
}

// DeleteQuestion soft-deletes; options and historical sessions stay intact.
func DeleteQuestion(c *fiber.Ctx) error {
	questionID := c.Locals("questionID").(int)

	if err := services.Bank.SoftDelete(uint(questionID)); err != nil {
		return bankError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question deleted!", nil)
}
