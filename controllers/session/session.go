package sessionController

import (
	"algoritmia/middleware"
	"algoritmia/services"
	"algoritmia/services/grades"
	"algoritmia/services/selector"
	"algoritmia/services/sessions"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

// AssignSessionRequest is a teacher's manual assignment with an explicit
// question set.
type AssignSessionRequest struct {
	StudentID    uint   `json:"student_id"`
	DifficultyID uint   `json:"difficulty_id"`
	QuestionIDs  []uint `json:"question_ids"`
	DueDate      string `json:"due_date"` // YYYY-MM-DD
}

// SubmitAnswerRequest records one answer inside a pending session.
type SubmitAnswerRequest struct {
	QuestionID uint `json:"question_id"`
	OptionID   uint `json:"option_id"`
}

func sessionError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, sessions.ErrSessionNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Session not found!", nil)
	case errors.Is(err, sessions.ErrSessionAlreadyTerminal):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Session is already closed!", nil)
	case errors.Is(err, sessions.ErrPendingSessionExists):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "A pending session already exists for this student and difficulty!", nil)
	case errors.Is(err, sessions.ErrInvalidQuestionSet):
		return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Assignment needs existing active questions for this difficulty!", nil)
	case errors.Is(err, sessions.ErrQuestionNotInSession):
		return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Question does not belong to this session!", nil)
	case errors.Is(err, sessions.ErrInvalidOption):
		return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Selected option does not belong to this question!", nil)
	case errors.Is(err, sessions.ErrAlreadyAnswered):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Question already answered in this session!", nil)
	case errors.Is(err, selector.ErrInvalidGrade):
		return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "No question cascade exists for this grade!", nil)
	case errors.Is(err, grades.ErrConcurrencyConflict):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Could not record the result, please retry!", nil)
	default:
		log.Printf("Session operation failed: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process session!", nil)
	}
}

// GetMyPendingSessions lists the authenticated student's open sessions.
func GetMyPendingSessions(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	pending, err := services.Sessions.PendingForStudent(userID)
	if err != nil {
		return sessionError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Pending sessions fetched!", pending)
}

// GetSessionByCode resolves the link sent in the assignment notification.
func GetSessionByCode(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	code := c.Params("code")
	session, err := services.Sessions.GetByAccessCode(code)
	if err != nil {
		return sessionError(c, err)
	}

	if session.StudentID != userID {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "This session belongs to another student!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Session fetched!", session)
}

// SubmitAnswer records one answer; the final answer completes the session,
// scores it and feeds the result into the difficulty ledger.
func SubmitAnswer(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	sessionID := c.Locals("sessionID").(int)
	reqData, ok := c.Locals("validatedAnswer").(*SubmitAnswerRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	session, err := services.Sessions.Get(uint(sessionID))
	if err != nil {
		return sessionError(c, err)
	}
	if session.StudentID != userID {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "This session belongs to another student!", nil)
	}

	result, err := services.Sessions.SubmitAnswer(uint(sessionID), reqData.QuestionID, reqData.OptionID)
	if err != nil {
		return sessionError(c, err)
	}

	message := "Answer recorded!"
	if result.Completed {
		message = "Session completed!"
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, result)
}

// AssignSession creates a teacher-assigned session with explicit questions.
func AssignSession(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedAssignment").(*AssignSessionRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	dueDate, err := time.Parse("2006-01-02", reqData.DueDate)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid due date!", nil)
	}

	session, err := services.Sessions.AssignManual(userID, reqData.StudentID, reqData.DifficultyID, reqData.QuestionIDs, dueDate)
	if err != nil {
		return sessionError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Session assigned!", session)
}

// CancelSession withdraws a pending session. No ledger event is emitted.
func CancelSession(c *fiber.Ctx) error {
	sessionID := c.Locals("sessionID").(int)

	if err := services.Sessions.Cancel(uint(sessionID)); err != nil {
		return sessionError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Session cancelled!", nil)
}

// GetEffectivenessReport aggregates improvement tiers of completed sessions
// in a date range, split by origin.
func GetEffectivenessReport(c *fiber.Ctx) error {
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

	report, err := services.Sessions.EffectivenessReport(from, to)
	if err != nil {
		return sessionError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Effectiveness report fetched!", report)
}
