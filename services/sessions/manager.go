package sessions

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"algoritmia/models"
	"algoritmia/services/classifier"
	"algoritmia/services/grades"
	"algoritmia/services/selector"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrSessionNotFound means the session does not exist.
	ErrSessionNotFound = errors.New("reinforcement session not found")
	// ErrSessionAlreadyTerminal means a transition was attempted on a session
	// that already reached a terminal state. Terminal states are immutable.
	ErrSessionAlreadyTerminal = errors.New("session is already in a terminal state")
	// ErrPendingSessionExists enforces the one-PENDIENTE-per-pair invariant
	// for manual assignment. The auto trigger treats this case as a no-op.
	ErrPendingSessionExists = errors.New("a pending session already exists for this student and difficulty")
	// ErrNoEligibleQuestions means the selector returned an empty cascade; a
	// session with zero questions is never created. The condition is surfaced
	// for manual teacher follow-up.
	ErrNoEligibleQuestions = errors.New("no eligible questions for this difficulty and grade")
	// ErrInvalidQuestionSet means a manual assignment referenced missing or
	// deleted questions, or none at all.
	ErrInvalidQuestionSet = errors.New("manual assignment needs at least one existing active question")
	// ErrQuestionNotInSession means the answered question is not part of the
	// session's fixed question set.
	ErrQuestionNotInSession = errors.New("question does not belong to this session")
	// ErrInvalidOption means the selected option does not belong to the
	// answered question.
	ErrInvalidOption = errors.New("selected option does not belong to this question")
	// ErrAlreadyAnswered means the question already has a recorded answer in
	// this session.
	ErrAlreadyAnswered = errors.New("question already answered in this session")
)

// answerDetail is one row of the per-question breakdown stored on completion.
type answerDetail struct {
	QuestionID       uint `json:"question_id"`
	SelectedOptionID uint `json:"selected_option_id"`
	IsCorrect        bool `json:"is_correct"`
}

// SubmitResult reports what happened to a single answer submission.
type SubmitResult struct {
	IsCorrect bool                         `json:"is_correct"`
	Answered  int                          `json:"answered"`
	Total     int                          `json:"total"`
	Completed bool                         `json:"completed"`
	Session   *models.ReinforcementSession `json:"session,omitempty"`
}

// Manager drives the reinforcement session lifecycle: creation (automatic and
// manual), answer intake, completion scoring and the overdue sweep.
type Manager struct {
	db       *gorm.DB
	selector *selector.Selector
	resolver *grades.Resolver
	locks    *keyedMutex

	DueDays int
	// Notifier is invoked after a session is created so the notification
	// collaborator (e-mail, webhook) can reach the student. May be nil.
	Notifier func(session models.ReinforcementSession)
}

func NewManager(db *gorm.DB, sel *selector.Selector, res *grades.Resolver) *Manager {
	return &Manager{
		db:       db,
		selector: sel,
		resolver: res,
		locks:    newKeyedMutex(),
		DueDays:  7,
	}
}

// HandleGradeChange is the post-commit hook registered with the grade
// resolver. Gameplay evidence that leaves the student with a detectable
// weakness triggers auto-creation; session-sourced events never do, or every
// partial improvement would spawn another session.
func (m *Manager) HandleGradeChange(event models.DifficultyChangeEvent) {
	if event.Source != models.SourceGameplay || event.NewGrade == models.GradeNone {
		return
	}

	_, err := m.AutoCreate(event.StudentID, event.DifficultyID, event.NewGrade)
	if err != nil {
		if errors.Is(err, ErrNoEligibleQuestions) {
			log.Printf("[SESSION-MANAGER] no eligible questions for student %d difficulty %d (grade %s); needs manual teacher follow-up",
				event.StudentID, event.DifficultyID, event.NewGrade)
			return
		}
		log.Printf("[SESSION-MANAGER] auto-create failed for student %d difficulty %d: %v", event.StudentID, event.DifficultyID, err)
	}
}

func (m *Manager) pendingExists(studentID, difficultyID uint) (bool, error) {
	var count int64
	err := m.db.Model(&models.ReinforcementSession{}).
		Where("student_id = ? AND difficulty_id = ? AND status = ?", studentID, difficultyID, models.SessionPending).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (m *Manager) create(studentID, difficultyID uint, assignedGrade, origin string, assignedBy *uint, questionIDs []uint, dueDate time.Time) (*models.ReinforcementSession, error) {
	session := models.ReinforcementSession{
		StudentID:     studentID,
		DifficultyID:  difficultyID,
		AssignedGrade: assignedGrade,
		Status:        models.SessionPending,
		Origin:        origin,
		AssignedByID:  assignedBy,
		AccessCode:    uuid.NewString(),
		DueDate:       dueDate,
	}
	for i, id := range questionIDs {
		session.Questions = append(session.Questions, models.SessionQuestion{
			QuestionID: id,
			OrderIndex: i,
		})
	}

	if err := m.db.Create(&session).Error; err != nil {
		return nil, err
	}

	if m.Notifier != nil {
		go m.Notifier(session)
	}
	return &session, nil
}

// AutoCreate builds a system session from the selector cascade. It is a no-op
// when a pending session already covers the pair; the pair key is held across
// the check and the insert so concurrent evidence for the same pair cannot
// create two PENDIENTE sessions. The selection and the question set are fixed
// at creation.
func (m *Manager) AutoCreate(studentID, difficultyID uint, grade string) (*models.ReinforcementSession, error) {
	unlock := m.locks.lock(pairKey(studentID, difficultyID))
	defer unlock()

	exists, err := m.pendingExists(studentID, difficultyID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, nil
	}

	eligible, err := m.selector.Select(difficultyID, grade)
	if err != nil {
		return nil, err
	}
	if len(eligible) == 0 {
		return nil, ErrNoEligibleQuestions
	}

	questionIDs := make([]uint, len(eligible))
	for i, q := range eligible {
		questionIDs[i] = q.ID
	}

	dueDate := time.Now().AddDate(0, 0, m.DueDays)
	return m.create(studentID, difficultyID, grade, models.OriginSystem, nil, questionIDs, dueDate)
}

// AssignManual creates a teacher-assigned session with an explicit question
// set, bypassing the cascade. The one-pending-per-pair invariant still holds.
func (m *Manager) AssignManual(teacherID, studentID, difficultyID uint, questionIDs []uint, dueDate time.Time) (*models.ReinforcementSession, error) {
	if len(questionIDs) == 0 {
		return nil, ErrInvalidQuestionSet
	}

	unlock := m.locks.lock(pairKey(studentID, difficultyID))
	defer unlock()

	exists, err := m.pendingExists(studentID, difficultyID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrPendingSessionExists
	}

	var count int64
	err = m.db.Model(&models.Question{}).
		Where("id IN ? AND difficulty_id = ?", questionIDs, difficultyID).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count != int64(len(questionIDs)) {
		return nil, ErrInvalidQuestionSet
	}

	grade, err := m.resolver.CurrentGrade(studentID, difficultyID)
	if err != nil {
		return nil, err
	}

	return m.create(studentID, difficultyID, grade, models.OriginTeacher, &teacherID, questionIDs, dueDate)
}

// Get loads a session with its question set.
func (m *Manager) Get(sessionID uint) (*models.ReinforcementSession, error) {
	var session models.ReinforcementSession
	err := m.db.Preload("Questions").First(&session, sessionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

// GetByAccessCode loads a session through its notification link code.
func (m *Manager) GetByAccessCode(code string) (*models.ReinforcementSession, error) {
	var session models.ReinforcementSession
	err := m.db.Preload("Questions").Where("access_code = ?", code).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

// PendingForStudent returns the student's open sessions, soonest due first.
func (m *Manager) PendingForStudent(studentID uint) ([]models.ReinforcementSession, error) {
	var sessions []models.ReinforcementSession
	err := m.db.Preload("Questions").
		Where("student_id = ? AND status = ?", studentID, models.SessionPending).
		Order("due_date asc").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// SubmitAnswer records one answer inside a pending session. Recording the
// final missing answer completes the session.
func (m *Manager) SubmitAnswer(sessionID, questionID, optionID uint) (*SubmitResult, error) {
	session, err := m.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if models.IsTerminalSessionState(session.Status) {
		return nil, ErrSessionAlreadyTerminal
	}

	inSession := false
	for _, sq := range session.Questions {
		if sq.QuestionID == questionID {
			inSession = true
			break
		}
	}
	if !inSession {
		return nil, ErrQuestionNotInSession
	}

	var option models.AnswerOption
	err = m.db.Where("id = ? AND question_id = ?", optionID, questionID).First(&option).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidOption
		}
		return nil, err
	}

	var existing int64
	err = m.db.Model(&models.SessionAnswer{}).
		Where("session_id = ? AND question_id = ?", sessionID, questionID).
		Count(&existing).Error
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, ErrAlreadyAnswered
	}

	answer := models.SessionAnswer{
		SessionID:        sessionID,
		QuestionID:       questionID,
		SelectedOptionID: optionID,
		IsCorrect:        option.EsCorrecta,
	}
	if err := m.db.Create(&answer).Error; err != nil {
		return nil, err
	}

	var answered int64
	if err := m.db.Model(&models.SessionAnswer{}).Where("session_id = ?", sessionID).Count(&answered).Error; err != nil {
		return nil, err
	}

	result := &SubmitResult{
		IsCorrect: option.EsCorrecta,
		Answered:  int(answered),
		Total:     len(session.Questions),
	}

	if result.Answered >= result.Total {
		completed, err := m.complete(session)
		if err != nil {
			return nil, err
		}
		result.Completed = true
		result.Session = completed
	}
	return result, nil
}

// complete scores the session and transitions PENDIENTE -> COMPLETADA behind
// a status-guarded update, committed in the same transaction as the ledger
// append so the terminal state and its DifficultyChangeEvent land or fail
// together. The guard makes completion and the overdue sweep mutually safe:
// whichever transition lands first wins, the loser sees zero affected rows.
func (m *Manager) complete(session *models.ReinforcementSession) (*models.ReinforcementSession, error) {
	var answers []models.SessionAnswer
	if err := m.db.Where("session_id = ?", session.ID).Find(&answers).Error; err != nil {
		return nil, err
	}

	score := 0
	details := make([]answerDetail, 0, len(answers))
	for _, a := range answers {
		if a.IsCorrect {
			score++
		}
		details = append(details, answerDetail{
			QuestionID:       a.QuestionID,
			SelectedOptionID: a.SelectedOptionID,
			IsCorrect:        a.IsCorrect,
		})
	}

	maxScore := len(session.Questions)
	percentage := 0.0
	if maxScore > 0 {
		percentage = float64(score) / float64(maxScore) * 100
	}
	tier := classifier.Classify(percentage)
	detailJSON, err := json.Marshal(details)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	_, err = m.resolver.RecordSessionResult(session.StudentID, session.DifficultyID, session.ID, percentage, func(tx *gorm.DB) error {
		result := tx.Model(&models.ReinforcementSession{}).
			Where("id = ? AND status = ?", session.ID, models.SessionPending).
			Updates(map[string]interface{}{
				"status":           models.SessionCompleted,
				"completed_at":     now,
				"score":            score,
				"max_score":        maxScore,
				"percentage":       percentage,
				"improvement_tier": tier,
				"result_detail":    detailJSON,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrSessionAlreadyTerminal
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return m.Get(session.ID)
}

// Cancel withdraws a pending session. The student's reserved work is
// released; no ledger event is emitted. SessionQuestion rows stay so the
// questions remain locked against edits.
func (m *Manager) Cancel(sessionID uint) error {
	if _, err := m.Get(sessionID); err != nil {
		return err
	}

	result := m.db.Model(&models.ReinforcementSession{}).
		Where("id = ? AND status = ?", sessionID, models.SessionPending).
		Update("status", models.SessionCancelled)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSessionAlreadyTerminal
	}
	return nil
}

// SweepOverdue transitions every past-due pending session to NO_REALIZADA
// (nothing answered) or INCOMPLETA (partially answered). The sweep rescans
// from scratch on every run and discards races it loses to a concurrent
// submission, so re-running it is harmless.
func (m *Manager) SweepOverdue(now time.Time) (int, error) {
	var overdue []models.ReinforcementSession
	err := m.db.Where("status = ? AND due_date < ?", models.SessionPending, now).Find(&overdue).Error
	if err != nil {
		return 0, err
	}

	transitioned := 0
	for _, session := range overdue {
		var answered int64
		if err := m.db.Model(&models.SessionAnswer{}).Where("session_id = ?", session.ID).Count(&answered).Error; err != nil {
			return transitioned, err
		}

		target := models.SessionNotDone
		if answered > 0 {
			target = models.SessionIncomplete
		}

		result := m.db.Model(&models.ReinforcementSession{}).
			Where("id = ? AND status = ?", session.ID, models.SessionPending).
			Update("status", target)
		if result.Error != nil {
			return transitioned, result.Error
		}
		if result.RowsAffected == 0 {
			// Lost the race to a concurrent completion; already terminal.
			continue
		}
		transitioned++
	}
	return transitioned, nil
}
