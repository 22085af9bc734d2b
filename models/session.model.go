package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Reinforcement session states. PENDIENTE is the only non-terminal state.
const (
	SessionPending    = "PENDIENTE"
	SessionCompleted  = "COMPLETADA"
	SessionNotDone    = "NO_REALIZADA"
	SessionIncomplete = "INCOMPLETA"
	SessionCancelled  = "CANCELADA"
)

// IsTerminalSessionState reports whether no further transitions are permitted.
func IsTerminalSessionState(state string) bool {
	return state != SessionPending
}

// Session origins
const (
	OriginSystem  = "SISTEMA"
	OriginTeacher = "DOCENTE"
)

// ReinforcementSession is a remediation assignment for one (student, difficulty)
// pair. The question set is fixed at creation; changing content requires
// cancelling and recreating. Terminal sessions are immutable.
type ReinforcementSession struct {
	gorm.Model
	StudentID       uint           `json:"student_id" gorm:"not null;index"`
	DifficultyID    uint           `json:"difficulty_id" gorm:"not null;index"`
	AssignedGrade   string         `json:"assigned_grade" gorm:"not null"` // student grade at creation
	Status          string         `json:"status" gorm:"not null;default:'PENDIENTE';index"`
	Origin          string         `json:"origin" gorm:"not null;default:'SISTEMA'"` // SISTEMA, DOCENTE
	AssignedByID    *uint          `json:"assigned_by_id"`                           // teacher id for DOCENTE origin
	AccessCode      string         `json:"access_code" gorm:"uniqueIndex;not null"`
	DueDate         time.Time      `json:"due_date" gorm:"not null;index"`
	CompletedAt     *time.Time     `json:"completed_at"`
	Score           int            `json:"score" gorm:"default:0"` // correct answers
	MaxScore        int            `json:"max_score" gorm:"default:0"`
	Percentage      float64        `json:"percentage" gorm:"default:0"`
	ImprovementTier string         `json:"improvement_tier"`
	ResultDetail    datatypes.JSON `json:"result_detail"` // per-question breakdown, set on completion

	Questions []SessionQuestion `json:"questions" gorm:"foreignKey:SessionID"`
}

// SessionQuestion joins a session to one of its questions. Rows are kept even
// after cancellation so that a question ever used in a session stays locked
// against edits.
type SessionQuestion struct {
	gorm.Model
	SessionID  uint `json:"session_id" gorm:"not null;index:idx_session_question,unique"`
	QuestionID uint `json:"question_id" gorm:"not null;index:idx_session_question,unique"`
	OrderIndex int  `json:"order_index" gorm:"default:0"`
}

// SessionAnswer is one submitted answer inside a pending session. The session
// completes when every question has an answer.
type SessionAnswer struct {
	gorm.Model
	SessionID        uint `json:"session_id" gorm:"not null;index:idx_session_answer,unique"`
	QuestionID       uint `json:"question_id" gorm:"not null;index:idx_session_answer,unique"`
	SelectedOptionID uint `json:"selected_option_id" gorm:"not null"`
	IsCorrect        bool `json:"is_correct" gorm:"default:false"`
}
