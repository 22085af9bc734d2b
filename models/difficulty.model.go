package models

import (
	"time"

	"gorm.io/gorm"
)

// Difficulty grades, ordered. The ordinal mapping below is the contract for
// cascade inclusion and trend comparison; never compare the raw strings.
const (
	GradeNone   = "NINGUNA"
	GradeLow    = "BAJA"
	GradeMedium = "MEDIA"
	GradeHigh   = "ALTA"
)

// GradeOrdinal maps each grade to its rank: NINGUNA(0) < BAJA(1) < MEDIA(2) < ALTA(3).
var GradeOrdinal = map[string]int{
	GradeNone:   0,
	GradeLow:    1,
	GradeMedium: 2,
	GradeHigh:   3,
}

// IsValidGrade reports whether g is one of the four known grades.
func IsValidGrade(g string) bool {
	_, ok := GradeOrdinal[g]
	return ok
}

// Evidence sources for difficulty changes
const (
	SourceGameplay = "JUEGO"
	SourceSession  = "SESION_REFUERZO"
)

// Difficulty identifies a named weakness inside a topic (tema). Questions and
// reinforcement sessions hang off a Difficulty, not off the bare topic.
type Difficulty struct {
	gorm.Model
	Tema        string `json:"tema" gorm:"not null;index"`
	Name        string `json:"name" gorm:"not null"`
	Description string `json:"description"`
}

// DifficultyRecord is the current-state projection for one (student, difficulty)
// pair. It is always recomputed from the latest ledger entry inside
// RecordEvidence and must never be written directly by anything else.
type DifficultyRecord struct {
	gorm.Model
	StudentID    uint      `json:"student_id" gorm:"not null;uniqueIndex:idx_student_difficulty"`
	DifficultyID uint      `json:"difficulty_id" gorm:"not null;uniqueIndex:idx_student_difficulty"`
	Grade        string    `json:"grade" gorm:"not null;default:'NINGUNA'"`
	LastUpdated  time.Time `json:"last_updated"`
}

// DifficultyChangeEvent is one append-only ledger row. Rows are immutable once
// written and are never deleted; the total order by CreatedAt per
// (student, difficulty) pair defines the grade history.
type DifficultyChangeEvent struct {
	gorm.Model
	StudentID     uint   `json:"student_id" gorm:"not null;index:idx_event_pair"`
	DifficultyID  uint   `json:"difficulty_id" gorm:"not null;index:idx_event_pair"`
	PreviousGrade string `json:"previous_grade" gorm:"not null"`
	NewGrade      string `json:"new_grade" gorm:"not null"`
	Source        string `json:"source" gorm:"not null;index"` // JUEGO, SESION_REFUERZO
	SessionID     *uint  `json:"session_id"`                   // set when Source is SESION_REFUERZO
}
