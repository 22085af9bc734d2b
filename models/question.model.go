package models

import "gorm.io/gorm"

// Question belongs to a Difficulty and carries 2-4 answer options, exactly one
// of them correct. AuthorID nil means the question was seeded by the system;
// only system questions feed auto-generated reinforcement sessions.
// Soft delete keeps options and historical sessions intact.
type Question struct {
	gorm.Model
	DifficultyID uint           `json:"difficulty_id" gorm:"not null;index"`
	Grade        string         `json:"grade" gorm:"not null"` // BAJA, MEDIA, ALTA
	Statement    string         `json:"statement" gorm:"not null"`
	AuthorID     *uint          `json:"author_id"` // nil = system question
	Options      []AnswerOption `json:"options" gorm:"foreignKey:QuestionID"`
}

// IsSystem reports whether the question was authored by the system seed.
func (q *Question) IsSystem() bool {
	return q.AuthorID == nil
}

type AnswerOption struct {
	gorm.Model
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	Text       string `json:"text" gorm:"not null"`
	EsCorrecta bool   `json:"es_correcta" gorm:"default:false"`
}
