package selector

import (
	"errors"

	"algoritmia/models"

	"gorm.io/gorm"
)

// ErrInvalidGrade is returned when selection is requested for NINGUNA or an
// unknown grade. A session is never built for a topic the student shows no
// weakness in.
var ErrInvalidGrade = errors.New("no question cascade exists for this grade")

// Selector picks the system questions eligible for a reinforcement session.
type Selector struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Selector {
	return &Selector{db: db}
}

// cascadeFor returns the inclusive set of question grades for a student grade:
// ALTA includes ALTA/MEDIA/BAJA, MEDIA includes MEDIA/BAJA, BAJA includes BAJA.
func cascadeFor(grade string) []string {
	ordinal, ok := models.GradeOrdinal[grade]
	if !ok || ordinal == 0 {
		return nil
	}
	included := make([]string, 0, ordinal)
	for g, o := range models.GradeOrdinal {
		if o >= 1 && o <= ordinal {
			included = append(included, g)
		}
	}
	return included
}

// Select returns all active, system-authored questions for the difficulty
// whose grade is at or below the student's grade, oldest first so that the
// same parameters always produce the same session content. An empty result is
// not an error; the caller decides not to create a session.
func (s *Selector) Select(difficultyID uint, grade string) ([]models.Question, error) {
	included := cascadeFor(grade)
	if included == nil {
		return nil, ErrInvalidGrade
	}

	var questions []models.Question
	err := s.db.
		Where("difficulty_id = ? AND author_id IS NULL AND grade IN ?", difficultyID, included).
		Order("created_at asc").
		Preload("Options").
		Find(&questions).Error
	if err != nil {
		return nil, err
	}

	return questions, nil
}
