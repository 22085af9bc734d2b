package questions

import (
	"errors"
	"strings"

	"algoritmia/models"

	"gorm.io/gorm"
)

var (
	// ErrNotFound means the question does not exist or is soft-deleted.
	ErrNotFound = errors.New("question not found")
	// ErrDuplicateStatement means an active question already has this statement.
	ErrDuplicateStatement = errors.New("an active question with this statement already exists")
	// ErrInvalidOptionSet means the option count, text uniqueness or
	// correct-count invariant is violated.
	ErrInvalidOptionSet = errors.New("a question needs 2 to 4 distinct options with exactly one correct")
	// ErrLocked means the question has been attached to a session at some
	// point and can no longer be edited. Edits would retroactively alter what
	// a student already answered.
	ErrLocked = errors.New("question is referenced by a session and cannot be edited")
)

const (
	minOptions = 2
	maxOptions = 4
)

// OptionInput is one answer option supplied by the author.
type OptionInput struct {
	Text       string
	EsCorrecta bool
}

// UpdatePatch carries the fields an author may change. Nil fields are kept.
// A non-nil Options slice swaps the entire option set atomically.
type UpdatePatch struct {
	Grade     *string
	Statement *string
	Options   []OptionInput
}

// Bank owns question records and their authoring invariants.
type Bank struct {
	db *gorm.DB
}

func NewBank(db *gorm.DB) *Bank {
	return &Bank{db: db}
}

func validateOptions(options []OptionInput) error {
	if len(options) < minOptions || len(options) > maxOptions {
		return ErrInvalidOptionSet
	}

	correct := 0
	seen := make(map[string]bool, len(options))
	for _, opt := range options {
		text := strings.TrimSpace(opt.Text)
		if text == "" || seen[text] {
			return ErrInvalidOptionSet
		}
		seen[text] = true
		if opt.EsCorrecta {
			correct++
		}
	}
	if correct != 1 {
		return ErrInvalidOptionSet
	}
	return nil
}

// statementTaken checks the statement against all active questions, optionally
// ignoring one question id (the one being updated).
func (b *Bank) statementTaken(statement string, excludeID uint) (bool, error) {
	query := b.db.Model(&models.Question{}).Where("statement = ?", statement)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create persists a question with its options. AuthorID nil marks a system
// question. Nothing is persisted when any invariant fails.
func (b *Bank) Create(difficultyID uint, grade, statement string, authorID *uint, options []OptionInput) (*models.Question, error) {
	statement = strings.TrimSpace(statement)

	if err := validateOptions(options); err != nil {
		return nil, err
	}

	taken, err := b.statementTaken(statement, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicateStatement
	}

	question := models.Question{
		DifficultyID: difficultyID,
		Grade:        grade,
		Statement:    statement,
		AuthorID:     authorID,
	}
	for _, opt := range options {
		question.Options = append(question.Options, models.AnswerOption{
			Text:       strings.TrimSpace(opt.Text),
			EsCorrecta: opt.EsCorrecta,
		})
	}

	if err := b.db.Create(&question).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

// Get returns an active question with its options.
func (b *Bank) Get(id uint) (*models.Question, error) {
	var question models.Question
	if err := b.db.Preload("Options").First(&question, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &question, nil
}

// referenced reports whether the question was ever attached to any session,
// including cancelled ones. SessionQuestion rows are never deleted, so a
// simple existence check covers the whole history.
func (b *Bank) referenced(questionID uint) (bool, error) {
	var count int64
	err := b.db.Model(&models.SessionQuestion{}).Where("question_id = ?", questionID).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update applies a patch to a question that has never been used in a session.
// When the patch replaces options, the old set is dropped and the new one
// created in the same transaction, never partially merged.
func (b *Bank) Update(id uint, patch UpdatePatch) (*models.Question, error) {
	question, err := b.Get(id)
	if err != nil {
		return nil, err
	}

	used, err := b.referenced(id)
	if err != nil {
		return nil, err
	}
	if used {
		return nil, ErrLocked
	}

	if patch.Options != nil {
		if err := validateOptions(patch.Options); err != nil {
			return nil, err
		}
	}

	if patch.Statement != nil {
		statement := strings.TrimSpace(*patch.Statement)
		taken, err := b.statementTaken(statement, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrDuplicateStatement
		}
		question.Statement = statement
	}

	if patch.Grade != nil {
		question.Grade = *patch.Grade
	}

	err = b.db.Transaction(func(tx *gorm.DB) error {
		if patch.Options != nil {
			// Full swap: the option set is replaced as a unit.
			if err := tx.Unscoped().Where("question_id = ?", id).Delete(&models.AnswerOption{}).Error; err != nil {
				return err
			}
			question.Options = nil
			for _, opt := range patch.Options {
				question.Options = append(question.Options, models.AnswerOption{
					QuestionID: id,
					Text:       strings.TrimSpace(opt.Text),
					EsCorrecta: opt.EsCorrecta,
				})
			}
		}
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(question).Error
	})
	if err != nil {
		return nil, err
	}

	return b.Get(id)
}

// SoftDelete marks the question deleted. Options and historical sessions are
// untouched.
func (b *Bank) SoftDelete(id uint) error {
	result := b.db.Delete(&models.Question{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
