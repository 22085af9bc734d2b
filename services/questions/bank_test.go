package questions

import (
	"testing"

	"algoritmia/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Question{},
		&models.AnswerOption{},
		&models.SessionQuestion{},
	))
	return db
}

func validOptions() []OptionInput {
	return []OptionInput{
		{Text: "for loop", EsCorrecta: true},
		{Text: "while loop", EsCorrecta: false},
		{Text: "do-while loop", EsCorrecta: false},
	}
}

func TestCreateQuestion(t *testing.T) {
	db := testDB(t)
	bank := NewBank(db)

	question, err := bank.Create(1, models.GradeLow, "Which loop iterates a fixed number of times?", nil, validOptions())
	require.NoError(t, err)
	assert.NotZero(t, question.ID)
	assert.Len(t, question.Options, 3)
	assert.True(t, question.IsSystem())
}

func TestCreateRejectsInvalidOptionSets(t *testing.T) {
	db := testDB(t)
	bank := NewBank(db)

	tests := []struct {
		name    string
		options []OptionInput
	}{
		{"single option", []OptionInput{{Text: "only one", EsCorrecta: true}}},
		{"five options", []OptionInput{
			{Text: "a", EsCorrecta: true}, {Text: "b"}, {Text: "c"}, {Text: "d"}, {Text: "e"},
		}},
		{"two correct", []OptionInput{
			{Text: "a", EsCorrecta: true}, {Text: "b", EsCorrecta: true},
		}},
		{"none correct", []OptionInput{
			{Text: "a"}, {Text: "b"},
		}},
		{"duplicate texts", []OptionInput{
			{Text: "same", EsCorrecta: true}, {Text: "same"},
		}},
		{"blank text", []OptionInput{
			{Text: "a", EsCorrecta: true}, {Text: "   "},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := bank.Create(1, models.GradeLow, "statement "+tt.name, nil, tt.options)
			assert.ErrorIs(t, err, ErrInvalidOptionSet)
		})
	}

	// Nothing partially persisted
	var count int64
	require.NoError(t, db.Model(&models.Question{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateRejectsDuplicateStatement(t *testing.T) {
	db := testDB(t)
	bank := NewBank(db)

	_, err := bank.Create(1, models.GradeLow, "repeated statement", nil, validOptions())
	require.NoError(t, err)

	_, err = bank.Create(1, models.GradeMedium, "repeated statement", nil, validOptions())
	assert.ErrorIs(t, err, ErrDuplicateStatement)
}

func TestStatementReusableAfterSoftDelete(t *testing.T) {
	db := testDB(t)
	bank := NewBank(db)

	question, err := bank.Create(1, models.GradeLow, "reusable statement", nil, validOptions())
	require.NoError(t, err)
	require.NoError(t, bank.SoftDelete(question.ID))

	// Uniqueness only holds among active questions
	_, err = bank.Create(1, models.GradeLow, "reusable statement", nil, validOptions())
	assert.NoError(t, err)
}

func TestUpdateSwapsOptionSetAtomically(t *testing.T) {
	db := testDB(t)
	bank := NewBank(db)

	question, err := bank.Create(1, models.GradeLow, "swap options", nil, validOptions())
	require.NoError(t, err)

	updated, err := bank.Update(question.ID, UpdatePatch{
		Options: []OptionInput{
			{Text: "new right", EsCorrecta: true},
			{Text: "new wrong", EsCorrecta: false},
		},
	})
	require.NoError(t, err)
	require.Len(t, updated.Options, 2)

	// The old set is gone entirely, not merged
	var count int64
	require.NoError(t, db.Model(&models.AnswerOption{}).Where("question_id = ?", question.ID).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestUpdateRejectsInvalidReplacementOptions(t *testing.T) {
	db := testDB(t)
	bank := NewBank(db)

	question, err := bank.Create(1, models.GradeLow, "keep options", nil, validOptions())
	require.NoError(t, err)

	_, err = bank.Update(question.ID, UpdatePatch{
		Options: []OptionInput{{Text: "only one", EsCorrecta: true}},
	})
	assert.ErrorIs(t, err, ErrInvalidOptionSet)

	// Original option set untouched
	current, err := bank.Get(question.ID)
	require.NoError(t, err)
	assert.Len(t, current.Options, 3)
}

func TestUpdateLockedWhenEverUsedInSession(t *testing.T) {
	db := testDB(t)
	bank := NewBank(db)

	question, err := bank.Create(1, models.GradeLow, "locked statement", nil, validOptions())
	require.NoError(t, err)

	// Attach to a session; even one later cancelled keeps the lock
	require.NoError(t, db.Create(&models.SessionQuestion{SessionID: 7, QuestionID: question.ID}).Error)

	statement := "edited statement"
	_, err = bank.Update(question.ID, UpdatePatch{Statement: &statement})
	assert.ErrorIs(t, err, ErrLocked)
}

func TestUpdateNotFound(t *testing.T) {
	db := testDB(t)
	bank := NewBank(db)

	statement := "whatever"
	_, err := bank.Update(12345, UpdatePatch{Statement: &statement})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateDuplicateStatement(t *testing.T) {
	db := testDB(t)
	bank := NewBank(db)

	_, err := bank.Create(1, models.GradeLow, "first statement", nil, validOptions())
	require.NoError(t, err)
	second, err := bank.Create(1, models.GradeLow, "second statement", nil, validOptions())
	require.NoError(t, err)

	statement := "first statement"
	_, err = bank.Update(second.ID, UpdatePatch{Statement: &statement})
	assert.ErrorIs(t, err, ErrDuplicateStatement)
}

func TestSoftDeleteKeepsOptions(t *testing.T) {
	db := testDB(t)
	bank := NewBank(db)

	question, err := bank.Create(1, models.GradeLow, "to delete", nil, validOptions())
	require.NoError(t, err)

	require.NoError(t, bank.SoftDelete(question.ID))

	_, err = bank.Get(question.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Options stay for historical session integrity
	var count int64
	require.NoError(t, db.Model(&models.AnswerOption{}).Where("question_id = ?", question.ID).Count(&count).Error)
	assert.EqualValues(t, 3, count)

	assert.ErrorIs(t, bank.SoftDelete(question.ID), ErrNotFound)
}
