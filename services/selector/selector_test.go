package selector

import (
	"testing"
	"time"

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
		&models.Difficulty{},
		&models.Question{},
		&models.AnswerOption{},
	))
	return db
}

func seedQuestion(t *testing.T, db *gorm.DB, difficultyID uint, grade, statement string, authorID *uint, createdAt time.Time) models.Question {
	t.Helper()

	question := models.Question{
		DifficultyID: difficultyID,
		Grade:        grade,
		Statement:    statement,
		AuthorID:     authorID,
	}
	require.NoError(t, db.Create(&question).Error)
	require.NoError(t, db.Model(&question).Update("created_at", createdAt).Error)
	return question
}

func statements(questions []models.Question) []string {
	out := make([]string, len(questions))
	for i, q := range questions {
		out[i] = q.Statement
	}
	return out
}

func TestSelectCascadeInclusion(t *testing.T) {
	db := testDB(t)
	s := New(db)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	seedQuestion(t, db, 1, models.GradeLow, "low question", nil, base)
	seedQuestion(t, db, 1, models.GradeMedium, "medium question", nil, base.Add(time.Hour))
	seedQuestion(t, db, 1, models.GradeHigh, "high question", nil, base.Add(2*time.Hour))

	low, err := s.Select(1, models.GradeLow)
	require.NoError(t, err)
	assert.Equal(t, []string{"low question"}, statements(low))

	medium, err := s.Select(1, models.GradeMedium)
	require.NoError(t, err)
	assert.Equal(t, []string{"low question", "medium question"}, statements(medium))

	high, err := s.Select(1, models.GradeHigh)
	require.NoError(t, err)
	assert.Equal(t, []string{"low question", "medium question", "high question"}, statements(high))
}

func TestSelectMonotonicity(t *testing.T) {
	db := testDB(t)
	s := New(db)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, grade := range []string{models.GradeLow, models.GradeLow, models.GradeMedium, models.GradeHigh} {
		seedQuestion(t, db, 1, grade, string(rune('a'+i))+" statement", nil, base.Add(time.Duration(i)*time.Minute))
	}

	low, err := s.Select(1, models.GradeLow)
	require.NoError(t, err)
	medium, err := s.Select(1, models.GradeMedium)
	require.NoError(t, err)
	high, err := s.Select(1, models.GradeHigh)
	require.NoError(t, err)

	// Selection for a higher grade is always a superset of a lower one.
	assert.Subset(t, statements(high), statements(medium))
	assert.Subset(t, statements(medium), statements(low))
}

func TestSelectExcludesTeacherAndDeletedQuestions(t *testing.T) {
	db := testDB(t)
	s := New(db)

	teacherID := uint(42)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	system := seedQuestion(t, db, 1, models.GradeLow, "system question", nil, base)
	seedQuestion(t, db, 1, models.GradeLow, "teacher question", &teacherID, base)
	deleted := seedQuestion(t, db, 1, models.GradeLow, "deleted question", nil, base)
	require.NoError(t, db.Delete(&deleted).Error)
	seedQuestion(t, db, 2, models.GradeLow, "other difficulty", nil, base)

	selected, err := s.Select(1, models.GradeLow)
	require.NoError(t, err)
	require.Len(t, selected, 1)
	assert.Equal(t, system.ID, selected[0].ID)
}

func TestSelectOrderedByCreation(t *testing.T) {
	db := testDB(t)
	s := New(db)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	seedQuestion(t, db, 1, models.GradeLow, "newest", nil, base.Add(2*time.Hour))
	seedQuestion(t, db, 1, models.GradeLow, "oldest", nil, base)
	seedQuestion(t, db, 1, models.GradeLow, "middle", nil, base.Add(time.Hour))

	selected, err := s.Select(1, models.GradeLow)
	require.NoError(t, err)
	assert.Equal(t, []string{"oldest", "middle", "newest"}, statements(selected))
}

func TestSelectInvalidGrade(t *testing.T) {
	db := testDB(t)
	s := New(db)

	_, err := s.Select(1, models.GradeNone)
	assert.ErrorIs(t, err, ErrInvalidGrade)

	_, err = s.Select(1, "SUPREMA")
	assert.ErrorIs(t, err, ErrInvalidGrade)
}

func TestSelectEmptyResult(t *testing.T) {
	db := testDB(t)
	s := New(db)

	selected, err := s.Select(99, models.GradeHigh)
	require.NoError(t, err)
	assert.Empty(t, selected)
}
