package grades

import (
	"errors"
	"sync"
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
		&models.DifficultyRecord{},
		&models.DifficultyChangeEvent{},
	))
	return db
}

func TestCurrentGradeDefaultsToNone(t *testing.T) {
	r := NewResolver(testDB(t))

	grade, err := r.CurrentGrade(1, 1)
	require.NoError(t, err)
	assert.Equal(t, models.GradeNone, grade)
}

func TestRecordGameplayGradeCreatesLedgerAndProjection(t *testing.T) {
	db := testDB(t)
	r := NewResolver(db)

	event, err := r.RecordGameplayGrade(1, 2, models.GradeLow)
	require.NoError(t, err)
	assert.Equal(t, models.GradeNone, event.PreviousGrade)
	assert.Equal(t, models.GradeLow, event.NewGrade)
	assert.Equal(t, models.SourceGameplay, event.Source)
	assert.Nil(t, event.SessionID)

	grade, err := r.CurrentGrade(1, 2)
	require.NoError(t, err)
	assert.Equal(t, models.GradeLow, grade)

	// Exactly one record per pair
	var count int64
	require.NoError(t, db.Model(&models.DifficultyRecord{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRecordGameplayGradeRejectsUnknownGrade(t *testing.T) {
	r := NewResolver(testDB(t))

	_, err := r.RecordGameplayGrade(1, 1, "IMPOSIBLE")
	assert.ErrorIs(t, err, ErrUnknownGrade)
}

func TestRecordSessionResultUsesClassifier(t *testing.T) {
	db := testDB(t)
	r := NewResolver(db)

	_, err := r.RecordGameplayGrade(1, 1, models.GradeLow)
	require.NoError(t, err)

	sessionID := uint(10)
	event, err := r.RecordSessionResult(1, 1, sessionID, 90, nil)
	require.NoError(t, err)
	assert.Equal(t, models.GradeLow, event.PreviousGrade)
	assert.Equal(t, models.GradeNone, event.NewGrade)
	assert.Equal(t, models.SourceSession, event.Source)
	require.NotNil(t, event.SessionID)
	assert.Equal(t, sessionID, *event.SessionID)

	grade, err := r.CurrentGrade(1, 1)
	require.NoError(t, err)
	assert.Equal(t, models.GradeNone, grade)
}

func TestRecordSessionResultKeepsGradeWithoutImprovement(t *testing.T) {
	r := NewResolver(testDB(t))

	_, err := r.RecordGameplayGrade(1, 1, models.GradeHigh)
	require.NoError(t, err)

	event, err := r.RecordSessionResult(1, 1, 11, 20, nil)
	require.NoError(t, err)
	assert.Equal(t, models.GradeHigh, event.PreviousGrade)
	assert.Equal(t, models.GradeHigh, event.NewGrade)

	grade, err := r.CurrentGrade(1, 1)
	require.NoError(t, err)
	assert.Equal(t, models.GradeHigh, grade)
}

func TestListenersRunAfterCommit(t *testing.T) {
	r := NewResolver(testDB(t))

	var got []models.DifficultyChangeEvent
	r.OnGradeChange(func(event models.DifficultyChangeEvent) {
		// The projection is already visible when the listener runs
		grade, err := r.CurrentGrade(event.StudentID, event.DifficultyID)
		require.NoError(t, err)
		assert.Equal(t, event.NewGrade, grade)
		got = append(got, event)
	})

	_, err := r.RecordGameplayGrade(3, 4, models.GradeMedium)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, models.GradeMedium, got[0].NewGrade)
}

// foldHistory replays the ordered ledger for a pair the way the projection
// should have.
func foldHistory(events []models.DifficultyChangeEvent) string {
	grade := models.GradeNone
	for _, e := range events {
		grade = e.NewGrade
	}
	return grade
}

func TestProjectionAlwaysMatchesLedgerFold(t *testing.T) {
	db := testDB(t)
	r := NewResolver(db)

	steps := []string{models.GradeMedium, models.GradeHigh, models.GradeLow, models.GradeNone, models.GradeLow}
	for _, g := range steps {
		_, err := r.RecordGameplayGrade(5, 6, g)
		require.NoError(t, err)
	}

	events, err := r.History(5, 6, "", nil, nil)
	require.NoError(t, err)
	require.Len(t, events, len(steps))

	// Chain consistency: each event starts where the previous one ended
	for i := 1; i < len(events); i++ {
		assert.Equal(t, events[i-1].NewGrade, events[i].PreviousGrade)
	}

	grade, err := r.CurrentGrade(5, 6)
	require.NoError(t, err)
	assert.Equal(t, foldHistory(events), grade)
}

func TestConcurrentEvidenceIsSerializedPerPair(t *testing.T) {
	db := testDB(t)
	r := NewResolver(db)

	const writers = 20
	grades := []string{models.GradeLow, models.GradeMedium, models.GradeHigh}

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := r.RecordGameplayGrade(7, 8, grades[i%len(grades)])
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	events, err := r.History(7, 8, "", nil, nil)
	require.NoError(t, err)
	require.Len(t, events, writers)

	// No two writers read the same stale grade: the chain is unbroken
	for i := 1; i < len(events); i++ {
		assert.Equal(t, events[i-1].NewGrade, events[i].PreviousGrade,
			"ledger chain broken at event %d", i)
	}

	grade, err := r.CurrentGrade(7, 8)
	require.NoError(t, err)
	assert.Equal(t, foldHistory(events), grade)
}

func TestZeroRetryConfigStillWrites(t *testing.T) {
	db := testDB(t)
	r := NewResolver(db)
	r.MaxRetries = 0

	event, err := r.RecordGameplayGrade(1, 1, models.GradeLow)
	require.NoError(t, err)
	assert.Equal(t, models.GradeLow, event.NewGrade)

	grade, err := r.CurrentGrade(1, 1)
	require.NoError(t, err)
	assert.Equal(t, models.GradeLow, grade)
}

func TestSessionResultCommitFailureWritesNothing(t *testing.T) {
	db := testDB(t)
	r := NewResolver(db)

	refused := errors.New("state transition refused")
	_, err := r.RecordSessionResult(1, 1, 10, 90, func(tx *gorm.DB) error {
		return refused
	})
	assert.ErrorIs(t, err, refused)

	// The refusal rolled back the whole write: no event, no projection
	events, err := r.History(1, 1, "", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, events)

	grade, err := r.CurrentGrade(1, 1)
	require.NoError(t, err)
	assert.Equal(t, models.GradeNone, grade)
}

func TestSessionResultCommitSharesTransaction(t *testing.T) {
	db := testDB(t)
	r := NewResolver(db)

	var committed bool
	_, err := r.RecordSessionResult(1, 1, 10, 90, func(tx *gorm.DB) error {
		committed = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, committed)

	events, err := r.History(1, 1, models.SourceSession, nil, nil)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestHistoryFilters(t *testing.T) {
	r := NewResolver(testDB(t))

	_, err := r.RecordGameplayGrade(1, 1, models.GradeLow)
	require.NoError(t, err)
	_, err = r.RecordGameplayGrade(2, 1, models.GradeHigh)
	require.NoError(t, err)
	_, err = r.RecordSessionResult(1, 1, 99, 90, nil)
	require.NoError(t, err)

	byStudent, err := r.History(1, 0, "", nil, nil)
	require.NoError(t, err)
	assert.Len(t, byStudent, 2)

	bySource, err := r.History(0, 0, models.SourceSession, nil, nil)
	require.NoError(t, err)
	require.Len(t, bySource, 1)
	assert.Equal(t, models.SourceSession, bySource[0].Source)

	all, err := r.History(0, 0, "", nil, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
