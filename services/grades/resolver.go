package grades

import (
	"errors"
	"fmt"
	"log"
	"time"

	"algoritmia/models"
	"algoritmia/services/classifier"

	"gorm.io/gorm"
)

var (
	// ErrConcurrencyConflict is surfaced after the bounded internal retries
	// for a per-key write are exhausted.
	ErrConcurrencyConflict = errors.New("concurrent difficulty update could not be applied")
	// ErrUnknownGrade is returned when gameplay submits a grade outside the
	// NINGUNA/BAJA/MEDIA/ALTA set.
	ErrUnknownGrade = errors.New("unknown difficulty grade")
)

// ChangeListener receives every ledger event after it is committed.
type ChangeListener func(event models.DifficultyChangeEvent)

// Resolver owns the difficulty ledger and its current-state projection.
// Every write to a DifficultyRecord goes through here: one ledger append plus
// a projection recompute inside one transaction, serialized per
// (student, difficulty) pair.
type Resolver struct {
	db         *gorm.DB
	locks      *keyedMutex
	listeners  []ChangeListener
	MaxRetries int
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{
		db:         db,
		locks:      newKeyedMutex(),
		MaxRetries: 3,
	}
}

// OnGradeChange registers a post-commit listener. Listeners run outside the
// per-key critical section. Registration happens at wiring time, before any
// traffic, so no locking is needed here.
func (r *Resolver) OnGradeChange(fn ChangeListener) {
	r.listeners = append(r.listeners, fn)
}

// CurrentGrade returns the student's current grade for a difficulty, NINGUNA
// when no record exists yet.
func (r *Resolver) CurrentGrade(studentID, difficultyID uint) (string, error) {
	var record models.DifficultyRecord
	err := r.db.Where("student_id = ? AND difficulty_id = ?", studentID, difficultyID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.GradeNone, nil
		}
		return "", err
	}
	return record.Grade, nil
}

// RecordGameplayGrade ingests evidence from the gameplay subsystem, which
// supplies an externally computed grade directly.
func (r *Resolver) RecordGameplayGrade(studentID, difficultyID uint, grade string) (*models.DifficultyChangeEvent, error) {
	if !models.IsValidGrade(grade) {
		return nil, ErrUnknownGrade
	}
	return r.record(studentID, difficultyID, models.SourceGameplay, nil, nil, func(current string) string {
		return grade
	})
}

// RecordSessionResult ingests the outcome of a completed reinforcement
// session. The new grade is derived from the score through the effectiveness
// classifier; SIN_MEJORA keeps the current grade. A non-nil commit runs inside
// the same transaction before the ledger append, so the caller's terminal
// state write and the event land or fail together; an error from commit is
// returned as-is without retrying.
func (r *Resolver) RecordSessionResult(studentID, difficultyID, sessionID uint, percentage float64, commit func(tx *gorm.DB) error) (*models.DifficultyChangeEvent, error) {
	return r.record(studentID, difficultyID, models.SourceSession, &sessionID, commit, func(current string) string {
		_, grade := classifier.ResultingGrade(percentage, current)
		return grade
	})
}

// record serializes on the pair key, appends one ledger event and recomputes
// the DifficultyRecord projection from it, in a single transaction with a
// bounded retry. Listeners are notified after the lock is released.
func (r *Resolver) record(studentID, difficultyID uint, source string, sessionID *uint, within func(tx *gorm.DB) error, computeNew func(current string) string) (*models.DifficultyChangeEvent, error) {
	event, err := r.recordLocked(studentID, difficultyID, source, sessionID, within, computeNew)
	if err != nil {
		return nil, err
	}

	for _, fn := range r.listeners {
		fn(*event)
	}
	return event, nil
}

func (r *Resolver) recordLocked(studentID, difficultyID uint, source string, sessionID *uint, within func(tx *gorm.DB) error, computeNew func(current string) string) (*models.DifficultyChangeEvent, error) {
	unlock := r.locks.lock(pairKey(studentID, difficultyID))
	defer unlock()

	var event models.DifficultyChangeEvent
	var lastErr error

	retries := r.MaxRetries
	if retries < 1 {
		retries = 1
	}

	for attempt := 0; attempt < retries; attempt++ {
		var withinErr error
		lastErr = r.db.Transaction(func(tx *gorm.DB) error {
			if within != nil {
				if err := within(tx); err != nil {
					withinErr = err
					return err
				}
			}

			current := models.GradeNone
			var record models.DifficultyRecord
			err := tx.Where("student_id = ? AND difficulty_id = ?", studentID, difficultyID).First(&record).Error
			switch {
			case err == nil:
				current = record.Grade
			case errors.Is(err, gorm.ErrRecordNotFound):
				// first evidence for this pair
			default:
				return err
			}

			event = models.DifficultyChangeEvent{
				StudentID:     studentID,
				DifficultyID:  difficultyID,
				PreviousGrade: current,
				NewGrade:      computeNew(current),
				Source:        source,
				SessionID:     sessionID,
			}
			if err := tx.Create(&event).Error; err != nil {
				return err
			}

			// The projection always mirrors the ledger entry just written.
			now := time.Now()
			if record.ID == 0 {
				record = models.DifficultyRecord{
					StudentID:    studentID,
					DifficultyID: difficultyID,
					Grade:        event.NewGrade,
					LastUpdated:  now,
				}
				return tx.Create(&record).Error
			}
			return tx.Model(&record).Updates(map[string]interface{}{
				"grade":        event.NewGrade,
				"last_updated": now,
			}).Error
		})
		if lastErr == nil {
			return &event, nil
		}
		if withinErr != nil {
			// The caller's own write refused; not a transient conflict.
			return nil, withinErr
		}
		log.Printf("[GRADE-RESOLVER] attempt %d failed for student %d difficulty %d: %v", attempt+1, studentID, difficultyID, lastErr)
	}

	return nil, fmt.Errorf("%w: %v", ErrConcurrencyConflict, lastErr)
}

// History returns the ordered ledger for reporting, optionally filtered by
// student, difficulty, source and date range. Zero values skip a filter.
func (r *Resolver) History(studentID, difficultyID uint, source string, from, to *time.Time) ([]models.DifficultyChangeEvent, error) {
	query := r.db.Model(&models.DifficultyChangeEvent{})
	if studentID != 0 {
		query = query.Where("student_id = ?", studentID)
	}
	if difficultyID != 0 {
		query = query.Where("difficulty_id = ?", difficultyID)
	}
	if source != "" {
		query = query.Where("source = ?", source)
	}
	if from != nil {
		query = query.Where("created_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("created_at <= ?", *to)
	}

	var events []models.DifficultyChangeEvent
	if err := query.Order("created_at asc").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// Records returns DifficultyRecord snapshots for a student, or for all
// students of a difficulty when studentID is zero.
func (r *Resolver) Records(studentID, difficultyID uint) ([]models.DifficultyRecord, error) {
	query := r.db.Model(&models.DifficultyRecord{})
	if studentID != 0 {
		query = query.Where("student_id = ?", studentID)
	}
	if difficultyID != 0 {
		query = query.Where("difficulty_id = ?", difficultyID)
	}

	var records []models.DifficultyRecord
	if err := query.Order("last_updated desc").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
