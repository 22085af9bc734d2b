package utils

import (
	"fmt"
	"log"
	"time"

	"algoritmia/services/sessions"

	"github.com/robfig/cron/v3"
)

// logScheduler logs scheduler events with timestamp
func logScheduler(message string) {
	log.Printf("[SESSION-SCHEDULER %s] %s", time.Now().Format(time.RFC3339), message)
}

// InitializeSessionScheduler starts the overdue-session sweep. Each run
// rescans every past-due PENDIENTE session from scratch; the manager discards
// races it loses, so overlapping runs are safe.
func InitializeSessionScheduler(manager *sessions.Manager) *cron.Cron {
	logScheduler("Initializing session scheduler...")

	c := cron.New()

	// Hourly sweep of overdue pending sessions
	c.AddFunc("0 * * * *", func() {
		transitioned, err := manager.SweepOverdue(time.Now())
		if err != nil {
			logScheduler("Sweep error: " + err.Error())
			return
		}
		if transitioned > 0 {
			logScheduler(fmt.Sprintf("Sweep closed %d overdue sessions", transitioned))
		}
	})

	c.Start()
	logScheduler("Session scheduler started - sweep runs hourly")
	return c
}
