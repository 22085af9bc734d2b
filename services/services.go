// Package services wires the core engine components together over the shared
// database connection. Controllers and schedulers consume the globals built by
// Init, mirroring how the database instance is shared.
package services

import (
	"algoritmia/config"
	"algoritmia/services/grades"
	"algoritmia/services/questions"
	"algoritmia/services/selector"
	"algoritmia/services/sessions"

	"gorm.io/gorm"
)

var (
	Bank     *questions.Bank
	Resolver *grades.Resolver
	Selector *selector.Selector
	Sessions *sessions.Manager
)

// Init builds the service graph and registers the auto-creation hook: the
// session manager observes committed grade changes instead of being called
// inline by the resolver.
func Init(db *gorm.DB) {
	Bank = questions.NewBank(db)
	Resolver = grades.NewResolver(db)
	Selector = selector.New(db)
	Sessions = sessions.NewManager(db, Selector, Resolver)

	if config.AppConfig != nil {
		Resolver.MaxRetries = config.AppConfig.EvidenceRetries
		Sessions.DueDays = config.AppConfig.SessionDueDays
	}

	Resolver.OnGradeChange(Sessions.HandleGradeChange)
}
