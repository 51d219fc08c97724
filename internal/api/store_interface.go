package api

import "github.com/rida027/stressfree/internal/services"

// Store is everything the HTTP layer needs from a persistence backend.
// Both the in-memory store and db.SQLStore satisfy it.
type Store interface {
	services.AssessmentStore
	services.AnalyticsStore
	services.MoodStore

	ListAudit() ([]services.AuditEntry, error)
}

var _ Store = (*memoryStore)(nil)
