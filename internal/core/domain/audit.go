package domain

import "time"

// AuditEntry is an append-only record of one transition attempt, written for
// denials as well as successes. Entries are never mutated or deleted.
type AuditEntry struct {
	AuditID    string         `json:"auditID"` // Primary Key (UUID)
	ProjectID  string         `json:"projectID"`
	EntityType EntityType     `json:"entityType"`
	EntityID   string         `json:"entityID"`
	ActorID    string         `json:"actorID"`
	FromState  WorkflowStatus `json:"fromState"`
	ToState    WorkflowStatus `json:"toState"`
	Authorized bool           `json:"authorized"`
	Reason     string         `json:"reason,omitempty"` // denial reason or admin action note
	OccurredAt time.Time      `json:"occurredAt"`
}
