// Package queue defines the audit events exchanged over the message broker
// and the background consumer that persists them.
package queue

import "time"

// AuditQueueName is the durable queue carrying audit events.
const AuditQueueName = "crm.audit"

// AuditEvent records one mutating API call: who did what to which record.
// Events are published fire-and-forget by the handlers and written to the
// audit_log table by the consumer.
type AuditEvent struct {
	ActorID    string    `json:"actor_id"`
	Action     string    `json:"action"` // create, update, delete, convert
	Entity     string    `json:"entity"` // lead, contact, account, opportunity, activity, user, file
	EntityID   string    `json:"entity_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
