package model

import "time"

// Activity represents a task, call, meeting or email logged against a CRM
// record. At most one of AccountID/ContactID/OpportunityID is usually set
// but the schema does not enforce that.
type Activity struct {
	ID            string     `json:"id"`
	Subject       string     `json:"subject"`
	Type          string     `json:"type"`   // call, email, meeting, task
	Status        string     `json:"status"` // planned, in_progress, completed, cancelled
	Priority      string     `json:"priority,omitempty"`
	Description   string     `json:"description,omitempty"`
	StartDate     *time.Time `json:"startDate,omitempty"`
	EndDate       *time.Time `json:"endDate,omitempty"`
	Duration      int        `json:"duration,omitempty"` // minutes
	OwnerID       string     `json:"ownerId"`
	AssignedTo    string     `json:"assignedTo,omitempty"`
	AccountID     string     `json:"accountId,omitempty"`
	ContactID     string     `json:"contactId,omitempty"`
	OpportunityID string     `json:"opportunityId,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	DeletedAt     *time.Time `json:"-"`
}
