package model

import "time"

// Opportunity represents a sales deal in the `opportunities` table.
// Probability is a percentage (0-100); Amount is in the given currency.
type Opportunity struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	AccountID   string     `json:"accountId,omitempty"`
	ContactID   string     `json:"contactId,omitempty"`
	Stage       string     `json:"stage"` // prospecting, qualification, proposal, negotiation, closed_won, closed_lost
	Probability int        `json:"probability"`
	Amount      float64    `json:"amount"`
	Currency    string     `json:"currency,omitempty"`
	CloseDate   *time.Time `json:"closeDate,omitempty"`
	OwnerID     string     `json:"ownerId"`
	AssignedTo  string     `json:"assignedTo,omitempty"`
	LeadSource  string     `json:"leadSource,omitempty"`
	NextStep    string     `json:"nextStep,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	DeletedAt   *time.Time `json:"-"`
}
