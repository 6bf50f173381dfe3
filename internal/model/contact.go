package model

import "time"

// Contact represents a person attached to an account, stored in the
// `contacts` table.
type Contact struct {
	ID          string     `json:"id"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Email       string     `json:"email,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	JobTitle    string     `json:"jobTitle,omitempty"`
	Department  string     `json:"department,omitempty"`
	AccountID   string     `json:"accountId,omitempty"`
	OwnerID     string     `json:"ownerId"`
	AssignedTo  string     `json:"assignedTo,omitempty"`
	Status      string     `json:"status"` // active, inactive
	LeadSource  string     `json:"leadSource,omitempty"`
	Description string     `json:"description,omitempty"`
	Address     string     `json:"address,omitempty"`
	City        string     `json:"city,omitempty"`
	State       string     `json:"state,omitempty"`
	ZipCode     string     `json:"zipCode,omitempty"`
	Country     string     `json:"country,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	DeletedAt   *time.Time `json:"-"`
}
