package model

import "time"

// Lead represents a sales lead as stored in the `leads` table. Leads are
// soft-deleted (DeletedAt) and can be converted into a contact plus an
// optional account, after which the conversion fields are populated.
type Lead struct {
	ID          string     `json:"id"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Company     string     `json:"company"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	JobTitle    string     `json:"jobTitle,omitempty"`
	LeadSource  string     `json:"leadSource"`
	Status      string     `json:"status"` // new, contacted, qualified, lost, converted
	LeadScore   int        `json:"leadScore"`
	OwnerID     string     `json:"ownerId"`
	AssignedTo  string     `json:"assignedTo,omitempty"`
	Description string     `json:"description,omitempty"`
	Address     string     `json:"address,omitempty"`
	City        string     `json:"city,omitempty"`
	State       string     `json:"state,omitempty"`
	ZipCode     string     `json:"zipCode,omitempty"`
	Country     string     `json:"country,omitempty"`
	ContactID   string     `json:"convertedToContactId,omitempty"`
	AccountID   string     `json:"convertedToAccountId,omitempty"`
	ConvertedAt *time.Time `json:"convertedDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	DeletedAt   *time.Time `json:"-"`
}
