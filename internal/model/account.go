package model

import "time"

// Account represents a company record in the `accounts` table.
type Account struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	Industry      string     `json:"industry,omitempty"`
	Website       string     `json:"website,omitempty"`
	Phone         string     `json:"phone,omitempty"`
	Email         string     `json:"email,omitempty"`
	Address       string     `json:"address,omitempty"`
	City          string     `json:"city,omitempty"`
	State         string     `json:"state,omitempty"`
	ZipCode       string     `json:"zipCode,omitempty"`
	Country       string     `json:"country,omitempty"`
	Size          string     `json:"size,omitempty"`
	AnnualRevenue float64    `json:"annualRevenue,omitempty"`
	OwnerID       string     `json:"ownerId"`
	AssignedTo    string     `json:"assignedTo,omitempty"`
	Status        string     `json:"status"` // active, inactive
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	DeletedAt     *time.Time `json:"-"`
}
