package contacts

import "time"

// Contact is a person attached to a client company.
type Contact struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organization_id"`
	ClientID       int64     `json:"client_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
