package orgs

import "time"

// Organization is the tenancy root. All master data, memberships and
// role grants hang off an organization.
type Organization struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Overview aggregates per-organization record counts for the dashboard.
type Overview struct {
	Organization Organization `json:"organization"`
	Clients      int64        `json:"clients"`
	Suppliers    int64        `json:"suppliers"`
	Products     int64        `json:"products"`
	Members      int64        `json:"members"`
}
