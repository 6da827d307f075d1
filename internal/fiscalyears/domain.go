package fiscalyears

import (
	"errors"
	"time"
)

var (
	// ErrInvalidRange rejects a year whose end does not follow its start.
	ErrInvalidRange = errors.New("fiscalyears: end date must be after start date")
	// ErrOverlap rejects a year overlapping an existing one in the organization.
	ErrOverlap = errors.New("fiscalyears: date range overlaps an existing fiscal year")
	// ErrClosed rejects mutations of a closed fiscal year.
	ErrClosed = errors.New("fiscalyears: fiscal year is closed")
)

// FiscalYear is an accounting period of an organization. Closed years are
// immutable.
type FiscalYear struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organization_id"`
	Label          string    `json:"label"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	IsClosed       bool      `json:"is_closed"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Overlaps reports whether two date ranges share at least one day.
func (fy FiscalYear) Overlaps(other FiscalYear) bool {
	return !fy.StartDate.After(other.EndDate) && !other.StartDate.After(fy.EndDate)
}
