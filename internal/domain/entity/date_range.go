package entity

import "time"

// ViewMode is the granularity of the visible calendar window.
type ViewMode string

const (
	ViewDay   ViewMode = "day"
	ViewWeek  ViewMode = "week"
	ViewMonth ViewMode = "month"
)

// IsValid checks if the view mode is one of the supported granularities
func (v ViewMode) IsValid() bool {
	switch v {
	case ViewDay, ViewWeek, ViewMonth:
		return true
	}
	return false
}

// DateRange is the visible time span of the calendar.
// A new range supersedes the old one; ranges are never mutated in place.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// IsValid reports whether Start is before End
func (r DateRange) IsValid() bool {
	return r.Start.Before(r.End)
}

// Equal reports whether both bounds denote the same instants
func (r DateRange) Equal(other DateRange) bool {
	return r.Start.Equal(other.Start) && r.End.Equal(other.End)
}
