package entity

import "time"

// SortField is one of the fields the appointment query can be ordered by.
type SortField string

const (
	SortByStartTime SortField = "appointmentStartTime"
	SortByEndTime   SortField = "appointmentEndTime"
	SortByCode      SortField = "code"
	SortByStatus    SortField = "status"
	SortByCreatedAt SortField = "createdAt"
)

// IsValid checks if the sort field is supported by the query endpoint
func (f SortField) IsValid() bool {
	switch f {
	case SortByStartTime, SortByEndTime, SortByCode, SortByStatus, SortByCreatedAt:
		return true
	}
	return false
}

// SortDirection is ASC or DESC.
type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// IsValid checks if the direction is ASC or DESC
func (d SortDirection) IsValid() bool {
	return d == SortAsc || d == SortDesc
}

// Toggle returns the opposite direction
func (d SortDirection) Toggle() SortDirection {
	if d == SortDesc {
		return SortAsc
	}
	return SortDesc
}

// DatePreset names a relative date window resolved at commit time.
type DatePreset string

const (
	PresetNone      DatePreset = ""
	PresetToday     DatePreset = "TODAY"
	PresetTomorrow  DatePreset = "TOMORROW"
	PresetThisWeek  DatePreset = "THIS_WEEK"
	PresetNext7Days DatePreset = "NEXT_7_DAYS"
	PresetThisMonth DatePreset = "THIS_MONTH"
)

// IsValid checks if the preset is known. PresetNone is valid.
func (p DatePreset) IsValid() bool {
	switch p {
	case PresetNone, PresetToday, PresetTomorrow, PresetThisWeek, PresetNext7Days, PresetThisMonth:
		return true
	}
	return false
}

// EntityFields are the structured shortcuts that target a specific patient,
// employee, room or service. They are only transmitted for callers that can
// view all records.
type EntityFields struct {
	PatientCode  string `json:"patientCode,omitempty"`
	PatientName  string `json:"patientName,omitempty"`
	PatientPhone string `json:"patientPhone,omitempty"`
	EmployeeCode string `json:"employeeCode,omitempty"`
	RoomCode     string `json:"roomCode,omitempty"`
	ServiceCode  string `json:"serviceCode,omitempty"`
}

// IsEmpty reports whether no shortcut is set
func (e EntityFields) IsEmpty() bool {
	return e == EntityFields{}
}

// FilterCriteria is the canonical filter/sort state handed to the data source.
// Values are treated as immutable snapshots; use Clone before modifying.
type FilterCriteria struct {
	SearchCode    string              `json:"searchCode,omitempty"`
	Status        []AppointmentStatus `json:"status,omitempty"`
	DateFrom      *time.Time          `json:"dateFrom,omitempty"`
	DateTo        *time.Time          `json:"dateTo,omitempty"`
	DatePreset    DatePreset          `json:"datePreset,omitempty"`
	SortBy        SortField           `json:"sortBy"`
	SortDirection SortDirection       `json:"sortDirection"`
	EntityFields  *EntityFields       `json:"entityFields,omitempty"`
}

// DefaultFilterCriteria returns the criteria of an untouched filter panel
func DefaultFilterCriteria() FilterCriteria {
	return FilterCriteria{
		SortBy:        SortByStartTime,
		SortDirection: SortAsc,
	}
}

// Clone returns a deep copy so callers never share slices or pointers
func (c FilterCriteria) Clone() FilterCriteria {
	out := c
	if c.Status != nil {
		out.Status = append([]AppointmentStatus(nil), c.Status...)
	}
	if c.DateFrom != nil {
		from := *c.DateFrom
		out.DateFrom = &from
	}
	if c.DateTo != nil {
		to := *c.DateTo
		out.DateTo = &to
	}
	if c.EntityFields != nil {
		fields := *c.EntityFields
		out.EntityFields = &fields
	}
	return out
}

// Equal compares two criteria field by field
func (c FilterCriteria) Equal(other FilterCriteria) bool {
	if c.SearchCode != other.SearchCode ||
		c.DatePreset != other.DatePreset ||
		c.SortBy != other.SortBy ||
		c.SortDirection != other.SortDirection {
		return false
	}
	if len(c.Status) != len(other.Status) {
		return false
	}
	for i := range c.Status {
		if c.Status[i] != other.Status[i] {
			return false
		}
	}
	if !equalTimePtr(c.DateFrom, other.DateFrom) || !equalTimePtr(c.DateTo, other.DateTo) {
		return false
	}
	switch {
	case c.EntityFields == nil && other.EntityFields == nil:
		return true
	case c.EntityFields == nil || other.EntityFields == nil:
		return false
	default:
		return *c.EntityFields == *other.EntityFields
	}
}

func equalTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
