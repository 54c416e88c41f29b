package dto

import "time"

// Request DTOs

type CalendarRangeRequest struct {
	ActiveStart time.Time `json:"activeStart" validate:"required"`
	ActiveEnd   time.Time `json:"activeEnd" validate:"required"`
	ViewMode    string    `json:"viewMode" validate:"required,oneof=day week month"`
}

type CalendarNavigateRequest struct {
	Action string `json:"action" validate:"required,oneof=prev next today"`
}

type CalendarViewModeRequest struct {
	ViewMode string `json:"viewMode" validate:"required,oneof=day week month"`
}

// CalendarSearchRequest is one keystroke in the search box. Submit marks the
// Enter key, which commits without waiting for the debounce.
type CalendarSearchRequest struct {
	Text   string `json:"text" validate:"max=100"`
	Submit bool   `json:"submit"`
}

// CalendarFilterRequest carries the discrete filter controls. Only non-nil
// fields are applied, each as its own immediate commit.
type CalendarFilterRequest struct {
	Status        *string `json:"status" validate:"omitempty,oneof=SCHEDULED CONFIRMED CHECKED_IN IN_PROGRESS COMPLETED CANCELLED NO_SHOW ALL"`
	SortBy        *string `json:"sortBy" validate:"omitempty,oneof=appointmentStartTime appointmentEndTime code status createdAt"`
	SortDirection *string `json:"sortDirection" validate:"omitempty,oneof=ASC DESC"`
	DatePreset    *string `json:"datePreset" validate:"omitempty,oneof=TODAY TOMORROW THIS_WEEK NEXT_7_DAYS THIS_MONTH NONE"`
	DateFrom      *string `json:"dateFrom" validate:"omitempty,datetime=2006-01-02"`
	DateTo        *string `json:"dateTo" validate:"omitempty,datetime=2006-01-02"`

	Entity *CalendarEntityFilter `json:"entity"`
}

type CalendarEntityFilter struct {
	PatientCode  string `json:"patientCode" validate:"max=50"`
	PatientName  string `json:"patientName" validate:"max=255"`
	PatientPhone string `json:"patientPhone" validate:"max=30"`
	EmployeeCode string `json:"employeeCode" validate:"max=50"`
	RoomCode     string `json:"roomCode" validate:"max=50"`
	ServiceCode  string `json:"serviceCode" validate:"max=50"`
}

// Response DTOs

type CalendarEventResponse struct {
	ID              string                     `json:"id"`
	Title           string                     `json:"title"`
	Start           time.Time                  `json:"start"`
	End             time.Time                  `json:"end"`
	BackgroundColor string                     `json:"backgroundColor"`
	TextColor       string                     `json:"textColor"`
	Appointment     AppointmentSummaryResponse `json:"appointment"`
}

// CalendarFilterState echoes the filter panel so the page can redraw it
type CalendarFilterState struct {
	SearchText    string                `json:"searchText"`
	Search        string                `json:"search"`
	SearchPending bool                  `json:"searchPending"`
	Status        string                `json:"status"`
	DatePreset    string                `json:"datePreset"`
	DateFrom      string                `json:"dateFrom,omitempty"`
	DateTo        string                `json:"dateTo,omitempty"`
	SortBy        string                `json:"sortBy"`
	SortDirection string                `json:"sortDirection"`
	Entity        *CalendarEntityFilter `json:"entity,omitempty"`
	Version       uint64                `json:"version"`
}

type CalendarViewResponse struct {
	ActiveStart   *time.Time              `json:"activeStart,omitempty"`
	ActiveEnd     *time.Time              `json:"activeEnd,omitempty"`
	ViewMode      string                  `json:"viewMode"`
	CanViewAll    bool                    `json:"canViewAll"`
	Filters       CalendarFilterState     `json:"filters"`
	Events        []CalendarEventResponse `json:"events"`
	Loading       bool                    `json:"loading"`
	Notice        string                  `json:"notice,omitempty"`
	Error         string                  `json:"error,omitempty"`
	TotalElements int64                   `json:"totalElements"`
	Truncated     bool                    `json:"truncated"`
	Generation    uint64                  `json:"generation"`
	Revision      uint64                  `json:"revision"`
}
