package dto

import (
	"time"

	"clinic-console/internal/domain/entity"

	"github.com/shopspring/decimal"
)

// Request DTOs

// AppointmentSearchRequest is the body of the appointment query endpoint.
// Entity fields are flattened into the body and only present for callers
// that can view all records.
type AppointmentSearchRequest struct {
	DateFrom      string   `json:"dateFrom" validate:"required,datetime=2006-01-02"` // Format: YYYY-MM-DD
	DateTo        string   `json:"dateTo" validate:"required,datetime=2006-01-02"`   // Format: YYYY-MM-DD
	Status        []string `json:"status,omitempty" validate:"omitempty,dive,oneof=SCHEDULED CONFIRMED CHECKED_IN IN_PROGRESS COMPLETED CANCELLED NO_SHOW"`
	SearchCode    string   `json:"searchCode,omitempty" validate:"omitempty,max=100"`
	SortBy        string   `json:"sortBy" validate:"required,oneof=appointmentStartTime appointmentEndTime code status createdAt"`
	SortDirection string   `json:"sortDirection" validate:"required,oneof=ASC DESC"`
	Page          int      `json:"page" validate:"gte=0"`
	Size          int      `json:"size" validate:"required,min=1,max=2000"`

	*entity.EntityFields
}

// Response DTOs

type PartyRefResponse struct {
	Code  string `json:"code" validate:"required"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

type RoomRefResponse struct {
	Code string `json:"code" validate:"required"`
	Name string `json:"name"`
}

type ServiceRefResponse struct {
	Code  string          `json:"code" validate:"required"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type AppointmentSummaryResponse struct {
	Code       string               `json:"code" validate:"required"`
	StartTime  time.Time            `json:"startTime" validate:"required"`
	EndTime    time.Time            `json:"endTime" validate:"required,gtfield=StartTime"`
	Status     string               `json:"status" validate:"required,oneof=SCHEDULED CONFIRMED CHECKED_IN IN_PROGRESS COMPLETED CANCELLED NO_SHOW"`
	DoctorRef  PartyRefResponse     `json:"doctorRef"`
	PatientRef PartyRefResponse     `json:"patientRef"`
	RoomRef    *RoomRefResponse     `json:"roomRef,omitempty" validate:"omitempty"`
	Services   []ServiceRefResponse `json:"services" validate:"dive"`
}

// AppointmentPageResponse is the paged envelope returned by the query endpoint
type AppointmentPageResponse struct {
	Content       []AppointmentSummaryResponse `json:"content" validate:"dive"`
	TotalElements int64                        `json:"totalElements" validate:"gte=0"`
	Page          int                          `json:"page"`
	Size          int                          `json:"size"`
}
