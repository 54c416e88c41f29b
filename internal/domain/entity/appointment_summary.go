package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// AppointmentStatus represents the lifecycle status of an appointment
type AppointmentStatus string

const (
	StatusScheduled  AppointmentStatus = "SCHEDULED"
	StatusConfirmed  AppointmentStatus = "CONFIRMED"
	StatusCheckedIn  AppointmentStatus = "CHECKED_IN"
	StatusInProgress AppointmentStatus = "IN_PROGRESS"
	StatusCompleted  AppointmentStatus = "COMPLETED"
	StatusCancelled  AppointmentStatus = "CANCELLED"
	StatusNoShow     AppointmentStatus = "NO_SHOW"
)

// AllAppointmentStatuses lists every defined status in display order
func AllAppointmentStatuses() []AppointmentStatus {
	return []AppointmentStatus{
		StatusScheduled,
		StatusConfirmed,
		StatusCheckedIn,
		StatusInProgress,
		StatusCompleted,
		StatusCancelled,
		StatusNoShow,
	}
}

// IsValid checks if the status is one of the defined values
func (s AppointmentStatus) IsValid() bool {
	for _, known := range AllAppointmentStatuses() {
		if s == known {
			return true
		}
	}
	return false
}

// PartyRef identifies a doctor or patient attached to an appointment
type PartyRef struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

// RoomRef identifies the treatment room of an appointment
type RoomRef struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// ServiceRef is a service booked within an appointment
type ServiceRef struct {
	Code  string          `json:"code"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// AppointmentSummary is the read-only projection returned by the query endpoint.
// It is never mutated after it leaves the data source.
type AppointmentSummary struct {
	Code      string            `json:"code"`
	StartTime time.Time         `json:"startTime"`
	EndTime   time.Time         `json:"endTime"`
	Status    AppointmentStatus `json:"status"`
	Doctor    PartyRef          `json:"doctorRef"`
	Patient   PartyRef          `json:"patientRef"`
	Room      *RoomRef          `json:"roomRef,omitempty"`
	Services  []ServiceRef      `json:"services"`
}

// AppointmentPage is one page of query results
type AppointmentPage struct {
	Content       []AppointmentSummary
	TotalElements int64
}
