package entity

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentQuery is a domain-level filter for searching appointments.
// Used by repository layer to avoid coupling with delivery DTOs.
type AppointmentQuery struct {
	DateFrom      time.Time
	DateTo        time.Time // inclusive calendar day
	Statuses      []AppointmentStatus
	SearchCode    string // Filter by appointment code (ILIKE)
	Entity        EntityFields
	SortBy        SortField
	SortDirection SortDirection
	Page          int
	Size          int

	// OwnerID restricts results to appointments where the owner is the doctor
	// or the patient. Nil means every record is visible.
	OwnerID *uuid.UUID
}
