package dto

import (
	"time"

	"clinic-console/internal/domain/entity"
)

// Request DTOs

type AuditLogListRequest struct {
	UserID string `json:"user_id" validate:"omitempty,uuid"`
	Action string `json:"action" validate:"omitempty,oneof=appointment.view calendar.event_open"`
	Limit  int    `json:"limit" validate:"omitempty,min=1,max=500"`
}

// Response DTOs

type AuditLogResponse struct {
	ID        int64       `json:"id"`
	UserID    string      `json:"user_id,omitempty"`
	Action    string      `json:"action"`
	Metadata  entity.JSON `json:"metadata"`
	CreatedAt time.Time   `json:"created_at"`
}

// AuditLogListResponse carries the rows and the limit the query ran with
type AuditLogListResponse struct {
	Logs  []AuditLogResponse
	Limit int
}
