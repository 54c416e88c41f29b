package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuditLog records who looked at which appointment and through which surface
type AuditLog struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Action    string     `gorm:"type:varchar(100);not null;index" json:"action"`
	Metadata  JSON       `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// JSON type for GORM JSONB support
type JSON map[string]interface{}

// Value returns json value, implement driver.Valuer interface
func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan scan value into Jsonb, implements sql.Scanner interface
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}

	result := map[string]interface{}{}
	err := json.Unmarshal(bytes, &result)
	*j = JSON(result)
	return err
}

// Audit actions
const (
	AuditActionAppointmentView = "appointment.view"
	AuditActionCalendarOpen    = "calendar.event_open"
)

// Where an appointment was opened from
const (
	AuditSourceReference = "reference"
	AuditSourceCalendar  = "calendar"
)

// DefaultAuditLogLimit caps a listing that does not ask for a limit
const DefaultAuditLogLimit = 100

// AuditLogQuery filters the audit trail. Zero values match everything.
type AuditLogQuery struct {
	UserID *uuid.UUID
	Action string
	Limit  int
}

// EffectiveLimit is the row cap the query runs with
func (q *AuditLogQuery) EffectiveLimit() int {
	if q == nil || q.Limit <= 0 {
		return DefaultAuditLogLimit
	}
	return q.Limit
}
