package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Appointment is the persisted appointment row served by the query endpoint
type Appointment struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Code      string            `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	StartTime time.Time         `gorm:"not null;index" json:"start_time"`
	EndTime   time.Time         `gorm:"not null" json:"end_time"`
	Status    AppointmentStatus `gorm:"type:varchar(20);not null;default:'SCHEDULED';index" json:"status"`
	DoctorID  uuid.UUID         `gorm:"type:uuid;not null;index" json:"doctor_id"`
	PatientID uuid.UUID         `gorm:"type:uuid;not null;index" json:"patient_id"`
	RoomID    *uuid.UUID        `gorm:"type:uuid;index" json:"room_id,omitempty"`
	CreatedAt time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Doctor   Employee        `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
	Patient  Patient         `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Room     *Room           `gorm:"foreignKey:RoomID" json:"room,omitempty"`
	Services []ClinicService `gorm:"many2many:appointment_services" json:"services,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// Employee is a member of clinic staff. ID matches the user id in access tokens.
type Employee struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Code     string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	FullName string    `gorm:"type:varchar(255);not null" json:"full_name"`
	Phone    string    `gorm:"type:varchar(30)" json:"phone,omitempty"`
}

func (Employee) TableName() string {
	return "employees"
}

// Patient is a registered patient. ID matches the user id in access tokens.
type Patient struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Code     string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	FullName string    `gorm:"type:varchar(255);not null;index" json:"full_name"`
	Phone    string    `gorm:"type:varchar(30);index" json:"phone,omitempty"`
}

func (Patient) TableName() string {
	return "patients"
}

// Room is a treatment room
type Room struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Code string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name string    `gorm:"type:varchar(255);not null" json:"name"`
}

func (Room) TableName() string {
	return "rooms"
}

// ClinicService is a billable service that can be attached to appointments
type ClinicService struct {
	ID    uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Code  string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name  string          `gorm:"type:varchar(255);not null" json:"name"`
	Price decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
}

func (ClinicService) TableName() string {
	return "clinic_services"
}
