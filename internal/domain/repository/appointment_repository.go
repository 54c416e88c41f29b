package repository

import (
	"clinic-console/internal/domain/entity"

	"gorm.io/gorm"
)

type AppointmentRepository interface {
	// Search returns one page of appointments matching query and the total match count
	Search(db *gorm.DB, query *entity.AppointmentQuery) ([]entity.Appointment, int64, error)
	FindByCode(db *gorm.DB, code string) (*entity.Appointment, error)
}
