package repository

import (
	"errors"

	"clinic-console/internal/domain/entity"
	domainRepo "clinic-console/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sortColumns maps wire sort fields to columns; unknown fields never reach SQL
var sortColumns = map[entity.SortField]string{
	entity.SortByStartTime: "appointments.start_time",
	entity.SortByEndTime:   "appointments.end_time",
	entity.SortByCode:      "appointments.code",
	entity.SortByStatus:    "appointments.status",
	entity.SortByCreatedAt: "appointments.created_at",
}

type appointmentRepository struct{}

func NewAppointmentRepository() domainRepo.AppointmentRepository {
	return &appointmentRepository{}
}

func (r *appointmentRepository) Search(db *gorm.DB, query *entity.AppointmentQuery) ([]entity.Appointment, int64, error) {
	filtered := r.applyFilters(db.Model(&entity.Appointment{}), query)

	var total int64
	if err := filtered.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entity.Appointment{}, 0, nil
	}

	column, ok := sortColumns[query.SortBy]
	if !ok {
		column = sortColumns[entity.SortByStartTime]
	}
	desc := query.SortDirection == entity.SortDesc

	var appointments []entity.Appointment
	err := r.applyFilters(db.Model(&entity.Appointment{}), query).
		Preload("Doctor").
		Preload("Patient").
		Preload("Room").
		Preload("Services").
		Order(clause.OrderByColumn{Column: clause.Column{Name: column, Raw: true}, Desc: desc}).
		Order("appointments.code ASC").
		Offset(query.Page * query.Size).
		Limit(query.Size).
		Find(&appointments).Error
	if err != nil {
		return nil, 0, err
	}
	return appointments, total, nil
}

func (r *appointmentRepository) FindByCode(db *gorm.DB, code string) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.Preload("Doctor").Preload("Patient").Preload("Room").Preload("Services").
		Where("code = ?", code).
		First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

// applyFilters narrows db to the query's window, statuses, search and scope.
// DateTo is an inclusive calendar day.
func (r *appointmentRepository) applyFilters(db *gorm.DB, query *entity.AppointmentQuery) *gorm.DB {
	db = db.Where("appointments.start_time >= ? AND appointments.start_time < ?",
		query.DateFrom, query.DateTo.AddDate(0, 0, 1))

	if len(query.Statuses) > 0 {
		db = db.Where("appointments.status IN ?", query.Statuses)
	}
	if query.SearchCode != "" {
		db = db.Where("appointments.code ILIKE ?", "%"+query.SearchCode+"%")
	}
	if query.OwnerID != nil {
		db = db.Where("(appointments.doctor_id = ? OR appointments.patient_id = ?)", *query.OwnerID, *query.OwnerID)
	}

	fields := query.Entity
	if fields.PatientCode != "" || fields.PatientName != "" || fields.PatientPhone != "" {
		db = db.Joins("JOIN patients ON patients.id = appointments.patient_id")
		if fields.PatientCode != "" {
			db = db.Where("patients.code = ?", fields.PatientCode)
		}
		if fields.PatientName != "" {
			db = db.Where("patients.full_name ILIKE ?", "%"+fields.PatientName+"%")
		}
		if fields.PatientPhone != "" {
			db = db.Where("patients.phone ILIKE ?", "%"+fields.PatientPhone+"%")
		}
	}
	if fields.EmployeeCode != "" {
		db = db.Joins("JOIN employees ON employees.id = appointments.doctor_id").
			Where("employees.code = ?", fields.EmployeeCode)
	}
	if fields.RoomCode != "" {
		db = db.Joins("JOIN rooms ON rooms.id = appointments.room_id").
			Where("rooms.code = ?", fields.RoomCode)
	}
	if fields.ServiceCode != "" {
		db = db.Where("appointments.id IN (?)",
			db.Session(&gorm.Session{NewDB: true}).
				Table("appointment_services").
				Select("appointment_services.appointment_id").
				Joins("JOIN clinic_services ON clinic_services.id = appointment_services.clinic_service_id").
				Where("clinic_services.code = ?", fields.ServiceCode))
	}
	return db
}
