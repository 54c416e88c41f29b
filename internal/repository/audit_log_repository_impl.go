package repository

import (
	"errors"

	"clinic-console/internal/domain/entity"
	domainRepo "clinic-console/internal/domain/repository"

	"gorm.io/gorm"
)

type auditLogRepository struct{}

func NewAuditLogRepository() domainRepo.AuditLogRepository {
	return &auditLogRepository{}
}

func (r *auditLogRepository) Create(db *gorm.DB, log *entity.AuditLog) error {
	return db.Create(log).Error
}

// FindAll returns the newest entries first
func (r *auditLogRepository) FindAll(db *gorm.DB, query *entity.AuditLogQuery) ([]entity.AuditLog, error) {
	tx := db.Model(&entity.AuditLog{})
	if query != nil {
		if query.UserID != nil {
			tx = tx.Where("user_id = ?", *query.UserID)
		}
		if query.Action != "" {
			tx = tx.Where("action = ?", query.Action)
		}
	}

	var logs []entity.AuditLog
	if err := tx.Order("created_at DESC").Order("id DESC").Limit(query.EffectiveLimit()).Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *auditLogRepository) FindByID(db *gorm.DB, id int64) (*entity.AuditLog, error) {
	var log entity.AuditLog
	err := db.First(&log, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &log, nil
}
