package service

import (
	"context"

	"clinic-console/internal/domain/entity"
	"clinic-console/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuditService writes the appointment access trail
type AuditService interface {
	LogAppointmentView(ctx context.Context, userID uuid.UUID, action string, code string, source string) error
}

type auditService struct {
	db        *gorm.DB
	log       *logrus.Logger
	auditRepo repository.AuditLogRepository
}

func NewAuditService(db *gorm.DB, log *logrus.Logger, auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{
		db:        db,
		log:       log,
		auditRepo: auditRepo,
	}
}

// LogAppointmentView records that userID opened the appointment with the given code
func (s *auditService) LogAppointmentView(ctx context.Context, userID uuid.UUID, action string, code string, source string) error {
	metadata := entity.JSON{
		"entity":    "appointment",
		"entity_id": code,
		"source":    source,
	}

	auditLog := &entity.AuditLog{
		UserID:   &userID,
		Action:   action,
		Metadata: metadata,
	}

	if err := s.auditRepo.Create(s.db.WithContext(ctx), auditLog); err != nil {
		s.log.Warnf("Failed to create audit log: %+v", err)
		return err
	}

	return nil
}
