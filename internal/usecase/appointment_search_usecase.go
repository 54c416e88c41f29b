package usecase

import (
	"context"
	"errors"
	"time"

	"clinic-console/internal/converter"
	"clinic-console/internal/delivery/dto"
	"clinic-console/internal/domain/entity"
	"clinic-console/internal/domain/repository"
	"clinic-console/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrInvalidSearchDate  = errors.New("invalid search date format, use YYYY-MM-DD")
	ErrInvalidSearchRange = errors.New("dateTo must not be before dateFrom")
	ErrAppointmentMissing = errors.New("appointment not found")
)

// Caller identifies who is asking, as established by the auth middleware.
// Token is forwarded to the backend on calendar fetches.
type Caller struct {
	UserID     uuid.UUID
	CanViewAll bool
	Token      string
}

type AppointmentSearchUsecase interface {
	Search(ctx context.Context, caller Caller, req *dto.AppointmentSearchRequest) (*dto.AppointmentPageResponse, error)
	GetByCode(ctx context.Context, caller Caller, code string) (*dto.AppointmentSummaryResponse, error)
}

type appointmentSearchUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	loc             *time.Location
	appointmentRepo repository.AppointmentRepository
	auditService    service.AuditService
}

func NewAppointmentSearchUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	loc *time.Location,
	appointmentRepo repository.AppointmentRepository,
	auditService service.AuditService,
) AppointmentSearchUsecase {
	if loc == nil {
		loc = time.UTC
	}
	return &appointmentSearchUsecase{
		db:              db,
		log:             log,
		loc:             loc,
		appointmentRepo: appointmentRepo,
		auditService:    auditService,
	}
}

// Search enforces own-record scope on the server as well: entity fields from
// a restricted caller are ignored and results are limited to their records.
func (u *appointmentSearchUsecase) Search(ctx context.Context, caller Caller, req *dto.AppointmentSearchRequest) (*dto.AppointmentPageResponse, error) {
	query, err := converter.SearchRequestToQuery(req, u.loc)
	if err != nil {
		return nil, ErrInvalidSearchDate
	}
	if query.DateTo.Before(query.DateFrom) {
		return nil, ErrInvalidSearchRange
	}

	if !caller.CanViewAll {
		if !query.Entity.IsEmpty() {
			u.log.Warnf("Dropping entity filters from restricted caller %s", caller.UserID)
		}
		query.Entity = entity.EntityFields{}
		owner := caller.UserID
		query.OwnerID = &owner
	}

	appointments, total, err := u.appointmentRepo.Search(u.db.WithContext(ctx), query)
	if err != nil {
		u.log.Warnf("Failed to search appointments: %+v", err)
		return nil, err
	}

	return converter.AppointmentsToPageResponse(appointments, total, query.Page, query.Size), nil
}

func (u *appointmentSearchUsecase) GetByCode(ctx context.Context, caller Caller, code string) (*dto.AppointmentSummaryResponse, error) {
	appointment, err := u.appointmentRepo.FindByCode(u.db.WithContext(ctx), code)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", code, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentMissing
	}
	// restricted callers must not learn that other codes exist
	if !caller.CanViewAll && appointment.DoctorID != caller.UserID && appointment.PatientID != caller.UserID {
		return nil, ErrAppointmentMissing
	}

	// a failed audit write does not block the read
	_ = u.auditService.LogAppointmentView(ctx, caller.UserID, entity.AuditActionAppointmentView, appointment.Code, entity.AuditSourceReference)

	return converter.AppointmentToSummaryResponse(appointment), nil
}
