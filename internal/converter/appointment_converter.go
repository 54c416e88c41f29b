package converter

import (
	"time"

	"clinic-console/internal/delivery/dto"
	"clinic-console/internal/domain/entity"
)

// AppointmentToSummaryResponse converts a persisted Appointment to its wire summary
func AppointmentToSummaryResponse(appointment *entity.Appointment) *dto.AppointmentSummaryResponse {
	if appointment == nil {
		return nil
	}

	response := &dto.AppointmentSummaryResponse{
		Code:      appointment.Code,
		StartTime: appointment.StartTime,
		EndTime:   appointment.EndTime,
		Status:    string(appointment.Status),
		DoctorRef: dto.PartyRefResponse{
			Code:  appointment.Doctor.Code,
			Name:  appointment.Doctor.FullName,
			Phone: appointment.Doctor.Phone,
		},
		PatientRef: dto.PartyRefResponse{
			Code:  appointment.Patient.Code,
			Name:  appointment.Patient.FullName,
			Phone: appointment.Patient.Phone,
		},
		Services: make([]dto.ServiceRefResponse, len(appointment.Services)),
	}

	if appointment.Room != nil {
		response.RoomRef = &dto.RoomRefResponse{
			Code: appointment.Room.Code,
			Name: appointment.Room.Name,
		}
	}

	for i, service := range appointment.Services {
		response.Services[i] = dto.ServiceRefResponse{
			Code:  service.Code,
			Name:  service.Name,
			Price: service.Price,
		}
	}

	return response
}

// AppointmentsToPageResponse converts one page of appointments to the paged envelope
func AppointmentsToPageResponse(appointments []entity.Appointment, total int64, page, size int) *dto.AppointmentPageResponse {
	content := make([]dto.AppointmentSummaryResponse, len(appointments))
	for i := range appointments {
		content[i] = *AppointmentToSummaryResponse(&appointments[i])
	}
	return &dto.AppointmentPageResponse{
		Content:       content,
		TotalElements: total,
		Page:          page,
		Size:          size,
	}
}

// SummaryResponseToEntity converts a validated wire summary to the domain summary
func SummaryResponseToEntity(response *dto.AppointmentSummaryResponse) entity.AppointmentSummary {
	summary := entity.AppointmentSummary{
		Code:      response.Code,
		StartTime: response.StartTime,
		EndTime:   response.EndTime,
		Status:    entity.AppointmentStatus(response.Status),
		Doctor: entity.PartyRef{
			Code:  response.DoctorRef.Code,
			Name:  response.DoctorRef.Name,
			Phone: response.DoctorRef.Phone,
		},
		Patient: entity.PartyRef{
			Code:  response.PatientRef.Code,
			Name:  response.PatientRef.Name,
			Phone: response.PatientRef.Phone,
		},
		Services: make([]entity.ServiceRef, len(response.Services)),
	}

	if response.RoomRef != nil {
		summary.Room = &entity.RoomRef{
			Code: response.RoomRef.Code,
			Name: response.RoomRef.Name,
		}
	}

	for i, service := range response.Services {
		summary.Services[i] = entity.ServiceRef{
			Code:  service.Code,
			Name:  service.Name,
			Price: service.Price,
		}
	}

	return summary
}

// PageResponseToEntity converts a validated paged envelope to the domain page
func PageResponseToEntity(response *dto.AppointmentPageResponse) *entity.AppointmentPage {
	page := &entity.AppointmentPage{
		Content:       make([]entity.AppointmentSummary, len(response.Content)),
		TotalElements: response.TotalElements,
	}
	for i := range response.Content {
		page.Content[i] = SummaryResponseToEntity(&response.Content[i])
	}
	return page
}

// SearchRequestToQuery converts a validated search request to the repository query.
// Dates are interpreted in loc.
func SearchRequestToQuery(req *dto.AppointmentSearchRequest, loc *time.Location) (*entity.AppointmentQuery, error) {
	dateFrom, err := time.ParseInLocation("2006-01-02", req.DateFrom, loc)
	if err != nil {
		return nil, err
	}
	dateTo, err := time.ParseInLocation("2006-01-02", req.DateTo, loc)
	if err != nil {
		return nil, err
	}

	query := &entity.AppointmentQuery{
		DateFrom:      dateFrom,
		DateTo:        dateTo,
		SearchCode:    req.SearchCode,
		SortBy:        entity.SortField(req.SortBy),
		SortDirection: entity.SortDirection(req.SortDirection),
		Page:          req.Page,
		Size:          req.Size,
	}
	for _, s := range req.Status {
		query.Statuses = append(query.Statuses, entity.AppointmentStatus(s))
	}
	if req.EntityFields != nil {
		query.Entity = *req.EntityFields
	}
	return query, nil
}
