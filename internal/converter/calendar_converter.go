package converter

import (
	"clinic-console/internal/delivery/dto"
	"clinic-console/internal/domain/entity"
)

// SummaryToResponse converts a domain summary back to its wire form
func SummaryToResponse(summary entity.AppointmentSummary) dto.AppointmentSummaryResponse {
	response := dto.AppointmentSummaryResponse{
		Code:      summary.Code,
		StartTime: summary.StartTime,
		EndTime:   summary.EndTime,
		Status:    string(summary.Status),
		DoctorRef: dto.PartyRefResponse{
			Code:  summary.Doctor.Code,
			Name:  summary.Doctor.Name,
			Phone: summary.Doctor.Phone,
		},
		PatientRef: dto.PartyRefResponse{
			Code:  summary.Patient.Code,
			Name:  summary.Patient.Name,
			Phone: summary.Patient.Phone,
		},
		Services: make([]dto.ServiceRefResponse, len(summary.Services)),
	}
	if summary.Room != nil {
		response.RoomRef = &dto.RoomRefResponse{Code: summary.Room.Code, Name: summary.Room.Name}
	}
	for i, service := range summary.Services {
		response.Services[i] = dto.ServiceRefResponse{
			Code:  service.Code,
			Name:  service.Name,
			Price: service.Price,
		}
	}
	return response
}

func EventToResponse(event entity.CalendarEvent) dto.CalendarEventResponse {
	return dto.CalendarEventResponse{
		ID:              event.ID,
		Title:           event.Label,
		Start:           event.Start,
		End:             event.End,
		BackgroundColor: event.Color.Background,
		TextColor:       event.Color.Text,
		Appointment:     SummaryToResponse(event.Summary),
	}
}

func EventsToResponse(events []entity.CalendarEvent) []dto.CalendarEventResponse {
	responses := make([]dto.CalendarEventResponse, len(events))
	for i, event := range events {
		responses[i] = EventToResponse(event)
	}
	return responses
}

// EntityFilterToEntity converts the shortcut panel input
func EntityFilterToEntity(filter *dto.CalendarEntityFilter) entity.EntityFields {
	if filter == nil {
		return entity.EntityFields{}
	}
	return entity.EntityFields{
		PatientCode:  filter.PatientCode,
		PatientName:  filter.PatientName,
		PatientPhone: filter.PatientPhone,
		EmployeeCode: filter.EmployeeCode,
		RoomCode:     filter.RoomCode,
		ServiceCode:  filter.ServiceCode,
	}
}

func EntityFieldsToFilter(fields *entity.EntityFields) *dto.CalendarEntityFilter {
	if fields == nil {
		return nil
	}
	return &dto.CalendarEntityFilter{
		PatientCode:  fields.PatientCode,
		PatientName:  fields.PatientName,
		PatientPhone: fields.PatientPhone,
		EmployeeCode: fields.EmployeeCode,
		RoomCode:     fields.RoomCode,
		ServiceCode:  fields.ServiceCode,
	}
}
