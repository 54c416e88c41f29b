package converter

import (
	"fmt"
	"time"

	"clinic-console/internal/domain/entity"
)

// statusColors is total over entity.AllAppointmentStatuses.
var statusColors = map[entity.AppointmentStatus]entity.ColorPair{
	entity.StatusScheduled:  {Background: "#E3F2FD", Text: "#0D47A1"},
	entity.StatusConfirmed:  {Background: "#E8F5E9", Text: "#1B5E20"},
	entity.StatusCheckedIn:  {Background: "#FFF8E1", Text: "#E65100"},
	entity.StatusInProgress: {Background: "#F3E5F5", Text: "#4A148C"},
	entity.StatusCompleted:  {Background: "#ECEFF1", Text: "#263238"},
	entity.StatusCancelled:  {Background: "#FFEBEE", Text: "#B71C1C"},
	entity.StatusNoShow:     {Background: "#FBE9E7", Text: "#3E2723"},
}

// UnknownStatusColor is only used for values outside the status enum.
var UnknownStatusColor = entity.ColorPair{Background: "#FFFFFF", Text: "#000000"}

// StatusColor returns the color pair of a status and whether the status is defined
func StatusColor(status entity.AppointmentStatus) (entity.ColorPair, bool) {
	color, ok := statusColors[status]
	if !ok {
		return UnknownStatusColor, false
	}
	return color, true
}

// SummaryToEvent projects one appointment summary into a calendar event
func SummaryToEvent(summary entity.AppointmentSummary, loc *time.Location) entity.CalendarEvent {
	color, _ := StatusColor(summary.Status)
	return entity.CalendarEvent{
		ID:      summary.Code,
		Start:   summary.StartTime,
		End:     summary.EndTime,
		Color:   color,
		Label:   EventLabel(summary, loc),
		Summary: cloneSummary(summary),
	}
}

// SummariesToEvents projects summaries in the order the backend returned them
func SummariesToEvents(summaries []entity.AppointmentSummary, loc *time.Location) []entity.CalendarEvent {
	events := make([]entity.CalendarEvent, len(summaries))
	for i, summary := range summaries {
		events[i] = SummaryToEvent(summary, loc)
	}
	return events
}

// EventLabel composes "<responsible party> HH:MM-HH:MM"
func EventLabel(summary entity.AppointmentSummary, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}

	name := summary.Doctor.Name
	if name == "" {
		name = summary.Patient.Name
	}
	if name == "" {
		name = summary.Code
	}

	return fmt.Sprintf("%s %s-%s",
		name,
		summary.StartTime.In(loc).Format("15:04"),
		summary.EndTime.In(loc).Format("15:04"),
	)
}

func cloneSummary(summary entity.AppointmentSummary) entity.AppointmentSummary {
	out := summary
	if summary.Room != nil {
		room := *summary.Room
		out.Room = &room
	}
	if summary.Services != nil {
		out.Services = append([]entity.ServiceRef(nil), summary.Services...)
	}
	return out
}
