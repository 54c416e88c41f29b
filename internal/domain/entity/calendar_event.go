package entity

import "time"

// ColorPair is the background/text color combination of a rendered event
type ColorPair struct {
	Background string `json:"background"`
	Text       string `json:"text"`
}

// CalendarEvent is a disposable, renderable projection of an AppointmentSummary.
// Summary carries the full backing record so click handlers need no second fetch.
type CalendarEvent struct {
	ID      string             `json:"id"`
	Start   time.Time          `json:"start"`
	End     time.Time          `json:"end"`
	Color   ColorPair          `json:"color"`
	Label   string             `json:"label"`
	Summary AppointmentSummary `json:"summary"`
}
