package calendar

import "errors"

var (
	ErrInvalidRange       = errors.New("invalid date range: end must be after start")
	ErrInvalidViewMode    = errors.New("invalid view mode, use day, week or month")
	ErrInvalidNavigation  = errors.New("invalid navigation action, use prev, next or today")
	ErrInvalidCriteria    = errors.New("invalid filter criteria")
	ErrStaleResult        = errors.New("fetch result superseded by a newer request")
	ErrServiceUnavailable = errors.New("appointment service is not ready")
	ErrFetchFailed        = errors.New("failed to fetch appointments")
	ErrEventNotFound      = errors.New("calendar event not found")
)

// User-facing messages for the two recoverable fetch failures.
const (
	NoticeServiceUnavailable = "The appointment service is not ready yet. No appointments are shown."
	MessageFetchFailed       = "Failed to load appointments. Please try again."
)
