package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"clinic-console/internal/calendar"
	"clinic-console/internal/delivery/dto"
	"clinic-console/internal/delivery/http/middleware"
	"clinic-console/internal/usecase"
	"clinic-console/pkg/response"
	"clinic-console/pkg/validator"

	"github.com/gorilla/mux"
)

type CalendarHandler struct {
	calendarUsecase usecase.CalendarUsecase
	validator       *validator.CustomValidator
}

func NewCalendarHandler(calendarUsecase usecase.CalendarUsecase, validator *validator.CustomValidator) *CalendarHandler {
	return &CalendarHandler{
		calendarUsecase: calendarUsecase,
		validator:       validator,
	}
}

// SetRange is the calendar widget's datesSet callback
func (h *CalendarHandler) SetRange(w http.ResponseWriter, r *http.Request) {
	var req dto.CalendarRangeRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.respond(w, r, func(ctx context.Context, caller usecase.Caller) (*dto.CalendarViewResponse, error) {
		return h.calendarUsecase.SetRange(ctx, caller, &req)
	})
}

func (h *CalendarHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	var req dto.CalendarNavigateRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.respond(w, r, func(ctx context.Context, caller usecase.Caller) (*dto.CalendarViewResponse, error) {
		return h.calendarUsecase.Navigate(ctx, caller, &req)
	})
}

func (h *CalendarHandler) SwitchView(w http.ResponseWriter, r *http.Request) {
	var req dto.CalendarViewModeRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.respond(w, r, func(ctx context.Context, caller usecase.Caller) (*dto.CalendarViewResponse, error) {
		return h.calendarUsecase.SwitchView(ctx, caller, &req)
	})
}

// Search receives search box input; submit=true is the Enter key
func (h *CalendarHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req dto.CalendarSearchRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.respond(w, r, func(ctx context.Context, caller usecase.Caller) (*dto.CalendarViewResponse, error) {
		return h.calendarUsecase.Search(ctx, caller, &req)
	})
}

func (h *CalendarHandler) ApplyFilter(w http.ResponseWriter, r *http.Request) {
	var req dto.CalendarFilterRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.respond(w, r, func(ctx context.Context, caller usecase.Caller) (*dto.CalendarViewResponse, error) {
		return h.calendarUsecase.ApplyFilter(ctx, caller, &req)
	})
}

func (h *CalendarHandler) ResetFilter(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.calendarUsecase.ResetFilter)
}

func (h *CalendarHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.calendarUsecase.Refresh)
}

// GetEvents returns the current view. ?wait=true blocks until issued fetches
// have settled. The ETag covers the rendered events and the filter panel.
func (h *CalendarHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(r)
	if !ok {
		response.Unauthorized(w, "User not authenticated")
		return
	}

	view, err := h.calendarUsecase.GetView(r.Context(), caller, r.URL.Query().Get("wait") == "true")
	if err != nil {
		h.handleError(w, err)
		return
	}

	if !view.Loading {
		etag := fmt.Sprintf(`"%d.%d"`, view.Revision, view.Filters.Version)
		if r.Header.Get("If-None-Match") == etag {
			response.NotModified(w, etag)
			return
		}
		w.Header().Set("ETag", etag)
	}

	response.Success(w, http.StatusOK, "Calendar retrieved successfully", view)
}

// GetEvent is the event click: it returns the appointment behind a rendered event
func (h *CalendarHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(r)
	if !ok {
		response.Unauthorized(w, "User not authenticated")
		return
	}

	event, err := h.calendarUsecase.GetEvent(r.Context(), caller, mux.Vars(r)["id"])
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Appointment retrieved successfully", event)
}

func (h *CalendarHandler) decode(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return false
	}
	if err := h.validator.Validate(req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return false
	}
	return true
}

func (h *CalendarHandler) respond(w http.ResponseWriter, r *http.Request, call func(context.Context, usecase.Caller) (*dto.CalendarViewResponse, error)) {
	caller, ok := callerFromRequest(r)
	if !ok {
		response.Unauthorized(w, "User not authenticated")
		return
	}

	view, err := call(r.Context(), caller)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Calendar updated", view)
}

func (h *CalendarHandler) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, calendar.ErrInvalidViewMode):
		response.Error(w, http.StatusBadRequest, "Invalid view mode, use day, week or month", nil)
	case errors.Is(err, calendar.ErrInvalidNavigation):
		response.Error(w, http.StatusBadRequest, "Invalid navigation action, use prev, next or today", nil)
	case errors.Is(err, calendar.ErrInvalidCriteria):
		response.Error(w, http.StatusBadRequest, "Invalid filter criteria", nil)
	case errors.Is(err, usecase.ErrInvalidFilterDate):
		response.Error(w, http.StatusBadRequest, "Invalid filter date format, use YYYY-MM-DD", nil)
	case errors.Is(err, calendar.ErrEventNotFound):
		response.NotFound(w, "Calendar event not found")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		response.GatewayTimeout(w, "Timed out waiting for appointments")
	default:
		response.InternalServerError(w, "Failed to update calendar")
	}
}

func callerFromRequest(r *http.Request) (usecase.Caller, bool) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		return usecase.Caller{}, false
	}
	token, _ := middleware.GetBearerFromContext(r.Context())
	return usecase.Caller{
		UserID:     userID,
		CanViewAll: middleware.GetCanViewAllFromContext(r.Context()),
		Token:      token,
	}, true
}
