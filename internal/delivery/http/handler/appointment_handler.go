package handler

import (
	"encoding/json"
	"net/http"

	"clinic-console/internal/delivery/dto"
	"clinic-console/internal/usecase"
	"clinic-console/pkg/response"
	"clinic-console/pkg/validator"

	"github.com/gorilla/mux"
)

// AppointmentHandler serves the appointment query endpoint the calendar reads from
type AppointmentHandler struct {
	searchUsecase usecase.AppointmentSearchUsecase
	validator     *validator.CustomValidator
}

func NewAppointmentHandler(searchUsecase usecase.AppointmentSearchUsecase, validator *validator.CustomValidator) *AppointmentHandler {
	return &AppointmentHandler{
		searchUsecase: searchUsecase,
		validator:     validator,
	}
}

func (h *AppointmentHandler) Search(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(r)
	if !ok {
		response.Unauthorized(w, "User not authenticated")
		return
	}

	var req dto.AppointmentSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	page, err := h.searchUsecase.Search(r.Context(), caller, &req)
	if err != nil {
		switch err {
		case usecase.ErrInvalidSearchDate:
			response.Error(w, http.StatusBadRequest, "Invalid search date format, use YYYY-MM-DD", nil)
		case usecase.ErrInvalidSearchRange:
			response.Error(w, http.StatusBadRequest, "dateTo must not be before dateFrom", nil)
		default:
			response.InternalServerError(w, "Failed to search appointments")
		}
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", page)
}

func (h *AppointmentHandler) GetByCode(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(r)
	if !ok {
		response.Unauthorized(w, "User not authenticated")
		return
	}

	appointment, err := h.searchUsecase.GetByCode(r.Context(), caller, mux.Vars(r)["code"])
	if err != nil {
		if err == usecase.ErrAppointmentMissing {
			response.NotFound(w, "Appointment not found")
			return
		}
		response.InternalServerError(w, "Failed to get appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment retrieved successfully", appointment)
}
