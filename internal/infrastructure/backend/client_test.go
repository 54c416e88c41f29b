package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clinic-console/config"
	"clinic-console/internal/delivery/dto"
	"clinic-console/internal/domain/entity"
	"clinic-console/pkg/response"
	"clinic-console/pkg/validator"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewClient(config.BackendConfig{BaseURL: srv.URL + "/", Timeout: 2 * time.Second}, validator.NewValidator(), log)
}

func searchRequest() *dto.AppointmentSearchRequest {
	return &dto.AppointmentSearchRequest{
		DateFrom:      "2025-01-06",
		DateTo:        "2025-01-12",
		Status:        []string{"SCHEDULED"},
		SortBy:        "appointmentStartTime",
		SortDirection: "ASC",
		Size:          1000,
	}
}

func authed() context.Context {
	return ContextWithToken(context.Background(), "token-1")
}

func TestSearchAppointments_DecodesAndValidatesPage(t *testing.T) {
	start := time.Date(2025, 1, 7, 9, 0, 0, 0, time.UTC)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, searchPath, r.URL.Path)
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "2025-01-06", body["dateFrom"])
		assert.Equal(t, []any{"SCHEDULED"}, body["status"])
		assert.NotContains(t, body, "patientCode")

		response.Success(w, http.StatusOK, "ok", dto.AppointmentPageResponse{
			Content: []dto.AppointmentSummaryResponse{{
				Code:       "APT-1",
				StartTime:  start,
				EndTime:    start.Add(30 * time.Minute),
				Status:     "SCHEDULED",
				DoctorRef:  dto.PartyRefResponse{Code: "D1", Name: "Dr. Ana"},
				PatientRef: dto.PartyRefResponse{Code: "P1", Name: "Budi"},
				Services:   []dto.ServiceRefResponse{},
			}},
			TotalElements: 1,
			Size:          1000,
		})
	})

	page, err := client.SearchAppointments(authed(), searchRequest())
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	assert.Equal(t, int64(1), page.TotalElements)
	assert.Equal(t, "APT-1", page.Content[0].Code)
	assert.Equal(t, entity.StatusScheduled, page.Content[0].Status)
	assert.Equal(t, "Dr. Ana", page.Content[0].Doctor.Name)
	assert.True(t, page.Content[0].StartTime.Equal(start))
}

func TestSearchAppointments_ServerErrorCarriesStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusServiceUnavailable, "maintenance", nil)
	})

	_, err := client.SearchAppointments(authed(), searchRequest())
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.HTTPStatus())
	assert.Equal(t, "maintenance", statusErr.Message)
}

func TestSearchAppointments_RejectsInvalidPayload(t *testing.T) {
	start := time.Date(2025, 1, 7, 9, 0, 0, 0, time.UTC)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, http.StatusOK, "ok", dto.AppointmentPageResponse{
			Content: []dto.AppointmentSummaryResponse{{
				Code:      "APT-1",
				StartTime: start,
				EndTime:   start.Add(-time.Hour),
				Status:    "SCHEDULED",
			}},
			TotalElements: 1,
		})
	})

	_, err := client.SearchAppointments(authed(), searchRequest())
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestSearchAppointments_RejectsUnknownStatus(t *testing.T) {
	start := time.Date(2025, 1, 7, 9, 0, 0, 0, time.UTC)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, http.StatusOK, "ok", dto.AppointmentPageResponse{
			Content: []dto.AppointmentSummaryResponse{{
				Code:      "APT-1",
				StartTime: start,
				EndTime:   start.Add(time.Hour),
				Status:    "RESCHEDULED",
			}},
			TotalElements: 1,
		})
	})

	_, err := client.SearchAppointments(authed(), searchRequest())
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestSearchAppointments_RequiresToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request must not be sent without a token")
	})

	_, err := client.SearchAppointments(context.Background(), searchRequest())
	assert.ErrorIs(t, err, ErrMissingToken)
}
