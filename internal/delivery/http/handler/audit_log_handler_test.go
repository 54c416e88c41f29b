package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"clinic-console/internal/delivery/dto"
	"clinic-console/internal/usecase"
	"clinic-console/pkg/validator"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAuditLogUsecase struct {
	mock.Mock
}

func (m *mockAuditLogUsecase) GetAllAuditLogs(ctx context.Context, req *dto.AuditLogListRequest) (*dto.AuditLogListResponse, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*dto.AuditLogListResponse)
	return res, args.Error(1)
}

func (m *mockAuditLogUsecase) GetAuditLog(ctx context.Context, id int64) (*dto.AuditLogResponse, error) {
	args := m.Called(ctx, id)
	res, _ := args.Get(0).(*dto.AuditLogResponse)
	return res, args.Error(1)
}

func TestAuditLogHandler_GetAllAuditLogs(t *testing.T) {
	t.Run("listing carries limit and count", func(t *testing.T) {
		uc := &mockAuditLogUsecase{}
		uc.On("GetAllAuditLogs", mock.Anything, &dto.AuditLogListRequest{Action: "calendar.event_open", Limit: 20}).
			Return(&dto.AuditLogListResponse{
				Logs:  []dto.AuditLogResponse{{ID: 2, Action: "calendar.event_open"}, {ID: 1, Action: "calendar.event_open"}},
				Limit: 20,
			}, nil).Once()
		h := NewAuditLogHandler(uc, validator.NewValidator())

		rec := httptest.NewRecorder()
		h.GetAllAuditLogs(rec, httptest.NewRequest(http.MethodGet, "/api/v1/audit-logs?action=calendar.event_open&limit=20", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		res := decodeResponse(t, rec)
		assert.True(t, res.Success)
		require.NotNil(t, res.Meta)
		assert.Equal(t, 20, res.Meta.Limit)
		assert.Equal(t, 2, res.Meta.Count)
		rows, ok := res.Data.([]interface{})
		require.True(t, ok)
		assert.Len(t, rows, 2)
		uc.AssertExpectations(t)
	})

	t.Run("bad limit", func(t *testing.T) {
		uc := &mockAuditLogUsecase{}
		h := NewAuditLogHandler(uc, validator.NewValidator())

		rec := httptest.NewRecorder()
		h.GetAllAuditLogs(rec, httptest.NewRequest(http.MethodGet, "/api/v1/audit-logs?limit=ten", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		uc.AssertNotCalled(t, "GetAllAuditLogs", mock.Anything, mock.Anything)
	})

	t.Run("unknown action", func(t *testing.T) {
		uc := &mockAuditLogUsecase{}
		h := NewAuditLogHandler(uc, validator.NewValidator())

		rec := httptest.NewRecorder()
		h.GetAllAuditLogs(rec, httptest.NewRequest(http.MethodGet, "/api/v1/audit-logs?action=booking.create", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAuditLogHandler_GetAuditLog(t *testing.T) {
	uc := &mockAuditLogUsecase{}
	uc.On("GetAuditLog", mock.Anything, int64(9)).Return(nil, usecase.ErrAuditLogNotFound).Once()
	h := NewAuditLogHandler(uc, validator.NewValidator())

	req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/v1/audit-logs/9", nil), map[string]string{"id": "9"})
	rec := httptest.NewRecorder()
	h.GetAuditLog(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	uc.AssertExpectations(t)
}
