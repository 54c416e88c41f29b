package calendar

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"clinic-console/internal/delivery/dto"
	"clinic-console/internal/domain/entity"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var jakarta = time.FixedZone("WIB", 7*60*60)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newMockClock(now time.Time) *clock.Mock {
	clk := clock.NewMock()
	clk.Set(now)
	return clk
}

// settleDebounce advances past a pending search debounce and waits for the
// commit. The mock clock runs timer callbacks on their own goroutine.
func settleDebounce(t *testing.T, clk *clock.Mock, c *Composer, d time.Duration) {
	t.Helper()
	clk.Add(d)
	require.Eventually(t, func() bool {
		return !c.State().SearchPending
	}, time.Second, time.Millisecond)
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, jakarta)
}

func at(year int, month time.Month, d, hour, minute int) time.Time {
	return time.Date(year, month, d, hour, minute, 0, 0, jakarta)
}

func summary(code string, start time.Time, status entity.AppointmentStatus) entity.AppointmentSummary {
	return entity.AppointmentSummary{
		Code:      code,
		StartTime: start,
		EndTime:   start.Add(30 * time.Minute),
		Status:    status,
		Doctor:    entity.PartyRef{Code: "EMP-001", Name: "dr. Sari"},
		Patient:   entity.PartyRef{Code: "PAT-001", Name: "Budi"},
	}
}

// gatedFetcher answers by request dateFrom. A held dateFrom blocks until
// released so tests control the order in which fetches resolve.
type gatedFetcher struct {
	mu       sync.Mutex
	requests []dto.AppointmentSearchRequest
	gates    map[string]chan struct{}
	pages    map[string][]*entity.AppointmentPage
	errs     map[string]error
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{
		gates: map[string]chan struct{}{},
		pages: map[string][]*entity.AppointmentPage{},
		errs:  map[string]error{},
	}
}

func (f *gatedFetcher) hold(dateFrom string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gates[dateFrom] = make(chan struct{})
}

func (f *gatedFetcher) release(dateFrom string) {
	f.mu.Lock()
	gate := f.gates[dateFrom]
	delete(f.gates, dateFrom)
	f.mu.Unlock()
	if gate != nil {
		close(gate)
	}
}

// respond sets the pages returned for dateFrom, indexed by page number
func (f *gatedFetcher) respond(dateFrom string, pages ...*entity.AppointmentPage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[dateFrom] = pages
}

func (f *gatedFetcher) fail(dateFrom string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[dateFrom] = err
}

func (f *gatedFetcher) Requests() []dto.AppointmentSearchRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]dto.AppointmentSearchRequest(nil), f.requests...)
}

func (f *gatedFetcher) SearchAppointments(ctx context.Context, req *dto.AppointmentSearchRequest) (*entity.AppointmentPage, error) {
	f.mu.Lock()
	f.requests = append(f.requests, *req)
	gate := f.gates[req.DateFrom]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[req.DateFrom]; err != nil {
		return nil, err
	}
	pages := f.pages[req.DateFrom]
	if req.Page < len(pages) {
		return pages[req.Page], nil
	}
	return &entity.AppointmentPage{}, nil
}

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) SearchAppointments(ctx context.Context, req *dto.AppointmentSearchRequest) (*entity.AppointmentPage, error) {
	args := m.Called(ctx, req)
	page, _ := args.Get(0).(*entity.AppointmentPage)
	return page, args.Error(1)
}

// statusErr mimics a transport error that carries an HTTP status
type statusErr struct {
	code int
}

func (e *statusErr) Error() string {
	return fmt.Sprintf("backend responded %d", e.code)
}

func (e *statusErr) HTTPStatus() int {
	return e.code
}

type recordingSurface struct {
	mu      sync.Mutex
	renders [][]entity.CalendarEvent
}

func (s *recordingSurface) Render(events []entity.CalendarEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renders = append(s.renders, events)
}

func (s *recordingSurface) Renders() [][]entity.CalendarEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]entity.CalendarEvent(nil), s.renders...)
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (o *recordingObserver) ObserveFetch(outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome)
}

func (o *recordingObserver) Outcomes() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.outcomes...)
}
