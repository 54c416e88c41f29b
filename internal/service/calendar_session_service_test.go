package service

import (
	"context"
	"io"
	"math"
	"sync"
	"testing"
	"time"

	"clinic-console/config"
	"clinic-console/internal/delivery/dto"
	"clinic-console/internal/domain/entity"
	"clinic-console/internal/infrastructure/backend"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tokenRecordingFetcher struct {
	mu       sync.Mutex
	tokens   []string
	requests []dto.AppointmentSearchRequest
	content  []entity.AppointmentSummary
}

func (f *tokenRecordingFetcher) SearchAppointments(ctx context.Context, req *dto.AppointmentSearchRequest) (*entity.AppointmentPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, backend.TokenFromContext(ctx))
	f.requests = append(f.requests, *req)
	return &entity.AppointmentPage{Content: f.content, TotalElements: int64(len(f.content))}, nil
}

func (f *tokenRecordingFetcher) snapshot() ([]string, []dto.AppointmentSearchRequest) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.tokens...), append([]dto.AppointmentSearchRequest(nil), f.requests...)
}

type sessionCounter struct {
	mu       sync.Mutex
	sessions int
	fetches  int
}

func (o *sessionCounter) ObserveFetch(string, time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fetches++
}

func (o *sessionCounter) SetSessions(n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sessions = n
}

func (o *sessionCounter) Sessions() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sessions
}

type recordingAuditor struct {
	mu      sync.Mutex
	entries []string
}

func (a *recordingAuditor) LogAppointmentView(_ context.Context, _ uuid.UUID, action string, code string, source string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, action+" "+code+" "+source)
	return nil
}

func (a *recordingAuditor) Entries() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.entries...)
}

type sessionHarness struct {
	svc      *CalendarSessionService
	clk      *clock.Mock
	fetcher  *tokenRecordingFetcher
	observer *sessionCounter
	auditor  *recordingAuditor
}

func newSessionHarness(t *testing.T) *sessionHarness {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	loc := time.FixedZone("WIB", 7*60*60)
	clk := clock.NewMock()
	clk.Set(time.Date(2025, time.January, 8, 10, 0, 0, 0, loc))

	h := &sessionHarness{
		clk:      clk,
		fetcher:  &tokenRecordingFetcher{},
		observer: &sessionCounter{},
		auditor:  &recordingAuditor{},
	}
	h.svc = NewCalendarSessionService(h.fetcher, h.clk, loc, config.CalendarConfig{
		PageSize:       100,
		MaxPages:       2,
		SearchDebounce: time.Second,
		SessionIdleTTL: 10 * time.Minute,
	}, h.observer, h.auditor, log)
	t.Cleanup(h.svc.Stop)
	return h
}

func TestCalendarSessionService_AcquireReusesSession(t *testing.T) {
	h := newSessionHarness(t)
	userID := uuid.New()

	first := h.svc.Acquire(userID, false, "token-1")
	second := h.svc.Acquire(userID, false, "token-2")

	assert.Same(t, first, second)
	assert.Equal(t, 1, h.svc.Len())
	assert.Equal(t, 1, h.observer.Sessions())

	other := h.svc.Acquire(uuid.New(), true, "token-3")
	assert.NotSame(t, first, other)
	assert.True(t, other.CanViewAll())
	assert.Equal(t, 2, h.svc.Len())

	found, ok := h.svc.Lookup(userID)
	require.True(t, ok)
	assert.Same(t, first, found)

	_, ok = h.svc.Lookup(uuid.New())
	assert.False(t, ok)
}

func TestCalendarSessionService_ForwardsLatestToken(t *testing.T) {
	h := newSessionHarness(t)
	userID := uuid.New()

	session := h.svc.Acquire(userID, true, "token-1")
	require.NoError(t, session.Controller.Navigate("today"))
	session.Controller.Wait()

	h.svc.Acquire(userID, true, "token-2")
	session.Controller.Refresh()
	session.Controller.Wait()

	tokens, reqs := h.fetcher.snapshot()
	assert.Equal(t, []string{"token-1", "token-2"}, tokens)
	require.Len(t, reqs, 2)
	assert.Equal(t, "2025-01-06", reqs[0].DateFrom)
	assert.Equal(t, "2025-01-12", reqs[0].DateTo)
	assert.Equal(t, 100, reqs[0].Size)
	assert.Equal(t, uint64(2), session.Revision())
}

func TestCalendarSessionService_VisibilityChangeRefetches(t *testing.T) {
	h := newSessionHarness(t)
	userID := uuid.New()

	session := h.svc.Acquire(userID, true, "token")
	require.NoError(t, session.Controller.Navigate("today"))
	session.Controller.Wait()
	session.Controller.Filters().SetEntityFields(entity.EntityFields{RoomCode: "R-1"})
	session.Controller.Wait()

	h.svc.Acquire(userID, true, "token")
	session.Controller.Wait()
	_, reqs := h.fetcher.snapshot()
	require.Len(t, reqs, 2, "unchanged visibility does not refetch")

	h.svc.Acquire(userID, false, "token")
	session.Controller.Wait()

	_, reqs = h.fetcher.snapshot()
	require.Len(t, reqs, 3)
	require.NotNil(t, reqs[1].EntityFields)
	assert.Equal(t, "R-1", reqs[1].RoomCode)
	assert.Nil(t, reqs[2].EntityFields)
	assert.False(t, session.CanViewAll())
}

func TestCalendarSessionService_EventClickIsAudited(t *testing.T) {
	h := newSessionHarness(t)
	start := time.Date(2025, time.January, 7, 9, 0, 0, 0, time.UTC)
	h.fetcher.content = []entity.AppointmentSummary{{
		Code:      "APT-1",
		StartTime: start,
		EndTime:   start.Add(30 * time.Minute),
		Status:    entity.StatusScheduled,
	}}

	session := h.svc.Acquire(uuid.New(), true, "token")
	require.NoError(t, session.Controller.Navigate("today"))
	session.Controller.Wait()

	_, err := session.Controller.ClickEvent("APT-1")
	require.NoError(t, err)

	assert.Equal(t, []string{"calendar.event_open APT-1 calendar"}, h.auditor.Entries())
}

func TestCalendarSessionService_EvictIdle(t *testing.T) {
	h := newSessionHarness(t)
	idle := uuid.New()
	active := uuid.New()

	h.svc.Acquire(idle, false, "a")
	h.svc.Acquire(active, false, "b")

	h.clk.Add(6 * time.Minute)
	h.svc.Acquire(active, false, "b")
	// the cleanup ticker fires on every minute passed
	h.clk.Add(5 * time.Minute)
	h.svc.evictIdle()

	require.Eventually(t, func() bool {
		return h.svc.Len() == 1 && h.observer.Sessions() == 1
	}, time.Second, time.Millisecond)

	_, ok := h.svc.Lookup(idle)
	assert.False(t, ok)
	_, ok = h.svc.Lookup(active)
	assert.True(t, ok)
}

func TestCalendarSessionService_AcquireReplacesClosedSession(t *testing.T) {
	h := newSessionHarness(t)
	userID := uuid.New()

	first := h.svc.Acquire(userID, false, "a")
	require.True(t, h.svc.closeSession(userID, first, math.MaxInt64))
	assert.False(t, first.touch("a", h.clk.Now()), "a closed session cannot be handed out")

	second := h.svc.Acquire(userID, false, "b")
	assert.NotSame(t, first, second)

	found, ok := h.svc.Lookup(userID)
	require.True(t, ok)
	assert.Same(t, second, found)
	assert.Equal(t, 1, h.svc.Len())
}

func TestCalendarSessionService_EvictionRechecksLastUse(t *testing.T) {
	h := newSessionHarness(t)
	userID := uuid.New()

	stale := h.clk.Now().UnixNano()
	h.clk.Add(30 * time.Second)
	session := h.svc.Acquire(userID, false, "a")

	// a cutoff computed before the session was touched
	assert.False(t, h.svc.closeSession(userID, session, stale))

	found, ok := h.svc.Lookup(userID)
	require.True(t, ok)
	assert.Same(t, session, found)
	assert.True(t, session.touch("a", h.clk.Now()))
}

func TestCalendarSessionService_Stop(t *testing.T) {
	h := newSessionHarness(t)
	h.svc.Acquire(uuid.New(), false, "a")
	h.svc.Acquire(uuid.New(), true, "b")

	h.svc.Stop()
	h.svc.Stop()

	assert.Equal(t, 0, h.svc.Len())
	assert.Equal(t, 0, h.observer.Sessions())
}
