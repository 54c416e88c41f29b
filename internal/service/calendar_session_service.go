package service

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"clinic-console/config"
	"clinic-console/internal/calendar"
	"clinic-console/internal/delivery/dto"
	"clinic-console/internal/domain/entity"
	"clinic-console/internal/infrastructure/backend"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// How often idle sessions are looked for
	sessionCleanupInterval = time.Minute

	// Used when CALENDAR_SESSION_IDLE_TTL is not set
	defaultSessionIdleTTL = 30 * time.Minute
)

// SessionObserver receives calendar telemetry. Implemented by metrics.Metrics.
type SessionObserver interface {
	calendar.FetchObserver
	SetSessions(n int)
}

// CalendarSession is one signed-in user's calendar. It implements
// calendar.Surface: every render bumps the revision the page polls against.
type CalendarSession struct {
	UserID     uuid.UUID
	Controller *calendar.Controller

	visibility *calendar.Visibility
	token      atomic.Pointer[string]
	revision   atomic.Uint64
	lastUsed   atomic.Int64 // Unix nanoseconds

	mu     sync.Mutex
	closed bool
}

// Render is called by the controller after every applied fetch
func (s *CalendarSession) Render(events []entity.CalendarEvent) {
	s.revision.Add(1)
}

// Revision increases every time the rendered events change
func (s *CalendarSession) Revision() uint64 {
	return s.revision.Load()
}

// touch records a request against the session. It returns false once the
// session has been closed.
func (s *CalendarSession) touch(token string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.token.Store(&token)
	s.lastUsed.Store(now.UnixNano())
	return true
}

// CanViewAll reports the visibility the session currently runs with
func (s *CalendarSession) CanViewAll() bool {
	return s.visibility.CanViewAll()
}

// sessionFetcher forwards the session owner's latest token to the backend
type sessionFetcher struct {
	session *CalendarSession
	next    calendar.PageFetcher
}

func (f *sessionFetcher) SearchAppointments(ctx context.Context, req *dto.AppointmentSearchRequest) (*entity.AppointmentPage, error) {
	if token := f.session.token.Load(); token != nil {
		ctx = backend.ContextWithToken(ctx, *token)
	}
	return f.next.SearchAppointments(ctx, req)
}

// CalendarSessionService keeps one calendar controller per user.
//
// Sessions are created on first use and evicted after CALENDAR_SESSION_IDLE_TTL
// without requests. Eviction and Stop close the controller, which drops any
// pending search commit and waits for in-flight fetches.
type CalendarSessionService struct {
	fetcher  calendar.PageFetcher
	clock    clock.Clock
	loc      *time.Location
	cfg      config.CalendarConfig
	observer SessionObserver
	auditor  AuditService
	log      *logrus.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	createMu sync.Mutex
	sessions sync.Map // map[uuid.UUID]*CalendarSession
	count    atomic.Int64

	// Graceful shutdown
	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

// NewCalendarSessionService starts the background idle cleanup.
// Call Stop() during graceful shutdown. observer and auditor may be nil.
func NewCalendarSessionService(
	fetcher calendar.PageFetcher,
	clk clock.Clock,
	loc *time.Location,
	cfg config.CalendarConfig,
	observer SessionObserver,
	auditor AuditService,
	log *logrus.Logger,
) *CalendarSessionService {
	if cfg.SessionIdleTTL <= 0 {
		cfg.SessionIdleTTL = defaultSessionIdleTTL
	}
	ctx, cancel := context.WithCancel(context.Background())
	svc := &CalendarSessionService{
		fetcher:  fetcher,
		clock:    clk,
		loc:      loc,
		cfg:      cfg,
		observer: observer,
		auditor:  auditor,
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
		stopChan: make(chan struct{}),
	}

	svc.wg.Add(1)
	go svc.cleanupLoop()

	return svc
}

// Stop closes every session. Safe to call multiple times.
func (s *CalendarSessionService) Stop() {
	if s.stopped.CompareAndSwap(false, true) {
		close(s.stopChan)
		s.wg.Wait()

		s.cancel()
		s.sessions.Range(func(key, value any) bool {
			s.closeSession(key.(uuid.UUID), value.(*CalendarSession), math.MaxInt64)
			return true
		})
		s.log.Info("CalendarSessionService stopped")
	}
}

// Acquire returns the caller's session, creating it on first use. The
// visibility and token of the current request replace the stored ones; a
// visibility change re-gates the criteria and refetches.
func (s *CalendarSessionService) Acquire(userID uuid.UUID, canViewAll bool, token string) *CalendarSession {
	for {
		session, created := s.loadOrCreate(userID, canViewAll)
		if !session.touch(token, s.clock.Now()) {
			// evicted between lookup and use
			continue
		}

		if !created && session.visibility.Set(canViewAll) {
			s.log.Infof("Visibility of calendar session %s changed, can view all: %t", userID, canViewAll)
			session.Controller.RefreshVisibility()
		}
		return session
	}
}

// Lookup returns an existing session without creating one
func (s *CalendarSessionService) Lookup(userID uuid.UUID) (*CalendarSession, bool) {
	v, ok := s.sessions.Load(userID)
	if !ok {
		return nil, false
	}
	return v.(*CalendarSession), true
}

// Len returns the number of live sessions
func (s *CalendarSessionService) Len() int {
	return int(s.count.Load())
}

func (s *CalendarSessionService) loadOrCreate(userID uuid.UUID, canViewAll bool) (*CalendarSession, bool) {
	if v, ok := s.sessions.Load(userID); ok {
		return v.(*CalendarSession), false
	}

	s.createMu.Lock()
	defer s.createMu.Unlock()

	if v, ok := s.sessions.Load(userID); ok {
		return v.(*CalendarSession), false
	}

	session := s.newSession(userID, canViewAll)
	s.sessions.Store(userID, session)
	s.reportSessions(s.count.Add(1))
	s.log.Debugf("Opened calendar session %s", userID)
	return session, true
}

func (s *CalendarSessionService) newSession(userID uuid.UUID, canViewAll bool) *CalendarSession {
	session := &CalendarSession{
		UserID:     userID,
		visibility: calendar.NewVisibility(canViewAll),
	}
	session.lastUsed.Store(s.clock.Now().UnixNano())

	window := calendar.NewWindow(s.clock, s.loc, s.log)
	composer := calendar.NewComposer(s.clock, s.loc, s.cfg.SearchDebounce, session.visibility, s.log)
	source := calendar.NewDataSource(&sessionFetcher{session: session, next: s.fetcher}, session.visibility, s.log, calendar.DataSourceOptions{
		PageSize: s.cfg.PageSize,
		MaxPages: s.cfg.MaxPages,
		Observer: s.observer,
		Location: s.loc,
	})

	session.Controller = calendar.NewController(s.ctx, calendar.ControllerDeps{
		Window:   window,
		Composer: composer,
		Source:   source,
		Location: s.loc,
		Surface:  session,
		OnEventClick: func(summary entity.AppointmentSummary) {
			s.log.Debugf("Calendar session %s opened appointment %s", userID, summary.Code)
			if s.auditor != nil {
				_ = s.auditor.LogAppointmentView(s.ctx, userID, entity.AuditActionCalendarOpen, summary.Code, entity.AuditSourceCalendar)
			}
		},
		Log: s.log,
	})
	return session
}

// closeSession closes a session last used before idleBefore (Unix
// nanoseconds). The idle check and removal happen under the session lock so a
// concurrent Acquire either refreshes it first or sees it closed.
func (s *CalendarSessionService) closeSession(userID uuid.UUID, session *CalendarSession, idleBefore int64) bool {
	session.mu.Lock()
	if session.closed || session.lastUsed.Load() >= idleBefore {
		session.mu.Unlock()
		return false
	}
	session.closed = true
	s.sessions.CompareAndDelete(userID, session)
	session.mu.Unlock()

	session.Controller.Close()
	s.reportSessions(s.count.Add(-1))
	return true
}

func (s *CalendarSessionService) reportSessions(n int64) {
	if s.observer != nil {
		s.observer.SetSessions(int(n))
	}
}

// cleanupLoop runs in background to evict idle sessions
func (s *CalendarSessionService) cleanupLoop() {
	defer s.wg.Done()

	ticker := s.clock.Ticker(sessionCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			s.log.Debug("Session cleanup goroutine stopping")
			return
		case <-ticker.C:
			s.evictIdle()
		}
	}
}

func (s *CalendarSessionService) evictIdle() {
	cutoff := s.clock.Now().Add(-s.cfg.SessionIdleTTL).UnixNano()
	var evicted int

	s.sessions.Range(func(key, value any) bool {
		if s.closeSession(key.(uuid.UUID), value.(*CalendarSession), cutoff) {
			evicted++
		}
		return true
	})

	if evicted > 0 {
		s.log.Debugf("Evicted %d idle calendar sessions", evicted)
	}
}
