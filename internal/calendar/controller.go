package calendar

import (
	"context"
	"errors"
	"sync"
	"time"

	"clinic-console/internal/converter"
	"clinic-console/internal/domain/entity"

	"github.com/sirupsen/logrus"
)

// Transition names the state changes of the controller.
type Transition string

const (
	TransitionRangeChanged    Transition = "range-changed"
	TransitionFilterCommitted Transition = "filter-committed"
	TransitionRefresh         Transition = "refresh-requested"
	TransitionFetchResolved   Transition = "fetch-resolved"
	TransitionFetchFailed     Transition = "fetch-failed"
)

// Surface is the calendar rendering library. Render is called with the
// controller lock held and must not call back into the controller.
type Surface interface {
	Render(events []entity.CalendarEvent)
}

// View is an immutable snapshot of what the calendar shows.
type View struct {
	Range          entity.DateRange       `json:"range"`
	ViewMode       entity.ViewMode        `json:"viewMode"`
	HasRange       bool                   `json:"hasRange"`
	Criteria       entity.FilterCriteria  `json:"criteria"`
	Events         []entity.CalendarEvent `json:"events"`
	Generation     Generation             `json:"generation"`
	Requested      Generation             `json:"requested"`
	Loading        bool                   `json:"loading"`
	Notice         string                 `json:"notice,omitempty"`
	Error          string                 `json:"error,omitempty"`
	TotalElements  int64                  `json:"totalElements"`
	Truncated      bool                   `json:"truncated"`
	LastTransition Transition             `json:"lastTransition,omitempty"`
}

// ControllerDeps wires a Controller. Surface and OnEventClick are optional.
type ControllerDeps struct {
	Window       *Window
	Composer     *Composer
	Source       *DataSource
	Location     *time.Location
	Surface      Surface
	OnEventClick func(entity.AppointmentSummary)
	Log          *logrus.Logger
}

// Controller is the calendar state machine. It merges range changes and
// filter commits into one query, issues fetches, and applies only the result
// of the latest generation.
type Controller struct {
	mu           sync.Mutex
	ctx          context.Context
	window       *Window
	composer     *Composer
	source       *DataSource
	loc          *time.Location
	surface      Surface
	onEventClick func(entity.AppointmentSummary)
	log          *logrus.Logger
	inflight     sync.WaitGroup

	rng       entity.DateRange
	mode      entity.ViewMode
	hasRange  bool
	criteria  entity.FilterCriteria
	events    []entity.CalendarEvent
	shown     Generation
	requested Generation
	loading   bool
	notice    string
	errMsg    string
	total     int64
	truncated bool
	last      Transition
}

// NewController subscribes to the window and composer. ctx bounds every
// fetch the controller issues.
func NewController(ctx context.Context, deps ControllerDeps) *Controller {
	c := &Controller{
		ctx:          ctx,
		window:       deps.Window,
		composer:     deps.Composer,
		source:       deps.Source,
		loc:          deps.Location,
		surface:      deps.Surface,
		onEventClick: deps.OnEventClick,
		log:          deps.Log,
		criteria:     deps.Composer.Criteria(),
		events:       []entity.CalendarEvent{},
	}
	if c.loc == nil {
		c.loc = time.UTC
	}
	c.rng, c.mode, c.hasRange = deps.Window.Current()

	deps.Window.Subscribe(c.rangeChanged)
	deps.Composer.Subscribe(c.filterCommitted)
	return c
}

// Filters exposes the filter composer for panel edits
func (c *Controller) Filters() *Composer {
	return c.composer
}

// OnRangeChange is the surface's range callback. An invalid range is logged
// by the window and the previous range stays visible.
func (c *Controller) OnRangeChange(activeStart, activeEnd time.Time, mode entity.ViewMode) error {
	return c.window.SetRange(entity.DateRange{Start: activeStart, End: activeEnd}, mode)
}

// Navigate moves the visible window (prev, next, today)
func (c *Controller) Navigate(action NavAction) error {
	return c.window.Navigate(action)
}

// SwitchView changes day/week/month granularity
func (c *Controller) SwitchView(mode entity.ViewMode) error {
	return c.window.SwitchView(mode)
}

// RefreshVisibility recomputes the criteria after the scope changed so that
// fields the caller may no longer send are dropped from the next fetch.
func (c *Controller) RefreshVisibility() {
	c.composer.Recompute()
}

// Refresh re-issues the current query
func (c *Controller) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hasRange {
		c.dispatchLocked(TransitionRefresh)
	}
}

// View returns a snapshot of the current state
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	events := make([]entity.CalendarEvent, len(c.events))
	copy(events, c.events)
	return View{
		Range:          c.rng,
		ViewMode:       c.mode,
		HasRange:       c.hasRange,
		Criteria:       c.criteria.Clone(),
		Events:         events,
		Generation:     c.shown,
		Requested:      c.requested,
		Loading:        c.loading,
		Notice:         c.notice,
		Error:          c.errMsg,
		TotalElements:  c.total,
		Truncated:      c.truncated,
		LastTransition: c.last,
	}
}

// ClickEvent returns the full summary behind a rendered event and hands it to
// the OnEventClick handler. No fetch is performed.
func (c *Controller) ClickEvent(id string) (entity.AppointmentSummary, error) {
	c.mu.Lock()
	var (
		summary entity.AppointmentSummary
		found   bool
	)
	for _, ev := range c.events {
		if ev.ID == id {
			summary, found = ev.Summary, true
			break
		}
	}
	handler := c.onEventClick
	c.mu.Unlock()

	if !found {
		return entity.AppointmentSummary{}, ErrEventNotFound
	}
	if handler != nil {
		handler(summary)
	}
	return summary, nil
}

// Wait blocks until every issued fetch has settled
func (c *Controller) Wait() {
	c.inflight.Wait()
}

// Close drops any pending search commit and waits for in-flight fetches
func (c *Controller) Close() {
	c.composer.Stop()
	c.Wait()
}

func (c *Controller) rangeChanged(r entity.DateRange, mode entity.ViewMode) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rng = r
	c.mode = mode
	c.hasRange = true
	c.dispatchLocked(TransitionRangeChanged)
}

func (c *Controller) filterCommitted(criteria entity.FilterCriteria) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.criteria = criteria
	if !c.hasRange {
		// the surface has not mounted yet; its first range change will fetch
		c.last = TransitionFilterCommitted
		return
	}
	c.dispatchLocked(TransitionFilterCommitted)
}

func (c *Controller) dispatchLocked(tr Transition) {
	p := c.source.Fetch(c.ctx, c.rng, c.criteria)
	c.last = tr
	c.requested = p.Generation
	c.loading = true

	c.log.WithFields(logrus.Fields{
		"transition": tr,
		"generation": p.Generation,
	}).Debug("Issued appointment fetch")

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		res, err := p.Result()
		c.settle(p.Generation, res, err)
	}()
}

func (c *Controller) settle(g Generation, res *FetchResult, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if errors.Is(err, ErrStaleResult) || !c.source.IsLatest(g) {
		return
	}

	c.loading = false
	c.shown = g

	if err != nil {
		c.last = TransitionFetchFailed
		c.events = []entity.CalendarEvent{}
		c.total = 0
		c.truncated = false
		if errors.Is(err, ErrServiceUnavailable) {
			c.notice = NoticeServiceUnavailable
			c.errMsg = ""
		} else {
			c.notice = ""
			c.errMsg = MessageFetchFailed
		}
		c.renderLocked()
		return
	}

	c.last = TransitionFetchResolved
	c.events = converter.SummariesToEvents(res.Summaries, c.loc)
	c.total = res.TotalElements
	c.truncated = res.Truncated
	c.notice = ""
	c.errMsg = ""
	c.renderLocked()
}

func (c *Controller) renderLocked() {
	if c.surface == nil {
		return
	}
	events := make([]entity.CalendarEvent, len(c.events))
	copy(events, c.events)
	c.surface.Render(events)
}
