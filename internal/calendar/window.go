package calendar

import (
	"sync"
	"time"

	"clinic-console/internal/domain/entity"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
)

// NavAction is a toolbar navigation command.
type NavAction string

const (
	NavPrev  NavAction = "prev"
	NavNext  NavAction = "next"
	NavToday NavAction = "today"
)

// RangeListener receives every accepted range change.
type RangeListener func(r entity.DateRange, mode entity.ViewMode)

// Window holds the visible calendar range and view granularity.
// Listeners run while the window lock is held so they observe changes in
// order; they must not call back into the window.
type Window struct {
	mu        sync.Mutex
	clock     clock.Clock
	loc       *time.Location
	log       *logrus.Logger
	current   entity.DateRange
	mode      entity.ViewMode
	hasRange  bool
	listeners []RangeListener
}

func NewWindow(clk clock.Clock, loc *time.Location, log *logrus.Logger) *Window {
	if loc == nil {
		loc = time.UTC
	}
	return &Window{
		clock: clk,
		loc:   loc,
		log:   log,
		mode:  entity.ViewWeek,
	}
}

// Subscribe registers a listener for range changes
func (w *Window) Subscribe(l RangeListener) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listeners = append(w.listeners, l)
}

// Current returns the visible range, the view mode and whether a range has been set yet
func (w *Window) Current() (entity.DateRange, entity.ViewMode, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current, w.mode, w.hasRange
}

// SetRange replaces the visible range. A range with end <= start is rejected
// and the previous range is retained.
func (w *Window) SetRange(r entity.DateRange, mode entity.ViewMode) error {
	if !mode.IsValid() {
		return ErrInvalidViewMode
	}
	if !r.IsValid() {
		w.log.WithFields(logrus.Fields{
			"start": r.Start,
			"end":   r.End,
		}).Warn("Rejected calendar range, keeping previous range")
		return ErrInvalidRange
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.applyLocked(r, mode)
	return nil
}

// Navigate moves the window one unit of the current view mode back or
// forward, or jumps to the unit containing today.
func (w *Window) Navigate(action NavAction) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	anchor := w.clock.Now().In(w.loc)
	switch action {
	case NavToday:
	case NavPrev, NavNext:
		if w.hasRange {
			anchor = w.current.Start.In(w.loc)
		}
		step := 1
		if action == NavPrev {
			step = -1
		}
		anchor = shift(anchor, w.mode, step)
	default:
		return ErrInvalidNavigation
	}

	w.applyLocked(RangeFor(w.mode, anchor, w.loc), w.mode)
	return nil
}

// SwitchView changes the granularity, keeping the current range start in view.
func (w *Window) SwitchView(mode entity.ViewMode) error {
	if !mode.IsValid() {
		return ErrInvalidViewMode
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	anchor := w.clock.Now().In(w.loc)
	if w.hasRange {
		anchor = w.current.Start.In(w.loc)
	}
	w.applyLocked(RangeFor(mode, anchor, w.loc), mode)
	return nil
}

func (w *Window) applyLocked(r entity.DateRange, mode entity.ViewMode) {
	if w.hasRange && w.mode == mode && w.current.Equal(r) {
		return
	}
	w.current = r
	w.mode = mode
	w.hasRange = true

	w.log.Debugf("Calendar range changed: %s .. %s (%s)", r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339), mode)
	for _, l := range w.listeners {
		l(r, mode)
	}
}

// RangeFor returns the inclusive range of the day, ISO week (Monday first) or
// calendar month containing anchor. End is the last instant of the last day.
func RangeFor(mode entity.ViewMode, anchor time.Time, loc *time.Location) entity.DateRange {
	day := startOfDay(anchor, loc)

	var start, next time.Time
	switch mode {
	case entity.ViewDay:
		start = day
		next = start.AddDate(0, 0, 1)
	case entity.ViewMonth:
		start = time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, loc)
		next = start.AddDate(0, 1, 0)
	default:
		offset := (int(day.Weekday()) + 6) % 7
		start = day.AddDate(0, 0, -offset)
		next = start.AddDate(0, 0, 7)
	}
	return entity.DateRange{Start: start, End: next.Add(-time.Nanosecond)}
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func shift(t time.Time, mode entity.ViewMode, step int) time.Time {
	switch mode {
	case entity.ViewDay:
		return t.AddDate(0, 0, step)
	case entity.ViewMonth:
		// anchor on the first so that Jan 31 + 1 month does not skip February
		first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
		return first.AddDate(0, step, 0)
	default:
		return t.AddDate(0, 0, 7*step)
	}
}
