package calendar

import (
	"strings"
	"sync"
	"time"

	"clinic-console/internal/domain/entity"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
)

// DefaultSearchDebounce is the quiet period before typed search text commits.
const DefaultSearchDebounce = 1000 * time.Millisecond

// CriteriaListener receives every committed, gated criteria object.
type CriteriaListener func(c entity.FilterCriteria)

// ComposerState is the editable filter panel state, for UI echo.
type ComposerState struct {
	Buffer        string                   `json:"buffer"`
	Search        string                   `json:"search"`
	SearchPending bool                     `json:"searchPending"`
	Status        entity.AppointmentStatus `json:"status,omitempty"`
	DatePreset    entity.DatePreset        `json:"datePreset,omitempty"`
	DateFrom      *time.Time               `json:"dateFrom,omitempty"`
	DateTo        *time.Time               `json:"dateTo,omitempty"`
	SortBy        entity.SortField         `json:"sortBy"`
	SortDirection entity.SortDirection     `json:"sortDirection"`
	EntityFields  *entity.EntityFields     `json:"entityFields,omitempty"`
	// Version changes whenever any of the fields above may have changed
	Version uint64 `json:"version"`
}

// Composer owns the filter/sort state and turns edits into canonical criteria.
//
// Free text commits after the debounce period or on Submit; every other
// control commits immediately. Each commit passes through StripEntityFields
// with the scope's current value before listeners see it. Listeners run with
// the composer lock held and must not call back into the composer.
type Composer struct {
	mu       sync.Mutex
	clock    clock.Clock
	loc      *time.Location
	debounce time.Duration
	scope    Scope
	log      *logrus.Logger

	buffer       string
	search       string
	status       entity.AppointmentStatus
	preset       entity.DatePreset
	dateFrom     *time.Time
	dateTo       *time.Time
	sortBy       entity.SortField
	sortDir      entity.SortDirection
	entityFields *entity.EntityFields

	timer    *clock.Timer
	timerSeq uint64
	version  uint64

	last      entity.FilterCriteria
	emitted   bool
	listeners []CriteriaListener
}

func NewComposer(clk clock.Clock, loc *time.Location, debounce time.Duration, scope Scope, log *logrus.Logger) *Composer {
	if loc == nil {
		loc = time.UTC
	}
	if debounce <= 0 {
		debounce = DefaultSearchDebounce
	}
	return &Composer{
		clock:    clk,
		loc:      loc,
		debounce: debounce,
		scope:    scope,
		log:      log,
		sortBy:   entity.SortByStartTime,
		sortDir:  entity.SortAsc,
	}
}

// Subscribe registers a listener for committed criteria
func (c *Composer) Subscribe(l CriteriaListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// Criteria returns the current canonical criteria, gated by the current scope
func (c *Composer) Criteria() entity.FilterCriteria {
	c.mu.Lock()
	defer c.mu.Unlock()
	return StripEntityFields(c.buildLocked(), c.scope.CanViewAll())
}

// State returns a snapshot of the editable panel state
func (c *Composer) State() ComposerState {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := ComposerState{
		Buffer:        c.buffer,
		Search:        c.search,
		SearchPending: c.timer != nil,
		Status:        c.status,
		DatePreset:    c.preset,
		SortBy:        c.sortBy,
		SortDirection: c.sortDir,
		Version:       c.version,
	}
	if c.dateFrom != nil {
		from := *c.dateFrom
		state.DateFrom = &from
	}
	if c.dateTo != nil {
		to := *c.dateTo
		state.DateTo = &to
	}
	if c.entityFields != nil {
		fields := *c.entityFields
		state.EntityFields = &fields
	}
	return state
}

// Type records a keystroke. The buffer updates immediately; the commit waits
// for the debounce period without further typing.
func (c *Composer) Type(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.buffer = text
	c.stopTimerLocked()
	seq := c.timerSeq
	c.timer = c.clock.AfterFunc(c.debounce, func() {
		c.fireDebounce(seq)
	})
}

// Submit commits the buffer now (Enter key) and cancels any pending debounce.
func (c *Composer) Submit() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopTimerLocked()
	c.commitSearchLocked(true)
}

// SetStatus selects one status chip. The empty status means all statuses.
func (c *Composer) SetStatus(status entity.AppointmentStatus) error {
	if status != "" && !status.IsValid() {
		return ErrInvalidCriteria
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = status
	c.emitLocked(false)
	return nil
}

// SetSortField changes the ordering field
func (c *Composer) SetSortField(field entity.SortField) error {
	if !field.IsValid() {
		return ErrInvalidCriteria
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.sortBy = field
	c.emitLocked(false)
	return nil
}

// SetSortDirection changes the ordering direction
func (c *Composer) SetSortDirection(dir entity.SortDirection) error {
	if !dir.IsValid() {
		return ErrInvalidCriteria
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.sortDir = dir
	c.emitLocked(false)
	return nil
}

// ToggleSortDirection flips between ASC and DESC
func (c *Composer) ToggleSortDirection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sortDir = c.sortDir.Toggle()
	c.emitLocked(false)
}

// SetDatePreset selects a relative date window, replacing explicit dates
func (c *Composer) SetDatePreset(preset entity.DatePreset) error {
	if !preset.IsValid() {
		return ErrInvalidCriteria
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.preset = preset
	c.dateFrom = nil
	c.dateTo = nil
	c.emitLocked(false)
	return nil
}

// SetDateRange sets explicit inclusive day bounds, replacing any preset.
// Either bound may be nil.
func (c *Composer) SetDateRange(from, to *time.Time) error {
	var fromDay, toDay *time.Time
	if from != nil {
		d := startOfDay(*from, c.loc)
		fromDay = &d
	}
	if to != nil {
		d := startOfDay(*to, c.loc)
		toDay = &d
	}
	if fromDay != nil && toDay != nil && toDay.Before(*fromDay) {
		return ErrInvalidCriteria
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.preset = entity.PresetNone
	c.dateFrom = fromDay
	c.dateTo = toDay
	c.emitLocked(false)
	return nil
}

// ClearDate removes both the preset and explicit dates
func (c *Composer) ClearDate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.preset = entity.PresetNone
	c.dateFrom = nil
	c.dateTo = nil
	c.emitLocked(false)
}

// FilterUpdate is one filter-panel submission. Nil fields are left as they
// are. Explicit dates replace the preset when both are present.
type FilterUpdate struct {
	Status        *entity.AppointmentStatus
	SortBy        *entity.SortField
	SortDirection *entity.SortDirection
	DatePreset    *entity.DatePreset
	DateFrom      *time.Time
	DateTo        *time.Time
	EntityFields  *entity.EntityFields
}

// HasDates reports whether the update carries an explicit date bound
func (u FilterUpdate) HasDates() bool {
	return u.DateFrom != nil || u.DateTo != nil
}

// Apply validates every control in the update and then commits them together.
// An invalid update changes nothing.
func (c *Composer) Apply(u FilterUpdate) error {
	if u.Status != nil && *u.Status != "" && !u.Status.IsValid() {
		return ErrInvalidCriteria
	}
	if u.SortBy != nil && !u.SortBy.IsValid() {
		return ErrInvalidCriteria
	}
	if u.SortDirection != nil && !u.SortDirection.IsValid() {
		return ErrInvalidCriteria
	}
	if u.DatePreset != nil && !u.DatePreset.IsValid() {
		return ErrInvalidCriteria
	}

	var fromDay, toDay *time.Time
	if u.DateFrom != nil {
		d := startOfDay(*u.DateFrom, c.loc)
		fromDay = &d
	}
	if u.DateTo != nil {
		d := startOfDay(*u.DateTo, c.loc)
		toDay = &d
	}
	if fromDay != nil && toDay != nil && toDay.Before(*fromDay) {
		return ErrInvalidCriteria
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if u.Status != nil {
		c.status = *u.Status
	}
	if u.SortBy != nil {
		c.sortBy = *u.SortBy
	}
	if u.SortDirection != nil {
		c.sortDir = *u.SortDirection
	}
	if u.DatePreset != nil {
		c.preset = *u.DatePreset
		c.dateFrom = nil
		c.dateTo = nil
	}
	if u.HasDates() {
		c.preset = entity.PresetNone
		c.dateFrom = fromDay
		c.dateTo = toDay
	}
	if u.EntityFields != nil {
		c.stopTimerLocked()
		c.buffer = ""
		c.search = ""
		if u.EntityFields.IsEmpty() {
			c.entityFields = nil
		} else {
			fields := *u.EntityFields
			c.entityFields = &fields
		}
	}
	c.emitLocked(false)
	return nil
}

// SetEntityFields applies the structured shortcuts. Free text and shortcuts
// are mutually exclusive, so the search text and any pending commit are dropped.
func (c *Composer) SetEntityFields(fields entity.EntityFields) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopTimerLocked()
	c.buffer = ""
	c.search = ""
	if fields.IsEmpty() {
		c.entityFields = nil
	} else {
		c.entityFields = &fields
	}
	c.emitLocked(false)
}

// Reset restores the untouched panel and commits it
func (c *Composer) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopTimerLocked()
	c.buffer = ""
	c.search = ""
	c.status = ""
	c.preset = entity.PresetNone
	c.dateFrom = nil
	c.dateTo = nil
	c.sortBy = entity.SortByStartTime
	c.sortDir = entity.SortAsc
	c.entityFields = nil
	c.emitLocked(false)
}

// Recompute re-emits the canonical criteria. Call it when the scope changes.
func (c *Composer) Recompute() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.emitLocked(true)
}

// Stop cancels a pending debounce without committing it
func (c *Composer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTimerLocked()
}

func (c *Composer) fireDebounce(seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// a newer keystroke, Submit or shortcut already replaced this timer
	if seq != c.timerSeq || c.timer == nil {
		return
	}
	c.timer = nil
	c.version++
	c.commitSearchLocked(false)
}

func (c *Composer) commitSearchLocked(force bool) {
	c.search = strings.TrimSpace(c.buffer)
	if c.search != "" {
		c.entityFields = nil
	}
	c.emitLocked(force)
}

func (c *Composer) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.timerSeq++
	c.version++
}

func (c *Composer) emitLocked(force bool) {
	c.version++
	criteria := StripEntityFields(c.buildLocked(), c.scope.CanViewAll())
	if !force && c.emitted && criteria.Equal(c.last) {
		c.log.Debug("Filter commit unchanged, skipping")
		return
	}
	c.last = criteria
	c.emitted = true

	for _, l := range c.listeners {
		l(criteria.Clone())
	}
}

func (c *Composer) buildLocked() entity.FilterCriteria {
	criteria := entity.FilterCriteria{
		SearchCode:    c.search,
		DatePreset:    c.preset,
		SortBy:        c.sortBy,
		SortDirection: c.sortDir,
	}
	if c.status != "" {
		criteria.Status = []entity.AppointmentStatus{c.status}
	}

	if c.preset != entity.PresetNone {
		from, to := resolvePreset(c.preset, c.clock.Now(), c.loc)
		criteria.DateFrom = &from
		criteria.DateTo = &to
	} else {
		if c.dateFrom != nil {
			from := *c.dateFrom
			criteria.DateFrom = &from
		}
		if c.dateTo != nil {
			to := *c.dateTo
			criteria.DateTo = &to
		}
	}

	if c.entityFields != nil {
		fields := *c.entityFields
		criteria.EntityFields = &fields
	}
	return criteria
}

// resolvePreset returns the first and last day (both at midnight) of a preset
func resolvePreset(preset entity.DatePreset, now time.Time, loc *time.Location) (time.Time, time.Time) {
	today := startOfDay(now, loc)
	switch preset {
	case entity.PresetTomorrow:
		tomorrow := today.AddDate(0, 0, 1)
		return tomorrow, tomorrow
	case entity.PresetThisWeek:
		r := RangeFor(entity.ViewWeek, today, loc)
		return r.Start, startOfDay(r.End, loc)
	case entity.PresetNext7Days:
		return today, today.AddDate(0, 0, 6)
	case entity.PresetThisMonth:
		r := RangeFor(entity.ViewMonth, today, loc)
		return r.Start, startOfDay(r.End, loc)
	default:
		return today, today
	}
}
