package usecase

import (
	"context"
	"errors"
	"time"

	"clinic-console/internal/calendar"
	"clinic-console/internal/converter"
	"clinic-console/internal/delivery/dto"
	"clinic-console/internal/domain/entity"
	"clinic-console/internal/service"

	"github.com/sirupsen/logrus"
)

const (
	filterDateFormat = "2006-01-02"
	statusAll        = "ALL"
	presetNone       = "NONE"
)

var ErrInvalidFilterDate = errors.New("invalid filter date format, use YYYY-MM-DD")

// CalendarUsecase drives the caller's calendar session. Every method returns
// the resulting view; fetches triggered by a call settle asynchronously and
// show up in later views.
type CalendarUsecase interface {
	SetRange(ctx context.Context, caller Caller, req *dto.CalendarRangeRequest) (*dto.CalendarViewResponse, error)
	Navigate(ctx context.Context, caller Caller, req *dto.CalendarNavigateRequest) (*dto.CalendarViewResponse, error)
	SwitchView(ctx context.Context, caller Caller, req *dto.CalendarViewModeRequest) (*dto.CalendarViewResponse, error)
	Search(ctx context.Context, caller Caller, req *dto.CalendarSearchRequest) (*dto.CalendarViewResponse, error)
	ApplyFilter(ctx context.Context, caller Caller, req *dto.CalendarFilterRequest) (*dto.CalendarViewResponse, error)
	ResetFilter(ctx context.Context, caller Caller) (*dto.CalendarViewResponse, error)
	Refresh(ctx context.Context, caller Caller) (*dto.CalendarViewResponse, error)
	// GetView returns the current view. With wait it first blocks until
	// issued fetches have settled or ctx is done.
	GetView(ctx context.Context, caller Caller, wait bool) (*dto.CalendarViewResponse, error)
	GetEvent(ctx context.Context, caller Caller, id string) (*dto.CalendarEventResponse, error)
}

type calendarUsecase struct {
	sessions *service.CalendarSessionService
	loc      *time.Location
	log      *logrus.Logger
}

func NewCalendarUsecase(sessions *service.CalendarSessionService, loc *time.Location, log *logrus.Logger) CalendarUsecase {
	if loc == nil {
		loc = time.UTC
	}
	return &calendarUsecase{
		sessions: sessions,
		loc:      loc,
		log:      log,
	}
}

func (u *calendarUsecase) SetRange(ctx context.Context, caller Caller, req *dto.CalendarRangeRequest) (*dto.CalendarViewResponse, error) {
	session := u.acquire(caller)
	err := session.Controller.OnRangeChange(req.ActiveStart, req.ActiveEnd, entity.ViewMode(req.ViewMode))
	// an invalid range is logged by the window and the previous view stays
	if err != nil && !errors.Is(err, calendar.ErrInvalidRange) {
		return nil, err
	}
	return u.view(session), nil
}

func (u *calendarUsecase) Navigate(ctx context.Context, caller Caller, req *dto.CalendarNavigateRequest) (*dto.CalendarViewResponse, error) {
	session := u.acquire(caller)
	if err := session.Controller.Navigate(calendar.NavAction(req.Action)); err != nil {
		return nil, err
	}
	return u.view(session), nil
}

func (u *calendarUsecase) SwitchView(ctx context.Context, caller Caller, req *dto.CalendarViewModeRequest) (*dto.CalendarViewResponse, error) {
	session := u.acquire(caller)
	if err := session.Controller.SwitchView(entity.ViewMode(req.ViewMode)); err != nil {
		return nil, err
	}
	return u.view(session), nil
}

func (u *calendarUsecase) Search(ctx context.Context, caller Caller, req *dto.CalendarSearchRequest) (*dto.CalendarViewResponse, error) {
	session := u.acquire(caller)
	filters := session.Controller.Filters()
	filters.Type(req.Text)
	if req.Submit {
		filters.Submit()
	}
	return u.view(session), nil
}

// ApplyFilter commits one filter-panel submission as a single query. The
// whole request is validated before anything changes.
func (u *calendarUsecase) ApplyFilter(ctx context.Context, caller Caller, req *dto.CalendarFilterRequest) (*dto.CalendarViewResponse, error) {
	update, err := u.filterUpdate(req)
	if err != nil {
		return nil, err
	}

	session := u.acquire(caller)
	if err := session.Controller.Filters().Apply(update); err != nil {
		return nil, err
	}
	return u.view(session), nil
}

func (u *calendarUsecase) filterUpdate(req *dto.CalendarFilterRequest) (calendar.FilterUpdate, error) {
	var update calendar.FilterUpdate
	var err error

	if update.DateFrom, err = u.parseFilterDate(req.DateFrom); err != nil {
		return update, err
	}
	if update.DateTo, err = u.parseFilterDate(req.DateTo); err != nil {
		return update, err
	}

	if req.Status != nil {
		status := entity.AppointmentStatus(*req.Status)
		if *req.Status == statusAll {
			status = ""
		}
		update.Status = &status
	}
	if req.SortBy != nil {
		field := entity.SortField(*req.SortBy)
		update.SortBy = &field
	}
	if req.SortDirection != nil {
		dir := entity.SortDirection(*req.SortDirection)
		update.SortDirection = &dir
	}
	if req.DatePreset != nil {
		preset := entity.DatePreset(*req.DatePreset)
		if *req.DatePreset == presetNone {
			preset = entity.PresetNone
		}
		update.DatePreset = &preset
	}
	if (req.DateFrom != nil || req.DateTo != nil) && !update.HasDates() {
		// empty date inputs clear the date filter
		none := entity.PresetNone
		update.DatePreset = &none
	}
	if req.Entity != nil {
		fields := converter.EntityFilterToEntity(req.Entity)
		update.EntityFields = &fields
	}
	return update, nil
}

func (u *calendarUsecase) ResetFilter(ctx context.Context, caller Caller) (*dto.CalendarViewResponse, error) {
	session := u.acquire(caller)
	session.Controller.Filters().Reset()
	return u.view(session), nil
}

func (u *calendarUsecase) Refresh(ctx context.Context, caller Caller) (*dto.CalendarViewResponse, error) {
	session := u.acquire(caller)
	session.Controller.Refresh()
	return u.view(session), nil
}

func (u *calendarUsecase) GetView(ctx context.Context, caller Caller, wait bool) (*dto.CalendarViewResponse, error) {
	session := u.acquire(caller)
	if wait {
		if err := waitSettled(ctx, session.Controller); err != nil {
			return nil, err
		}
	}
	return u.view(session), nil
}

func (u *calendarUsecase) GetEvent(ctx context.Context, caller Caller, id string) (*dto.CalendarEventResponse, error) {
	session := u.acquire(caller)
	summary, err := session.Controller.ClickEvent(id)
	if err != nil {
		return nil, err
	}
	res := converter.EventToResponse(converter.SummaryToEvent(summary, u.loc))
	return &res, nil
}

func (u *calendarUsecase) acquire(caller Caller) *service.CalendarSession {
	return u.sessions.Acquire(caller.UserID, caller.CanViewAll, caller.Token)
}

func (u *calendarUsecase) parseFilterDate(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(filterDateFormat, *value, u.loc)
	if err != nil {
		return nil, ErrInvalidFilterDate
	}
	return &t, nil
}

func (u *calendarUsecase) view(session *service.CalendarSession) *dto.CalendarViewResponse {
	view := session.Controller.View()
	state := session.Controller.Filters().State()

	res := &dto.CalendarViewResponse{
		ViewMode:      string(view.ViewMode),
		CanViewAll:    session.CanViewAll(),
		Events:        converter.EventsToResponse(view.Events),
		Loading:       view.Loading,
		Notice:        view.Notice,
		Error:         view.Error,
		TotalElements: view.TotalElements,
		Truncated:     view.Truncated,
		Generation:    uint64(view.Generation),
		Revision:      session.Revision(),
		Filters: dto.CalendarFilterState{
			SearchText:    state.Buffer,
			Search:        state.Search,
			SearchPending: state.SearchPending,
			Status:        string(state.Status),
			DatePreset:    string(state.DatePreset),
			SortBy:        string(state.SortBy),
			SortDirection: string(state.SortDirection),
			Entity:        converter.EntityFieldsToFilter(state.EntityFields),
			Version:       state.Version,
		},
	}
	if view.HasRange {
		start, end := view.Range.Start, view.Range.End
		res.ActiveStart = &start
		res.ActiveEnd = &end
	}
	if state.DateFrom != nil {
		res.Filters.DateFrom = state.DateFrom.In(u.loc).Format(filterDateFormat)
	}
	if state.DateTo != nil {
		res.Filters.DateTo = state.DateTo.In(u.loc).Format(filterDateFormat)
	}
	if res.Filters.Status == "" {
		res.Filters.Status = statusAll
	}
	if res.Filters.DatePreset == "" {
		res.Filters.DatePreset = presetNone
	}
	return res
}

func waitSettled(ctx context.Context, controller *calendar.Controller) error {
	done := make(chan struct{})
	go func() {
		controller.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
