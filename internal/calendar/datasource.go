package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"clinic-console/internal/delivery/dto"
	"clinic-console/internal/domain/entity"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultPageSize covers a dense month view in a single request.
	DefaultPageSize = 1000
	// DefaultMaxPages bounds how far one fetch pages through a visible range.
	DefaultMaxPages = 10

	wireDateFormat = "2006-01-02"
)

// Fetch outcomes reported to the FetchObserver.
const (
	OutcomePublished   = "published"
	OutcomeStale       = "stale"
	OutcomeUnavailable = "unavailable"
	OutcomeFailed      = "failed"
)

// Generation identifies one fetch attempt. Later attempts have larger values.
type Generation uint64

// PageFetcher is the backend query endpoint.
type PageFetcher interface {
	SearchAppointments(ctx context.Context, req *dto.AppointmentSearchRequest) (*entity.AppointmentPage, error)
}

// FetchObserver receives one outcome per settled fetch.
type FetchObserver interface {
	ObserveFetch(outcome string, elapsed time.Duration)
}

type noopObserver struct{}

func (noopObserver) ObserveFetch(string, time.Duration) {}

// DataSourceOptions tunes paging. Zero values fall back to the defaults.
type DataSourceOptions struct {
	PageSize int
	MaxPages int
	Observer FetchObserver
	// Location is the zone wire dates are expressed in. Defaults to UTC.
	Location *time.Location
}

// FetchResult is the outcome of a fetch that was still the latest when it resolved.
type FetchResult struct {
	Generation    Generation
	Range         entity.DateRange
	Criteria      entity.FilterCriteria
	Summaries     []entity.AppointmentSummary
	TotalElements int64
	Truncated     bool
}

// PendingFetch is an issued fetch. Its generation is known immediately; the
// result becomes available once Done is closed.
type PendingFetch struct {
	Generation Generation
	done       chan struct{}
	result     *FetchResult
	err        error
}

// Done is closed when the fetch has settled
func (p *PendingFetch) Done() <-chan struct{} {
	return p.done
}

// Result blocks until the fetch settles. A fetch superseded before it
// resolved returns ErrStaleResult.
func (p *PendingFetch) Result() (*FetchResult, error) {
	<-p.done
	return p.result, p.err
}

// DataSource pages appointment data from the backend and tags every fetch
// with a generation so that only the most recently issued one is honoured.
type DataSource struct {
	fetcher  PageFetcher
	scope    Scope
	log      *logrus.Logger
	observer FetchObserver
	loc      *time.Location
	pageSize int
	maxPages int
	latest   atomic.Uint64
}

func NewDataSource(fetcher PageFetcher, scope Scope, log *logrus.Logger, opts DataSourceOptions) *DataSource {
	ds := &DataSource{
		fetcher:  fetcher,
		scope:    scope,
		log:      log,
		observer: opts.Observer,
		loc:      opts.Location,
		pageSize: opts.PageSize,
		maxPages: opts.MaxPages,
	}
	if ds.observer == nil {
		ds.observer = noopObserver{}
	}
	if ds.loc == nil {
		ds.loc = time.UTC
	}
	if ds.pageSize <= 0 {
		ds.pageSize = DefaultPageSize
	}
	if ds.maxPages <= 0 {
		ds.maxPages = DefaultMaxPages
	}
	return ds
}

// Latest returns the most recently minted generation
func (d *DataSource) Latest() Generation {
	return Generation(d.latest.Load())
}

// IsLatest reports whether g is still the most recently minted generation
func (d *DataSource) IsLatest(g Generation) bool {
	return d.Latest() == g
}

// Fetch mints a generation, builds the first page request and issues it in
// the background. Minting happens before Fetch returns, so issue order and
// generation order always agree.
func (d *DataSource) Fetch(ctx context.Context, r entity.DateRange, criteria entity.FilterCriteria) *PendingFetch {
	g := Generation(d.latest.Add(1))
	req := BuildSearchRequest(r, criteria, d.scope.CanViewAll(), d.pageSize, d.loc)

	p := &PendingFetch{Generation: g, done: make(chan struct{})}
	go d.run(ctx, p, r, criteria, req)
	return p
}

func (d *DataSource) run(ctx context.Context, p *PendingFetch, r entity.DateRange, criteria entity.FilterCriteria, req *dto.AppointmentSearchRequest) {
	defer close(p.done)

	start := time.Now()
	log := d.log.WithFields(logrus.Fields{
		"generation": p.Generation,
		"date_from":  req.DateFrom,
		"date_to":    req.DateTo,
	})

	result := &FetchResult{
		Generation: p.Generation,
		Range:      r,
		Criteria:   criteria,
	}

	for page := 0; ; page++ {
		// cooperative cancellation: stop paging once superseded
		if page > 0 && !d.IsLatest(p.Generation) {
			break
		}

		pageReq := *req
		pageReq.Page = page
		res, err := d.fetcher.SearchAppointments(ctx, &pageReq)
		if err != nil {
			if !d.IsLatest(p.Generation) {
				break
			}
			p.err = d.classify(err)
			if errors.Is(p.err, ErrServiceUnavailable) {
				log.Infof("Appointment service unavailable: %+v", err)
				d.observer.ObserveFetch(OutcomeUnavailable, time.Since(start))
			} else {
				log.Warnf("Failed to fetch appointments page %d: %+v", page, err)
				d.observer.ObserveFetch(OutcomeFailed, time.Since(start))
			}
			return
		}

		result.Summaries = append(result.Summaries, res.Content...)
		result.TotalElements = res.TotalElements

		if int64(len(result.Summaries)) >= res.TotalElements || len(res.Content) == 0 {
			break
		}
		if page+1 >= d.maxPages {
			result.Truncated = true
			log.Warnf("Visible range holds %d appointments, showing first %d", res.TotalElements, len(result.Summaries))
			break
		}
	}

	if !d.IsLatest(p.Generation) {
		p.err = fmt.Errorf("generation %d: %w", p.Generation, ErrStaleResult)
		log.Debug("Discarding superseded appointment fetch")
		d.observer.ObserveFetch(OutcomeStale, time.Since(start))
		return
	}

	p.result = result
	log.Debugf("Fetched %d of %d appointments", len(result.Summaries), result.TotalElements)
	d.observer.ObserveFetch(OutcomePublished, time.Since(start))
}

// httpStatusError is implemented by transport errors that carry a response status.
type httpStatusError interface {
	HTTPStatus() int
}

func (d *DataSource) classify(err error) error {
	var statusErr httpStatusError
	if errors.As(err, &statusErr) && statusErr.HTTPStatus() >= http.StatusInternalServerError {
		return fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}
	return fmt.Errorf("%w: %w", ErrFetchFailed, err)
}

// BuildSearchRequest builds the first page request for a range and criteria.
// The RBAC gate is applied again here so no caller can bypass it. Explicit
// criteria dates take precedence over the visible range.
func BuildSearchRequest(r entity.DateRange, criteria entity.FilterCriteria, canViewAll bool, size int, loc *time.Location) *dto.AppointmentSearchRequest {
	gated := StripEntityFields(criteria, canViewAll)
	if gated.SortBy == "" {
		gated.SortBy = entity.SortByStartTime
	}
	if gated.SortDirection == "" {
		gated.SortDirection = entity.SortAsc
	}

	// the range end may be exclusive (midnight after the last day); the wire
	// dateTo is the last day that is at least partly visible
	from, to := r.Start, r.End.Add(-time.Nanosecond)
	if gated.DateFrom != nil {
		from = *gated.DateFrom
	}
	if gated.DateTo != nil {
		to = *gated.DateTo
	}

	req := &dto.AppointmentSearchRequest{
		DateFrom:      from.In(loc).Format(wireDateFormat),
		DateTo:        to.In(loc).Format(wireDateFormat),
		SearchCode:    gated.SearchCode,
		SortBy:        string(gated.SortBy),
		SortDirection: string(gated.SortDirection),
		Page:          0,
		Size:          size,
		EntityFields:  gated.EntityFields,
	}
	for _, s := range gated.Status {
		req.Status = append(req.Status, string(s))
	}
	return req
}
