package calendar

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/username/workday-calendar/pkg/dateutil"
)

// Resolver answers holiday and workday questions from a Source. It keeps no
// state of its own and is safe for concurrent use.
type Resolver struct {
	source   Source
	now      func() time.Time
	location *time.Location
	logger   *zap.Logger
}

// ResolverOption customises a Resolver
type ResolverOption func(*Resolver)

// WithClock overrides the clock that defines "today"
func WithClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) {
		r.now = now
	}
}

// WithLocation sets the time zone "today" is computed in (default time.Local)
func WithLocation(loc *time.Location) ResolverOption {
	return func(r *Resolver) {
		if loc != nil {
			r.location = loc
		}
	}
}

// NewResolver creates a new Resolver
func NewResolver(source Source, logger *zap.Logger, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		source:   source,
		now:      time.Now,
		location: time.Local,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveDate looks up one date given as YYYYMMDD or YYYY-MM-DD.
// A date missing from the data (unpublished year, failed fetch) is reported as
// StatusNoData, never as an ordinary day.
func (r *Resolver) ResolveDate(ctx context.Context, raw string) DateInfo {
	date, err := NormalizeDate(raw)
	if err != nil {
		r.logger.Debug("Rejected date query", zap.String("input", raw))
		return DateInfo{Status: StatusInvalidInput, Error: MessageInvalidFormat}
	}

	year, err := dateutil.YearOf(date)
	if err != nil {
		// unreachable once NormalizeDate accepted the input
		return DateInfo{Status: StatusInvalidInput, Error: MessageInvalidFormat}
	}

	for _, record := range r.source.Fetch(ctx, year) {
		if record.Date == date {
			return DateInfo{
				Status:      StatusFound,
				Date:        date,
				IsHoliday:   record.IsHoliday,
				Description: record.Description,
				Week:        record.Week,
				Raw:         record.Raw,
			}
		}
	}

	return DateInfo{Status: StatusNoData, Date: date, Message: MessageNoData}
}

// IsWorkday reports whether a date is a working day. The holiday flag already
// folds in makeup days, so the answer is its negation. A day off carries its
// description as the reason, possibly empty; a working day carries its
// description or ReasonRegularDay. Non-found results are passed through
// unchanged.
func (r *Resolver) IsWorkday(ctx context.Context, raw string) WorkdayInfo {
	info := r.ResolveDate(ctx, raw)
	if info.Status != StatusFound {
		return WorkdayInfo{
			Status:  info.Status,
			Date:    info.Date,
			Message: info.Message,
			Error:   info.Error,
		}
	}

	// a day off is explained only by its own description; the generic label
	// belongs to working days
	reason := info.Description
	if !info.IsHoliday && reason == "" {
		reason = ReasonRegularDay
	}

	return WorkdayInfo{
		Status:    StatusFound,
		Date:      info.Date,
		IsWorkday: !info.IsHoliday,
		Reason:    reason,
	}
}

// UpcomingHolidays returns up to limit holidays from today onwards, scanning
// this year's and next year's data in date order. A non-positive limit
// returns an empty list.
func (r *Resolver) UpcomingHolidays(ctx context.Context, limit int) []Holiday {
	holidays := make([]Holiday, 0)
	if limit <= 0 {
		return holidays
	}

	today := dateutil.TodayAt(r.now(), r.location)
	todayStr := dateutil.FormatCompact(today)

	years := []YearDataSet{
		r.source.Fetch(ctx, today.Year()),
		r.source.Fetch(ctx, today.Year()+1),
	}

	// YYYYMMDD is fixed width, so string order is date order
	for _, records := range years {
		for _, day := range records {
			if day.Date < todayStr || !day.IsHoliday {
				continue
			}
			holidays = append(holidays, Holiday{
				Date:        day.Date,
				Description: day.Description,
				Week:        day.Week,
			})
			if len(holidays) >= limit {
				return holidays
			}
		}
	}

	r.logger.Debug("Upcoming holiday scan exhausted",
		zap.String("today", todayStr),
		zap.Int("limit", limit),
		zap.Int("found", len(holidays)))

	return holidays
}

// YearHolidays returns the full record set for year, empty when unavailable
func (r *Resolver) YearHolidays(ctx context.Context, year int) YearDataSet {
	return r.source.Fetch(ctx, year)
}

// Today returns the resolver's current date as YYYYMMDD
func (r *Resolver) Today() string {
	return dateutil.FormatCompact(dateutil.TodayAt(r.now(), r.location))
}
