// Package retrieval answers day and range queries from local snapshots, falling back to
// the upstream database for days that are not archived yet.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chrissnell/climatewatch/internal/calendar"
	"github.com/chrissnell/climatewatch/internal/snapshot"
	"github.com/chrissnell/climatewatch/internal/table"
	"github.com/chrissnell/climatewatch/internal/upstream"
	"go.uber.org/zap"
)

// ErrUpstream wraps every failure returned by the upstream store
var ErrUpstream = errors.New("upstream fetch failed")

// Kind is the shape of a query
type Kind int

const (
	SingleDay Kind = iota
	Range
)

func (k Kind) String() string {
	switch k {
	case SingleDay:
		return "single-day"
	case Range:
		return "range"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Query selects one day, or the inclusive span Start..End
type Query struct {
	Kind  Kind
	Day   calendar.Date
	Start calendar.Date
	End   calendar.Date
}

// DayQuery returns a single-day query
func DayQuery(day calendar.Date) Query {
	return Query{Kind: SingleDay, Day: day}
}

// RangeQuery returns a range query
func RangeQuery(start, end calendar.Date) Query {
	return Query{Kind: Range, Start: start, End: end}
}

// Days lists the days covered by q in ascending order
func (q Query) Days() []calendar.Date {
	if q.Kind == SingleDay {
		return []calendar.Date{q.Day}
	}
	return calendar.Span(q.Start, q.End)
}

// Retriever combines a snapshot store with an upstream store
type Retriever struct {
	upstream  upstream.Store
	snapshots *snapshot.Store
	loc       *time.Location
	now       func() time.Time
	logger    *zap.SugaredLogger
}

// Option customizes a Retriever
type Option func(*Retriever)

// WithClock overrides the time source used to determine today
func WithClock(now func() time.Time) Option {
	return func(r *Retriever) { r.now = now }
}

// WithLocation sets the time zone in which today is determined
func WithLocation(loc *time.Location) Option {
	return func(r *Retriever) { r.loc = loc }
}

// New creates a retriever
func New(store upstream.Store, snapshots *snapshot.Store, logger *zap.SugaredLogger, opts ...Option) *Retriever {
	r := &Retriever{
		upstream:  store,
		snapshots: snapshots,
		loc:       time.Local,
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Today returns the current day in the retriever's time zone
func (r *Retriever) Today() calendar.Date {
	return calendar.Today(r.now(), r.loc)
}

// Location returns the retriever's time zone
func (r *Retriever) Location() *time.Location {
	return r.loc
}

// Fetch returns the raw rows of tableName for every day covered by q. Range days
// are resolved one at a time in ascending order and concatenated.
func (r *Retriever) Fetch(ctx context.Context, q Query, tableName string, redownload bool) (*table.Raw, error) {
	if q.Kind == SingleDay {
		return r.fetchDay(ctx, tableName, q.Day, redownload)
	}

	result := table.NewRaw()
	var header []string
	for _, day := range q.Days() {
		raw, err := r.fetchDay(ctx, tableName, day, redownload)
		if err != nil {
			return nil, err
		}
		if header == nil && len(raw.Columns) > 0 {
			header = raw.Columns
		}
		if raw.Len() == 0 {
			continue
		}
		result.Concat(raw)
	}
	if len(result.Columns) == 0 && header != nil {
		result.Columns = append([]string(nil), header...)
	}
	return result, nil
}

func (r *Retriever) fetchDay(ctx context.Context, tableName string, day calendar.Date, redownload bool) (*table.Raw, error) {
	archivable := day.Before(r.Today())

	if archivable && !redownload {
		exists, err := r.snapshots.Exists(tableName, day)
		if err != nil {
			return nil, err
		}
		if exists {
			r.logger.Debugf("snapshot hit for %s on %s", tableName, day)
			return r.snapshots.Load(tableName, day)
		}
	}

	r.logger.Debugf("fetching %s for %s from upstream", tableName, day)
	raw, err := r.upstream.FetchDay(ctx, tableName, day)
	if err != nil {
		return nil, fmt.Errorf("%w: %s on %s: %w", ErrUpstream, tableName, day, err)
	}

	if !archivable {
		r.logger.Debugf("not archiving %s for %s: day is still in progress", tableName, day)
		return raw, nil
	}

	written, err := r.snapshots.Save(tableName, day, raw)
	if err != nil {
		return nil, err
	}
	if written {
		r.logger.Debugf("archived %d rows of %s for %s", raw.Len(), tableName, day)
	}
	return raw, nil
}
