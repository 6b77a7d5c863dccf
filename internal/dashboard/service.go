// Package dashboard answers the dashboard's queries: it validates the requested period,
// retrieves and normalizes the rows, and computes health and a chart title.
package dashboard

import (
	"context"
	"fmt"
	"sync"

	"github.com/chrissnell/climatewatch/internal/calendar"
	"github.com/chrissnell/climatewatch/internal/memo"
	"github.com/chrissnell/climatewatch/internal/normalize"
	"github.com/chrissnell/climatewatch/internal/retrieval"
	"github.com/chrissnell/climatewatch/internal/rooms"
	"github.com/chrissnell/climatewatch/internal/table"
	"go.uber.org/zap"
)

// Result is the answer to one dashboard query
type Result struct {
	Frame      *table.Frame
	HealthList []float64
	Health     float64
	Title      string
}

// ResultCost estimates the memory held by r, for sizing the memo cache
func ResultCost(r *Result) int64 {
	if r == nil || r.Frame == nil {
		return 1
	}
	return int64(r.Frame.Len()*len(r.Frame.Columns))*64 + 1
}

// Service serves dashboard queries for every room
type Service struct {
	retriever *retrieval.Retriever
	memo      *memo.Cache[*Result]
	tables    map[rooms.Room]string
	logger    *zap.SugaredLogger

	mu sync.Mutex
}

// NewService creates a service. tables maps rooms to their upstream table; rooms not
// listed read rooms.DefaultTable.
func NewService(r *retrieval.Retriever, cache *memo.Cache[*Result], tables map[rooms.Room]string, logger *zap.SugaredLogger) *Service {
	return &Service{
		retriever: r,
		memo:      cache,
		tables:    tables,
		logger:    logger,
	}
}

// Table returns the upstream table read for room
func (s *Service) Table(room rooms.Room) string {
	if t, ok := s.tables[room]; ok && t != "" {
		return t
	}
	return rooms.DefaultTable
}

// Today returns the current day in the service's time zone
func (s *Service) Today() calendar.Date {
	return s.retriever.Today()
}

// Validate checks q against the retriever's notion of today
func (s *Service) Validate(q retrieval.Query) error {
	return ValidateQuery(q, s.retriever.Today())
}

// GetData answers q for room. Unforced calls for past days are memoized; a forced
// redownload bypasses the memo and replaces its entry. Queries covering today always
// recompute.
func (s *Service) GetData(ctx context.Context, q retrieval.Query, room rooms.Room, forceRedownload bool) (*Result, error) {
	if err := s.Validate(q); err != nil {
		return nil, err
	}

	// Today is still accumulating rows, so its answers are never memoized
	if coversToday(q, s.retriever.Today()) {
		return s.compute(ctx, q, room, forceRedownload)
	}

	key := memoKey(q, room)
	if forceRedownload {
		res, err := s.compute(ctx, q, room, true)
		if err != nil {
			return nil, err
		}
		s.memo.Set(key, res)
		return res, nil
	}

	return s.memo.Do(ctx, key, func(ctx context.Context) (*Result, error) {
		return s.compute(ctx, q, room, false)
	})
}

// Refresh drops every memoized result and recomputes q with a forced redownload
func (s *Service) Refresh(ctx context.Context, q retrieval.Query, room rooms.Room) (*Result, error) {
	s.Invalidate()
	return s.GetData(ctx, q, room, true)
}

// Invalidate drops every memoized result
func (s *Service) Invalidate() {
	s.logger.Info("invalidating memoized dashboard results")
	s.memo.Invalidate()
}

func (s *Service) compute(ctx context.Context, q retrieval.Query, room rooms.Room, redownload bool) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tableName := s.Table(room)
	raw, err := s.retriever.Fetch(ctx, q, tableName, redownload)
	if err != nil {
		return nil, err
	}

	frame, err := normalize.Normalize(raw, room)
	if err != nil {
		return nil, fmt.Errorf("error normalizing %s: %w", tableName, err)
	}

	list, overall := Health(frame, q)
	s.logger.Debugw("computed dashboard data",
		"kind", q.Kind.String(),
		"room", room.String(),
		"rows", frame.Len(),
		"health", overall)

	return &Result{
		Frame:      frame,
		HealthList: list,
		Health:     overall,
		Title:      Title(q),
	}, nil
}

// coversToday reports whether q includes today
func coversToday(q retrieval.Query, today calendar.Date) bool {
	if q.Kind == retrieval.SingleDay {
		return !q.Day.Before(today)
	}
	return !q.End.Before(today)
}

func memoKey(q retrieval.Query, room rooms.Room) uint64 {
	if q.Kind == retrieval.SingleDay {
		return memo.Key(q.Kind.String(), q.Day.String(), room.String())
	}
	return memo.Key(q.Kind.String(), q.Start.String(), q.End.String(), room.String())
}
