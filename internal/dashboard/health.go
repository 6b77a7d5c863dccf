package dashboard

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/chrissnell/climatewatch/internal/calendar"
	"github.com/chrissnell/climatewatch/internal/retrieval"
	"github.com/chrissnell/climatewatch/internal/table"
	"gonum.org/v1/gonum/stat"
)

// SamplesPerDay is the number of rows a complete day holds: one sample every 30 seconds
const SamplesPerDay = 2 * 1440

// Validation errors reported before any retrieval is attempted
var (
	ErrFutureDay  = errors.New("day is in the future")
	ErrEmptyRange = errors.New("range end must be after its start")
	ErrFutureEnd  = errors.New("range end is in the future")
)

// ValidateQuery checks q against today
func ValidateQuery(q retrieval.Query, today calendar.Date) error {
	switch q.Kind {
	case retrieval.SingleDay:
		if q.Day.After(today) {
			return fmt.Errorf("%w: %s", ErrFutureDay, q.Day)
		}
	case retrieval.Range:
		if !q.End.After(q.Start) {
			return fmt.Errorf("%w: %s to %s", ErrEmptyRange, q.Start, q.End)
		}
		if q.End.After(today) {
			return fmt.Errorf("%w: %s", ErrFutureEnd, q.End)
		}
	default:
		return fmt.Errorf("unknown query kind %s", q.Kind)
	}
	return nil
}

// DayHealth is the percentage of expected samples present, rounded to two decimals
func DayHealth(rows int) float64 {
	return round2(100 * float64(rows) / SamplesPerDay)
}

// RangeHealth returns the health of each day from start to end and their mean. A day's
// rows are those keyed within [D 00:00:00, D 23:59:59].
func RangeHealth(f *table.Frame, start, end calendar.Date) ([]float64, float64) {
	days := calendar.Span(start, end)
	if len(days) == 0 {
		return nil, 0
	}

	list := make([]float64, len(days))
	for i, d := range days {
		from := d.Midnight(time.UTC)
		to := from.Add(24*time.Hour - time.Second)
		n := 0
		if f != nil {
			n = f.CountBetween(from, to)
		}
		list[i] = DayHealth(n)
	}
	return list, stat.Mean(list, nil)
}

// Health computes the per-day list and overall health for q
func Health(f *table.Frame, q retrieval.Query) ([]float64, float64) {
	if q.Kind == retrieval.SingleDay {
		h := DayHealth(f.Len())
		return []float64{h}, h
	}
	return RangeHealth(f, q.Start, q.End)
}

// Title describes the queried period
func Title(q retrieval.Query) string {
	if q.Kind == retrieval.SingleDay {
		return fmt.Sprintf("Graph Mansfield %s", q.Day)
	}
	return fmt.Sprintf("Graph climate between %s and %s", q.Start, q.End)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
