package retrieval

import (
	"context"
	"errors"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/chrissnell/climatewatch/internal/calendar"
	"github.com/chrissnell/climatewatch/internal/snapshot"
	"github.com/chrissnell/climatewatch/internal/table"
	"go.uber.org/zap"
)

// fakeStore serves canned rows per day and counts upstream calls
type fakeStore struct {
	mu    sync.Mutex
	days  map[string]*table.Raw
	calls []string
	err   error
}

func (f *fakeStore) FetchDay(_ context.Context, _ string, day calendar.Date) (*table.Raw, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, day.String())
	if f.err != nil {
		return nil, f.err
	}
	if raw, ok := f.days[day.String()]; ok {
		out := table.NewRaw(raw.Columns...)
		for _, row := range raw.Rows {
			out.AppendRow(row...)
		}
		return out, nil
	}
	return table.NewRaw("fecha", "hora", "minuto", "segundo", "Z1_T"), nil
}

func (f *fakeStore) Ping(context.Context) error { return nil }
func (f *fakeStore) Close() error               { return nil }

func dayRows(day string, n int) *table.Raw {
	raw := table.NewRaw("fecha", "hora", "minuto", "segundo", "Z1_T")
	for i := 0; i < n; i++ {
		sec := i * 30
		raw.AppendRow(day, strconv.Itoa(sec/3600), strconv.Itoa(sec/60%60), strconv.Itoa(sec%60), "72.456")
	}
	return raw
}

func newTestRetriever(t *testing.T, store *fakeStore, today string) (*Retriever, *snapshot.Store) {
	t.Helper()
	snaps := snapshot.New(t.TempDir())
	now := calendar.MustParse(today).Midnight(time.UTC).Add(10 * time.Hour)
	r := New(store, snaps, zap.NewNop().Sugar(),
		WithLocation(time.UTC),
		WithClock(func() time.Time { return now }))
	return r, snaps
}

func TestSingleDayCachedOnce(t *testing.T) {
	store := &fakeStore{days: map[string]*table.Raw{"2023-05-29": dayRows("2023-05-29", 5)}}
	r, snaps := newTestRetriever(t, store, "2023-06-01")
	day := calendar.MustParse("2023-05-29")
	ctx := context.Background()

	first, err := r.Fetch(ctx, DayQuery(day), "t", false)
	if err != nil {
		t.Fatalf("first Fetch() error = %v", err)
	}
	second, err := r.Fetch(ctx, DayQuery(day), "t", false)
	if err != nil {
		t.Fatalf("second Fetch() error = %v", err)
	}

	if len(store.calls) != 1 {
		t.Errorf("upstream calls = %d, expected 1", len(store.calls))
	}
	if !first.Equal(second) {
		t.Errorf("cached rows differ:\n%v\n%v", first, second)
	}
	if exists, _ := snaps.Exists("t", day); !exists {
		t.Error("snapshot was not written for a past day")
	}
}

func TestTodayNeverCached(t *testing.T) {
	store := &fakeStore{days: map[string]*table.Raw{"2023-06-01": dayRows("2023-06-01", 3)}}
	r, snaps := newTestRetriever(t, store, "2023-06-01")
	day := calendar.MustParse("2023-06-01")

	for i := 0; i < 3; i++ {
		raw, err := r.Fetch(context.Background(), DayQuery(day), "t", false)
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if raw.Len() != 3 {
			t.Errorf("rows = %d, expected 3", raw.Len())
		}
	}

	if len(store.calls) != 3 {
		t.Errorf("upstream calls = %d, expected 3", len(store.calls))
	}
	if exists, _ := snaps.Exists("t", day); exists {
		t.Error("snapshot written for the current day")
	}
	if _, err := os.Stat(snaps.Root()); err == nil {
		entries, _ := os.ReadDir(snaps.Root())
		if len(entries) != 0 {
			t.Errorf("snapshot root not empty: %v", entries)
		}
	}
}

func TestRangeConcatenatesInOrder(t *testing.T) {
	store := &fakeStore{days: map[string]*table.Raw{
		"2023-05-29": dayRows("2023-05-29", 4),
		"2023-05-30": dayRows("2023-05-30", 2),
		"2023-05-31": dayRows("2023-05-31", 3),
	}}
	r, _ := newTestRetriever(t, store, "2023-06-10")
	ctx := context.Background()
	start, end := calendar.MustParse("2023-05-29"), calendar.MustParse("2023-05-31")

	total := 0
	for _, d := range calendar.Span(start, end) {
		raw, err := r.Fetch(ctx, DayQuery(d), "t", false)
		if err != nil {
			t.Fatal(err)
		}
		total += raw.Len()
	}

	raw, err := r.Fetch(ctx, RangeQuery(start, end), "t", false)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if raw.Len() != total {
		t.Errorf("range rows = %d, expected %d", raw.Len(), total)
	}

	fecha := raw.Index("fecha")
	for i := 1; i < raw.Len(); i++ {
		if raw.Rows[i][fecha] < raw.Rows[i-1][fecha] {
			t.Fatalf("row %d (%s) precedes row %d (%s)", i, raw.Rows[i][fecha], i-1, raw.Rows[i-1][fecha])
		}
	}
}

func TestRangeFetchesOnlyMissingDay(t *testing.T) {
	store := &fakeStore{days: map[string]*table.Raw{
		"2023-05-29": dayRows("2023-05-29", 2),
		"2023-05-30": dayRows("2023-05-30", 2),
	}}
	r, snaps := newTestRetriever(t, store, "2023-06-10")
	day1 := calendar.MustParse("2023-05-29")
	day2 := calendar.MustParse("2023-05-30")

	if _, err := snaps.Save("t", day1, dayRows("2023-05-29", 2)); err != nil {
		t.Fatal(err)
	}

	raw, err := r.Fetch(context.Background(), RangeQuery(day1, day2), "t", false)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if raw.Len() != 4 {
		t.Errorf("rows = %d, expected 4", raw.Len())
	}
	if len(store.calls) != 1 || store.calls[0] != "2023-05-30" {
		t.Errorf("upstream calls = %v, expected [2023-05-30]", store.calls)
	}
}

func TestRedownloadKeepsArchive(t *testing.T) {
	store := &fakeStore{days: map[string]*table.Raw{"2023-05-29": dayRows("2023-05-29", 2)}}
	r, snaps := newTestRetriever(t, store, "2023-06-10")
	day := calendar.MustParse("2023-05-29")
	ctx := context.Background()

	if _, err := r.Fetch(ctx, DayQuery(day), "t", false); err != nil {
		t.Fatal(err)
	}
	before, err := os.ReadFile(snaps.Path("t", day))
	if err != nil {
		t.Fatal(err)
	}

	store.days["2023-05-29"] = dayRows("2023-05-29", 5)
	raw, err := r.Fetch(ctx, DayQuery(day), "t", true)
	if err != nil {
		t.Fatal(err)
	}
	if raw.Len() != 5 {
		t.Errorf("redownload rows = %d, expected 5", raw.Len())
	}
	if len(store.calls) != 2 {
		t.Errorf("upstream calls = %d, expected 2", len(store.calls))
	}

	after, err := os.ReadFile(snaps.Path("t", day))
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Error("redownload rewrote an existing snapshot")
	}
}

func TestRangeEmptyDaysKeepHeader(t *testing.T) {
	store := &fakeStore{days: map[string]*table.Raw{}}
	r, _ := newTestRetriever(t, store, "2023-06-10")

	raw, err := r.Fetch(context.Background(),
		RangeQuery(calendar.MustParse("2023-05-01"), calendar.MustParse("2023-05-03")), "t", false)
	if err != nil {
		t.Fatal(err)
	}
	if raw.Len() != 0 {
		t.Errorf("rows = %d, expected 0", raw.Len())
	}
	if len(raw.Columns) != 5 {
		t.Errorf("columns = %v, expected upstream header", raw.Columns)
	}
}

func TestUpstreamErrorPropagates(t *testing.T) {
	boom := errors.New("connection refused")
	store := &fakeStore{err: boom}
	r, snaps := newTestRetriever(t, store, "2023-06-10")
	day := calendar.MustParse("2023-05-29")

	_, err := r.Fetch(context.Background(), DayQuery(day), "t", false)
	if !errors.Is(err, ErrUpstream) {
		t.Errorf("error = %v, expected ErrUpstream", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, expected to wrap the cause", err)
	}
	if exists, _ := snaps.Exists("t", day); exists {
		t.Error("snapshot written after upstream failure")
	}
}

func TestQueryDays(t *testing.T) {
	tests := []struct {
		name     string
		query    Query
		expected int
	}{
		{"single", DayQuery(calendar.MustParse("2023-05-29")), 1},
		{"range", RangeQuery(calendar.MustParse("2023-05-29"), calendar.MustParse("2023-06-02")), 5},
		{"reversed", RangeQuery(calendar.MustParse("2023-06-02"), calendar.MustParse("2023-05-29")), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(tt.query.Days()); got != tt.expected {
				t.Errorf("len(Days()) = %d, expected %d", got, tt.expected)
			}
		})
	}
}
