package upstream

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/chrissnell/climatewatch/internal/calendar"
	"github.com/chrissnell/climatewatch/pkg/config"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"
)

func newSQLiteStore(t *testing.T) *SQLStore {
	t.Helper()

	path := filepath.Join(t.TempDir(), "plant.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	stmts := []string{
		`CREATE TABLE Mansfield_climati_cbc (fecha TEXT, hora INTEGER, minuto INTEGER, segundo INTEGER, Z1_T REAL)`,
		`INSERT INTO Mansfield_climati_cbc VALUES ('2024-03-05', 10, 0, 30, 21.5)`,
		`INSERT INTO Mansfield_climati_cbc VALUES ('2024-03-05', 9, 59, 0, 21.25)`,
		`INSERT INTO Mansfield_climati_cbc VALUES ('2024-03-06', 0, 0, 0, 19)`,
		`INSERT INTO Mansfield_climati_cbc VALUES ('2024-03-05 00:00:00', 0, 0, 0, NULL)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}

	return NewSQLStoreFromDB(db, "?")
}

func TestSQLStoreFetchDay(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	raw, err := store.FetchDay(ctx, "Mansfield_climati_cbc", calendar.MustParse("2024-03-05"))
	if err != nil {
		t.Fatalf("FetchDay() error = %v", err)
	}

	wantCols := []string{"fecha", "hora", "minuto", "segundo", "Z1_T"}
	if len(raw.Columns) != len(wantCols) {
		t.Fatalf("columns = %v, expected %v", raw.Columns, wantCols)
	}
	for i, c := range wantCols {
		if raw.Columns[i] != c {
			t.Errorf("column %d = %q, expected %q", i, raw.Columns[i], c)
		}
	}

	if raw.Len() != 3 {
		t.Fatalf("rows = %d, expected 3", raw.Len())
	}

	z1 := raw.Index("Z1_T")
	seen := map[string]bool{}
	for _, row := range raw.Rows {
		seen[row[z1]] = true
	}
	for _, want := range []string{"21.5", "21.25", ""} {
		if !seen[want] {
			t.Errorf("missing Z1_T value %q in %v", want, raw.Rows)
		}
	}
}

func TestSQLStoreFetchDayEmpty(t *testing.T) {
	store := newSQLiteStore(t)

	raw, err := store.FetchDay(context.Background(), "Mansfield_climati_cbc", calendar.MustParse("2023-01-01"))
	if err != nil {
		t.Fatalf("FetchDay() error = %v", err)
	}
	if raw.Len() != 0 {
		t.Errorf("rows = %d, expected 0", raw.Len())
	}
	if len(raw.Columns) != 5 {
		t.Errorf("columns = %v, expected the table header", raw.Columns)
	}
}

func TestSQLStoreRejectsBadTable(t *testing.T) {
	store := newSQLiteStore(t)

	_, err := store.FetchDay(context.Background(), "x; DROP TABLE y", calendar.MustParse("2024-03-05"))
	if err == nil {
		t.Fatal("expected error for invalid table name")
	}
}

func TestValidateTableName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"plain", "Mansfield_climati_cbc", false},
		{"schema qualified", "public.readings", false},
		{"leading underscore", "_staging", false},
		{"leading digit", "1table", true},
		{"space", "my table", true},
		{"quote", "t'", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTableName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTableName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestFormatValue(t *testing.T) {
	var num pgtype.Numeric
	if err := num.Scan("72.456"); err != nil {
		t.Fatalf("numeric scan: %v", err)
	}

	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"nil", nil, ""},
		{"string", "abc", "abc"},
		{"bytes", []byte("xyz"), "xyz"},
		{"date", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), "2024-03-05"},
		{"timestamp", time.Date(2024, 3, 5, 7, 8, 9, 0, time.UTC), "2024-03-05 07:08:09"},
		{"float", 21.5, "21.5"},
		{"float whole", float64(19), "19"},
		{"int64", int64(42), "42"},
		{"int32", int32(-3), "-3"},
		{"int", 7, "7"},
		{"bool", true, "true"},
		{"numeric", num, "72.456"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatValue(tt.input); got != tt.expected {
				t.Errorf("FormatValue(%v) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNewSQLiteDriver(t *testing.T) {
	cfg := config.UpstreamData{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "x.db")}
	store, err := New(context.Background(), cfg, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer store.Close()

	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestNewUnknownDriver(t *testing.T) {
	_, err := New(context.Background(), config.UpstreamData{Driver: "oracle"}, zap.NewNop().Sugar())
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
