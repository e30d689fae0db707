package survey

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jpalmerr/wifiboard/internal/scan"
)

const schema = `
CREATE TABLE IF NOT EXISTS survey_samples (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	captured_at    TEXT    NOT NULL,
	location_x     REAL    NOT NULL,
	location_y     REAL    NOT NULL,
	location_name  TEXT    NOT NULL DEFAULT '',
	ssid           TEXT    NOT NULL,
	bssid          TEXT    NOT NULL DEFAULT '',
	rssi_dbm       INTEGER NOT NULL,
	signal_quality INTEGER NOT NULL,
	frequency      TEXT    NOT NULL DEFAULT '',
	channel        INTEGER NOT NULL DEFAULT 0,
	security       TEXT    NOT NULL DEFAULT '',
	scan_number    INTEGER NOT NULL DEFAULT 1
);
CREATE INDEX IF NOT EXISTS idx_survey_samples_ssid ON survey_samples(ssid);
`

const insertSQL = `
INSERT INTO survey_samples (
	captured_at, location_x, location_y, location_name,
	ssid, bssid, rssi_dbm, signal_quality,
	frequency, channel, security, scan_number
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const selectCols = `id, captured_at, location_x, location_y, location_name,
	ssid, bssid, rssi_dbm, signal_quality, frequency, channel, security, scan_number`

// csvHeader matches the column layout consumed by external analysis
// notebooks; do not reorder.
var csvHeader = []string{
	"timestamp", "location_x", "location_y", "location_name",
	"ssid", "bssid", "rssi_dbm", "signal_quality",
	"frequency", "channel", "security", "scan_number",
}

// Location is a surveyed position on the floor plan, in meters or grid
// units.
type Location struct {
	X    float64
	Y    float64
	Name string
}

// String formats a location for logs.
func (l Location) String() string {
	if l.Name != "" {
		return fmt.Sprintf("%s (%.1f, %.1f)", l.Name, l.X, l.Y)
	}
	return fmt.Sprintf("(%.1f, %.1f)", l.X, l.Y)
}

// Sample is one stored measurement: an observation tagged with where and in
// which scan pass it was captured.
type Sample struct {
	scan.Observation

	ID         int64
	Location   Location
	ScanNumber int
}

// Summary describes the stored data set.
type Summary struct {
	Samples   int
	Networks  int
	Locations int
	First     time.Time
	Last      time.Time
}

// Store persists survey samples in a SQLite database.
type Store struct {
	logger *slog.Logger
	db     *sql.DB
}

// Open opens (and if needed creates) the survey database at path. Use
// ":memory:" for an ephemeral store.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open survey db: %w", err)
	}
	// a single writer keeps sqlite contention-free and makes :memory:
	// databases behave with the connection pool
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping survey db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply survey schema: %w", err)
	}

	logger.Debug("survey store opened", "path", path)
	return &Store{logger: logger, db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Insert stores samples in one transaction.
func (s *Store) Insert(ctx context.Context, samples []Sample) error {
	if len(samples) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin survey insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return fmt.Errorf("prepare survey insert: %w", err)
	}
	defer stmt.Close()

	for _, smp := range samples {
		_, err := stmt.ExecContext(ctx,
			smp.CapturedAt.UTC().Format(time.RFC3339Nano),
			smp.Location.X, smp.Location.Y, smp.Location.Name,
			smp.SSID, smp.BSSID, smp.SignalDBm, smp.Quality,
			smp.Band, smp.Channel, smp.Security, smp.ScanNumber,
		)
		if err != nil {
			return fmt.Errorf("insert survey sample: %w", err)
		}
	}
	return tx.Commit()
}

// Samples returns stored samples in insertion order. A non-empty ssid
// restricts the result to one network.
func (s *Store) Samples(ctx context.Context, ssid string) ([]Sample, error) {
	query := `SELECT ` + selectCols + ` FROM survey_samples ORDER BY id`
	var args []any
	if ssid != "" {
		query = `SELECT ` + selectCols + ` FROM survey_samples WHERE ssid = ? ORDER BY id`
		args = append(args, ssid)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query survey samples: %w", err)
	}
	defer rows.Close()

	var out []Sample
	for rows.Next() {
		var smp Sample
		var captured string
		if err := rows.Scan(&smp.ID, &captured,
			&smp.Location.X, &smp.Location.Y, &smp.Location.Name,
			&smp.Observation.SSID, &smp.Observation.BSSID,
			&smp.Observation.SignalDBm, &smp.Observation.Quality,
			&smp.Observation.Band, &smp.Observation.Channel,
			&smp.Observation.Security, &smp.ScanNumber,
		); err != nil {
			return nil, fmt.Errorf("scan survey sample: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, captured); err == nil {
			smp.Observation.CapturedAt = t
		}
		out = append(out, smp)
	}
	return out, rows.Err()
}

// Summary reports counts and the time range of the stored data set.
func (s *Store) Summary(ctx context.Context) (Summary, error) {
	const q = `SELECT COUNT(*), COUNT(DISTINCT ssid),
		COUNT(DISTINCT location_x || ',' || location_y),
		COALESCE(MIN(captured_at), ''), COALESCE(MAX(captured_at), '')
		FROM survey_samples`

	var sum Summary
	var first, last string
	if err := s.db.QueryRowContext(ctx, q).Scan(
		&sum.Samples, &sum.Networks, &sum.Locations, &first, &last,
	); err != nil {
		return Summary{}, fmt.Errorf("survey summary: %w", err)
	}
	if t, err := time.Parse(time.RFC3339Nano, first); err == nil {
		sum.First = t
	}
	if t, err := time.Parse(time.RFC3339Nano, last); err == nil {
		sum.Last = t
	}
	return sum, nil
}

// ExportCSV writes every stored sample to w in the survey CSV layout and
// returns the number of rows written.
func (s *Store) ExportCSV(ctx context.Context, w io.Writer) (int, error) {
	samples, err := s.Samples(ctx, "")
	if err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return 0, fmt.Errorf("write csv header: %w", err)
	}
	for _, smp := range samples {
		rec := []string{
			smp.CapturedAt.UTC().Format(time.RFC3339Nano),
			strconv.FormatFloat(smp.Location.X, 'f', -1, 64),
			strconv.FormatFloat(smp.Location.Y, 'f', -1, 64),
			smp.Location.Name,
			smp.SSID,
			smp.BSSID,
			strconv.Itoa(smp.SignalDBm),
			strconv.Itoa(smp.Quality),
			smp.Band,
			strconv.Itoa(smp.Channel),
			smp.Security,
			strconv.Itoa(smp.ScanNumber),
		}
		if err := cw.Write(rec); err != nil {
			return 0, fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return len(samples), cw.Error()
}
