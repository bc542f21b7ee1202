// Package history keeps a SQLite record of completed sessions.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/suykerbuyk/gng-pvt/internal/engine"
)

// ErrNotFound is returned by Get for an unknown session ID.
var ErrNotFound = errors.New("session not found")

// timeLayout has fixed-width fractions so stored times sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Entry is one stored session.
type Entry struct {
	ID          string
	StartedAt   time.Time
	EndedAt     time.Time
	Profile     string
	Target      int
	TotalTrials int
	Counts      engine.Counts
	Accuracy    float64
	MeanRT      *float64
	WorstRT     *int
	StdDevRT    *float64
	ReportPath  string
	PlotPath    string
	ArchivePath string
	Simulated   bool
}

// FromSummary builds an entry for a finished session.
func FromSummary(id string, s engine.Summary) Entry {
	return Entry{
		ID:          id,
		StartedAt:   s.StartedAt,
		EndedAt:     s.EndedAt,
		Profile:     string(s.Config.Profile),
		Target:      s.Config.Target,
		TotalTrials: s.TotalTrials,
		Counts:      s.Counts,
		Accuracy:    s.Accuracy,
		MeanRT:      s.MeanRT,
		WorstRT:     s.WorstRT,
		StdDevRT:    s.StdDevRT,
	}
}

// Store provides SQLite-backed persistence for session history.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and migrates it.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("open history: create dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// New returns a Store bound to an existing, migrated database handle.
func New(db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Add inserts e. IDs are unique.
func (s *Store) Add(e Entry) error {
	if s == nil {
		return fmt.Errorf("add session: store is nil")
	}
	if s.db == nil {
		return fmt.Errorf("add session: db is nil")
	}
	if e.ID == "" {
		return fmt.Errorf("add session: id is empty")
	}

	sqlString := `INSERT INTO sessions (id, started_at, ended_at, profile, target, total_trials,
	             correct_go, correct_no_go, commission_errors, commission_outliers, omission_outliers,
	             accuracy, mean_rt, worst_rt, sd_rt, report_path, plot_path, archive_path, simulated)
	             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.Exec(sqlString,
		e.ID,
		e.StartedAt.UTC().Format(timeLayout),
		e.EndedAt.UTC().Format(timeLayout),
		e.Profile, e.Target, e.TotalTrials,
		e.Counts.CorrectGo, e.Counts.CorrectNoGo, e.Counts.CommissionErrors,
		e.Counts.CommissionOutliers, e.Counts.OmissionOutliers,
		e.Accuracy,
		nullFloat(e.MeanRT), nullInt(e.WorstRT), nullFloat(e.StdDevRT),
		nullString(e.ReportPath), nullString(e.PlotPath), nullString(e.ArchivePath),
		e.Simulated,
	)
	if err != nil {
		return fmt.Errorf("add session: insert: %w", err)
	}
	return nil
}

const selectColumns = `SELECT id, started_at, ended_at, profile, target, total_trials,
	correct_go, correct_no_go, commission_errors, commission_outliers, omission_outliers,
	accuracy, mean_rt, worst_rt, sd_rt, report_path, plot_path, archive_path, simulated
	FROM sessions`

// Get returns the session with the given ID.
func (s *Store) Get(id string) (Entry, error) {
	if s == nil {
		return Entry{}, fmt.Errorf("get session: store is nil")
	}
	if s.db == nil {
		return Entry{}, fmt.Errorf("get session: db is nil")
	}
	e, err := scanEntry(s.db.QueryRow(selectColumns+` WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, fmt.Errorf("get session %s: %w", id, ErrNotFound)
		}
		return Entry{}, fmt.Errorf("get session: scan: %w", err)
	}
	return e, nil
}

// List returns sessions newest first. A limit <= 0 returns all.
func (s *Store) List(limit int) ([]Entry, error) {
	if s == nil {
		return nil, fmt.Errorf("list sessions: store is nil")
	}
	if s.db == nil {
		return nil, fmt.Errorf("list sessions: db is nil")
	}
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(selectColumns+` ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: query: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("list sessions: scan: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: rows: %w", err)
	}
	return entries, nil
}

// Count returns the number of stored sessions.
func (s *Store) Count() (int, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("count sessions: store is nil")
	}
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var e Entry
	var startedAt, endedAt string
	var meanRT, sdRT sql.NullFloat64
	var worstRT sql.NullInt64
	var reportPath, plotPath, archivePath sql.NullString

	err := row.Scan(&e.ID, &startedAt, &endedAt, &e.Profile, &e.Target, &e.TotalTrials,
		&e.Counts.CorrectGo, &e.Counts.CorrectNoGo, &e.Counts.CommissionErrors,
		&e.Counts.CommissionOutliers, &e.Counts.OmissionOutliers,
		&e.Accuracy, &meanRT, &worstRT, &sdRT, &reportPath, &plotPath, &archivePath, &e.Simulated)
	if err != nil {
		return Entry{}, err
	}

	e.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
	if err != nil {
		return Entry{}, fmt.Errorf("parse started_at: %w", err)
	}
	e.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt)
	if err != nil {
		return Entry{}, fmt.Errorf("parse ended_at: %w", err)
	}
	if meanRT.Valid {
		e.MeanRT = &meanRT.Float64
	}
	if sdRT.Valid {
		e.StdDevRT = &sdRT.Float64
	}
	if worstRT.Valid {
		v := int(worstRT.Int64)
		e.WorstRT = &v
	}
	e.ReportPath = reportPath.String
	e.PlotPath = plotPath.String
	e.ArchivePath = archivePath.String
	return e, nil
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func nullInt(i *int) any {
	if i == nil {
		return nil
	}
	return *i
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
