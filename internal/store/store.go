// Package store persists saved jobs in a SQLite database.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5

	// Fixed-width timestamps so text ordering matches time ordering.
	tsLayout = "2006-01-02T15:04:05.000000000Z"
)

var (
	// ErrNotFound is returned when a job ID does not exist.
	ErrNotFound = errors.New("job not found")

	// ErrAmbiguous is returned when an ID prefix matches more than one job.
	ErrAmbiguous = errors.New("job ID prefix is ambiguous")
)

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
	now  func() time.Time
}

// Open opens (creating if needed) the job database at path.
func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("store path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("store path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory %q: %w", dir, err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite store %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Save inserts job with its materials and costs. An empty ID is filled with
// a new UUID and a zero CreatedAt with the current time. Returns the saved
// job.
func (s *Store) Save(job Job) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = s.now()
	}
	job.CreatedAt = job.CreatedAt.UTC()

	err := s.withRetry("save job", func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		if err := insertJob(tx, job); err != nil {
			_ = tx.Rollback()
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		return Job{}, err
	}

	slog.Debug("job saved", "id", job.ID, "design", job.DesignName)
	return job, nil
}

func insertJob(tx *sql.Tx, j Job) error {
	m := j.Metrics
	_, err := tx.Exec(`
INSERT INTO jobs (
  id, created_at_utc, design_name, archive_path, stitch_count, thread_length_yards,
  width_mm, height_mm, color_changes, quantity, thread_weight, active_heads,
  use_foam, use_coloreel, total_runtime, pieces_per_cycle, total_cycles,
  complexity_score, direction_changes, density_score, stitch_length_variance
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.ID,
		j.CreatedAt.Format(tsLayout),
		j.DesignName,
		j.ArchivePath,
		m.StitchCount,
		m.ThreadLengthYards,
		m.WidthMM,
		m.HeightMM,
		m.ColorChanges,
		j.Quantity,
		j.ThreadWeight,
		j.ActiveHeads,
		j.UseFoam,
		j.UseColoreel,
		j.TotalRuntime,
		j.PiecesPerCycle,
		j.TotalCycles,
		m.ComplexityScore,
		m.DirectionChanges,
		m.DensityScore,
		m.StitchLengthVariance,
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}

	for _, mat := range j.Materials {
		if _, err := tx.Exec(
			`INSERT INTO material_usage (job_id, material_type, quantity, unit, unit_cost) VALUES (?, ?, ?, ?, ?)`,
			j.ID, mat.Type, mat.Quantity, mat.Unit, mat.UnitCost,
		); err != nil {
			return fmt.Errorf("insert material %s: %w", mat.Type, err)
		}
	}
	for _, c := range j.Costs {
		if _, err := tx.Exec(
			`INSERT INTO cost_breakdown (job_id, cost_type, amount) VALUES (?, ?, ?)`,
			j.ID, c.Type, c.Amount,
		); err != nil {
			return fmt.Errorf("insert cost %s: %w", c.Type, err)
		}
	}
	return nil
}

const jobColumns = `
  id, created_at_utc, design_name, archive_path, stitch_count, thread_length_yards,
  width_mm, height_mm, color_changes, quantity, thread_weight, active_heads,
  use_foam, use_coloreel, total_runtime, pieces_per_cycle, total_cycles,
  complexity_score, direction_changes, density_score, stitch_length_variance`

// Recent returns up to limit jobs, newest first. limit <= 0 returns all.
func (s *Store) Recent(limit int) ([]Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `SELECT` + jobColumns + ` FROM jobs ORDER BY created_at_utc DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var rows *sql.Rows
	err := s.withRetry("load jobs", func() error {
		var qErr error
		rows, qErr = s.db.Query(query, args...)
		return qErr
	})
	if err != nil {
		return nil, err
	}

	jobs := make([]Job, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate job rows: %w", err)
	}
	rows.Close()

	for i := range jobs {
		if err := s.loadLines(&jobs[i]); err != nil {
			return nil, err
		}
	}
	return jobs, nil
}

// Get returns the job with id, or ErrNotFound.
func (s *Store) Get(id string) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRow(`SELECT`+jobColumns+` FROM jobs WHERE id = ?`, id)
	j, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Job{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Job{}, err
	}
	if err := s.loadLines(&j); err != nil {
		return Job{}, err
	}
	return j, nil
}

// Resolve returns the full ID of the one job whose ID starts with prefix.
func (s *Store) Resolve(prefix string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", fmt.Errorf("%w: empty ID", ErrNotFound)
	}

	rows, err := s.db.Query(`SELECT id FROM jobs WHERE substr(id, 1, ?) = ? LIMIT 2`, len(prefix), prefix)
	if err != nil {
		return "", fmt.Errorf("resolve job %q: %w", prefix, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("scan job id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	switch len(ids) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrNotFound, prefix)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("%w: %s", ErrAmbiguous, prefix)
	}
}

// Count returns the number of saved jobs.
func (s *Store) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM jobs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count jobs: %w", err)
	}
	return n, nil
}

// Delete removes a job and its line items.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res sql.Result
	err := s.withRetry("delete job", func() error {
		var err error
		res, err = s.db.Exec(`DELETE FROM jobs WHERE id = ?`, id)
		return err
	})
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(sc scanner) (Job, error) {
	var (
		j     Job
		tsRaw string
		m     = &j.Metrics
	)
	if err := sc.Scan(
		&j.ID,
		&tsRaw,
		&j.DesignName,
		&j.ArchivePath,
		&m.StitchCount,
		&m.ThreadLengthYards,
		&m.WidthMM,
		&m.HeightMM,
		&m.ColorChanges,
		&j.Quantity,
		&j.ThreadWeight,
		&j.ActiveHeads,
		&j.UseFoam,
		&j.UseColoreel,
		&j.TotalRuntime,
		&j.PiecesPerCycle,
		&j.TotalCycles,
		&m.ComplexityScore,
		&m.DirectionChanges,
		&m.DensityScore,
		&m.StitchLengthVariance,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Job{}, err
		}
		return Job{}, fmt.Errorf("scan job row: %w", err)
	}

	ts, err := time.Parse(tsLayout, tsRaw)
	if err != nil {
		return Job{}, fmt.Errorf("parse job timestamp %q: %w", tsRaw, err)
	}
	j.CreatedAt = ts.UTC()
	return j, nil
}

func (s *Store) loadLines(j *Job) error {
	rows, err := s.db.Query(
		`SELECT material_type, quantity, unit, unit_cost FROM material_usage WHERE job_id = ? ORDER BY id`, j.ID)
	if err != nil {
		return fmt.Errorf("load materials: %w", err)
	}
	for rows.Next() {
		var mat Material
		if err := rows.Scan(&mat.Type, &mat.Quantity, &mat.Unit, &mat.UnitCost); err != nil {
			rows.Close()
			return fmt.Errorf("scan material row: %w", err)
		}
		j.Materials = append(j.Materials, mat)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate material rows: %w", err)
	}

	rows, err = s.db.Query(`SELECT cost_type, amount FROM cost_breakdown WHERE job_id = ? ORDER BY id`, j.ID)
	if err != nil {
		return fmt.Errorf("load costs: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c CostItem
		if err := rows.Scan(&c.Type, &c.Amount); err != nil {
			return fmt.Errorf("scan cost row: %w", err)
		}
		j.Costs = append(j.Costs, c)
	}
	return rows.Err()
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}
