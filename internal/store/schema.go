package store

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is the latest migration this build knows about.
const SchemaVersion = 1

type migration struct {
	version int
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS jobs (
  id TEXT PRIMARY KEY,
  created_at_utc TEXT NOT NULL,
  design_name TEXT NOT NULL DEFAULT 'Untitled',
  archive_path TEXT NOT NULL DEFAULT '',
  stitch_count INTEGER NOT NULL,
  thread_length_yards REAL NOT NULL,
  width_mm REAL NOT NULL,
  height_mm REAL NOT NULL,
  color_changes INTEGER NOT NULL DEFAULT 0,
  quantity INTEGER NOT NULL,
  thread_weight INTEGER NOT NULL,
  active_heads INTEGER NOT NULL,
  use_foam INTEGER NOT NULL DEFAULT 0,
  use_coloreel INTEGER NOT NULL DEFAULT 0,
  total_runtime REAL NOT NULL DEFAULT 0,
  pieces_per_cycle INTEGER NOT NULL DEFAULT 0,
  total_cycles INTEGER NOT NULL DEFAULT 0,
  complexity_score REAL NOT NULL DEFAULT 0,
  direction_changes INTEGER NOT NULL DEFAULT 0,
  density_score REAL NOT NULL DEFAULT 0,
  stitch_length_variance REAL NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_jobs_created ON jobs(created_at_utc);

CREATE TABLE IF NOT EXISTS material_usage (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  job_id TEXT NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
  material_type TEXT NOT NULL,
  quantity REAL NOT NULL,
  unit TEXT NOT NULL,
  unit_cost REAL NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_material_job ON material_usage(job_id);

CREATE TABLE IF NOT EXISTS cost_breakdown (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  job_id TEXT NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
  cost_type TEXT NOT NULL,
  amount REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cost_job ON cost_breakdown(job_id);
`,
	},
}

// EnsureSchema applies any migrations newer than the database's version.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  applied_at_utc TEXT NOT NULL DEFAULT (CURRENT_TIMESTAMP)
);
`); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	var current int
	if err := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("read schema_migrations version: %w", err)
	}
	if current > SchemaVersion {
		return fmt.Errorf("schema version %d is newer than supported version %d", current, SchemaVersion)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.version, err)
		}
		if _, err := tx.Exec(m.sql); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %d: %w", m.version, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations(version) VALUES (?)`, m.version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.version, err)
		}
	}

	return nil
}
