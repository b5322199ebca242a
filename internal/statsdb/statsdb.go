// Package statsdb persists per-run bucket statistics in SQLite.
package statsdb

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"math"
	"time"

	"fortio.org/safecast"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"venir/internal/buckets"
)

//go:embed schema.sql
var schemaSQL string

// 1 - runs + buckets
const currentSchemaVersion = 1

// Run is one verification run.
type Run struct {
	ID      uuid.UUID   `json:"run_id"`
	Unit    string      `json:"unit"`
	Started time.Time   `json:"started"`
	Solver  string      `json:"solver"`
	Rlimit  float64     `json:"rlimit"`
	Success bool        `json:"success"`
	Queries int         `json:"queries"`
	Failed  int         `json:"failed"`
	Buckets []BucketRow `json:"buckets"`
}

// BucketRow holds the statistics of one bucket.
type BucketRow struct {
	Bucket      string        `json:"bucket"`
	Functions   int           `json:"functions"`
	TimeSMTInit time.Duration `json:"time_smt_init_ns"`
	TimeSMTRun  time.Duration `json:"time_smt_run_ns"`
	RlimitCount uint64        `json:"rlimit_count"`
}

// Rows converts verified buckets to rows, in order.
func Rows(bs []*buckets.Bucket) []BucketRow {
	out := make([]BucketRow, 0, len(bs))
	for _, b := range bs {
		out = append(out, BucketRow{
			Bucket:      b.ID.FriendlyName(),
			Functions:   len(b.Functions),
			TimeSMTInit: b.Stats.TimeSMTInit,
			TimeSMTRun:  b.Stats.TimeSMTRun,
			RlimitCount: b.Stats.RlimitCount,
		})
	}
	return out
}

// Store wraps the statistics database.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	// SQLite допускает одного писателя
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set schema version: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func toInt64(v uint64) int64 {
	n, err := safecast.Conv[int64](v)
	if err != nil {
		return math.MaxInt64
	}
	return n
}

// Save writes r and its buckets in one transaction.
func (s *Store) Save(ctx context.Context, r *Run) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, unit, started_at, solver, rlimit, success, queries, failed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID.String(), r.Unit, r.Started.UTC().Format(time.RFC3339Nano), r.Solver, r.Rlimit,
		r.Success, r.Queries, r.Failed)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", r.ID, err)
	}
	for i, b := range r.Buckets {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO buckets (run_id, seq, bucket, functions, smt_init_ns, smt_run_ns, rlimit_count)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			r.ID.String(), i, b.Bucket, b.Functions,
			b.TimeSMTInit.Nanoseconds(), b.TimeSMTRun.Nanoseconds(), toInt64(b.RlimitCount))
		if err != nil {
			return fmt.Errorf("insert bucket %s: %w", b.Bucket, err)
		}
	}
	return tx.Commit()
}

// Load reads the run with the given id.
func (s *Store) Load(ctx context.Context, id uuid.UUID) (*Run, error) {
	r := &Run{ID: id}
	var started string
	err := s.db.QueryRowContext(ctx,
		`SELECT unit, started_at, solver, rlimit, success, queries, failed FROM runs WHERE run_id = ?`,
		id.String()).Scan(&r.Unit, &started, &r.Solver, &r.Rlimit, &r.Success, &r.Queries, &r.Failed)
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", id, err)
	}
	if r.Started, err = time.Parse(time.RFC3339Nano, started); err != nil {
		return nil, fmt.Errorf("load run %s: bad timestamp: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT bucket, functions, smt_init_ns, smt_run_ns, rlimit_count
		 FROM buckets WHERE run_id = ? ORDER BY seq`, id.String())
	if err != nil {
		return nil, fmt.Errorf("load buckets of %s: %w", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		var b BucketRow
		var initNs, runNs, rlimit int64
		if err := rows.Scan(&b.Bucket, &b.Functions, &initNs, &runNs, &rlimit); err != nil {
			return nil, err
		}
		b.TimeSMTInit = time.Duration(initNs)
		b.TimeSMTRun = time.Duration(runNs)
		if n, err := safecast.Conv[uint64](rlimit); err == nil {
			b.RlimitCount = n
		}
		r.Buckets = append(r.Buckets, b)
	}
	return r, rows.Err()
}

// Totals sums the solver steps recorded for bucket across all runs.
func (s *Store) Totals(ctx context.Context, bucket string) (runs int, steps int64, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(rlimit_count), 0) FROM buckets WHERE bucket = ?`,
		bucket).Scan(&runs, &steps)
	return runs, steps, err
}
