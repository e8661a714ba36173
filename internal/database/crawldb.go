package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/sitecrawl/internal/model"
)

// FileName is the database file created inside the data directory.
const FileName = "sitecrawl.db"

// ErrRunNotFound is returned by GetRun for an unknown ID.
var ErrRunNotFound = errors.New("crawl run not found")

// timeLayout is fixed width so stored timestamps sort as strings.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// CrawlDB provides SQLite storage for visit times and run summaries.
type CrawlDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file if missing.
	CreateIfNotExists bool

	// EnableWAL enables write-ahead logging.
	EnableWAL bool
}

// DefaultOptions returns the options used by the CLI.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the database in dbDir.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	// Without CreateIfNotExists the file must already be there
	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create a missing file; mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{db: db, dbPath: dbPath}

	// WAL lets the history command read while a crawl is writing
	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// Schema
	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return cdb, nil
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// Path returns the database file location.
func (cdb *CrawlDB) Path() string {
	return cdb.dbPath
}

func (cdb *CrawlDB) createTables() error {
	// visits holds one row per URL: the latest expansion time only.
	// runs holds one summary row per crawl invocation.
	schema := `
	CREATE TABLE IF NOT EXISTS visits (
		url TEXT PRIMARY KEY,
		hostname TEXT NOT NULL,
		visited_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_visits_hostname ON visits(hostname);
	CREATE INDEX IF NOT EXISTS idx_visits_visited_at ON visits(visited_at);

	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seed_url TEXT NOT NULL,
		hostname TEXT NOT NULL,
		format TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL DEFAULT '',
		expanded INTEGER NOT NULL DEFAULT 0,
		discovered INTEGER NOT NULL DEFAULT 0,
		saved INTEGER NOT NULL DEFAULT 0,
		fetch_failures INTEGER NOT NULL DEFAULT 0,
		checkpoints INTEGER NOT NULL DEFAULT 0,
		checkpoint_failures INTEGER NOT NULL DEFAULT 0,
		output_path TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		error_message TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_runs_hostname ON runs(hostname);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// RecordVisit stores at as the last expansion time of url.
// An existing row is replaced only if at is later.
func (cdb *CrawlDB) RecordVisit(ctx context.Context, url, hostname string, at time.Time) error {
	query := `
	INSERT INTO visits (url, hostname, visited_at)
	VALUES (?, ?, ?)
	ON CONFLICT(url) DO UPDATE SET
		hostname = excluded.hostname,
		visited_at = excluded.visited_at
	WHERE excluded.visited_at > visits.visited_at
	`

	if _, err := cdb.db.ExecContext(ctx, query, url, hostname, formatTimestamp(at)); err != nil {
		return fmt.Errorf("failed to record visit: %w", err)
	}
	return nil
}

// LastVisit returns the stored visit time of url. ok is false when the URL
// has never been recorded.
func (cdb *CrawlDB) LastVisit(ctx context.Context, url string) (at time.Time, ok bool, err error) {
	var ts string
	err = cdb.db.QueryRowContext(ctx, `SELECT visited_at FROM visits WHERE url = ?`, url).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to get visit: %w", err)
	}
	return parseTimestamp(ts), true, nil
}

// LoadVisits returns the visit times of hostname's URLs that are later
// than since. A zero since returns every visit.
func (cdb *CrawlDB) LoadVisits(ctx context.Context, hostname string, since time.Time) (map[string]time.Time, error) {
	query := `SELECT url, visited_at FROM visits WHERE hostname = ? AND visited_at > ?`

	// Every stored timestamp sorts after the empty string
	cutoff := ""
	if !since.IsZero() {
		cutoff = formatTimestamp(since)
	}

	rows, err := cdb.db.QueryContext(ctx, query, hostname, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to load visits: %w", err)
	}
	defer rows.Close()

	visits := make(map[string]time.Time)
	for rows.Next() {
		var url, ts string
		if err := rows.Scan(&url, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan visit: %w", err)
		}
		visits[url] = parseTimestamp(ts)
	}
	return visits, rows.Err()
}

// CountVisits returns the number of stored visits for hostname.
func (cdb *CrawlDB) CountVisits(ctx context.Context, hostname string) (int, error) {
	var n int
	err := cdb.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM visits WHERE hostname = ?`, hostname).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count visits: %w", err)
	}
	return n, nil
}

// SaveRun inserts run, or updates it when run.ID is already set.
// On insert run.ID is filled in.
func (cdb *CrawlDB) SaveRun(ctx context.Context, run *model.CrawlRun) error {
	finished := ""
	if !run.FinishedAt.IsZero() {
		finished = formatTimestamp(run.FinishedAt)
	}

	// A run saved before keeps its row
	if run.ID != 0 {
		query := `
		UPDATE runs SET
			finished_at = ?, expanded = ?, discovered = ?, saved = ?,
			fetch_failures = ?, checkpoints = ?, checkpoint_failures = ?,
			output_path = ?, status = ?, error_message = ?
		WHERE id = ?
		`
		res, err := cdb.db.ExecContext(ctx, query,
			finished, run.Expanded, run.Discovered, run.Saved,
			run.FetchFailures, run.Checkpoints, run.CheckpointFailures,
			run.OutputPath, string(run.Status), run.ErrorMessage,
			run.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update crawl run: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("%w: id %d", ErrRunNotFound, run.ID)
		}
		return nil
	}

	// Insert path
	query := `
	INSERT INTO runs (
		seed_url, hostname, format, started_at, finished_at,
		expanded, discovered, saved, fetch_failures,
		checkpoints, checkpoint_failures, output_path, status, error_message
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := cdb.db.ExecContext(ctx, query,
		run.SeedURL, run.Hostname, string(run.Format), formatTimestamp(run.StartedAt), finished,
		run.Expanded, run.Discovered, run.Saved, run.FetchFailures,
		run.Checkpoints, run.CheckpointFailures, run.OutputPath, string(run.Status), run.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to save crawl run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get crawl run id: %w", err)
	}
	run.ID = id
	return nil
}

const runColumns = `id, seed_url, hostname, format, started_at, finished_at,
	expanded, discovered, saved, fetch_failures,
	checkpoints, checkpoint_failures, output_path, status, error_message`

// GetRun retrieves a run by ID.
func (cdb *CrawlDB) GetRun(ctx context.Context, id int64) (*model.CrawlRun, error) {
	row := cdb.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get crawl run: %w", err)
	}
	return run, nil
}

// ListRuns returns runs newest first. An empty hostname lists every host.
// A non-positive limit returns all rows.
func (cdb *CrawlDB) ListRuns(ctx context.Context, hostname string, limit int) ([]*model.CrawlRun, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE 1=1`
	args := make([]any, 0, 2)

	if hostname != "" {
		query += " AND hostname = ?"
		args = append(args, hostname)
	}
	query += " ORDER BY started_at DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list crawl runs: %w", err)
	}
	defer rows.Close()

	var runs []*model.CrawlRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan crawl run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ListHosts returns every hostname that has at least one recorded run.
func (cdb *CrawlDB) ListHosts(ctx context.Context) ([]string, error) {
	rows, err := cdb.db.QueryContext(ctx, `SELECT DISTINCT hostname FROM runs ORDER BY hostname`)
	if err != nil {
		return nil, fmt.Errorf("failed to list hosts: %w", err)
	}
	defer rows.Close()

	var hosts []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, fmt.Errorf("failed to scan host: %w", err)
		}
		hosts = append(hosts, h)
	}
	return hosts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(s rowScanner) (*model.CrawlRun, error) {
	var (
		run                 model.CrawlRun
		format, status      string
		startedAt, finished string
	)
	err := s.Scan(
		&run.ID, &run.SeedURL, &run.Hostname, &format, &startedAt, &finished,
		&run.Expanded, &run.Discovered, &run.Saved, &run.FetchFailures,
		&run.Checkpoints, &run.CheckpointFailures, &run.OutputPath, &status, &run.ErrorMessage,
	)
	if err != nil {
		return nil, err
	}
	run.Format = model.OutputFormat(format)
	run.Status = model.RunStatus(status)
	run.StartedAt = parseTimestamp(startedAt)
	if finished != "" {
		run.FinishedAt = parseTimestamp(finished)
	}
	return &run, nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// timestampFormats lists the layouts parseTimestamp accepts, most specific first.
var timestampFormats = []string{
	timeLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp parses s with each known layout and returns the zero time
// if none matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
