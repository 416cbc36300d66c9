// Package sqlite implements the driven.RunArchive port on a local
// SQLite database. Completed runs are stored in full so past analyses
// can be listed and re-exported without hitting the data source again.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/jcherranz/spain-power-grid-analysis/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/jcherranz/spain-power-grid-analysis/internal/core/domain"
	"github.com/jcherranz/spain-power-grid-analysis/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.RunArchive = (*Store)(nil)

// Store is the SQLite-backed run archive.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates the archive at the specified data directory.
// If dataDir is empty, defaults to ~/.powergrid/data/archive.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".powergrid", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "archive.db")

	// WAL mode keeps reads cheap while a run is being written.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{db: db, path: dbPath}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending .up.sql migrations, tracking the applied
// version in a schema_migrations table.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		version, err := migrationVersion(name)
		if err != nil {
			return err
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration %s: %w", name, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %s: %w", name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %s: %w", name, err)
		}
	}

	return nil
}

// migrationVersion parses the numeric prefix of "0001_init.up.sql".
func migrationVersion(name string) (int, error) {
	prefix, _, ok := strings.Cut(name, "_")
	if !ok {
		return 0, fmt.Errorf("migration %s: missing version prefix", name)
	}
	version, err := strconv.Atoi(prefix)
	if err != nil {
		return 0, fmt.Errorf("migration %s: bad version prefix: %w", name, err)
	}
	return version, nil
}

// Save stores a completed run with all records and connections.
func (s *Store) Save(ctx context.Context, run *domain.Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, area, bbox, plants, substations, power_lines, likely, possible, started_at, runtime_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Summary.Area,
		run.Summary.BBox.String(),
		run.Summary.Plants,
		run.Summary.Substations,
		run.Summary.PowerLines,
		run.Summary.Likely,
		run.Summary.Possible,
		run.Summary.StartedAt.UTC(),
		run.Summary.Runtime.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	for _, rec := range append(append([]domain.InfrastructureRecord{}, run.Plants...), run.Substations...) {
		tags, err := json.Marshal(rec.Tags)
		if err != nil {
			return fmt.Errorf("encoding tags for %s: %w", rec.Key(), err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO records (run_id, key, element_id, element, kind, name, lat, lon, tags)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, rec.Key(), rec.ID, rec.Element, string(rec.Kind), rec.Name,
			rec.Location.Lat, rec.Location.Lon, string(tags),
		)
		if err != nil {
			return fmt.Errorf("inserting record %s: %w", rec.Key(), err)
		}
	}

	for _, conn := range run.Connections {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO connections (run_id, plant_key, substation_key, distance_km, likelihood)
			VALUES (?, ?, ?, ?, ?)`,
			run.ID, conn.PlantKey, conn.SubstationKey, conn.DistanceKM, string(conn.Likelihood),
		)
		if err != nil {
			return fmt.Errorf("inserting connection: %w", err)
		}
	}

	return tx.Commit()
}

// Get loads a run with all records and connections.
func (s *Store) Get(ctx context.Context, id string) (*domain.Run, error) {
	run, err := s.scanRun(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT key, element_id, element, kind, name, lat, lon, tags
		FROM records WHERE run_id = ? ORDER BY rowid`, id)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key, elem, kind, name, tagsJSON string
			elemID                          int64
			lat, lon                        float64
		)
		if err := rows.Scan(&key, &elemID, &elem, &kind, &name, &lat, &lon, &tagsJSON); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}

		var tags map[string]string
		if err := json.Unmarshal([]byte(tagsJSON), &tags); err != nil {
			return nil, fmt.Errorf("decoding tags for %s: %w", key, err)
		}

		rec := domain.InfrastructureRecord{
			ID:       elemID,
			Element:  elem,
			Kind:     domain.RecordKind(kind),
			Name:     name,
			Location: domain.GeoPoint{Lat: lat, Lon: lon},
			Tags:     tags,
		}
		if rec.Kind == domain.KindPlant {
			run.Plants = append(run.Plants, rec)
		} else {
			run.Substations = append(run.Substations, rec)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}

	connRows, err := s.db.QueryContext(ctx, `
		SELECT plant_key, substation_key, distance_km, likelihood
		FROM connections WHERE run_id = ? ORDER BY rowid`, id)
	if err != nil {
		return nil, fmt.Errorf("querying connections: %w", err)
	}
	defer connRows.Close()

	for connRows.Next() {
		var conn domain.Connection
		var likelihood string
		if err := connRows.Scan(&conn.PlantKey, &conn.SubstationKey, &conn.DistanceKM, &likelihood); err != nil {
			return nil, fmt.Errorf("scanning connection: %w", err)
		}
		conn.Likelihood = domain.Likelihood(likelihood)
		run.Connections = append(run.Connections, conn)
	}
	if err := connRows.Err(); err != nil {
		return nil, fmt.Errorf("iterating connections: %w", err)
	}

	return run, nil
}

// List returns run summaries, most recent first.
func (s *Store) List(ctx context.Context) ([]domain.Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, area, bbox, plants, substations, power_lines, likely, possible, started_at, runtime_ms
		FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		run, err := scanRunRow(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// scanRun loads one run header row.
func (s *Store) scanRun(ctx context.Context, id string) (*domain.Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, area, bbox, plants, substations, power_lines, likely, possible, started_at, runtime_ms
		FROM runs WHERE id = ?`, id)
	run, err := scanRunRow(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s: %w", id, domain.ErrRunNotFound)
	}
	return run, err
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRunRow(row rowScanner) (*domain.Run, error) {
	var (
		run       domain.Run
		bbox      string
		startedAt time.Time
		runtimeMS int64
	)
	err := row.Scan(
		&run.ID,
		&run.Summary.Area,
		&bbox,
		&run.Summary.Plants,
		&run.Summary.Substations,
		&run.Summary.PowerLines,
		&run.Summary.Likely,
		&run.Summary.Possible,
		&startedAt,
		&runtimeMS,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	parsed, err := domain.ParseBoundingBox(bbox)
	if err != nil {
		return nil, fmt.Errorf("decoding bbox %q: %w", bbox, err)
	}
	run.Summary.BBox = parsed
	run.Summary.StartedAt = startedAt
	run.Summary.Runtime = time.Duration(runtimeMS) * time.Millisecond
	return &run, nil
}
