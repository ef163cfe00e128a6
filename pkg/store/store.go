// Package store keeps the history of climate readings in SQLite.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chewxy/math32"
	_ "modernc.org/sqlite"

	"github.com/itohio/comfort/pkg/module"
)

//go:embed migrations.sql
var migrationsFS embed.FS

// DefaultWriteTimeout bounds a single Report insert.
const DefaultWriteTimeout = 250 * time.Millisecond

var (
	// ErrNoPath is returned by Open for an empty path.
	ErrNoPath = errors.New("sqlite path is required")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("store closed")
)

var _ module.Sink = (*Store)(nil)

// Store appends readings to a SQLite database.
type Store struct {
	db           *sql.DB
	writeTimeout time.Duration
}

// Open opens or creates the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrNoPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	s := &Store{db: db, writeTimeout: DefaultWriteTimeout}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate store: %w", err)
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Report implements module.Sink.
func (s *Store) Report(r module.Reading) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
	defer cancel()
	return s.Append(ctx, r)
}

// Append inserts one reading. NaN values are stored as NULL.
func (s *Store) Append(ctx context.Context, r module.Reading) error {
	if s == nil || s.db == nil {
		return ErrClosed
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO readings(at_micros, temperature, mcu_temperature, humidity, alarm, fan)
		 VALUES(?,?,?,?,?,?)`,
		r.Timestamp.UnixMicro(), nullFloat(r.Temperature), nullFloat(r.MCUTemperature),
		nullFloat(r.Humidity), r.Alarm, r.Fan,
	)
	if err != nil {
		return fmt.Errorf("failed to store reading: %w", err)
	}
	return nil
}

// Recent returns up to n readings, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]module.Reading, error) {
	if s == nil || s.db == nil {
		return nil, ErrClosed
	}
	if n <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT at_micros, temperature, mcu_temperature, humidity, alarm, fan
		 FROM readings ORDER BY at_micros DESC, id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query readings: %w", err)
	}
	defer rows.Close()

	out := make([]module.Reading, 0, n)
	for rows.Next() {
		var (
			micros           int64
			temp, mcu, humid sql.NullFloat64
			r                module.Reading
		)
		if err := rows.Scan(&micros, &temp, &mcu, &humid, &r.Alarm, &r.Fan); err != nil {
			return nil, fmt.Errorf("failed to scan reading: %w", err)
		}
		r.Timestamp = time.UnixMicro(micros)
		r.Temperature = floatOrNaN(temp)
		r.MCUTemperature = floatOrNaN(mcu)
		r.Humidity = floatOrNaN(humid)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Count returns the number of stored readings.
func (s *Store) Count(ctx context.Context) (int64, error) {
	if s == nil || s.db == nil {
		return 0, ErrClosed
	}
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM readings`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Prune deletes readings older than before and returns how many were removed.
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, ErrClosed
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM readings WHERE at_micros < ?`, before.UnixMicro())
	if err != nil {
		return 0, fmt.Errorf("failed to prune readings: %w", err)
	}
	return res.RowsAffected()
}

func nullFloat(v float32) sql.NullFloat64 {
	if math32.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: float64(v), Valid: true}
}

func floatOrNaN(v sql.NullFloat64) float32 {
	if !v.Valid {
		return math32.NaN()
	}
	return float32(v.Float64)
}
