package logsource

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"regexp"

	_ "modernc.org/sqlite"

	"github.com/okian/busyspot/internal/domain/occupancy"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLite reads the desk log from a table in a SQLite database.
type SQLite struct {
	path string
	db   *sql.DB
	cfg  settings
}

// OpenSQLite opens the database at path. Table and column names must be plain identifiers.
func OpenSQLite(path string, opts ...Option) (*SQLite, error) {
	cfg := defaults()
	for _, opt := range opts {
		opt(&cfg)
	}
	for _, ident := range []string{cfg.table, cfg.deskColumn, cfg.timestampColumn} {
		if !identRe.MatchString(ident) {
			return nil, fmt.Errorf("%w: bad identifier %q", occupancy.ErrSourceUnavailable, ident)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", occupancy.ErrSourceUnavailable, err)
	}
	return &SQLite{path: path, db: db, cfg: cfg}, nil
}

// Close releases the database handle.
func (s *SQLite) Close() error { return s.db.Close() }

// Records reads every row of the log table.
func (s *SQLite) Records(ctx context.Context) ([]occupancy.Record, error) {
	if _, err := os.Stat(s.path); err != nil {
		return nil, fmt.Errorf("%w: %w", occupancy.ErrSourceUnavailable, err)
	}
	q := fmt.Sprintf(`SELECT CAST(%q AS TEXT), CAST(%q AS TEXT) FROM %q`,
		s.cfg.deskColumn, s.cfg.timestampColumn, s.cfg.table)
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", occupancy.ErrSourceUnavailable, err)
	}
	defer rows.Close()

	var out []occupancy.Record
	for rows.Next() {
		var desk, ts sql.NullString
		if err := rows.Scan(&desk, &ts); err != nil {
			return nil, fmt.Errorf("%w: scan: %w", occupancy.ErrSourceUnavailable, err)
		}
		out = append(out, occupancy.Record{Desk: desk.String, Timestamp: ts.String})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", occupancy.ErrSourceUnavailable, err)
	}
	return out, nil
}

// Import creates the log table if needed and appends records in one transaction.
func (s *SQLite) Import(ctx context.Context, records []occupancy.Record) (int, error) {
	create := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q (%q TEXT, %q TEXT)`,
		s.cfg.table, s.cfg.deskColumn, s.cfg.timestampColumn)
	if _, err := s.db.ExecContext(ctx, create); err != nil {
		return 0, fmt.Errorf("create log table: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %q (%q, %q) VALUES (?, ?)`,
		s.cfg.table, s.cfg.deskColumn, s.cfg.timestampColumn))
	if err != nil {
		return 0, fmt.Errorf("prepare import: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.Desk, r.Timestamp); err != nil {
			return 0, fmt.Errorf("insert log row: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return len(records), nil
}
