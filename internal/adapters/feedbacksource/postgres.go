package feedbacksource

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/busyspot/internal/domain/feedback"
	"github.com/okian/busyspot/internal/domain/model"
)

// DefaultTable is the feedback table name.
const DefaultTable = "feedback"

var tableRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Querier is the subset of *pgxpool.Pool the source uses.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Postgres reads ratings from a feedback(spot_id, busy_rating, created_at) table.
type Postgres struct {
	db    Querier
	table string
	close func()
}

// NewPostgres creates a source over an existing connection or pool.
func NewPostgres(db Querier, table string) (*Postgres, error) {
	if table == "" {
		table = DefaultTable
	}
	if !tableRe.MatchString(table) {
		return nil, fmt.Errorf("%w: bad table name %q", feedback.ErrUnavailable, table)
	}
	return &Postgres{db: db, table: pgx.Identifier{table}.Sanitize(), close: func() {}}, nil
}

// ConnectPostgres opens a pool for dsn and verifies it with a ping.
func ConnectPostgres(ctx context.Context, dsn, table string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", feedback.ErrUnavailable, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping: %w", feedback.ErrUnavailable, err)
	}
	p, err := NewPostgres(pool, table)
	if err != nil {
		pool.Close()
		return nil, err
	}
	p.close = pool.Close
	return p, nil
}

// Close releases the pool, if this source owns one.
func (p *Postgres) Close() { p.close() }

// Fetch returns the location's ratings. Table timestamps are always present.
func (p *Postgres) Fetch(ctx context.Context, location model.Location) (feedback.Batch, error) {
	rows, err := p.db.Query(ctx, fmt.Sprintf(`
		SELECT spot_id, busy_rating::text, created_at
		FROM %s
		WHERE lower(trim(spot_id)) = lower($1)
	`, p.table), string(location))
	if err != nil {
		return feedback.Batch{}, fmt.Errorf("%w: %w", feedback.ErrUnavailable, err)
	}
	defer rows.Close()

	batch := feedback.Batch{HasTimestamps: true}
	for rows.Next() {
		var spot, rating *string
		var createdAt *time.Time
		if err := rows.Scan(&spot, &rating, &createdAt); err != nil {
			return feedback.Batch{}, fmt.Errorf("%w: scan: %w", feedback.ErrMalformed, err)
		}
		e := feedback.Entry{}
		if spot != nil {
			e.SpotID = *spot
		}
		if rating != nil {
			e.Rating = *rating
		}
		if createdAt != nil {
			e.CreatedAt = createdAt.UTC().Format(time.RFC3339Nano)
		}
		batch.Entries = append(batch.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return feedback.Batch{}, fmt.Errorf("%w: %w", feedback.ErrUnavailable, err)
	}
	return batch, nil
}

// Submit inserts one rating.
func (p *Postgres) Submit(ctx context.Context, s feedback.Submission) error {
	if err := s.Validate(); err != nil {
		return err
	}
	_, err := p.db.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (spot_id, busy_rating, created_at)
		VALUES ($1, $2, $3)
	`, p.table), string(s.Location), s.Rating, s.At.UTC())
	if err != nil {
		return fmt.Errorf("%w: insert: %w", feedback.ErrUnavailable, err)
	}
	return nil
}
