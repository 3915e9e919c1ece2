package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/park285/cheese-review/internal/domain"
)

// Schema creates the reviews table. EnsureSchema applies it.
const Schema = `
CREATE TABLE IF NOT EXISTS reviews (
	id             BIGSERIAL PRIMARY KEY,
	review_uuid    TEXT        NOT NULL UNIQUE,
	source         TEXT        NOT NULL,
	white          TEXT        NOT NULL DEFAULT '',
	black          TEXT        NOT NULL DEFAULT '',
	result         TEXT        NOT NULL DEFAULT '',
	eco            TEXT        NOT NULL DEFAULT '',
	opening        TEXT        NOT NULL DEFAULT '',
	depth          INTEGER     NOT NULL,
	moves_uci      JSONB       NOT NULL,
	moves_san      JSONB       NOT NULL,
	labels         JSONB       NOT NULL,
	evaluations    JSONB       NOT NULL,
	white_accuracy INTEGER     NOT NULL,
	black_accuracy INTEGER     NOT NULL,
	white_counts   JSONB       NOT NULL,
	black_counts   JSONB       NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS reviews_created_at_idx ON reviews (created_at DESC);`

const selectColumns = `
	review_uuid, source, white, black, result, eco, opening, depth,
	moves_uci, moves_san, labels, evaluations,
	white_accuracy, black_accuracy, white_counts, black_counts, created_at`

type postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) Repository {
	return &postgres{db: db}
}

// Open connects to Postgres with the pool limits used across the service and pings it.
func Open(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply review schema: %w", err)
	}
	return nil
}

func (r *postgres) InsertReview(ctx context.Context, rv *domain.Review) error {
	if rv == nil {
		return fmt.Errorf("nil review payload")
	}
	cols, err := encodeColumns(rv)
	if err != nil {
		return err
	}

	const query = `
		INSERT INTO reviews (` + selectColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8,
			$9::jsonb, $10::jsonb, $11::jsonb, $12::jsonb,
			$13, $14, $15::jsonb, $16::jsonb, $17)
		ON CONFLICT (review_uuid) DO NOTHING
		RETURNING id`

	var id sql.NullInt64
	err = r.db.QueryRowContext(ctx, query,
		rv.ID, rv.Source, rv.White, rv.Black, rv.Result, rv.ECO, rv.Opening, rv.Depth,
		cols.movesUCI, cols.movesSAN, cols.labels, cols.evaluations,
		rv.WhiteAccuracy, rv.BlackAccuracy, cols.whiteCounts, cols.blackCounts, rv.CreatedAt,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !id.Valid) {
		return ErrDuplicateReview
	}
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

func (r *postgres) GetReview(ctx context.Context, id string) (*domain.Review, error) {
	const query = `SELECT ` + selectColumns + ` FROM reviews WHERE review_uuid = $1`
	rv, err := scanReview(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReviewNotFound
	}
	return rv, err
}

func (r *postgres) RecentReviews(ctx context.Context, limit int) ([]*domain.Review, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	const query = `SELECT ` + selectColumns + ` FROM reviews ORDER BY created_at DESC, id DESC LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("select reviews: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Review, 0, limit)
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

type jsonColumns struct {
	movesUCI, movesSAN, labels, evaluations, whiteCounts, blackCounts []byte
}

func encodeColumns(rv *domain.Review) (jsonColumns, error) {
	var (
		cols jsonColumns
		err  error
	)
	fields := []struct {
		name string
		dst  *[]byte
		v    any
	}{
		{"moves_uci", &cols.movesUCI, nonNil(rv.MovesUCI)},
		{"moves_san", &cols.movesSAN, nonNil(rv.MovesSAN)},
		{"labels", &cols.labels, nonNil(rv.Labels)},
		{"evaluations", &cols.evaluations, nonNilInts(rv.Evaluations)},
		{"white_counts", &cols.whiteCounts, nonNilCounts(rv.WhiteCounts)},
		{"black_counts", &cols.blackCounts, nonNilCounts(rv.BlackCounts)},
	}
	for _, f := range fields {
		if *f.dst, err = json.Marshal(f.v); err != nil {
			return jsonColumns{}, fmt.Errorf("marshal %s: %w", f.name, err)
		}
	}
	return cols, nil
}

func scanReview(row rowScanner) (*domain.Review, error) {
	var (
		rv   domain.Review
		cols jsonColumns
	)
	if err := row.Scan(
		&rv.ID, &rv.Source, &rv.White, &rv.Black, &rv.Result, &rv.ECO, &rv.Opening, &rv.Depth,
		&cols.movesUCI, &cols.movesSAN, &cols.labels, &cols.evaluations,
		&rv.WhiteAccuracy, &rv.BlackAccuracy, &cols.whiteCounts, &cols.blackCounts, &rv.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan review: %w", err)
	}
	if err := decodeColumns(cols, &rv); err != nil {
		return nil, err
	}
	return &rv, nil
}

func decodeColumns(cols jsonColumns, rv *domain.Review) error {
	fields := []struct {
		name string
		raw  []byte
		dst  any
	}{
		{"moves_uci", cols.movesUCI, &rv.MovesUCI},
		{"moves_san", cols.movesSAN, &rv.MovesSAN},
		{"labels", cols.labels, &rv.Labels},
		{"evaluations", cols.evaluations, &rv.Evaluations},
		{"white_counts", cols.whiteCounts, &rv.WhiteCounts},
		{"black_counts", cols.blackCounts, &rv.BlackCounts},
	}
	for _, f := range fields {
		if err := json.Unmarshal(f.raw, f.dst); err != nil {
			return fmt.Errorf("unmarshal %s: %w", f.name, err)
		}
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilInts(s []int) []int {
	if s == nil {
		return []int{}
	}
	return s
}

func nonNilCounts(m map[string]int) map[string]int {
	if m == nil {
		return map[string]int{}
	}
	return m
}
