package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"macrotrend-snapshot/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const createMacroHistoryTable = `
CREATE TABLE IF NOT EXISTS macro_history (
    schema_name TEXT        NOT NULL,
    month       DATE        NOT NULL,
    label       TEXT        NOT NULL,
    values      JSONB       NOT NULL,
    provenance  TEXT        NOT NULL,
    fetched_at  TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (schema_name, month)
);

CREATE INDEX IF NOT EXISTS idx_macro_history_schema_month
    ON macro_history (schema_name, month DESC);
`

// A mock point never replaces a stored real one.
const upsertMacroPoint = `
INSERT INTO macro_history (schema_name, month, label, values, provenance, fetched_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (schema_name, month) DO UPDATE SET
    label = EXCLUDED.label,
    values = EXCLUDED.values,
    provenance = EXCLUDED.provenance,
    fetched_at = EXCLUDED.fetched_at
WHERE macro_history.provenance = 'mock' OR EXCLUDED.provenance = 'real'`

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type MacroRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewMacroRepository(pool PgxPool, tracer trace.Tracer) *MacroRepository {
	return &MacroRepository{pool: pool, tracer: tracer}
}

func (r *MacroRepository) RunMigrations(ctx context.Context) error {
	ctx, span := r.tracer.Start(ctx, "macro-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, createMacroHistoryTable)
	return err
}

// UpsertSeries stores one row per month of the series.
func (r *MacroRepository) UpsertSeries(
	ctx context.Context,
	schema string,
	series []domain.MonthlySnapshot,
	provenance domain.Provenance,
	fetchedAt time.Time,
) error {
	if len(series) == 0 {
		return nil
	}

	ctx, span := r.tracer.Start(ctx, "macro-repo.upsert-series")
	defer span.End()
	span.SetAttributes(
		attribute.String("schema", schema),
		attribute.Int("points", len(series)),
	)

	batch := &pgx.Batch{}
	for _, snap := range series {
		month, err := snap.Month()
		if err != nil {
			return fmt.Errorf("parse month %q: %w", snap.Label, err)
		}
		values, err := json.Marshal(snap.Values)
		if err != nil {
			return fmt.Errorf("encode values for %s: %w", snap.Label, err)
		}
		batch.Queue(upsertMacroPoint, schema, month, snap.Label, values, string(provenance), fetchedAt)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range series {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// History returns up to limit stored points for the schema, newest month first.
func (r *MacroRepository) History(ctx context.Context, schema string, limit int) ([]domain.HistoryPoint, error) {
	ctx, span := r.tracer.Start(ctx, "macro-repo.history")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT schema_name, label, month, values, provenance, fetched_at
		 FROM macro_history
		 WHERE schema_name = $1
		 ORDER BY month DESC
		 LIMIT $2`,
		schema, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	points := make([]domain.HistoryPoint, 0)
	for rows.Next() {
		var (
			p          domain.HistoryPoint
			raw        []byte
			provenance string
		)
		if err := rows.Scan(&p.Schema, &p.Label, &p.Month, &raw, &provenance, &p.FetchedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &p.Values); err != nil {
			return nil, fmt.Errorf("decode values for %s: %w", p.Label, err)
		}
		p.Provenance = domain.Provenance(provenance)
		points = append(points, p)
	}
	return points, rows.Err()
}
