package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rickgao/delivery-planner/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS delivery_plans (
	id            UUID PRIMARY KEY,
	agent_id      TEXT NOT NULL,
	strategy      TEXT NOT NULL,
	start_lat     DOUBLE PRECISION NOT NULL,
	start_lon     DOUBLE PRECISION NOT NULL,
	total_minutes DOUBLE PRECISION NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS delivery_plans_agent_created_idx
	ON delivery_plans (agent_id, created_at DESC);

CREATE TABLE IF NOT EXISTS plan_stops (
	plan_id         UUID NOT NULL REFERENCES delivery_plans (id) ON DELETE CASCADE,
	seq             INTEGER NOT NULL,
	kind            TEXT NOT NULL,
	user_id         TEXT NOT NULL,
	name            TEXT NOT NULL,
	order_id        TEXT NOT NULL,
	lat             DOUBLE PRECISION NOT NULL,
	lon             DOUBLE PRECISION NOT NULL,
	arrival_minutes DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (plan_id, seq)
);
`

const selectPlanColumns = `id, agent_id, strategy, start_lat, start_lon, total_minutes, created_at`

// Postgres is a Store backed by PostgreSQL.
type Postgres struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgres creates a store on an existing pool.
func NewPostgres(db *pgxpool.Pool, logger *slog.Logger) *Postgres {
	if logger == nil {
		logger = slog.Default()
	}
	return &Postgres{
		db:     db,
		logger: logger.With("component", "plan_store"),
	}
}

// EnsureSchema creates the plan tables if they do not exist.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies the pool is healthy.
func (s *Postgres) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Save writes the plan and its stops in one transaction.
func (s *Postgres) Save(ctx context.Context, plan *model.DeliveryPlan) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	conflict, err := saveBatch(ctx, tx, plan)
	if err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	if conflict {
		s.logger.Debug("plan already stored", "plan_id", plan.ID)
	}
	return nil
}

func saveBatch(ctx context.Context, tx pgx.Tx, plan *model.DeliveryPlan) (conflict bool, err error) {
	row := toPlanRow(plan)
	stops := toStopRows(plan)

	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO delivery_plans (id, agent_id, strategy, start_lat, start_lon, total_minutes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`, row.ID, row.AgentID, row.Strategy, row.StartLat, row.StartLon, row.TotalMinutes, row.CreatedAt)
	for _, r := range stops {
		batch.Queue(`
			INSERT INTO plan_stops (plan_id, seq, kind, user_id, name, order_id, lat, lon, arrival_minutes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (plan_id, seq) DO NOTHING
		`, r.PlanID, r.Seq, r.Kind, r.UserID, r.Name, r.OrderID, r.Lat, r.Lon, r.ArrivalMinutes)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	ct, err := results.Exec()
	if err != nil {
		return false, fmt.Errorf("insert plan: %w", err)
	}
	conflict = ct.RowsAffected() == 0

	for range stops {
		if _, err := results.Exec(); err != nil {
			return false, fmt.Errorf("insert stop: %w", err)
		}
	}
	return conflict, results.Close()
}

// Get loads one plan with its stops.
func (s *Postgres) Get(ctx context.Context, id uuid.UUID) (*model.DeliveryPlan, error) {
	row := s.db.QueryRow(ctx, `SELECT `+selectPlanColumns+` FROM delivery_plans WHERE id = $1`, id)

	plan, err := scanPlan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select plan: %w", err)
	}

	if err := s.loadStops(ctx, []*model.DeliveryPlan{plan}); err != nil {
		return nil, err
	}
	return plan, nil
}

// ListByAgent loads the agent's plans newest first.
func (s *Postgres) ListByAgent(ctx context.Context, agentID string, limit int) ([]*model.DeliveryPlan, error) {
	query := `SELECT ` + selectPlanColumns + ` FROM delivery_plans WHERE agent_id = $1 ORDER BY created_at DESC`
	args := []any{agentID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select plans: %w", err)
	}
	plans, err := pgx.CollectRows(rows, func(r pgx.CollectableRow) (*model.DeliveryPlan, error) {
		return scanPlan(r)
	})
	if err != nil {
		return nil, fmt.Errorf("scan plans: %w", err)
	}

	if err := s.loadStops(ctx, plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// loadStops fills Stops for every plan with a single query.
func (s *Postgres) loadStops(ctx context.Context, plans []*model.DeliveryPlan) error {
	if len(plans) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*model.DeliveryPlan, len(plans))
	ids := make([]string, 0, len(plans))
	for _, p := range plans {
		byID[p.ID] = p
		ids = append(ids, p.ID.String())
	}

	rows, err := s.db.Query(ctx, `
		SELECT plan_id, seq, kind, user_id, name, order_id, lat, lon, arrival_minutes
		FROM plan_stops
		WHERE plan_id = ANY($1::uuid[])
		ORDER BY plan_id, seq
	`, ids)
	if err != nil {
		return fmt.Errorf("select stops: %w", err)
	}
	stops, err := pgx.CollectRows(rows, pgx.RowToStructByPos[stopRow])
	if err != nil {
		return fmt.Errorf("scan stops: %w", err)
	}

	for _, r := range stops {
		if p, ok := byID[r.PlanID]; ok {
			p.Stops = append(p.Stops, r.toStop())
		}
	}
	return nil
}

func scanPlan(row pgx.Row) (*model.DeliveryPlan, error) {
	var r planRow
	if err := row.Scan(&r.ID, &r.AgentID, &r.Strategy, &r.StartLat, &r.StartLon, &r.TotalMinutes, &r.CreatedAt); err != nil {
		return nil, err
	}
	return r.toPlan(), nil
}
