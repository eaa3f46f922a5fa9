package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// newTestPostgres connects to PLANNER_TEST_POSTGRES_DSN or skips.
func newTestPostgres(t *testing.T) *Postgres {
	t.Helper()
	dsn := os.Getenv("PLANNER_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("PLANNER_TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	s := NewPostgres(pool, nil)
	if err := s.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	return s
}

func TestPostgres_SaveGetList(t *testing.T) {
	s := newTestPostgres(t)
	ctx := context.Background()

	agent := "agent-" + uuid.NewString()
	base := time.Now().UTC().Truncate(time.Microsecond)
	older := testPlan(agent, base)
	newer := testPlan(agent, base.Add(time.Minute))

	if err := s.Save(ctx, older); err != nil {
		t.Fatalf("Save(older) error = %v", err)
	}
	if err := s.Save(ctx, newer); err != nil {
		t.Fatalf("Save(newer) error = %v", err)
	}
	// Saving again is a no-op
	if err := s.Save(ctx, newer); err != nil {
		t.Fatalf("Save(duplicate) error = %v", err)
	}

	got, err := s.Get(ctx, older.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if diff := cmp.Diff(older, got); diff != "" {
		t.Errorf("Get() mismatch (-want +got):\n%s", diff)
	}

	list, err := s.ListByAgent(ctx, agent, 10)
	if err != nil {
		t.Fatalf("ListByAgent() error = %v", err)
	}
	if len(list) != 2 || list[0].ID != newer.ID || list[1].ID != older.ID {
		t.Errorf("ListByAgent() order wrong: %v", list)
	}
	if len(list[0].Stops) != 2 {
		t.Errorf("ListByAgent()[0] stops = %d, want 2", len(list[0].Stops))
	}
}

func TestPostgres_GetNotFound(t *testing.T) {
	s := newTestPostgres(t)
	_, err := s.Get(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}
