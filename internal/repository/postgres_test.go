package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pesio-ai/be-tbc-triage/internal/platform/errors"
)

// testPool connects to TEST_DATABASE_URL or skips the test
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, EnsureSchema(ctx, pool))
	return pool
}

func TestPostgresSessionStore(t *testing.T) {
	pool := testPool(t)
	s := NewPostgresSessionStore(pool)
	ctx := context.Background()
	id := uuid.NewString()

	rec := sampleRecord(id)
	require.NoError(t, s.Save(ctx, rec))

	rec.State.StepID = 3
	rec.State.Context.History = append(rec.State.Context.History, 2)
	rec.State.Completion, rec.State.Submitted = 1, 1
	require.NoError(t, s.Save(ctx, rec))

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3, got.State.StepID)
	assert.Equal(t, []int{1, 2}, got.State.Context.History)
	assert.Equal(t, 5, *got.State.Context.SelectedProvinceID)
	assert.Equal(t, uint64(1), got.State.Submitted)

	// the latch never moves back
	rec.State.Submitted = 0
	require.NoError(t, s.Save(ctx, rec))
	got, err = s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), got.State.Submitted)

	require.NoError(t, s.Delete(ctx, id))
	_, err = s.Get(ctx, id)
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))
}

func TestPostgresAuditStore(t *testing.T) {
	pool := testPool(t)
	s := NewPostgresAuditStore(pool)
	ctx := context.Background()
	id := uuid.NewString()
	to := 1
	msg := "backend unreachable"

	require.NoError(t, s.Append(ctx, &AuditEntry{SessionID: id, Action: ActionStart, ToStepID: &to, Succeeded: true}))
	require.NoError(t, s.Append(ctx, &AuditEntry{SessionID: id, Action: ActionNext, Succeeded: false, Error: &msg, Metadata: map[string]any{"payload": 5}}))

	entries, err := s.ListBySession(ctx, id)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ActionStart, entries[0].Action)
	assert.False(t, entries[1].Succeeded)
	assert.Equal(t, msg, *entries[1].Error)
	assert.EqualValues(t, 5, entries[1].Metadata["payload"])
}
