package services

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRun(task string) TaskRun {
	start := time.Date(2025, 2, 13, 10, 0, 0, 0, time.UTC)
	return TaskRun{
		Task:       task,
		RunID:      uuid.NewString(),
		StartedAt:  start,
		FinishedAt: start.Add(1500 * time.Millisecond),
		Success:    true,
		Details:    map[string]int64{"warehouses": 2, "rows": 2},
	}
}

func TestMemoryRunStatusStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRunStatusStore()

	last, err := store.Last(ctx, "ingestion")
	require.NoError(t, err)
	assert.Nil(t, last)

	run := sampleRun("ingestion")
	require.NoError(t, store.Record(ctx, run))

	last, err = store.Last(ctx, "ingestion")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, run.RunID, last.RunID)
	assert.Equal(t, 1500*time.Millisecond, last.Duration())

	other, err := store.Last(ctx, "export")
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestRedisRunStatusStore(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	opt, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opt)
	defer client.Close()

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}

	prefix := "tariff-sync-test:" + uuid.NewString() + ":"
	store := NewRedisRunStatusStore(client, prefix, time.Minute)
	t.Cleanup(func() { client.Del(context.Background(), prefix+"task_run:export") })

	last, err := store.Last(ctx, "export")
	require.NoError(t, err)
	assert.Nil(t, last)

	run := sampleRun("export")
	run.Success = false
	run.ErrorCode = "CREDENTIALS_ERROR"
	require.NoError(t, store.Record(ctx, run))

	last, err = store.Last(ctx, "export")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, run.RunID, last.RunID)
	assert.False(t, last.Success)
	assert.Equal(t, "CREDENTIALS_ERROR", last.ErrorCode)
	assert.True(t, run.StartedAt.Equal(last.StartedAt))
}
