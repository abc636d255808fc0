package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TaskRun is the recorded outcome of one task run
type TaskRun struct {
	Task       string           `json:"task"`
	RunID      string           `json:"run_id"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Success    bool             `json:"success"`
	ErrorCode  string           `json:"error_code,omitempty"`
	Error      string           `json:"error,omitempty"`
	Details    map[string]int64 `json:"details,omitempty"`
}

// Duration is the wall time of the run
func (r TaskRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// RunStatusStore keeps the latest run of each task
type RunStatusStore interface {
	Record(ctx context.Context, run TaskRun) error
	// Last returns nil, nil when the task has not run yet
	Last(ctx context.Context, task string) (*TaskRun, error)
}

// MemoryRunStatusStore keeps runs in process memory
type MemoryRunStatusStore struct {
	mu   sync.RWMutex
	runs map[string]TaskRun
}

func NewMemoryRunStatusStore() *MemoryRunStatusStore {
	return &MemoryRunStatusStore{runs: make(map[string]TaskRun)}
}

func (s *MemoryRunStatusStore) Record(_ context.Context, run TaskRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.Task] = run
	return nil
}

func (s *MemoryRunStatusStore) Last(_ context.Context, task string) (*TaskRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[task]
	if !ok {
		return nil, nil
	}
	return &run, nil
}

// RedisRunStatusStore keeps runs in redis under <prefix>task_run:<task> so the
// status survives restarts and is shared by replicas
type RedisRunStatusStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisRunStatusStore(client *redis.Client, prefix string, ttl time.Duration) *RedisRunStatusStore {
	return &RedisRunStatusStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisRunStatusStore) key(task string) string {
	return s.prefix + "task_run:" + task
}

func (s *RedisRunStatusStore) Record(ctx context.Context, run TaskRun) error {
	payload, err := json.Marshal(run)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(run.Task), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to record %s run: %w", run.Task, err)
	}
	return nil
}

func (s *RedisRunStatusStore) Last(ctx context.Context, task string) (*TaskRun, error) {
	payload, err := s.client.Get(ctx, s.key(task)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s run: %w", task, err)
	}

	var run TaskRun
	if err := json.Unmarshal(payload, &run); err != nil {
		return nil, fmt.Errorf("failed to decode %s run: %w", task, err)
	}
	return &run, nil
}

// Close releases the redis connection pool
func (s *RedisRunStatusStore) Close() error {
	return s.client.Close()
}
