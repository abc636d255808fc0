package adapters

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirphl/tariff-sheets-sync/app/services"
	"github.com/amirphl/tariff-sheets-sync/utils"
)

var adapterNow = time.Date(2025, time.February, 13, 14, 30, 0, 0, time.UTC)

type fakeScheduler struct{}

func (fakeScheduler) TriggerIngestion(context.Context) services.TaskRun {
	return services.TaskRun{
		Task:       utils.TaskIngestion,
		RunID:      "run-1",
		StartedAt:  adapterNow,
		FinishedAt: adapterNow.Add(1500 * time.Millisecond),
		Success:    true,
		Details:    map[string]int64{"rows": 12},
	}
}

func (fakeScheduler) TriggerExport(context.Context) services.TaskRun {
	return services.TaskRun{Task: utils.TaskExport, ErrorCode: "CREDENTIALS_ERROR", Error: "no key"}
}

func (fakeScheduler) NextRun(task string, after time.Time) (time.Time, bool) {
	if task != utils.TaskIngestion {
		return time.Time{}, false
	}
	return after.Truncate(time.Hour).Add(time.Hour), true
}

type failingStore struct{ services.RunStatusStore }

func (failingStore) Last(context.Context, string) (*services.TaskRun, error) {
	return nil, errors.New("redis down")
}

func TestRunConvertsTaskRun(t *testing.T) {
	a := NewHandlerTaskAdapter(fakeScheduler{}, services.NewMemoryRunStatusStore(), utils.NewMockClock(adapterNow))

	res := a.RunIngestion(context.Background())
	assert.Equal(t, "run-1", res.RunID)
	assert.Equal(t, int64(1500), res.DurationMs)
	assert.Equal(t, int64(12), res.Details["rows"])

	res = a.RunExport(context.Background())
	assert.False(t, res.Success)
	assert.Equal(t, "CREDENTIALS_ERROR", res.ErrorCode)
}

func TestStatus(t *testing.T) {
	store := services.NewMemoryRunStatusStore()
	require.NoError(t, store.Record(context.Background(), services.TaskRun{Task: utils.TaskExport, RunID: "run-9", Success: true}))
	a := NewHandlerTaskAdapter(fakeScheduler{}, store, utils.NewMockClock(adapterNow))

	res, err := a.Status(context.Background())
	require.NoError(t, err)
	assert.Nil(t, res.Ingestion)
	require.NotNil(t, res.Export)
	assert.Equal(t, "run-9", res.Export.RunID)
	require.NotNil(t, res.NextIngestionAt)
	assert.Equal(t, time.Date(2025, time.February, 13, 15, 0, 0, 0, time.UTC), *res.NextIngestionAt)
	assert.Nil(t, res.NextExportAt)
}

func TestStatusStoreFailure(t *testing.T) {
	a := NewHandlerTaskAdapter(fakeScheduler{}, failingStore{}, nil)

	_, err := a.Status(context.Background())
	assert.EqualError(t, err, "redis down")
}
