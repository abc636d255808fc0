package dto

import "time"

// TaskRunResponse describes the outcome of one task run
type TaskRunResponse struct {
	Task       string           `json:"task"`
	RunID      string           `json:"run_id"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	DurationMs int64            `json:"duration_ms"`
	Success    bool             `json:"success"`
	ErrorCode  string           `json:"error_code,omitempty"`
	Error      string           `json:"error,omitempty"`
	Details    map[string]int64 `json:"details,omitempty"`
}

// TasksStatusResponse holds the last run of each task; a task that never ran is null
type TasksStatusResponse struct {
	Ingestion       *TaskRunResponse `json:"ingestion"`
	Export          *TaskRunResponse `json:"export"`
	NextIngestionAt *time.Time       `json:"next_ingestion_at,omitempty"`
	NextExportAt    *time.Time       `json:"next_export_at,omitempty"`
}

// HealthResponse is returned by the health endpoint
type HealthResponse struct {
	Status   string    `json:"status"`
	Database string    `json:"database"`
	Time     time.Time `json:"time"`
}
