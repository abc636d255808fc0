package businessflow

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Task runs partitioned by task and outcome code ("OK" on success)
	taskRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tariff_sync_task_runs_total",
			Help: "Total number of task runs by outcome",
		},
		[]string{"task", "code"},
	)

	taskRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tariff_sync_task_run_duration_seconds",
			Help:    "Task run latencies in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"task"},
	)

	// Rows written by ingestion and rows exported, per task
	taskRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tariff_sync_task_rows_total",
			Help: "Rows written or exported by tasks",
		},
		[]string{"task"},
	)

	taskLastSuccess = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tariff_sync_task_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run per task",
		},
		[]string{"task"},
	)
)

func observeTaskRun(task, code string, duration time.Duration, rows int64, finishedAt time.Time) {
	if code == "" {
		code = "OK"
		taskLastSuccess.WithLabelValues(task).Set(float64(finishedAt.Unix()))
	}
	taskRunsTotal.WithLabelValues(task, code).Inc()
	taskRunDuration.WithLabelValues(task).Observe(duration.Seconds())
	if rows > 0 {
		taskRowsTotal.WithLabelValues(task).Add(float64(rows))
	}
}
