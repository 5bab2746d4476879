package importer

import (
	"time"

	"noteboard/internal/domain"
)

// ── Job ────────────────────────────────────────────────────
// A Job describes one configured import: where the data comes from,
// how it is reshaped, and which board it lands on.

// Trigger types: how a job gets started.
const (
	TriggerManual    = "manual"
	TriggerSchedule  = "schedule"   // TriggerConfig holds a cron expression
	TriggerFileWatch = "file_watch" // TriggerConfig holds a file path
)

// Job holds the configuration for a single import.
type Job struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	SourceType    string            `json:"sourceType"`
	SourceCfg     SourceConfig      `json:"sourceConfig"`
	Transforms    []TransformConfig `json:"transforms,omitempty"`
	BoardID       string            `json:"boardId"`
	BlockType     domain.BlockType  `json:"blockType"`  // "table" folds all records into one block
	TitleField    string            `json:"titleField"` // record field promoted to block title
	SyncMode      SyncMode          `json:"syncMode"`
	DedupeKey     string            `json:"dedupeKey,omitempty"`
	TriggerType   string            `json:"triggerType"`
	TriggerConfig string            `json:"triggerConfig"`
	Enabled       bool              `json:"enabled"`
	LastRunAt     time.Time         `json:"lastRunAt"`
	LastStatus    string            `json:"lastStatus"` // "success" | "error" | "running" | ""
	LastError     string            `json:"lastError"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// TransformConfig is a declarative transform definition (stored as JSON).
type TransformConfig struct {
	Type   string         `json:"type"` // "filter" | "rename" | "select" | "sort" | "limit"
	Config map[string]any `json:"config"`
}

// Result is the outcome of running an import job.
type Result struct {
	JobID         string        `json:"jobId"`
	Status        string        `json:"status"` // "success" | "error"
	RowsRead      int           `json:"rowsRead"`
	BlocksWritten int           `json:"blocksWritten"`
	Duration      time.Duration `json:"duration"`
	Error         string        `json:"error,omitempty"`
}

// RunLog is a historical record of an import run.
type RunLog struct {
	ID            string    `json:"id"`
	JobID         string    `json:"jobId"`
	StartedAt     time.Time `json:"startedAt"`
	FinishedAt    time.Time `json:"finishedAt"`
	Status        string    `json:"status"`
	RowsRead      int       `json:"rowsRead"`
	BlocksWritten int       `json:"blocksWritten"`
	Error         string    `json:"error,omitempty"`
}
