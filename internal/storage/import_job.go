package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"noteboard/internal/importer"

	"github.com/google/uuid"
)

// ImportStore implements persistence for import jobs and run history.
type ImportStore struct {
	db *DB
}

// NewImportStore creates a new ImportStore.
func NewImportStore(db *DB) *ImportStore {
	return &ImportStore{db: db}
}

// jobColumns is the column list every job query selects, in scanJob order.
const jobColumns = `id, name, source_type, source_config, transforms, board_id,
	 block_type, title_field, sync_mode, dedupe_key, trigger_type, trigger_config, enabled,
	 last_run_at, last_status, last_error, created_at, updated_at`

func scanJob(sc scanner) (importer.Job, error) {
	var job importer.Job
	var srcCfg, transforms string
	err := sc.Scan(
		&job.ID, &job.Name, &job.SourceType, &srcCfg, &transforms,
		&job.BoardID, &job.BlockType, &job.TitleField, &job.SyncMode, &job.DedupeKey,
		&job.TriggerType, &job.TriggerConfig, &job.Enabled,
		&job.LastRunAt, &job.LastStatus, &job.LastError,
		&job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		return job, err
	}
	json.Unmarshal([]byte(srcCfg), &job.SourceCfg)
	json.Unmarshal([]byte(transforms), &job.Transforms)
	return job, nil
}

// jobJSON renders the two JSON-typed columns for insert/update.
func jobJSON(job *importer.Job) (srcCfg, transforms string) {
	c, _ := json.Marshal(job.SourceCfg)
	t, _ := json.Marshal(job.Transforms)
	return string(c), string(t)
}

// ── Job CRUD ───────────────────────────────────────────────

func (s *ImportStore) CreateJob(job *importer.Job) error {
	now := time.Now()
	job.ID = uuid.New().String()
	job.CreatedAt = now
	job.UpdatedAt = now

	srcCfg, transforms := jobJSON(job)
	_, err := s.db.conn.Exec(
		`INSERT INTO import_jobs (id, name, source_type, source_config, transforms, board_id,
		 block_type, title_field, sync_mode, dedupe_key, trigger_type, trigger_config, enabled,
		 created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.Name, job.SourceType, srcCfg, transforms,
		job.BoardID, job.BlockType, job.TitleField, job.SyncMode, job.DedupeKey,
		job.TriggerType, job.TriggerConfig, job.Enabled,
		job.CreatedAt, job.UpdatedAt,
	)
	return err
}

func (s *ImportStore) GetJob(id string) (*importer.Job, error) {
	row := s.db.conn.QueryRow(`SELECT `+jobColumns+` FROM import_jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("import job not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (s *ImportStore) UpdateJob(job *importer.Job) error {
	job.UpdatedAt = time.Now()

	srcCfg, transforms := jobJSON(job)
	_, err := s.db.conn.Exec(
		`UPDATE import_jobs SET name=?, source_type=?, source_config=?, transforms=?,
		 board_id=?, block_type=?, title_field=?, sync_mode=?, dedupe_key=?,
		 trigger_type=?, trigger_config=?, enabled=?, updated_at=? WHERE id=?`,
		job.Name, job.SourceType, srcCfg, transforms,
		job.BoardID, job.BlockType, job.TitleField, job.SyncMode, job.DedupeKey,
		job.TriggerType, job.TriggerConfig, job.Enabled,
		job.UpdatedAt, job.ID,
	)
	return err
}

func (s *ImportStore) UpdateJobStatus(id, status, errMsg string) error {
	now := time.Now()
	_, err := s.db.conn.Exec(
		`UPDATE import_jobs SET last_run_at=?, last_status=?, last_error=?, updated_at=? WHERE id=?`,
		now, status, errMsg, now, id,
	)
	return err
}

// DeleteJob removes a job and its run history together.
func (s *ImportStore) DeleteJob(id string) error {
	tx, err := s.db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM import_runs WHERE job_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM import_jobs WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *ImportStore) ListJobs() ([]importer.Job, error) {
	return s.queryJobs(`ORDER BY created_at ASC`)
}

// ListEnabledTriggeredJobs returns jobs that are enabled with a
// schedule or file-watch trigger. The import service rebuilds its
// cron entries and file watchers from this list.
func (s *ImportStore) ListEnabledTriggeredJobs() ([]importer.Job, error) {
	return s.queryJobs(`WHERE enabled = 1 AND trigger_type IN ('schedule', 'file_watch')
		 ORDER BY created_at ASC`)
}

func (s *ImportStore) queryJobs(tail string, args ...any) ([]importer.Job, error) {
	rows, err := s.db.conn.Query(`SELECT `+jobColumns+` FROM import_jobs `+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []importer.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// ── Run History ────────────────────────────────────────────

func (s *ImportStore) CreateRun(run *importer.RunLog) error {
	run.ID = uuid.New().String()
	_, err := s.db.conn.Exec(
		`INSERT INTO import_runs (id, job_id, started_at, finished_at, status, rows_read, blocks_written, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.JobID, run.StartedAt, run.FinishedAt, run.Status, run.RowsRead, run.BlocksWritten, run.Error,
	)
	return err
}

func (s *ImportStore) ListRuns(jobID string, limit int) ([]importer.RunLog, error) {
	rows, err := s.db.conn.Query(
		`SELECT id, job_id, started_at, finished_at, status, rows_read, blocks_written, error
		 FROM import_runs WHERE job_id = ? ORDER BY started_at DESC LIMIT ?`,
		jobID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []importer.RunLog
	for rows.Next() {
		var r importer.RunLog
		if err := rows.Scan(&r.ID, &r.JobID, &r.StartedAt, &r.FinishedAt, &r.Status, &r.RowsRead, &r.BlocksWritten, &r.Error); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
