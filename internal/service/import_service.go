package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"

	"noteboard/internal/domain"
	"noteboard/internal/importer"
	"noteboard/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Import Service — business logic for import jobs
// ─────────────────────────────────────────────────────────────

// ImportService owns import jobs: their CRUD, their execution, and the
// cron/file-watch triggers that fire them. It talks to the frontend
// only through the EventEmitter interface, and writes blocks through
// an importer.BoardTarget so a job run takes the same insert path as a
// hand-placed block.
type ImportService struct {
	store   *storage.ImportStore
	board   importer.BoardTarget
	emitter EventEmitter
	runs    runGuard

	// watcher / cron lifecycle
	cancelWatch context.CancelFunc
	watcher     *fsnotify.Watcher
	sched       *cron.Cron
}

// NewImportService creates an ImportService ready for use.
func NewImportService(
	store *storage.ImportStore,
	board importer.BoardTarget,
	emitter EventEmitter,
) *ImportService {
	return &ImportService{
		store:   store,
		board:   board,
		emitter: emitter,
	}
}

// ── Job CRUD ───────────────────────────────────────────────

// ImportJobInput is the service-layer DTO for creating/updating jobs.
type ImportJobInput struct {
	Name          string                     `json:"name"`
	SourceType    string                     `json:"sourceType"`
	SourceConfig  map[string]any             `json:"sourceConfig"`
	Transforms    []importer.TransformConfig `json:"transforms"`
	BoardID       string                     `json:"boardId"`
	BlockType     string                     `json:"blockType"`
	TitleField    string                     `json:"titleField"`
	SyncMode      string                     `json:"syncMode"`
	DedupeKey     string                     `json:"dedupeKey"`
	TriggerType   string                     `json:"triggerType"`
	TriggerConfig string                     `json:"triggerConfig"`
	Enabled       bool                       `json:"enabled"`
}

// apply copies the input onto a job. Create and Update share it so the
// two paths can't drift apart field by field.
func (in ImportJobInput) apply(job *importer.Job) {
	job.Name = in.Name
	job.SourceType = in.SourceType
	job.SourceCfg = in.SourceConfig
	job.Transforms = in.Transforms
	job.BoardID = in.BoardID
	job.BlockType = domain.BlockType(in.BlockType)
	job.TitleField = in.TitleField
	job.SyncMode = importer.SyncMode(in.SyncMode)
	job.DedupeKey = in.DedupeKey
	job.TriggerType = in.TriggerType
	job.TriggerConfig = in.TriggerConfig
	job.Enabled = in.Enabled
}

func (s *ImportService) CreateJob(ctx context.Context, input ImportJobInput) (*importer.Job, error) {
	if _, err := importer.GetSource(input.SourceType); err != nil {
		return nil, err
	}

	job := &importer.Job{}
	input.apply(job)
	if job.BlockType == "" {
		job.BlockType = domain.BlockTypeText
	}
	if job.SyncMode == "" {
		job.SyncMode = importer.SyncReplace
	}
	if job.TriggerType == "" {
		job.TriggerType = importer.TriggerManual
	}

	if err := s.store.CreateJob(job); err != nil {
		return nil, fmt.Errorf("create import job: %w", err)
	}
	s.RestartWatchers(ctx)
	return job, nil
}

func (s *ImportService) GetJob(id string) (*importer.Job, error) {
	return s.store.GetJob(id)
}

func (s *ImportService) ListJobs() ([]importer.Job, error) {
	return s.store.ListJobs()
}

func (s *ImportService) UpdateJob(ctx context.Context, id string, input ImportJobInput) error {
	job, err := s.store.GetJob(id)
	if err != nil {
		return err
	}
	input.apply(job)

	if err := s.store.UpdateJob(job); err != nil {
		return err
	}
	s.RestartWatchers(ctx)
	return nil
}

func (s *ImportService) DeleteJob(ctx context.Context, id string) error {
	err := s.store.DeleteJob(id)
	if err == nil {
		s.RestartWatchers(ctx)
	}
	return err
}

// ── Run ────────────────────────────────────────────────────

// RunJob executes one import job synchronously, logs the run, and
// emits a frontend event when it finishes so an open board can refresh
// itself.
func (s *ImportService) RunJob(ctx context.Context, id string) (*importer.Result, error) {
	// One run per job at a time; cron and file-watch can both fire
	// while a manual run is still going.
	if !s.runs.Acquire(id) {
		return nil, fmt.Errorf("import job %s is already running", id)
	}
	defer s.runs.Release(id)

	job, err := s.store.GetJob(id)
	if err != nil {
		return nil, err
	}

	s.store.UpdateJobStatus(id, "running", "")

	pipeline := &importer.Pipeline{
		Dest: &importer.BlockWriter{Board: s.board},
	}

	runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	start := time.Now()
	result, runErr := pipeline.Run(runCtx, job)

	errMsg := ""
	if runErr != nil {
		errMsg = runErr.Error()
	}
	s.store.CreateRun(&importer.RunLog{
		JobID:         id,
		StartedAt:     start,
		FinishedAt:    time.Now(),
		Status:        result.Status,
		RowsRead:      result.RowsRead,
		BlocksWritten: result.BlocksWritten,
		Error:         errMsg,
	})
	s.store.UpdateJobStatus(id, result.Status, errMsg)

	s.emitter.Emit(ctx, "import:run-finished", map[string]string{
		"jobId":   id,
		"boardId": job.BoardID,
		"status":  result.Status,
	})

	return result, runErr
}

// ListSources returns the available import source descriptors.
func (s *ImportService) ListSources() []importer.SourceSpec {
	return importer.ListSources()
}

// ListRuns returns the last 50 run logs for a job.
func (s *ImportService) ListRuns(jobID string) ([]importer.RunLog, error) {
	return s.store.ListRuns(jobID, 50)
}

// ── Preview / Schema Discovery ─────────────────────────────

// PreviewResult is the response from PreviewSource.
type PreviewResult struct {
	Schema  *importer.Schema  `json:"schema"`
	Records []importer.Record `json:"records"`
}

func (s *ImportService) PreviewSource(ctx context.Context, sourceType string, cfgJSON string) (*PreviewResult, error) {
	var cfg importer.SourceConfig
	if err := json.Unmarshal([]byte(cfgJSON), &cfg); err != nil {
		return nil, fmt.Errorf("decode source config: %w", err)
	}

	previewCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// Preview only reads; the pipeline needs no destination.
	records, schema, err := (&importer.Pipeline{}).Preview(previewCtx, sourceType, cfg, 10)
	if err != nil {
		return nil, err
	}
	return &PreviewResult{Schema: schema, Records: records}, nil
}

func (s *ImportService) DiscoverSchema(ctx context.Context, sourceType string, cfgJSON string) (*importer.Schema, error) {
	var cfg importer.SourceConfig
	if err := json.Unmarshal([]byte(cfgJSON), &cfg); err != nil {
		return nil, fmt.Errorf("decode source config: %w", err)
	}

	source, err := importer.GetSource(sourceType)
	if err != nil {
		return nil, err
	}

	discCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	return source.Discover(discCtx, cfg)
}

// ── Triggers (cron + file_watch) ───────────────────────────

// RestartWatchers tears down the running triggers and rebuilds them
// from the current job table. Called after every job mutation; cheap
// enough that no diffing is worth it.
func (s *ImportService) RestartWatchers(ctx context.Context) {
	s.stopWatchers()

	jobs, err := s.store.ListEnabledTriggeredJobs()
	if err != nil {
		log.Printf("[import] list triggered jobs: %v", err)
		return
	}
	s.startCron(ctx, jobs)
	s.startFileWatch(ctx, jobs)
}

func (s *ImportService) startCron(ctx context.Context, jobs []importer.Job) {
	var sched *cron.Cron
	for _, j := range jobs {
		if j.TriggerType != importer.TriggerSchedule || j.TriggerConfig == "" {
			continue
		}
		if sched == nil {
			sched = cron.New()
		}
		id := j.ID
		_, err := sched.AddFunc(j.TriggerConfig, func() {
			log.Printf("[import] cron: running job %s", id)
			if _, err := s.RunJob(ctx, id); err != nil {
				log.Printf("[import] cron: job %s failed: %v", id, err)
			}
		})
		if err != nil {
			log.Printf("[import] cron: invalid expression %q for job %s: %v", j.TriggerConfig, j.ID, err)
		}
	}
	if sched == nil {
		return
	}
	sched.Start()
	s.sched = sched
	log.Printf("[import] cron: scheduled %d job(s)", len(sched.Entries()))
}

func (s *ImportService) startFileWatch(ctx context.Context, jobs []importer.Job) {
	jobByPath := make(map[string]string)
	for _, j := range jobs {
		if j.TriggerType != importer.TriggerFileWatch || j.TriggerConfig == "" {
			continue
		}
		abs, err := filepath.Abs(j.TriggerConfig)
		if err != nil {
			log.Printf("[import] watch: bad path %q: %v", j.TriggerConfig, err)
			continue
		}
		jobByPath[abs] = j.ID
	}
	if len(jobByPath) == 0 {
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("[import] watch: create watcher: %v", err)
		return
	}

	// Watch parent directories, not the files. Editors save by
	// writing a temp file and renaming it over the original, which
	// kills a watch on the file's old inode.
	dirs := make(map[string]bool)
	for path := range jobByPath {
		dir := filepath.Dir(path)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			log.Printf("[import] watch: cannot watch %q: %v", dir, err)
			continue
		}
		dirs[dir] = true
	}

	watchCtx, cancel := context.WithCancel(context.Background())
	s.watcher = watcher
	s.cancelWatch = cancel

	go s.watchLoop(ctx, watchCtx, watcher, jobByPath)
	log.Printf("[import] watch: watching %d file(s)", len(jobByPath))
}

func (s *ImportService) watchLoop(ctx, watchCtx context.Context, watcher *fsnotify.Watcher, jobByPath map[string]string) {
	// One timer per job: a burst of writes collapses into a single
	// run half a second after the last one.
	pending := make(map[string]*time.Timer)

	for {
		select {
		case <-watchCtx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			abs, _ := filepath.Abs(event.Name)
			jobID, watched := jobByPath[abs]
			if !watched {
				continue
			}
			if t := pending[jobID]; t != nil {
				t.Stop()
			}
			id := jobID
			pending[jobID] = time.AfterFunc(500*time.Millisecond, func() {
				log.Printf("[import] watch: %q changed, running job %s", abs, id)
				if _, err := s.RunJob(ctx, id); err != nil {
					log.Printf("[import] watch: job %s failed: %v", id, err)
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[import] watch: %v", err)
		}
	}
}

// WaitRunning blocks until all running jobs finish or ctx is
// cancelled. Used for graceful shutdown.
func (s *ImportService) WaitRunning(ctx context.Context) {
	s.runs.Wait(ctx)
}

// Stop tears down all watchers and schedulers.
func (s *ImportService) Stop() {
	s.stopWatchers()
}

func (s *ImportService) stopWatchers() {
	if s.cancelWatch != nil {
		s.cancelWatch()
		s.cancelWatch = nil
	}
	if s.watcher != nil {
		s.watcher.Close()
		s.watcher = nil
	}
	if s.sched != nil {
		s.sched.Stop()
		s.sched = nil
	}
}
