package service_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"noteboard/internal/service"
	"noteboard/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// runGuard tests
// ─────────────────────────────────────────────────────────────

func TestRunGuard_OneSlotPerID(t *testing.T) {
	var g service.ExportedRunGuard

	if !g.Acquire("job-1") {
		t.Fatal("first acquire should succeed")
	}
	if g.Acquire("job-1") {
		t.Fatal("acquire while the job runs should fail")
	}
	if !g.Acquire("job-2") {
		t.Fatal("a different job must not be blocked")
	}
	g.Release("job-2")

	g.Release("job-1")
	if !g.Acquire("job-1") {
		t.Fatal("acquire after release should succeed")
	}
	g.Release("job-1")
}

func TestRunGuard_WaitDrains(t *testing.T) {
	var g service.ExportedRunGuard
	g.Acquire("job-a")

	done := make(chan struct{})
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		g.Wait(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	g.Release("job-a")

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after the last release")
	}
}

func TestRunGuard_WaitHonorsContext(t *testing.T) {
	var g service.ExportedRunGuard
	g.Acquire("stuck")
	defer g.Release("stuck")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		g.Wait(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait ignored context expiry while a job was stuck")
	}
}

// ─────────────────────────────────────────────────────────────
// MockEmitter tests
// ─────────────────────────────────────────────────────────────

func TestMockEmitter_RecordsEvents(t *testing.T) {
	m := &service.MockEmitter{}
	ctx := context.Background()

	m.Emit(ctx, "test:event", map[string]string{"foo": "bar"})
	m.Emit(ctx, "test:event2", nil)

	if len(m.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(m.Events))
	}
	if m.Events[0].Event != "test:event" {
		t.Errorf("expected 'test:event', got %q", m.Events[0].Event)
	}
}

func TestMockEmitter_LastEvent(t *testing.T) {
	m := &service.MockEmitter{}
	ctx := context.Background()

	m.Emit(ctx, "a", "first")
	m.Emit(ctx, "b", "second")

	if m.Events[len(m.Events)-1].Event != "b" {
		t.Errorf("expected last event 'b', got %q", m.Events[len(m.Events)-1].Event)
	}
}

// ─────────────────────────────────────────────────────────────
// WindowSettingsService tests
// ─────────────────────────────────────────────────────────────

func TestWindowSettings_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	db, err := storage.New(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	svc := service.NewWindowSettingsService(db)
	if err := svc.SaveWindowSize(1440, 900); err != nil {
		t.Fatalf("save: %v", err)
	}

	got := svc.LoadWindowSize()
	if got.Width != 1440 || got.Height != 900 {
		t.Errorf("loaded %dx%d, want 1440x900", got.Width, got.Height)
	}

	// Sizes below the usable floor are replaced with the defaults.
	if err := svc.SaveWindowSize(100, 100); err != nil {
		t.Fatalf("save tiny: %v", err)
	}
	got = svc.LoadWindowSize()
	if got.Width != 1280 || got.Height != 800 {
		t.Errorf("tiny size loaded as %dx%d, want 1280x800 defaults", got.Width, got.Height)
	}
}

func TestWindowSettings_DefaultsWithoutRows(t *testing.T) {
	dir := t.TempDir()
	db, err := storage.New(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	got := service.NewWindowSettingsService(db).LoadWindowSize()
	if got.Width != 1280 || got.Height != 800 {
		t.Errorf("empty table loaded as %dx%d, want 1280x800", got.Width, got.Height)
	}
}

// ─────────────────────────────────────────────────────────────
// ImportService lifecycle tests
// ─────────────────────────────────────────────────────────────

func TestImportService_WaitRunning_Immediate(t *testing.T) {
	// With no running jobs, WaitRunning should return immediately.
	emitter := &service.MockEmitter{}
	svc := service.NewImportService(nil, nil, emitter)

	done := make(chan struct{})
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		svc.WaitRunning(ctx)
		close(done)
	}()

	select {
	case <-done:
		// expected — no jobs running
	case <-time.After(500 * time.Millisecond):
		t.Fatal("WaitRunning hung with no running jobs")
	}
}

func TestImportService_Stop_Idempotent(t *testing.T) {
	// Stop with nothing started should not panic.
	emitter := &service.MockEmitter{}
	svc := service.NewImportService(nil, nil, emitter)
	svc.Stop()
	svc.Stop() // second call should also be safe
}
