package app

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"noteboard/internal/canvas"
	"noteboard/internal/secret"
	"noteboard/internal/service"
	"noteboard/internal/storage"
)

// App is the main Wails application struct.
// All exported methods are available as Wails bindings.
type App struct {
	ctx context.Context

	db *storage.DB

	// Live engine for the open board. Bindings arrive on the Wails event
	// loop, but the autosaver and watcher run on their own goroutines, so
	// every engine access goes through mu.
	mu          sync.Mutex
	engine      *canvas.Engine
	openBoardID string

	boards      *service.BoardService
	headless    *service.HeadlessCanvas
	imports     *service.ImportService
	connections *service.SourceConnectionService
	window      *service.WindowSettingsService

	autosaver *service.Autosaver
	watcher   *boardWatcher
}

// New creates a new App.
func New() *App {
	return &App{}
}

// Emit implements service.EventEmitter by delegating to the Wails runtime.
func (a *App) Emit(ctx context.Context, event string, data any) {
	wailsRuntime.EventsEmit(ctx, event, data)
}

// Startup is called when the app starts.
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx

	// macOS: disable "Press and Hold" accent popup so key repeat works in the WebView.
	// Set for both the bundle ID (production) and global domain (wails dev).
	exec.Command("defaults", "write", "com.wails.noteboard", "ApplePressAndHoldEnabled", "-bool", "false").Run()
	exec.Command("defaults", "write", "-g", "ApplePressAndHoldEnabled", "-bool", "false").Run()

	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".local", "share", "noteboard")
	dbPath := filepath.Join(dataDir, "noteboard.db")

	db, err := storage.New(dbPath)
	if err != nil {
		wailsRuntime.LogFatalf(ctx, "Failed to open database: %v", err)
		return
	}
	a.db = db

	boardStore := storage.NewBoardStore(db)
	blockStore := storage.NewBlockStore(db)
	edgeStore := storage.NewEdgeStore(db)
	importStore := storage.NewImportStore(db)
	connStore := storage.NewSourceConnectionStore(db)

	a.boards = service.NewBoardService(boardStore, blockStore, edgeStore, a)
	a.headless = service.NewHeadlessCanvas(boardStore, blockStore, edgeStore)
	a.imports = service.NewImportService(importStore, a.headless, a)
	a.connections = service.NewSourceConnectionService(connStore, secret.NewKeychainStore())
	a.window = service.NewWindowSettingsService(db)

	// The database import source runs queries through the saved-connection
	// pool instead of opening its own drivers.
	wireConnectionQuerier(a.connections)

	// Restore the previous session's window size.
	ws := a.window.LoadWindowSize()
	wailsRuntime.WindowSetSize(ctx, ws.Width, ws.Height)

	a.engine = canvas.NewEngine()
	a.autosaver = service.NewAutosaver(service.DefaultAutosaveDelay, a.saveOpenBoard)

	// Resume cron schedules and file watchers for enabled jobs.
	a.imports.RestartWatchers(ctx)

	a.watcher = newBoardWatcher(ctx, a)
	a.watcher.Start()
}

// Shutdown is called when the app is closing.
func (a *App) Shutdown(ctx context.Context) {
	if a.watcher != nil {
		a.watcher.Stop()
	}
	if a.autosaver != nil {
		a.autosaver.Flush()
	}
	if a.imports != nil {
		a.imports.Stop()
		a.imports.WaitRunning(ctx)
	}
	if a.connections != nil {
		a.connections.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}

// saveOpenBoard flushes the live engine's scene to storage. Runs on the
// autosaver goroutine; Export hands back copies, so the write itself
// happens outside the lock.
func (a *App) saveOpenBoard() error {
	a.mu.Lock()
	boardID := a.openBoardID
	if boardID == "" {
		a.mu.Unlock()
		return nil
	}
	data := a.engine.Export()
	a.mu.Unlock()

	if err := a.boards.SaveScene(boardID, data); err != nil {
		return err
	}
	if a.watcher != nil {
		a.watcher.NoteLocalSave()
	}
	return nil
}
