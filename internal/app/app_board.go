package app

// ─────────────────────────────────────────────────────────────
// Board Handlers — thin delegates to BoardService
// ─────────────────────────────────────────────────────────────

import (
	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"noteboard/internal/canvas"
	"noteboard/internal/domain"
	"noteboard/internal/geometry"
	"noteboard/internal/service"
)

// ── Boards ─────────────────────────────────────────────────

func (a *App) ListBoards() ([]domain.Board, error) {
	return a.boards.ListBoards()
}

func (a *App) CreateBoard(name string) (*domain.Board, error) {
	return a.boards.CreateBoard(name)
}

func (a *App) RenameBoard(id, name string) error {
	return a.boards.RenameBoard(id, name)
}

func (a *App) DeleteBoard(id string) error {
	if err := a.boards.DeleteBoard(id); err != nil {
		return err
	}
	// Deleting the open board leaves the engine pointing at nothing;
	// unload it so a pending autosave can't resurrect the rows.
	a.mu.Lock()
	wasOpen := a.openBoardID == id
	if wasOpen {
		a.openBoardID = ""
		a.engine.Load("", domain.BoardData{})
	}
	a.mu.Unlock()
	if wasOpen {
		a.watcher.SetBoard("")
	}
	return nil
}

// OpenBoard loads a board's scene into the live engine and returns the
// full state for the first render.
func (a *App) OpenBoard(id string) (*domain.BoardState, error) {
	wailsRuntime.LogInfof(a.ctx, "[OpenBoard] loading board: %s", id)

	// Flush pending edits of the previous board before switching.
	if err := a.autosaver.Flush(); err != nil {
		wailsRuntime.LogErrorf(a.ctx, "[OpenBoard] flush before switch: %v", err)
	}

	state, err := a.boards.OpenBoard(id)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.engine.Load(id, domain.BoardData{Blocks: state.Blocks, Edges: state.Edges})
	a.engine.SetViewport(canvas.ViewportState{
		Scale: state.Board.ViewportScale,
		Pan:   geometry.ScreenPoint{X: state.Board.ViewportX, Y: state.Board.ViewportY},
	})
	a.openBoardID = id
	a.mu.Unlock()

	a.watcher.SetBoard(id)
	return state, nil
}

// ── JSON export / import ───────────────────────────────────

// ExportBoardToFile saves the board's scene as JSON at a user-chosen path
// and returns that path, or "" when the dialog was cancelled.
func (a *App) ExportBoardToFile(boardID string) (string, error) {
	// Flush so the file reflects the latest edits.
	if err := a.autosaver.Flush(); err != nil {
		return "", err
	}

	board, err := a.boards.GetBoard(boardID)
	if err != nil {
		return "", err
	}
	path, err := wailsRuntime.SaveFileDialog(a.ctx, wailsRuntime.SaveDialogOptions{
		Title:           "Export Board",
		DefaultFilename: board.Name + ".json",
		Filters: []wailsRuntime.FileFilter{
			{DisplayName: "JSON Files", Pattern: "*.json"},
		},
	})
	if err != nil || path == "" {
		return "", err
	}

	if err := a.boards.ExportToFile(boardID, path); err != nil {
		return "", err
	}
	return path, nil
}

// ImportBoardFromFile replaces the board's scene with a previously
// exported file picked in a native dialog. Returns nil without error when
// the dialog was cancelled.
func (a *App) ImportBoardFromFile(boardID string) (*domain.BoardState, error) {
	path, err := wailsRuntime.OpenFileDialog(a.ctx, wailsRuntime.OpenDialogOptions{
		Title: "Import Board",
		Filters: []wailsRuntime.FileFilter{
			{DisplayName: "JSON Files", Pattern: "*.json"},
			{DisplayName: "All Files", Pattern: "*.*"},
		},
	})
	if err != nil || path == "" {
		return nil, err
	}

	state, err := a.boards.ImportFromFile(boardID, path)
	if err != nil {
		return nil, err
	}

	// If the imported board is the open one, the engine is now stale.
	a.mu.Lock()
	if a.openBoardID == boardID {
		a.engine.Load(boardID, domain.BoardData{Blocks: state.Blocks, Edges: state.Edges})
	}
	a.mu.Unlock()
	return state, nil
}

// ── Window settings ────────────────────────────────────────

func (a *App) LoadWindowSize() service.WindowSize {
	return a.window.LoadWindowSize()
}

func (a *App) SaveWindowSize(width, height int) error {
	return a.window.SaveWindowSize(width, height)
}
