package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// boardWatcher polls the database for changes to the open board, detecting
// writes from outside the GUI process (standalone MCP, scheduled imports)
// and emitting Wails events so the frontend reloads the scene. It also
// surfaces pending MCP approval rows as frontend prompts.
type boardWatcher struct {
	ctx context.Context
	app *App

	mu      sync.Mutex
	boardID string
	// Scene fingerprint (blocks + edges count and max updated_at). The
	// GUI's own autosaves move it too, so NoteLocalSave suppresses the
	// next delta; only foreign writes reach the frontend as events.
	lastScene      string
	skipNext       bool
	lastBoards     string // board list fingerprint (sidebar refresh)
	stopCh         chan struct{}
	emittedPrompts map[string]bool // approval ids already sent to the frontend
}

func newBoardWatcher(ctx context.Context, app *App) *boardWatcher {
	return &boardWatcher{ctx: ctx, app: app, emittedPrompts: map[string]bool{}}
}

// SetBoard updates the watched board id. Called when the user opens a
// board; "" stops scene tracking while board-list polling continues.
func (w *boardWatcher) SetBoard(boardID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.boardID = boardID
	w.lastScene = ""
	w.skipNext = false
}

// NoteLocalSave tells the watcher the next scene delta is our own write.
func (w *boardWatcher) NoteLocalSave() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.skipNext = true
}

// Start begins the polling loop. Called once on app startup.
func (w *boardWatcher) Start() {
	w.stopCh = make(chan struct{})
	go w.pollLoop()
}

// Stop terminates the polling loop.
func (w *boardWatcher) Stop() {
	if w.stopCh != nil {
		close(w.stopCh)
	}
}

func (w *boardWatcher) pollLoop() {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.check()
		case <-w.stopCh:
			return
		case <-w.ctx.Done():
			return
		}
	}
}

func (w *boardWatcher) check() {
	w.mu.Lock()
	boardID := w.boardID
	w.mu.Unlock()

	db := w.app.db.Conn()

	// ── Scene fingerprint for the open board ────────────
	var sceneFingerprint string
	if boardID != "" {
		var blockCount, edgeCount int
		var blockUpdated string
		err := db.QueryRow(
			`SELECT COUNT(*), COALESCE(MAX(updated_at), '') FROM blocks WHERE board_id = ?`, boardID,
		).Scan(&blockCount, &blockUpdated)
		if err != nil {
			return
		}
		if db.QueryRow(`SELECT COUNT(*) FROM edges WHERE board_id = ?`, boardID).Scan(&edgeCount) != nil {
			return
		}
		sceneFingerprint = fmt.Sprintf("%d:%d:%s", blockCount, edgeCount, blockUpdated)
	}

	// ── Board list fingerprint (sidebar) ────────────────
	var boardsFingerprint string
	var boardCount int
	var boardsMaxUpdated string
	err := db.QueryRow(`SELECT COUNT(*), COALESCE(MAX(updated_at), '') FROM boards`).Scan(&boardCount, &boardsMaxUpdated)
	if err == nil {
		boardsFingerprint = fmt.Sprintf("%d:%s", boardCount, boardsMaxUpdated)
	}

	// ── Compare and update tracked state ────────────────
	w.mu.Lock()
	sceneChanged := boardID != "" && w.lastScene != "" && w.lastScene != sceneFingerprint
	if sceneChanged && w.skipNext {
		sceneChanged = false
	}
	w.skipNext = false
	boardsChanged := w.lastBoards != "" && boardsFingerprint != "" && w.lastBoards != boardsFingerprint
	if boardID != "" {
		w.lastScene = sceneFingerprint
	}
	if boardsFingerprint != "" {
		w.lastBoards = boardsFingerprint
	}
	w.mu.Unlock()

	// ── Emit events ────────────────────────────────────
	if sceneChanged {
		wailsRuntime.EventsEmit(w.ctx, "mcp:scene-changed", map[string]string{"boardId": boardID})
	}
	if boardsChanged {
		wailsRuntime.EventsEmit(w.ctx, "boards:changed", nil)
	}

	// ── Check pending MCP approvals (cross-process IPC) ─
	rows, err := db.Query(`SELECT id, tool, description, created_at, metadata FROM mcp_approvals WHERE status = 'pending'`)
	if err == nil {
		for rows.Next() {
			var id, tool, desc, createdAt, metadata string
			if rows.Scan(&id, &tool, &desc, &createdAt, &metadata) == nil {
				w.mu.Lock()
				alreadySent := w.emittedPrompts[id]
				if !alreadySent {
					w.emittedPrompts[id] = true
				}
				w.mu.Unlock()
				if !alreadySent {
					wailsRuntime.EventsEmit(w.ctx, "mcp:approval-required", map[string]string{
						"id":          id,
						"tool":        tool,
						"description": desc,
						"createdAt":   createdAt,
						"metadata":    metadata,
					})
				}
			}
		}
		rows.Close()
	}

	// Clean up tracking for resolved/expired approvals (the standalone MCP
	// deletes the row after reading the decision).
	w.mu.Lock()
	for id := range w.emittedPrompts {
		var count int
		if db.QueryRow(`SELECT COUNT(*) FROM mcp_approvals WHERE id = ? AND status = 'pending'`, id).Scan(&count) == nil && count == 0 {
			delete(w.emittedPrompts, id)
			wailsRuntime.EventsEmit(w.ctx, "mcp:approval-dismissed", map[string]string{"id": id})
		}
	}
	w.mu.Unlock()
}

// ── MCP approval bindings ──────────────────────────────────
// The standalone MCP process blocks on the mcp_approvals row; flipping its
// status here is what unblocks the tool call on the other side.

// ApproveAction approves a pending MCP action by id.
func (a *App) ApproveAction(id string) error {
	_, err := a.db.Conn().Exec(`UPDATE mcp_approvals SET status = 'approved' WHERE id = ? AND status = 'pending'`, id)
	return err
}

// RejectAction rejects a pending MCP action by id.
func (a *App) RejectAction(id string) error {
	_, err := a.db.Conn().Exec(`UPDATE mcp_approvals SET status = 'rejected' WHERE id = ? AND status = 'pending'`, id)
	return err
}
