package app

// ─────────────────────────────────────────────────────────────
// Block Handlers — scene mutations through the live engine
// ─────────────────────────────────────────────────────────────
//
// Engine operations addressed to missing ids are no-ops, so most of these
// return nothing; the frontend redraws from Frame() and sees the result.
// Every mutation re-arms the autosave debounce.

import (
	"fmt"

	"noteboard/internal/canvas"
	"noteboard/internal/domain"
	"noteboard/internal/geometry"
)

// AddBlock creates a block of the given type centered at the screen point,
// or in the middle of the visible canvas when at is null.
func (a *App) AddBlock(blockType string, at *geometry.ScreenPoint) domain.Block {
	t := domain.BlockType(blockType)
	if blockType == "" {
		t = domain.DefaultBlockType
	}
	a.mu.Lock()
	b := a.engine.AddBlock(t, at)
	a.mu.Unlock()
	a.autosaver.Trigger()
	return b
}

// UpdateBlock applies a partial update; nil fields stay untouched. Content
// edits stream through here on the editor's own debounce.
func (a *App) UpdateBlock(blockID string, patch canvas.BlockPatch) {
	a.mu.Lock()
	a.engine.UpdateBlock(blockID, patch)
	a.mu.Unlock()
	a.autosaver.Trigger()
}

// MoveBlock places a block at a world position outside of a drag gesture
// (keyboard nudge, alignment commands).
func (a *App) MoveBlock(blockID string, x, y float64) {
	a.mu.Lock()
	a.engine.MoveBlock(blockID, x, y)
	a.mu.Unlock()
	a.autosaver.Trigger()
}

// BeginBlockResize marks the start of a resize gesture so the whole drag
// collapses into one undo step.
func (a *App) BeginBlockResize(blockID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.engine.BeginBlockResize(blockID)
}

// ResizeBlock applies the current size of an in-flight resize gesture.
func (a *App) ResizeBlock(blockID string, w, h float64) {
	a.mu.Lock()
	a.engine.ResizeBlock(blockID, w, h)
	a.mu.Unlock()
	a.autosaver.Trigger()
}

// DuplicateBlock copies a block, content included, edges not.
func (a *App) DuplicateBlock(blockID string) (domain.Block, error) {
	a.mu.Lock()
	b, ok := a.engine.DuplicateBlock(blockID)
	a.mu.Unlock()
	if !ok {
		return domain.Block{}, fmt.Errorf("block %s not found", blockID)
	}
	a.autosaver.Trigger()
	return b, nil
}

// DeleteBlock removes a block and every edge touching it.
func (a *App) DeleteBlock(blockID string) {
	a.mu.Lock()
	a.engine.DeleteBlock(blockID)
	a.mu.Unlock()
	a.autosaver.Trigger()
}

// InsertBlocks places pre-built blocks (paste, drop) as one undo step.
func (a *App) InsertBlocks(blocks []domain.Block) []domain.Block {
	a.mu.Lock()
	inserted := a.engine.InsertBlocks(blocks)
	a.mu.Unlock()
	a.autosaver.Trigger()
	return inserted
}

// Undo rolls the scene back one snapshot and reports whether anything was
// undone.
func (a *App) Undo() bool {
	a.mu.Lock()
	ok := a.engine.Undo()
	a.mu.Unlock()
	if ok {
		a.autosaver.Trigger()
	}
	return ok
}

// SetPreventOverlap toggles drag collision avoidance.
func (a *App) SetPreventOverlap(v bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.engine.SetPreventOverlap(v)
}

// PreventOverlap reports the current setting.
func (a *App) PreventOverlap() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.engine.PreventOverlap()
}
