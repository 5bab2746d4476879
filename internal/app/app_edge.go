package app

// ─────────────────────────────────────────────────────────────
// Edge Handlers — explicit connect/disconnect
// ─────────────────────────────────────────────────────────────
//
// Drag-to-connect goes through the pointer handlers; these bindings serve
// the context menu and keyboard paths that name both endpoints up front.

import (
	"fmt"

	"noteboard/internal/domain"
)

// ConnectBlocks creates an edge between two handles. Fails when either
// side is not a valid handle name or the connection is refused (self-loop,
// duplicate pair, unknown block).
func (a *App) ConnectBlocks(fromID, toID, fromHandle, toHandle string) (domain.Edge, error) {
	from := domain.HandleSide(fromHandle)
	to := domain.HandleSide(toHandle)
	if !from.Valid() || !to.Valid() {
		return domain.Edge{}, fmt.Errorf("invalid handle side %q/%q", fromHandle, toHandle)
	}

	a.mu.Lock()
	e, ok := a.engine.ConnectBlocks(fromID, toID, from, to)
	a.mu.Unlock()
	if !ok {
		return domain.Edge{}, fmt.Errorf("could not connect %s to %s", fromID, toID)
	}
	a.autosaver.Trigger()
	return e, nil
}

// DeleteEdge removes an edge by id.
func (a *App) DeleteEdge(edgeID string) {
	a.mu.Lock()
	a.engine.DeleteEdge(edgeID)
	a.mu.Unlock()
	a.autosaver.Trigger()
}
