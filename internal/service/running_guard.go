package service

import (
	"context"
	"sync"
)

// ExportedRunGuard is an exported alias so _test packages can exercise the guard.
type ExportedRunGuard = runGuard

// ─────────────────────────────────────────────────────────────
// runGuard — one execution per job id, drainable on shutdown
// ─────────────────────────────────────────────────────────────

// runGuard hands out at most one run slot per id. Shutdown drains it:
// Wait blocks until every held slot is returned or the context expires.
type runGuard struct {
	mu     sync.Mutex
	active map[string]struct{}
	wg     sync.WaitGroup
}

// Acquire claims the slot for id. It reports false while a run for the
// same id is in flight; the caller must Release only after a true return.
func (g *runGuard) Acquire(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.active[id]; busy {
		return false
	}
	if g.active == nil {
		g.active = make(map[string]struct{})
	}
	g.active[id] = struct{}{}
	g.wg.Add(1)
	return true
}

// Release returns the slot for id.
func (g *runGuard) Release(id string) {
	g.mu.Lock()
	delete(g.active, id)
	g.mu.Unlock()
	g.wg.Done()
}

// Wait blocks until all held slots are released or ctx expires.
func (g *runGuard) Wait(ctx context.Context) {
	drained := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-ctx.Done():
	}
}
