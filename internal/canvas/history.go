package canvas

import "noteboard/internal/domain"

// historyCap bounds undo depth. Once full, the oldest snapshot falls off
// silently.
const historyCap = 10

// snapshot is one deep, independent copy of the scene. Blocks and edges are
// plain value structs, so copying the slices copies everything.
type snapshot struct {
	blocks []domain.Block
	edges  []domain.Edge
}

// History is a fixed-capacity ring of scene snapshots. Callers push once
// per discrete gesture, before mutating; undo is one-directional, there is
// no redo. The ring exclusively owns its snapshots.
type History struct {
	ring [historyCap]snapshot
	head int // next write index
	size int
}

func NewHistory() *History { return &History{} }

// Push stores a copy of the given scene state, evicting the oldest entry
// once the ring is full.
func (h *History) Push(blocks []domain.Block, edges []domain.Edge) {
	h.ring[h.head] = snapshot{
		blocks: append([]domain.Block(nil), blocks...),
		edges:  append([]domain.Edge(nil), edges...),
	}
	h.head = (h.head + 1) % historyCap
	if h.size < historyCap {
		h.size++
	}
}

// Pop removes and returns the most recent snapshot. ok is false when the
// ring is empty.
func (h *History) Pop() (blocks []domain.Block, edges []domain.Edge, ok bool) {
	if h.size == 0 {
		return nil, nil, false
	}
	h.head = (h.head - 1 + historyCap) % historyCap
	h.size--
	s := h.ring[h.head]
	h.ring[h.head] = snapshot{}
	return s.blocks, s.edges, true
}

// Len returns the number of stored snapshots.
func (h *History) Len() int { return h.size }

// Reset drops every snapshot.
func (h *History) Reset() { *h = History{} }
