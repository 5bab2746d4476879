package canvas

import "noteboard/internal/domain"

// Scene is the id-keyed arena of blocks and edges, with stable insertion
// order for rendering and iteration. Its invariants hold after every call:
// no edge references a missing block, and no edge loops onto one block.
type Scene struct {
	blocks     map[string]domain.Block
	edges      map[string]domain.Edge
	blockOrder []string
	edgeOrder  []string
}

func NewScene() *Scene {
	return &Scene{
		blocks: make(map[string]domain.Block),
		edges:  make(map[string]domain.Edge),
	}
}

// Block returns a copy of the block with the given id.
func (s *Scene) Block(id string) (domain.Block, bool) {
	b, ok := s.blocks[id]
	return b, ok
}

// Edge returns a copy of the edge with the given id.
func (s *Scene) Edge(id string) (domain.Edge, bool) {
	e, ok := s.edges[id]
	return e, ok
}

// Blocks returns all blocks in insertion order. The slice is fresh; callers
// may keep it across mutations.
func (s *Scene) Blocks() []domain.Block {
	out := make([]domain.Block, 0, len(s.blockOrder))
	for _, id := range s.blockOrder {
		out = append(out, s.blocks[id])
	}
	return out
}

// Edges returns all edges in insertion order.
func (s *Scene) Edges() []domain.Edge {
	out := make([]domain.Edge, 0, len(s.edgeOrder))
	for _, id := range s.edgeOrder {
		out = append(out, s.edges[id])
	}
	return out
}

// BlockCount returns the number of live blocks.
func (s *Scene) BlockCount() int { return len(s.blocks) }

// EdgeCount returns the number of live edges.
func (s *Scene) EdgeCount() int { return len(s.edges) }

// PutBlock inserts or replaces a block. Replacing keeps the original
// insertion position.
func (s *Scene) PutBlock(b domain.Block) {
	if _, ok := s.blocks[b.ID]; !ok {
		s.blockOrder = append(s.blockOrder, b.ID)
	}
	s.blocks[b.ID] = b
}

// PutEdge inserts or replaces an edge, preserving the arena invariants:
// self-loops and edges referencing unknown blocks are dropped. Reports
// whether the edge was stored.
func (s *Scene) PutEdge(e domain.Edge) bool {
	if e.FromID == e.ToID {
		return false
	}
	if _, ok := s.blocks[e.FromID]; !ok {
		return false
	}
	if _, ok := s.blocks[e.ToID]; !ok {
		return false
	}
	if _, ok := s.edges[e.ID]; !ok {
		s.edgeOrder = append(s.edgeOrder, e.ID)
	}
	s.edges[e.ID] = e
	return true
}

// DeleteBlock removes the block and every edge touching it in one step, so
// no dangling edge is ever observable. Unknown ids are no-ops.
func (s *Scene) DeleteBlock(id string) bool {
	if _, ok := s.blocks[id]; !ok {
		return false
	}
	delete(s.blocks, id)
	s.blockOrder = removeID(s.blockOrder, id)

	kept := s.edgeOrder[:0]
	for _, eid := range s.edgeOrder {
		e := s.edges[eid]
		if e.FromID == id || e.ToID == id {
			delete(s.edges, eid)
			continue
		}
		kept = append(kept, eid)
	}
	s.edgeOrder = kept
	return true
}

// DeleteEdge removes an edge. Unknown ids are no-ops.
func (s *Scene) DeleteEdge(id string) bool {
	if _, ok := s.edges[id]; !ok {
		return false
	}
	delete(s.edges, id)
	s.edgeOrder = removeID(s.edgeOrder, id)
	return true
}

// Replace swaps in an entire scene, accepting the persisted shape verbatim.
// Edges failing the invariants are pruned by PutEdge.
func (s *Scene) Replace(blocks []domain.Block, edges []domain.Edge) {
	s.blocks = make(map[string]domain.Block, len(blocks))
	s.edges = make(map[string]domain.Edge, len(edges))
	s.blockOrder = nil
	s.edgeOrder = nil
	for _, b := range blocks {
		s.PutBlock(b)
	}
	for _, e := range edges {
		s.PutEdge(e)
	}
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
