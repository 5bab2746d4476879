package canvas

import (
	"testing"

	"noteboard/internal/domain"
)

func sceneWith(blocks []domain.Block, edges []domain.Edge) *Scene {
	s := NewScene()
	s.Replace(blocks, edges)
	return s
}

func TestScenePutEdgeInvariants(t *testing.T) {
	s := sceneWith([]domain.Block{{ID: "a"}, {ID: "b"}}, nil)

	if s.PutEdge(domain.Edge{ID: "loop", FromID: "a", ToID: "a"}) {
		t.Error("self-loop accepted")
	}
	if s.PutEdge(domain.Edge{ID: "dangling", FromID: "a", ToID: "ghost"}) {
		t.Error("edge to unknown block accepted")
	}
	if !s.PutEdge(domain.Edge{ID: "ok", FromID: "a", ToID: "b"}) {
		t.Error("valid edge rejected")
	}
	if s.EdgeCount() != 1 {
		t.Errorf("edge count = %d, want 1", s.EdgeCount())
	}
}

// Deleting a block removes every edge touching it in the same step.
func TestSceneDeleteBlockCascades(t *testing.T) {
	s := sceneWith(
		[]domain.Block{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		[]domain.Edge{
			{ID: "ab", FromID: "a", ToID: "b"},
			{ID: "bc", FromID: "b", ToID: "c"},
			{ID: "ac", FromID: "a", ToID: "c"},
		},
	)

	if !s.DeleteBlock("b") {
		t.Fatal("delete reported no-op for existing block")
	}
	if s.BlockCount() != 2 {
		t.Errorf("block count = %d, want 2", s.BlockCount())
	}
	if s.EdgeCount() != 1 {
		t.Errorf("edge count = %d, want 1", s.EdgeCount())
	}
	if _, ok := s.Edge("ac"); !ok {
		t.Error("unrelated edge removed by cascade")
	}
	if s.DeleteBlock("ghost") {
		t.Error("delete of unknown id reported as done")
	}
}

func TestSceneReplacePrunes(t *testing.T) {
	s := sceneWith(
		[]domain.Block{{ID: "a"}, {ID: "b"}},
		[]domain.Edge{
			{ID: "ok", FromID: "a", ToID: "b"},
			{ID: "dangling", FromID: "a", ToID: "gone"},
			{ID: "loop", FromID: "b", ToID: "b"},
		},
	)
	if s.EdgeCount() != 1 {
		t.Errorf("edge count = %d after prune, want 1", s.EdgeCount())
	}
	if _, ok := s.Edge("ok"); !ok {
		t.Error("valid edge pruned")
	}
}

func TestSceneOrderStable(t *testing.T) {
	s := NewScene()
	for _, id := range []string{"one", "two", "three"} {
		s.PutBlock(domain.Block{ID: id})
	}
	// Replacing an existing block keeps its slot.
	s.PutBlock(domain.Block{ID: "two", Title: "changed"})

	got := s.Blocks()
	want := []string{"one", "two", "three"}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("order[%d] = %q, want %q", i, got[i].ID, id)
		}
	}
	if got[1].Title != "changed" {
		t.Errorf("upsert lost the new value")
	}
}

// Returned slices are fresh copies; later mutations must not leak into
// earlier snapshots.
func TestSceneSnapshotsDetached(t *testing.T) {
	s := sceneWith([]domain.Block{{ID: "a", Title: "before"}}, nil)
	snap := s.Blocks()
	s.PutBlock(domain.Block{ID: "a", Title: "after"})
	if snap[0].Title != "before" {
		t.Errorf("snapshot title = %q, want %q", snap[0].Title, "before")
	}
}
