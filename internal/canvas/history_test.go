package canvas

import (
	"fmt"
	"testing"

	"noteboard/internal/domain"
)

func oneBlockScene(tag string) []domain.Block {
	return []domain.Block{{ID: tag, Type: domain.BlockTypeText, Title: tag}}
}

func TestHistoryPopOrder(t *testing.T) {
	h := NewHistory()
	h.Push(oneBlockScene("first"), nil)
	h.Push(oneBlockScene("second"), nil)
	h.Push(oneBlockScene("third"), nil)

	for _, want := range []string{"third", "second", "first"} {
		blocks, _, ok := h.Pop()
		if !ok {
			t.Fatalf("pop %q: ring empty", want)
		}
		if len(blocks) != 1 || blocks[0].ID != want {
			t.Errorf("popped %v, want single block %q", blocks, want)
		}
	}
	if _, _, ok := h.Pop(); ok {
		t.Error("pop on empty ring reported ok")
	}
	if h.Len() != 0 {
		t.Errorf("len = %d after draining, want 0", h.Len())
	}
}

// The ring holds at most ten snapshots; older ones fall off silently.
func TestHistoryBounded(t *testing.T) {
	h := NewHistory()
	for i := 0; i < 25; i++ {
		h.Push(oneBlockScene(fmt.Sprintf("s%d", i)), nil)
	}
	if h.Len() != historyCap {
		t.Fatalf("len = %d, want %d", h.Len(), historyCap)
	}
	// Newest first: s24 down to s15.
	for i := 24; i >= 15; i-- {
		blocks, _, ok := h.Pop()
		if !ok {
			t.Fatalf("ring drained early at s%d", i)
		}
		want := fmt.Sprintf("s%d", i)
		if blocks[0].ID != want {
			t.Errorf("popped %q, want %q", blocks[0].ID, want)
		}
	}
	if _, _, ok := h.Pop(); ok {
		t.Error("evicted snapshot still reachable")
	}
}

// Snapshots must be copies: mutating the pushed slice afterwards cannot
// reach into the ring.
func TestHistorySnapshotsAreIndependent(t *testing.T) {
	h := NewHistory()
	blocks := oneBlockScene("original")
	edges := []domain.Edge{{ID: "e1", FromID: "a", ToID: "b"}}
	h.Push(blocks, edges)

	blocks[0].Title = "mutated"
	edges[0].ToID = "c"

	gotBlocks, gotEdges, _ := h.Pop()
	if gotBlocks[0].Title != "original" {
		t.Errorf("snapshot block title = %q, want %q", gotBlocks[0].Title, "original")
	}
	if gotEdges[0].ToID != "b" {
		t.Errorf("snapshot edge toId = %q, want %q", gotEdges[0].ToID, "b")
	}
}

func TestHistoryReset(t *testing.T) {
	h := NewHistory()
	h.Push(oneBlockScene("a"), nil)
	h.Push(oneBlockScene("b"), nil)
	h.Reset()
	if h.Len() != 0 {
		t.Errorf("len = %d after reset, want 0", h.Len())
	}
	if _, _, ok := h.Pop(); ok {
		t.Error("pop succeeded after reset")
	}
}
