package mcpserver

import "testing"

func TestResolveBoardID(t *testing.T) {
	s := &Server{}

	if _, err := s.resolveBoardID(map[string]any{}); err == nil {
		t.Error("no board anywhere, want error")
	}

	id, err := s.resolveBoardID(map[string]any{"boardId": "b-7"})
	if err != nil || id != "b-7" {
		t.Errorf("explicit boardId: got (%q, %v)", id, err)
	}

	s.activeBoardID = "b-active"
	id, err = s.resolveBoardID(map[string]any{})
	if err != nil || id != "b-active" {
		t.Errorf("active fallback: got (%q, %v)", id, err)
	}

	// An explicit id wins over the active board
	id, _ = s.resolveBoardID(map[string]any{"boardId": "b-7"})
	if id != "b-7" {
		t.Errorf("explicit id lost to active board, got %q", id)
	}
}

func TestExtractBoardIDFromURI(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"canvas://board/abc-123", "abc-123"},
		{"canvas://board/abc-123/extra", "abc-123"},
		{"canvas://board/", ""},
		{"canvas://boards", ""},
		{"notes://board/abc", ""},
	}
	for _, tt := range tests {
		if got := extractBoardIDFromURI(tt.uri); got != tt.want {
			t.Errorf("extractBoardIDFromURI(%q) = %q, want %q", tt.uri, got, tt.want)
		}
	}
}
